package catalog

import "time"

// Product is read-only to the chat service; the admin back-office owns writes.
type Product struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(255);index;not null" json:"title"`
	Category    string    `gorm:"type:varchar(64);index;not null" json:"category"`
	Price       float64   `gorm:"not null" json:"price"`
	Materials   string    `gorm:"type:varchar(255)" json:"materials,omitempty"`
	Carat       *float64  `json:"carat,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Features    string    `gorm:"type:text" json:"features,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Product) TableName() string { return "products" }

type Inventory struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	ProductID uint64    `gorm:"uniqueIndex;not null" json:"product_id"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	Price     float64   `json:"price"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Inventory) TableName() string { return "inventory" }

type SpecialOffer struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	ProductID   uint64    `gorm:"index;not null" json:"product_id"`
	Description string    `gorm:"type:text;not null" json:"description"`
	IsActive    bool      `gorm:"index;not null;default:false" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (SpecialOffer) TableName() string { return "special_offers" }
