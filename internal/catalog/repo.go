package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Searchable columns. Anything else passed in a Filter is ignored.
const (
	ColumnName     = "name"
	ColumnCategory = "category"
	ColumnFeatures = "features"
)

var searchable = map[string]bool{
	ColumnName:     true,
	ColumnCategory: true,
	ColumnFeatures: true,
}

// Filter is an OR of case-insensitive substring matches: any term against any column.
type Filter struct {
	Terms   []string
	Columns []string
	Limit   int
}

type Repo struct {
	db        *gorm.DB
	opTimeout time.Duration
}

func NewRepo(db *gorm.DB, opTimeout time.Duration) *Repo {
	if opTimeout <= 0 {
		opTimeout = 8 * time.Second
	}
	return &Repo{db: db, opTimeout: opTimeout}
}

func (r *Repo) op(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.opTimeout)
}

func (r *Repo) Search(ctx context.Context, f Filter) ([]Product, error) {
	var (
		clauses []string
		args    []any
	)
	for _, term := range f.Terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		for _, col := range f.Columns {
			if !searchable[col] {
				continue
			}
			clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE ?", col))
			args = append(args, "%"+term+"%")
		}
	}
	if len(clauses) == 0 {
		return nil, nil
	}
	limit := f.Limit
	if limit <= 0 || limit > 50 {
		limit = 5
	}

	ctx, cancel := r.op(ctx)
	defer cancel()

	var out []Product
	if err := r.db.WithContext(ctx).
		Where(strings.Join(clauses, " OR "), args...).
		Order("id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ProductsByID loads the given products. Unknown ids are skipped.
func (r *Repo) ProductsByID(ctx context.Context, ids []uint64) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := r.op(ctx)
	defer cancel()

	var out []Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// InventoryFor returns nil, nil when the product has no inventory row.
func (r *Repo) InventoryFor(ctx context.Context, productID uint64) (*Inventory, error) {
	ctx, cancel := r.op(ctx)
	defer cancel()

	var inv Inventory
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ActiveOfferFor returns nil, nil when no active offer exists.
func (r *Repo) ActiveOfferFor(ctx context.Context, productID uint64) (*SpecialOffer, error) {
	ctx, cancel := r.op(ctx)
	defer cancel()

	var offer SpecialOffer
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", productID, true).
		Order("id DESC").
		First(&offer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *Repo) DistinctCategories(ctx context.Context) ([]string, error) {
	ctx, cancel := r.op(ctx)
	defer cancel()

	var cats []string
	if err := r.db.WithContext(ctx).
		Model(&Product{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

// CountByCategory matches the category case-insensitively.
func (r *Repo) CountByCategory(ctx context.Context, category string) (int64, error) {
	ctx, cancel := r.op(ctx)
	defer cancel()

	var n int64
	if err := r.db.WithContext(ctx).
		Model(&Product{}).
		Where("LOWER(category) = ?", strings.ToLower(strings.TrimSpace(category))).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repo) CountProducts(ctx context.Context) (int64, error) {
	ctx, cancel := r.op(ctx)
	defer cancel()

	var n int64
	if err := r.db.WithContext(ctx).Model(&Product{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Seed inserts products (with inventory rows) whose names are not in the table yet.
func (r *Repo) Seed(ctx context.Context, products []Product, quantity int) (int, error) {
	inserted := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range products {
			var cnt int64
			if err := tx.Model(&Product{}).Where("name = ?", p.Name).Count(&cnt).Error; err != nil {
				return err
			}
			if cnt > 0 {
				continue
			}
			p.ID = 0
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			if err := tx.Create(&Inventory{ProductID: p.ID, Quantity: quantity, Price: p.Price}).Error; err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	return inserted, err
}
