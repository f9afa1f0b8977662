package chat

import (
	"time"

	"gorm.io/datatypes"
)

type GuestSession struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID    string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"session_id"`
	LastActiveAt time.Time `gorm:"index;not null" json:"last_active_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (GuestSession) TableName() string { return "guest_sessions" }

// Message is one request/response pair. Rows are never updated.
type Message struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID   string    `gorm:"type:varchar(64);index;not null" json:"session_id"`
	UserID      *string   `gorm:"type:varchar(64);index" json:"user_id,omitempty"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Response    string    `gorm:"type:text;not null" json:"response"`
	IsProcessed bool      `gorm:"not null;default:true" json:"is_processed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Message) TableName() string { return "chat_history" }

type ArchiveEntry struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID   uint64    `gorm:"index" json:"message_id"`
	SessionID   string    `gorm:"type:varchar(64);index;not null" json:"session_id"`
	UserID      *string   `gorm:"type:varchar(64)" json:"user_id,omitempty"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Response    string    `gorm:"type:text;not null" json:"response"`
	IsProcessed bool      `gorm:"not null" json:"is_processed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ArchivedAt  time.Time `gorm:"index;not null" json:"archived_at"`
}

func (ArchiveEntry) TableName() string { return "chat_archive" }

func archiveOf(m Message, at time.Time) ArchiveEntry {
	return ArchiveEntry{
		MessageID:   m.ID,
		SessionID:   m.SessionID,
		UserID:      m.UserID,
		Message:     m.Message,
		Response:    m.Response,
		IsProcessed: m.IsProcessed,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		ArchivedAt:  at,
	}
}

// Attempt is the audit row for one SendMessage call, including rejected ones.
type Attempt struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID     string    `gorm:"type:varchar(64);index;not null" json:"session_id"`
	AttemptNumber int       `gorm:"not null" json:"attempt_number"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	Response      string    `gorm:"type:text" json:"response"`
	Success       bool      `gorm:"not null" json:"success"`
	ErrorMessage  *string   `gorm:"type:varchar(255)" json:"error_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Attempt) TableName() string { return "chat_attempts" }

const (
	EventMessageProcessed = "chat_message"
	EventRateLimited      = "chat_rate_limited"
	EventSessionStarted   = "chat_session_started"
)

type AnalyticsEvent struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string         `gorm:"type:varchar(64);index" json:"session_id"`
	EventType string         `gorm:"type:varchar(64);index;not null" json:"event_type"`
	UserID    *string        `gorm:"type:varchar(64)" json:"user_id,omitempty"`
	Data      datatypes.JSON `json:"data"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (AnalyticsEvent) TableName() string { return "chat_analytics" }
