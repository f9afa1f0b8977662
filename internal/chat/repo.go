package chat

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrSessionTouched is returned by ArchiveSession when the session became
// active again after it was selected for expiry.
var ErrSessionTouched = errors.New("session active again")

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

// Sessions

func (r *Repo) CreateSession(ctx context.Context, s *GuestSession) error {
	ctx, cancel := r.op(ctx)
	defer cancel()
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *Repo) GetSession(ctx context.Context, sessionID string) (*GuestSession, error) {
	ctx, cancel := r.op(ctx)
	defer cancel()

	var s GuestSession
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindMostRecentActive returns the session with the newest last_active_at.
func (r *Repo) FindMostRecentActive(ctx context.Context) (*GuestSession, error) {
	ctx, cancel := r.op(ctx)
	defer cancel()

	var s GuestSession
	if err := r.db.WithContext(ctx).
		Order("last_active_at DESC").
		Order("id DESC").
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Touch moves last_active_at to now. It returns gorm.ErrRecordNotFound for an
// unknown session.
func (r *Repo) Touch(ctx context.Context, sessionID string, now time.Time) error {
	ctx, cancel := r.op(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&GuestSession{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]any{"last_active_at": now, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListExpired returns up to limit sessions last active before the cutoff
// whose row id is greater than afterID, in id order. Callers page through the
// backlog by passing the last id of the previous page.
func (r *Repo) ListExpired(ctx context.Context, before time.Time, afterID uint64, limit int) ([]GuestSession, error) {
	if limit <= 0 {
		limit = 500
	}
	ctx, cancel := r.op(ctx)
	defer cancel()

	var out []GuestSession
	if err := r.db.WithContext(ctx).
		Where("last_active_at < ? AND id > ?", before, afterID).
		Order("id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ArchiveSession copies the session's messages into the archive and removes
// the session with its messages and attempts, all in one transaction. The
// session is only removed if it is still older than the cutoff; otherwise
// nothing changes and ErrSessionTouched is returned. It returns the number of
// archived messages.
func (r *Repo) ArchiveSession(ctx context.Context, sessionID string, before, now time.Time) (int, error) {
	ctx, cancel := r.op(ctx)
	defer cancel()

	archived := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("session_id = ? AND last_active_at < ?", sessionID, before).
			Delete(&GuestSession{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSessionTouched
		}

		var msgs []Message
		if err := tx.Where("session_id = ?", sessionID).Order("id ASC").Find(&msgs).Error; err != nil {
			return err
		}
		if len(msgs) > 0 {
			entries := make([]ArchiveEntry, 0, len(msgs))
			for _, m := range msgs {
				entries = append(entries, archiveOf(m, now))
			}
			if err := tx.CreateInBatches(entries, 100).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("session_id = ?", sessionID).Delete(&Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", sessionID).Delete(&Attempt{}).Error; err != nil {
			return err
		}
		archived = len(msgs)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return archived, nil
}

// DeleteArchivesOlderThan removes archive rows archived before the cutoff.
func (r *Repo) DeleteArchivesOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := r.op(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).Where("archived_at < ?", cutoff).Delete(&ArchiveEntry{})
	return res.RowsAffected, res.Error
}

func (r *Repo) ListArchive(ctx context.Context, sessionID string) ([]ArchiveEntry, error) {
	ctx, cancel := r.op(ctx)
	defer cancel()

	var out []ArchiveEntry
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Messages

func (r *Repo) InsertMessage(ctx context.Context, m *Message) error {
	ctx, cancel := r.op(ctx)
	defer cancel()
	return r.db.WithContext(ctx).Create(m).Error
}

// ListMessages returns messages in DESC id order (newest -> oldest).
func (r *Repo) ListMessages(ctx context.Context, sessionID string, limit int, beforeID uint64) ([]Message, error) {
	ctx, cancel := r.op(ctx)
	defer cancel()

	q := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id DESC").
		Limit(limit)

	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}

	var msgs []Message
	if err := q.Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// Attempts

func (r *Repo) CountAttempts(ctx context.Context, sessionID string) (int64, error) {
	ctx, cancel := r.op(ctx)
	defer cancel()

	var n int64
	err := r.db.WithContext(ctx).Model(&Attempt{}).Where("session_id = ?", sessionID).Count(&n).Error
	return n, err
}

// InsertAttempt numbers the attempt as count+1 for its session, stores it and
// refreshes the session's last_active_at. Count and insert share a
// transaction, but two concurrent writers on one session can still produce the
// same number under READ COMMITTED; attempt numbers are informational.
func (r *Repo) InsertAttempt(ctx context.Context, a *Attempt, now time.Time) error {
	ctx, cancel := r.op(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&Attempt{}).Where("session_id = ?", a.SessionID).Count(&n).Error; err != nil {
			return err
		}
		a.AttemptNumber = int(n) + 1
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		return tx.Model(&GuestSession{}).
			Where("session_id = ?", a.SessionID).
			Updates(map[string]any{"last_active_at": now, "updated_at": now}).Error
	})
}

// Analytics

func (r *Repo) InsertEvent(ctx context.Context, e *AnalyticsEvent) error {
	ctx, cancel := r.op(ctx)
	defer cancel()
	return r.db.WithContext(ctx).Create(e).Error
}

// ListEvents returns the newest events first, optionally of one type.
func (r *Repo) ListEvents(ctx context.Context, eventType string, limit int) ([]AnalyticsEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	ctx, cancel := r.op(ctx)
	defer cancel()

	q := r.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if eventType != "" {
		q = q.Where("event_type = ?", eventType)
	}
	var out []AnalyticsEvent
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
