package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	guestPrefix = "guest_"

	expirePageSize = 500
)

type SessionPolicy struct {
	TTL              time.Duration
	ArchiveRetention time.Duration
	// ResumeLatest lets a request without a session id continue the most
	// recently active session. Off by default: it hands one guest's
	// conversation to another.
	ResumeLatest bool
}

var DefaultSessionPolicy = SessionPolicy{
	TTL:              24 * time.Hour,
	ArchiveRetention: 30 * 24 * time.Hour,
}

type SessionManager struct {
	repo     *Repo
	policy   SessionPolicy
	now      func() time.Time
	log      *zap.Logger
	pageSize int
}

func NewSessionManager(repo *Repo, p SessionPolicy, now func() time.Time, log *zap.Logger) *SessionManager {
	if p.TTL <= 0 {
		p.TTL = DefaultSessionPolicy.TTL
	}
	if p.ArchiveRetention <= 0 {
		p.ArchiveRetention = DefaultSessionPolicy.ArchiveRetention
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionManager{repo: repo, policy: p, now: now, log: log, pageSize: expirePageSize}
}

func NewSessionID() string {
	return guestPrefix + uuid.NewString()
}

// GetOrCreateGuestSession returns a live session for the caller and refreshes
// its last_active_at. An empty, unknown or expired id yields a new session;
// created reports whether that happened. Store failures are returned wrapped
// in ErrSessionUnavailable.
func (m *SessionManager) GetOrCreateGuestSession(ctx context.Context, sessionID string) (id string, created bool, err error) {
	now := m.now()

	var current *GuestSession
	switch {
	case sessionID != "":
		current, err = m.repo.GetSession(ctx, sessionID)
	case m.policy.ResumeLatest:
		current, err = m.repo.FindMostRecentActive(ctx)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, fmt.Errorf("%w: lookup: %w", ErrSessionUnavailable, err)
	}

	if current != nil && now.Sub(current.LastActiveAt) < m.policy.TTL {
		err := m.repo.Touch(ctx, current.SessionID, now)
		if err == nil {
			return current.SessionID, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, fmt.Errorf("%w: touch: %w", ErrSessionUnavailable, err)
		}
		// swept between lookup and touch
	}

	s := &GuestSession{SessionID: NewSessionID(), LastActiveAt: now, CreatedAt: now, UpdatedAt: now}
	if err := m.repo.CreateSession(ctx, s); err != nil {
		return "", false, fmt.Errorf("%w: create: %w", ErrSessionUnavailable, err)
	}
	m.log.Debug("guest session created", zap.String("session_id", s.SessionID))
	return s.SessionID, true, nil
}

func (m *SessionManager) TouchSession(ctx context.Context, sessionID string) error {
	return m.repo.Touch(ctx, sessionID, m.now())
}

// ExpireStaleSessions archives and removes every session idle for longer than
// the TTL, a page at a time. A failure on one session is logged and the sweep
// moves on. It returns the number of sessions removed.
func (m *SessionManager) ExpireStaleSessions(ctx context.Context) int {
	now := m.now()
	cutoff := now.Add(-m.policy.TTL)

	n := 0
	var after uint64
	for ctx.Err() == nil {
		page, err := m.repo.ListExpired(ctx, cutoff, after, m.pageSize)
		if err != nil {
			m.log.Error("list expired sessions", zap.Uint64("after_id", after), zap.Error(err))
			break
		}

		for _, s := range page {
			if ctx.Err() != nil {
				break
			}
			after = s.ID
			archived, err := m.repo.ArchiveSession(ctx, s.SessionID, cutoff, now)
			switch {
			case errors.Is(err, ErrSessionTouched):
				m.log.Debug("session active again, skipping", zap.String("session_id", s.SessionID))
			case err != nil:
				m.log.Error("expire session", zap.String("session_id", s.SessionID), zap.Error(err))
			default:
				n++
				m.log.Info("session expired",
					zap.String("session_id", s.SessionID),
					zap.Int("archived_messages", archived),
				)
			}
		}
		if len(page) < m.pageSize {
			break
		}
	}
	return n
}

// PurgeOldArchives deletes archive rows past the retention window.
func (m *SessionManager) PurgeOldArchives(ctx context.Context) int64 {
	cutoff := m.now().Add(-m.policy.ArchiveRetention)
	n, err := m.repo.DeleteArchivesOlderThan(ctx, cutoff)
	if err != nil {
		m.log.Error("purge archives", zap.Error(err))
		return 0
	}
	if n > 0 {
		m.log.Info("archives purged", zap.Int64("rows", n))
	}
	return n
}
