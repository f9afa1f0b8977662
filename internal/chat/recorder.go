package chat

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Recorder takes chat records off the request path. Implementations must not
// block for long and never report failures to the caller; they log them.
type Recorder interface {
	RecordMessage(ctx context.Context, m Message)
	RecordAttempt(ctx context.Context, a Attempt)
	RecordEvent(ctx context.Context, e AnalyticsEvent)
}

// Writer is the storage side of a Recorder. *Repo implements it.
type Writer interface {
	InsertMessage(ctx context.Context, m *Message) error
	InsertAttempt(ctx context.Context, a *Attempt, now time.Time) error
	InsertEvent(ctx context.Context, e *AnalyticsEvent) error
}

var _ Writer = (*Repo)(nil)

// DirectRecorder writes synchronously. Used by the CLI and in tests where the
// caller wants rows present as soon as SendMessage returns.
type DirectRecorder struct {
	w   Writer
	log *zap.Logger
}

func NewDirectRecorder(w Writer, log *zap.Logger) *DirectRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &DirectRecorder{w: w, log: log}
}

func (d *DirectRecorder) RecordMessage(ctx context.Context, m Message) {
	if err := d.w.InsertMessage(ctx, &m); err != nil {
		d.log.Error("record message", zap.String("session_id", m.SessionID), zap.Error(err))
	}
}

func (d *DirectRecorder) RecordAttempt(ctx context.Context, a Attempt) {
	if err := d.w.InsertAttempt(ctx, &a, AttemptTime(a)); err != nil {
		d.log.Error("record attempt", zap.String("session_id", a.SessionID), zap.Error(err))
	}
}

func (d *DirectRecorder) RecordEvent(ctx context.Context, e AnalyticsEvent) {
	if err := d.w.InsertEvent(ctx, &e); err != nil {
		d.log.Error("record event", zap.String("event_type", e.EventType), zap.Error(err))
	}
}

// AttemptTime is the instant an attempt refreshes its session to.
func AttemptTime(a Attempt) time.Time {
	if a.CreatedAt.IsZero() {
		return time.Now()
	}
	return a.CreatedAt
}
