package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/suPer8Hu/jewelry-assistant/internal/assistant"
	"github.com/suPer8Hu/jewelry-assistant/internal/catalog"
	"github.com/suPer8Hu/jewelry-assistant/internal/ratelimit"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Generator produces the assistant's reply. *assistant.Engine implements it.
type Generator interface {
	GenerateResponse(ctx context.Context, message string, history []assistant.Turn, productContext []catalog.Product) (assistant.Reply, error)
}

type Service struct {
	sessions *SessionManager
	limiter  ratelimit.Limiter
	gen      Generator
	rec      Recorder
	now      func() time.Time
	log      *zap.Logger
}

func NewService(sessions *SessionManager, limiter ratelimit.Limiter, gen Generator, rec Recorder, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		sessions: sessions,
		limiter:  limiter,
		gen:      gen,
		rec:      rec,
		now:      sessions.now,
		log:      log,
	}
}

type SendRequest struct {
	// SessionID is the id the client got back from an earlier call. Empty
	// starts a new session.
	SessionID      string
	UserID         *string
	Message        string
	History        []assistant.Turn
	ProductContext []catalog.Product
}

type SendResult struct {
	SessionID  string           `json:"session_id"`
	Reply      string           `json:"reply"`
	Intent     assistant.Intent `json:"intent"`
	NewSession bool             `json:"new_session"`
}

// SendMessage runs one chat turn: resolve the session, apply the rate limit,
// generate the reply and hand the records to the Recorder.
//
// On ErrRateLimited the result is still returned so the caller learns the
// session id and the reply to show. Cancellation of ctx returns ctx.Err();
// the failed attempt is still recorded.
func (s *Service) SendMessage(ctx context.Context, req SendRequest) (*SendResult, error) {
	sid, created, err := s.sessions.GetOrCreateGuestSession(ctx, req.SessionID)
	if err != nil {
		s.log.Error("session unavailable", zap.Error(err))
		return nil, err
	}
	// records outlive the request
	bg := context.WithoutCancel(ctx)

	if created {
		s.rec.RecordEvent(bg, s.event(sid, req.UserID, EventSessionStarted, map[string]any{
			"requested_session_id": req.SessionID,
		}))
	}

	allowed, err := s.limiter.Allow(ctx, sid)
	if err != nil {
		s.log.Warn("rate limiter unavailable, allowing request", zap.String("session_id", sid), zap.Error(err))
		allowed = true
	}
	if !allowed {
		s.rec.RecordAttempt(bg, s.attempt(sid, req.Message, RateLimitedReply, RateLimitErrorMessage))
		s.rec.RecordEvent(bg, s.event(sid, req.UserID, EventRateLimited, nil))
		return &SendResult{SessionID: sid, Reply: RateLimitedReply, NewSession: created}, ErrRateLimited
	}

	start := s.now()
	reply, err := s.gen.GenerateResponse(ctx, req.Message, req.History, req.ProductContext)
	if err != nil {
		s.rec.RecordAttempt(bg, s.attempt(sid, req.Message, "", err.Error()))
		return nil, err
	}
	latency := s.now().Sub(start)

	now := s.now()
	s.rec.RecordMessage(bg, Message{
		SessionID:   sid,
		UserID:      req.UserID,
		Message:     req.Message,
		Response:    reply.Text,
		IsProcessed: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	s.rec.RecordAttempt(bg, s.attempt(sid, req.Message, reply.Text, ""))
	s.rec.RecordEvent(bg, s.event(sid, req.UserID, EventMessageProcessed, map[string]any{
		"intent":        reply.Intent,
		"entities":      reply.Entities,
		"product_count": len(reply.Products),
		"short_circuit": reply.ShortCircuit,
		"history_len":   len(req.History),
		"latency_ms":    latency.Milliseconds(),
	}))

	return &SendResult{
		SessionID:  sid,
		Reply:      reply.Text,
		Intent:     reply.Intent,
		NewSession: created,
	}, nil
}

// ListMessages returns the session's history newest first.
func (s *Service) ListMessages(ctx context.Context, sessionID string, limit int, beforeID uint64) ([]Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.sessions.repo.ListMessages(ctx, sessionID, limit, beforeID)
}

func (s *Service) attempt(sid, msg, resp, errMsg string) Attempt {
	now := s.now()
	a := Attempt{
		SessionID: sid,
		Message:   msg,
		Response:  resp,
		Success:   errMsg == "",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errMsg != "" {
		a.ErrorMessage = &errMsg
	}
	return a
}

func (s *Service) event(sid string, userID *string, typ string, data map[string]any) AnalyticsEvent {
	e := AnalyticsEvent{SessionID: sid, EventType: typ, UserID: userID, CreatedAt: s.now()}
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			s.log.Warn("encode event data", zap.String("event_type", typ), zap.Error(err))
		} else {
			e.Data = datatypes.JSON(b)
		}
	}
	return e
}
