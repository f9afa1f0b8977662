// Package sink moves chat records off the request path.
//
// Async is the chat.Recorder the API uses: it buffers records and hands them
// to a Deliverer on background goroutines. Store writes them to the database
// in-process; Queue publishes them to RabbitMQ for cmd/worker.
package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/suPer8Hu/jewelry-assistant/internal/chat"
	"github.com/suPer8Hu/jewelry-assistant/internal/common"
)

type Kind string

const (
	KindMessage Kind = "message"
	KindAttempt Kind = "attempt"
	KindEvent   Kind = "event"
)

// Record is the envelope for one pending write. Exactly one payload is set.
type Record struct {
	ID      string               `json:"id"`
	Kind    Kind                 `json:"kind"`
	Message *chat.Message        `json:"message,omitempty"`
	Attempt *chat.Attempt        `json:"attempt,omitempty"`
	Event   *chat.AnalyticsEvent `json:"event,omitempty"`
}

func newRecord(k Kind) Record {
	// the id only correlates log lines; an empty one is harmless
	id, _ := common.NewULID()
	return Record{ID: id, Kind: k}
}

func MessageRecord(m chat.Message) Record {
	r := newRecord(KindMessage)
	r.Message = &m
	return r
}

func AttemptRecord(a chat.Attempt) Record {
	r := newRecord(KindAttempt)
	r.Attempt = &a
	return r
}

func EventRecord(e chat.AnalyticsEvent) Record {
	r := newRecord(KindEvent)
	r.Event = &e
	return r
}

func (r Record) SessionID() string {
	switch {
	case r.Message != nil:
		return r.Message.SessionID
	case r.Attempt != nil:
		return r.Attempt.SessionID
	case r.Event != nil:
		return r.Event.SessionID
	}
	return ""
}

// Apply performs the write the record describes.
func (r Record) Apply(ctx context.Context, w chat.Writer) error {
	switch {
	case r.Kind == KindMessage && r.Message != nil:
		return w.InsertMessage(ctx, r.Message)
	case r.Kind == KindAttempt && r.Attempt != nil:
		return w.InsertAttempt(ctx, r.Attempt, chat.AttemptTime(*r.Attempt))
	case r.Kind == KindEvent && r.Event != nil:
		return w.InsertEvent(ctx, r.Event)
	default:
		return fmt.Errorf("sink: malformed %q record %s", r.Kind, r.ID)
	}
}

func Decode(body []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(body, &r); err != nil {
		return Record{}, fmt.Errorf("sink: decode record: %w", err)
	}
	return r, nil
}
