package sink

import (
	"context"
	"encoding/json"

	"github.com/suPer8Hu/jewelry-assistant/internal/chat"
)

type Deliverer interface {
	Deliver(ctx context.Context, r Record) error
}

// Store writes records straight to the database.
type Store struct {
	w chat.Writer
}

func NewStore(w chat.Writer) *Store { return &Store{w: w} }

func (s *Store) Deliver(ctx context.Context, r Record) error {
	return r.Apply(ctx, s.w)
}

// Publisher is the part of rabbitmq.Publisher the queue sink needs.
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

// Queue publishes records for cmd/worker to apply.
type Queue struct {
	pub Publisher
}

func NewQueue(pub Publisher) *Queue { return &Queue{pub: pub} }

func (q *Queue) Deliver(ctx context.Context, r Record) error {
	body, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return q.pub.Publish(ctx, body)
}
