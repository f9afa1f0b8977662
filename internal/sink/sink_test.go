package sink

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/jewelry-assistant/internal/chat"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []chat.Message
	attempts []chat.Attempt
	touched  []time.Time
	events   []chat.AnalyticsEvent
	err      error
}

func (w *fakeWriter) InsertMessage(_ context.Context, m *chat.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, *m)
	return nil
}

func (w *fakeWriter) InsertAttempt(_ context.Context, a *chat.Attempt, now time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.attempts = append(w.attempts, *a)
	w.touched = append(w.touched, now)
	return nil
}

func (w *fakeWriter) InsertEvent(_ context.Context, e *chat.AnalyticsEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.events = append(w.events, *e)
	return nil
}

// gate blocks every delivery until released.
type gate struct {
	started chan struct{}
	release chan struct{}
	next    Deliverer
}

func (g *gate) Deliver(ctx context.Context, r Record) error {
	g.started <- struct{}{}
	<-g.release
	return g.next.Deliver(ctx, r)
}

type capturePublisher struct{ bodies [][]byte }

func (p *capturePublisher) Publish(_ context.Context, body []byte) error {
	p.bodies = append(p.bodies, body)
	return nil
}

func TestAsync_DeliversEverythingBeforeClose(t *testing.T) {
	w := &fakeWriter{}
	a := NewAsync(NewStore(w), 16, 2, time.Second, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		a.RecordMessage(ctx, chat.Message{SessionID: "guest_a", Message: "m"})
	}
	a.RecordAttempt(ctx, chat.Attempt{SessionID: "guest_a"})
	a.RecordEvent(ctx, chat.AnalyticsEvent{SessionID: "guest_a", EventType: chat.EventMessageProcessed})
	a.Close()

	assert.Len(t, w.messages, 5)
	assert.Len(t, w.attempts, 1)
	assert.Len(t, w.events, 1)
	assert.Zero(t, a.Dropped())
}

func TestAsync_DropsWhenBufferFull(t *testing.T) {
	w := &fakeWriter{}
	g := &gate{started: make(chan struct{}, 4), release: make(chan struct{}), next: NewStore(w)}
	a := NewAsync(g, 1, 1, time.Second, nil)
	ctx := context.Background()

	a.RecordEvent(ctx, chat.AnalyticsEvent{EventType: "one"})
	<-g.started // worker is now holding the first record
	a.RecordEvent(ctx, chat.AnalyticsEvent{EventType: "two"})
	a.RecordEvent(ctx, chat.AnalyticsEvent{EventType: "three"})

	assert.EqualValues(t, 1, a.Dropped())

	close(g.release)
	a.Close()
	require.Len(t, w.events, 2)
	assert.Equal(t, "one", w.events[0].EventType)
	assert.Equal(t, "two", w.events[1].EventType)
}

func TestAsync_FailuresAreCountedNotRaised(t *testing.T) {
	w := &fakeWriter{err: errors.New("db down")}
	a := NewAsync(NewStore(w), 4, 1, time.Second, nil)

	a.RecordMessage(context.Background(), chat.Message{SessionID: "guest_a"})
	a.Close()
	assert.EqualValues(t, 1, a.Failed())

	a.RecordMessage(context.Background(), chat.Message{SessionID: "guest_a"})
	assert.EqualValues(t, 1, a.Dropped(), "records after Close are dropped")
}

func TestQueue_RecordSurvivesTheWire(t *testing.T) {
	pub := &capturePublisher{}
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := "Rate limit exceeded"

	require.NoError(t, NewQueue(pub).Deliver(context.Background(), AttemptRecord(chat.Attempt{
		SessionID:    "guest_a",
		Message:      "hi",
		Success:      false,
		ErrorMessage: &msg,
		CreatedAt:    at,
	})))
	require.Len(t, pub.bodies, 1)

	rec, err := Decode(pub.bodies[0])
	require.NoError(t, err)
	assert.Equal(t, KindAttempt, rec.Kind)
	assert.Len(t, rec.ID, 26)

	w := &fakeWriter{}
	require.NoError(t, rec.Apply(context.Background(), w))
	require.Len(t, w.attempts, 1)
	assert.Equal(t, "guest_a", w.attempts[0].SessionID)
	require.NotNil(t, w.attempts[0].ErrorMessage)
	assert.Equal(t, msg, *w.attempts[0].ErrorMessage)
	assert.True(t, w.touched[0].Equal(at))
}

func TestRecord_MalformedIsRejected(t *testing.T) {
	err := Record{ID: "x", Kind: KindMessage}.Apply(context.Background(), &fakeWriter{})
	assert.Error(t, err)

	_, err = Decode([]byte("{not json"))
	assert.Error(t, err)
}
