package ratelimit

import (
	"context"
	"sync"
	"time"
)

// ring holds the last Max accepted request times of one key.
type ring struct {
	times []time.Time
	next  int
	size  int
}

func (r *ring) oldest() time.Time {
	if r.size < len(r.times) {
		return r.times[0]
	}
	return r.times[r.next]
}

func (r *ring) newest() time.Time {
	i := r.next - 1
	if i < 0 {
		i = len(r.times) - 1
	}
	return r.times[i]
}

func (r *ring) push(t time.Time) {
	r.times[r.next] = t
	r.next = (r.next + 1) % len(r.times)
	if r.size < len(r.times) {
		r.size++
	}
}

// Memory is an in-process limiter. Its state does not survive restarts and is
// not shared between replicas; use Redis for that.
type Memory struct {
	policy Policy
	now    func() time.Time

	mu   sync.Mutex
	keys map[string]*ring
}

func NewMemory(p Policy, now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{policy: p.normalized(), now: now, keys: make(map[string]*ring)}
}

func (m *Memory) Allow(ctx context.Context, key string) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.keys[key]
	if !ok {
		r = &ring{times: make([]time.Time, m.policy.Max)}
		m.keys[key] = r
	}
	if r.size == len(r.times) && now.Sub(r.oldest()) < m.policy.Window {
		return false, nil
	}
	r.push(now)
	return true, nil
}

// Prune drops keys whose newest request is older than the window and returns
// how many were removed.
func (m *Memory) Prune() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for k, r := range m.keys {
		if r.size == 0 || now.Sub(r.newest()) >= m.policy.Window {
			delete(m.keys, k)
			n++
		}
	}
	return n
}

// Len reports how many keys are tracked.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}
