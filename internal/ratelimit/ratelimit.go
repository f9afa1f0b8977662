// Package ratelimit bounds how often a single chat session may send messages.
//
// The policy is a sliding window: a key may make at most Max requests in any
// Window-long interval. Keys never share state.
package ratelimit

import (
	"context"
	"time"
)

type Limiter interface {
	// Allow records a request for key and reports whether it is within policy.
	// A rejected request is not recorded.
	Allow(ctx context.Context, key string) (bool, error)
}

type Policy struct {
	Max    int
	Window time.Duration
}

// DefaultPolicy is five requests per minute.
var DefaultPolicy = Policy{Max: 5, Window: time.Minute}

func (p Policy) normalized() Policy {
	if p.Max <= 0 {
		p.Max = DefaultPolicy.Max
	}
	if p.Window <= 0 {
		p.Window = DefaultPolicy.Window
	}
	return p
}
