package chat

import "errors"

// Only these two errors abort a chat request. Everything else degrades to a
// fallback reply or a log line.
var (
	ErrSessionUnavailable = errors.New("chat: session unavailable")
	ErrRateLimited        = errors.New("chat: rate limit exceeded")
)

// User-facing copy for the two aborting errors.
const (
	SessionUnavailableReply = "Sorry, we couldn't start the chat right now. Please try again in a moment."
	RateLimitedReply        = "You're sending messages a bit quickly. Please wait a moment and try again."
)

// RateLimitErrorMessage is stored on the failed attempt row.
const RateLimitErrorMessage = "Rate limit exceeded"
