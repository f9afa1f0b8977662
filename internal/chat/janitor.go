package chat

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Pruner drops idle rate-limit state. ratelimit.Memory implements it.
type Pruner interface {
	Prune() int
}

// Janitor runs the hourly expiry sweep and the daily archive purge until its
// context ends. Neither sweep ever blocks request handling.
type Janitor struct {
	sessions    *SessionManager
	pruner      Pruner
	expiryEvery time.Duration
	purgeEvery  time.Duration
	log         *zap.Logger
}

func NewJanitor(sessions *SessionManager, pruner Pruner, expiryEvery, purgeEvery time.Duration, log *zap.Logger) *Janitor {
	if expiryEvery <= 0 {
		expiryEvery = time.Hour
	}
	if purgeEvery <= 0 {
		purgeEvery = 24 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Janitor{
		sessions:    sessions,
		pruner:      pruner,
		expiryEvery: expiryEvery,
		purgeEvery:  purgeEvery,
		log:         log,
	}
}

func (j *Janitor) Run(ctx context.Context) {
	expiry := time.NewTicker(j.expiryEvery)
	defer expiry.Stop()
	purge := time.NewTicker(j.purgeEvery)
	defer purge.Stop()

	j.log.Info("janitor started",
		zap.Duration("expiry_every", j.expiryEvery),
		zap.Duration("purge_every", j.purgeEvery),
	)
	for {
		select {
		case <-ctx.Done():
			j.log.Info("janitor stopped")
			return
		case <-expiry.C:
			n := j.sessions.ExpireStaleSessions(ctx)
			pruned := 0
			if j.pruner != nil {
				pruned = j.pruner.Prune()
			}
			j.log.Debug("expiry sweep done", zap.Int("expired", n), zap.Int("limiter_keys_pruned", pruned))
		case <-purge.C:
			j.sessions.PurgeOldArchives(ctx)
		}
	}
}
