// Package app assembles the chat stack from configuration. The binaries in
// cmd/ differ only in which Recorder they put on top.
package app

import (
	"context"
	"fmt"

	"github.com/suPer8Hu/jewelry-assistant/internal/assistant"
	"github.com/suPer8Hu/jewelry-assistant/internal/catalog"
	"github.com/suPer8Hu/jewelry-assistant/internal/chat"
	"github.com/suPer8Hu/jewelry-assistant/internal/config"
	"github.com/suPer8Hu/jewelry-assistant/internal/db"
	"github.com/suPer8Hu/jewelry-assistant/internal/ratelimit"
	"github.com/suPer8Hu/jewelry-assistant/internal/store/redisstore"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Cfg      config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Catalog  *catalog.Repo
	ChatRepo *chat.Repo
	Sessions *chat.SessionManager
	Limiter  ratelimit.Limiter
	// ClientLimiter caps requests per client IP; nil when disabled.
	ClientLimiter ratelimit.Limiter
	// Pruner is set when the limiters keep state in process.
	Pruner chat.Pruner
	Engine *assistant.Engine

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	a := &App{Cfg: cfg, Log: log, DB: gdb}
	a.closers = append(a.closers, func() error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	policy := ratelimit.Policy{Max: cfg.RateLimitMax, Window: cfg.RateLimitWindow}
	clientPolicy := ratelimit.Policy{Max: cfg.ClientRateLimitMax, Window: cfg.RateLimitWindow}
	switch cfg.RateLimitBackend {
	case config.BackendRedis:
		rds, err := redisstore.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, rds.Close)
		a.Limiter = ratelimit.NewRedis(rds.Client(), policy, nil)
		if cfg.ClientRateLimitMax > 0 {
			a.ClientLimiter = ratelimit.NewRedis(rds.Client(), clientPolicy, nil)
		}
	default:
		mem := ratelimit.NewMemory(policy, nil)
		a.Limiter = mem
		pruners := pruneAll{mem}
		if cfg.ClientRateLimitMax > 0 {
			client := ratelimit.NewMemory(clientPolicy, nil)
			a.ClientLimiter = client
			pruners = append(pruners, client)
		}
		a.Pruner = pruners
	}

	a.Catalog = catalog.NewRepo(gdb, cfg.DBOpTimeout)
	a.ChatRepo = chat.NewRepo(gdb, cfg.DBOpTimeout)
	a.Sessions = chat.NewSessionManager(a.ChatRepo, chat.SessionPolicy{
		TTL:              cfg.SessionTTL,
		ArchiveRetention: cfg.ArchiveRetention,
		ResumeLatest:     cfg.ResumeLatestSession,
	}, nil, log.Named("sessions"))
	a.Engine = assistant.NewEngine(a.Catalog, catalog.StaticProducts, cfg.CatalogSearchLimit, log.Named("assistant"))
	return a, nil
}

func (a *App) Service(rec chat.Recorder) *chat.Service {
	return chat.NewService(a.Sessions, a.Limiter, a.Engine, rec, a.Log.Named("chat"))
}

type pruneAll []chat.Pruner

func (p pruneAll) Prune() int {
	n := 0
	for _, pr := range p {
		n += pr.Prune()
	}
	return n
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}
