package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/jewelry-assistant/internal/app"
	"github.com/suPer8Hu/jewelry-assistant/internal/chat"
	"github.com/suPer8Hu/jewelry-assistant/internal/config"
	"github.com/suPer8Hu/jewelry-assistant/internal/httpapi"
	"github.com/suPer8Hu/jewelry-assistant/internal/httpapi/handlers"
	"github.com/suPer8Hu/jewelry-assistant/internal/logging"
	"github.com/suPer8Hu/jewelry-assistant/internal/sink"
	"github.com/suPer8Hu/jewelry-assistant/internal/store/rabbitmq"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	var deliverer sink.Deliverer
	switch cfg.SinkBackend {
	case config.BackendRabbitMQ:
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			return fmt.Errorf("rabbit publisher: %w", err)
		}
		defer pub.Close()
		deliverer = sink.NewQueue(pub)
	default:
		deliverer = sink.NewStore(a.ChatRepo)
	}
	rec := sink.NewAsync(deliverer, cfg.SinkBuffer, cfg.SinkWorkers, cfg.DBOpTimeout, log.Named("sink"))
	// runs after the server stops, before the DB closes
	defer rec.Close()

	go chat.NewJanitor(a.Sessions, a.Pruner, cfg.ExpiryInterval, cfg.PurgeInterval, log.Named("janitor")).Run(ctx)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handlers.NewHandler(cfg, a.Service(rec), a.Sessions, a.ChatRepo, log)
	h.ClientLimiter = a.ClientLimiter
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(h, log.Named("http")),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("db_driver", cfg.DBDriver),
			zap.String("rate_limit_backend", cfg.RateLimitBackend),
			zap.String("sink_backend", cfg.SinkBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
