package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/jewelry-assistant/internal/chat"
	"github.com/suPer8Hu/jewelry-assistant/internal/config"
	"github.com/suPer8Hu/jewelry-assistant/internal/db"
	"github.com/suPer8Hu/jewelry-assistant/internal/logging"
	"github.com/suPer8Hu/jewelry-assistant/internal/sink"
	"github.com/suPer8Hu/jewelry-assistant/internal/store/rabbitmq"
	"go.uber.org/zap"
)

const (
	maxRetries = 3
	retryDelay = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("db migrate", zap.Error(err))
	}
	repo := chat.NewRepo(gdb, cfg.DBOpTimeout)

	// retries go out on their own connection
	retry, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Fatal("rabbit publisher", zap.Error(err))
	}
	defer retry.Close()

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatal("rabbit dial", zap.Error(err))
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("rabbit channel", zap.Error(err))
	}
	defer ch.Close()

	if err := rabbitmq.Declare(ch, cfg.RabbitQueue); err != nil {
		log.Fatal("queue declare", zap.Error(err))
	}

	//  strict concurrency control
	concurrency := cfg.WorkerConcurrency

	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatal("qos", zap.Error(err))
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatal("consume", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("worker started", zap.String("queue", cfg.RabbitQueue), zap.Int("concurrency", concurrency))

	h := &handler{repo: repo, retry: retry, timeout: cfg.DBOpTimeout, log: log}

	// worker pool
	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				h.handle(ctx, workerID, d)
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			log.Info("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Warn("delivery channel closed")
				close(jobs)
				wg.Wait()
				return
			}
			jobs <- d
		}
	}
}

type handler struct {
	repo    chat.Writer
	retry   *rabbitmq.Publisher
	timeout time.Duration
	log     *zap.Logger
}

func (h *handler) handle(ctx context.Context, workerID int, d amqp.Delivery) {
	rec, err := sink.Decode(d.Body)
	if err != nil {
		h.log.Error("bad message", zap.Int("worker", workerID), zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	start := time.Now()
	// finish the write even if shutdown has begun
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	err = rec.Apply(wctx, h.repo)
	cancel()
	if err == nil {
		if err := d.Ack(false); err != nil {
			h.log.Warn("ack failed", zap.Int("worker", workerID), zap.String("record_id", rec.ID), zap.Error(err))
		}
		if cost := time.Since(start); cost > 2*time.Second {
			h.log.Info("slow record", zap.String("record_id", rec.ID), zap.Duration("cost", cost))
		}
		return
	}

	attempt := rabbitmq.Attempt(d) + 1
	fields := []zap.Field{
		zap.Int("worker", workerID),
		zap.String("record_id", rec.ID),
		zap.String("kind", string(rec.Kind)),
		zap.String("session_id", rec.SessionID()),
		zap.Int("attempt", attempt),
		zap.Duration("cost", time.Since(start)),
		zap.Error(err),
	}
	if attempt > maxRetries {
		h.log.Error("record failed, dead-lettering", fields...)
		_ = d.Nack(false, false)
		return
	}
	if perr := h.retry.PublishRetry(context.WithoutCancel(ctx), d.Body, attempt, retryDelay); perr != nil {
		h.log.Error("retry publish failed, dead-lettering", append(fields, zap.NamedError("publish_error", perr))...)
		_ = d.Nack(false, false)
		return
	}
	h.log.Warn("record failed, retrying", fields...)
	_ = d.Ack(false)
}
