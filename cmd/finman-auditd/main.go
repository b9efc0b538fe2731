// Command finman-auditd consumes expense change events from AMQP and writes
// an audit trail to the log. It is the downstream half of the server's
// best-effort event publishing.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finman/internal/config"
	"finman/internal/events"
	applog "finman/internal/log"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo}).WithComponent(applog.ComponentAudit)
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the audit consumer")
		os.Exit(1)
	}

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Audit consumer started", "queue", cfg.AMQPQueue)
	err = client.Consume(ctx, func(ev events.ExpenseEvent) error {
		logger.Info("Expense event",
			"kind", ev.Kind,
			"expense_id", ev.ExpenseID,
			"user_id", ev.UserID,
			"version", ev.Version,
			"timestamp", ev.Timestamp)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("Audit consumer stopped gracefully")
}
