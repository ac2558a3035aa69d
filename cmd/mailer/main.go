package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-snack-orders/internal/config"
	kafkax "github.com/ariefcatur/go-snack-orders/internal/kafka"
	"github.com/ariefcatur/go-snack-orders/internal/mail"
	"github.com/ariefcatur/go-snack-orders/internal/orders"
	"github.com/ariefcatur/go-snack-orders/internal/postgres"
	"github.com/ariefcatur/go-snack-orders/internal/redisx"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// mailer turns order events into notification mails for the shop owner.
func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		slog.Error("db connect", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		slog.Error("db migrate", "error", err)
		os.Exit(1)
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	n := &mail.Notifier{Repo: &mail.Repo{DB: db}, Redis: rdb, To: cfg.MailTo}

	g, gctx := errgroup.WithContext(ctx)
	for _, topic := range []string{orders.TopicOrderCreated, orders.TopicOrderStatusChanged, orders.TopicOrderDeleted} {
		c := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.MailerGroup, topic, cfg.MailerWorkers)
		g.Go(func() error {
			slog.Info("mailer consumer started", "group", cfg.MailerGroup, "topic", c.Topic(), "workers", cfg.MailerWorkers)
			return c.Start(gctx, n.HandleEvent)
		})
	}

	if err := g.Wait(); err != nil {
		slog.Error("consumer exit", "error", err)
		os.Exit(1)
	}
	slog.Info("mailer stopped")
}
