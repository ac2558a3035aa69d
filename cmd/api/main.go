package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-snack-orders/internal/config"
	"github.com/ariefcatur/go-snack-orders/internal/httpx"
	"github.com/ariefcatur/go-snack-orders/internal/inventory"
	kafkax "github.com/ariefcatur/go-snack-orders/internal/kafka"
	"github.com/ariefcatur/go-snack-orders/internal/orders"
	"github.com/ariefcatur/go-snack-orders/internal/postgres"
	"github.com/ariefcatur/go-snack-orders/internal/redisx"
	"github.com/ariefcatur/go-snack-orders/internal/referral"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
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

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	created := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	changed := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024)
	deleted := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderDeleted, 256)
	producers := []*kafkax.Producer{created, changed, deleted}
	for _, p := range producers {
		p.Start(ctx)
	}

	invStore := &inventory.Store{DB: db}
	refRepo := &referral.Repo{DB: db}
	stock := &inventory.Reader{Store: invStore, Redis: rdb, Timeout: 10 * time.Second}
	svc := &orders.Service{
		DB:            db,
		Orders:        &orders.Repo{DB: db},
		Inventory:     invStore,
		Referrals:     refRepo,
		Redis:         rdb,
		Stock:         stock,
		Created:       created,
		StatusChanged: changed,
		Deleted:       deleted,
		Name:          cfg.ServiceName,
		Location:      cfg.ShopLocation,
	}

	if cfg.AdminPasswordHash == "" {
		slog.Warn("ADMIN_PASSWORD_HASH not set, admin routes are locked")
	}

	router := httpx.NewRouter()
	(&httpx.OrdersHandler{Orders: svc, Stock: stock, Referrals: refRepo}).Register(router)
	(&httpx.AdminHandler{
		Orders:       svc,
		Inventory:    invStore,
		Stock:        stock,
		Email:        cfg.AdminEmail,
		PasswordHash: cfg.AdminPasswordHash,
	}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		slog.Info("HTTP listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("listen", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range producers {
		p.Close()
	}
	for _, p := range producers {
		p.WaitClosed()
	}
	cancel()
}
