package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fjod/storefront/internal/config"
	h "github.com/fjod/storefront/internal/http"
	"github.com/fjod/storefront/internal/lock"
	"github.com/fjod/storefront/internal/logger"
	"github.com/fjod/storefront/internal/publisher"
	"github.com/fjod/storefront/internal/repository"
	"github.com/fjod/storefront/internal/service"
)

type stores struct {
	products repository.ProductRepository
	carts    repository.CartRepository
	orders   repository.OrderRepository
	status   repository.StatusReporter
	close    func(context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg := logger.New(logger.Options{Service: "storefront", Env: cfg.Env, Level: cfg.LogLevel})

	st, err := openStores(cfg)
	if err != nil {
		lg.Error("failed to open store", logger.Err(err))
		os.Exit(1)
	}

	locker, closeLocker := newLocker(cfg, lg)

	pub := publisher.NewNoop()
	if len(cfg.Kafka.Brokers) > 0 {
		pub = publisher.NewKafkaPublisher(lg, cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		lg.Info("order events enabled", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("topic", cfg.Kafka.Topic))
	}

	catalog := service.NewCatalogService(st.products, lg)
	cart := service.NewCartService(st.carts, catalog, locker, lg)
	checkout := service.NewCheckoutService(cart, st.orders, pub,
		service.CheckoutOptions{GuardedClear: cfg.Checkout.GuardedClear}, lg)
	orders := service.NewOrderService(st.orders)

	timeout := cfg.HTTP.RequestTimeout
	router := h.NewRouter(lg, h.Handlers{
		Products: h.NewProductHandler(catalog, timeout),
		Cart:     h.NewCartHandler(cart, timeout),
		Checkout: h.NewCheckoutHandler(checkout, timeout),
		Orders:   h.NewOrdersHandler(orders, timeout),
		Status:   h.NewStatusHandler(st.status, cfg.Store.DatabaseURL != "", timeout),
	}, timeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("storefront starting", slog.String("addr", srv.Addr), slog.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server error", logger.Err(err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("server forced to shutdown", logger.Err(err))
	}
	if err := pub.Close(); err != nil {
		lg.Warn("publisher close error", logger.Err(err))
	}
	closeLocker()
	if err := st.close(ctx); err != nil {
		lg.Warn("store close error", logger.Err(err))
	}

	lg.Info("server exited")
}

func openStores(cfg *config.Config) (*stores, error) {
	if cfg.Store.Driver == config.DriverMemory {
		mem := repository.NewMemoryStore()
		return &stores{
			products: mem,
			carts:    mem,
			orders:   mem,
			status:   mem,
			close:    func(context.Context) error { return nil },
		}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := repository.ConnectMongoDB(ctx, cfg.Store.DatabaseURL, cfg.Store.DatabaseName)
	if err != nil {
		return nil, err
	}
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}

	return &stores{
		products: repository.NewProductRepository(db),
		carts:    repository.NewCartRepository(db),
		orders:   repository.NewOrderRepository(db),
		status:   repository.NewMongoStatus(db),
		close:    db.Client().Disconnect,
	}, nil
}

// newLocker falls back to a no-op lock when Redis is absent or unreachable.
func newLocker(cfg *config.Config, lg *slog.Logger) (lock.Locker, func()) {
	if cfg.Redis.Addr == "" {
		return lock.NewNoop(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		lg.Warn("redis unreachable, session lock disabled", slog.String("addr", cfg.Redis.Addr), logger.Err(err))
		_ = client.Close()
		return lock.NewNoop(), func() {}
	}

	lg.Info("session lock enabled", slog.String("addr", cfg.Redis.Addr), slog.Duration("ttl", cfg.Redis.LockTTL))
	return lock.NewRedisLocker(client, cfg.Redis.LockTTL), func() { _ = client.Close() }
}
