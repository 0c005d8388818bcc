package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/vitrine-backend/api/controllers"
	"github.com/angelmondragon/vitrine-backend/api/routes"
	"github.com/angelmondragon/vitrine-backend/internal/media"
	"github.com/angelmondragon/vitrine-backend/internal/notify"
	"github.com/angelmondragon/vitrine-backend/internal/orders"
	"github.com/angelmondragon/vitrine-backend/internal/products"
	"github.com/angelmondragon/vitrine-backend/internal/sellers"
	"github.com/angelmondragon/vitrine-backend/internal/shop"
	"github.com/angelmondragon/vitrine-backend/pkg/clientstore"
	"github.com/angelmondragon/vitrine-backend/pkg/config"
	"github.com/angelmondragon/vitrine-backend/pkg/db"
	"github.com/angelmondragon/vitrine-backend/pkg/db/models"
	"github.com/angelmondragon/vitrine-backend/pkg/env"
	"github.com/angelmondragon/vitrine-backend/pkg/instance"
	"github.com/angelmondragon/vitrine-backend/pkg/logger"
	"github.com/angelmondragon/vitrine-backend/pkg/metrics"
	"github.com/angelmondragon/vitrine-backend/pkg/migrate"
	mongostore "github.com/angelmondragon/vitrine-backend/pkg/mongo"
	"github.com/angelmondragon/vitrine-backend/pkg/pubsub"
	"github.com/angelmondragon/vitrine-backend/pkg/redis"
	"github.com/angelmondragon/vitrine-backend/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

type orderStore interface {
	Create(ctx context.Context, order *models.Order) error
}

// storage is the catalog backend selected by VITRINE_STORE_BACKEND.
type storage struct {
	sellers  sellers.Service
	products products.Service
	orders   orderStore
	pinger   controllers.Pinger
	closer   io.Closer
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i].Close())
		}
	}()

	store, err := openStorage(ctx, cfg, logg)
	if err != nil {
		return err
	}
	closers = append(closers, store.closer)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	closers = append(closers, redisClient)

	checks := map[string]controllers.Pinger{
		cfg.Store.Backend: store.pinger,
		"redis":           redisClient,
	}

	var orderEvents notify.Notifier
	if cfg.PubSub.Enabled() {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return fmt.Errorf("bootstrap pubsub: %w", err)
		}
		closers = append(closers, psClient)
		checks["pubsub"] = psClient

		events, err := notify.NewPubSub(psClient.OrdersPublisher())
		if err != nil {
			return fmt.Errorf("build order events: %w", err)
		}
		orderEvents = events
	}

	var mediaService media.Service
	if cfg.GCS.Enabled() {
		gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		if err != nil {
			return fmt.Errorf("bootstrap gcs: %w", err)
		}
		closers = append(closers, gcsClient)
		checks["gcs"] = gcsClient

		mediaService, err = media.NewService(gcsClient, int64(cfg.GCS.MaxUploadMB)<<20)
		if err != nil {
			return fmt.Errorf("build media service: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	shopService, err := shop.NewService(shop.Config{
		Sellers:         store.sellers,
		Products:        store.products,
		Orders:          store.orders,
		Store:           clientstore.NewRedis(redisClient),
		Notifier:        orderEvents,
		Logger:          logg,
		Metrics:         metrics.NewCheckoutMetrics(registry),
		DurableTTL:      cfg.ClientStore.DurableTTL,
		SessionTTL:      cfg.ClientStore.SessionTTL,
		ProcessingTTL:   cfg.Checkout.ProcessingTTL,
		HandoffGrace:    cfg.WhatsApp.HandoffGrace,
		DefaultWhatsApp: cfg.WhatsApp.DefaultNumber,
	})
	if err != nil {
		return fmt.Errorf("build shop service: %w", err)
	}

	addr := ":" + env.First(cfg.App.Port, "PORT")
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"backend":  cfg.Store.Backend,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, checks, redisClient, registry, shopService, store.sellers, mediaService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStorage(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*storage, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendMongo:
		client, err := mongostore.New(ctx, cfg.Mongo, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap mongo: %w", err)
		}
		return buildStorage(client, client, logg,
			sellers.NewMongoRepository(client),
			products.NewMongoRepository(client),
			orders.NewMongoRepository(client),
		)
	default:
		client, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
			return nil, multierr.Append(fmt.Errorf("run dev migrations: %w", err), client.Close())
		}
		return buildStorage(client, client, logg,
			sellers.NewRepository(client.DB()),
			products.NewRepository(client.DB()),
			orders.NewRepository(client.DB()),
		)
	}
}

type sellerRepo interface {
	FindBySlug(ctx context.Context, slug string) (*models.Seller, error)
	FindByUID(ctx context.Context, uid string) (*models.Seller, error)
	Create(ctx context.Context, seller *models.Seller) error
}

type productRepo interface {
	ListBySellerID(ctx context.Context, sellerID uuid.UUID) ([]models.Product, error)
	FindBySellerAndID(ctx context.Context, sellerID uuid.UUID, id int64) (*models.Product, error)
}

func buildStorage(pinger controllers.Pinger, closer io.Closer, logg *logger.Logger, sellerRepo sellerRepo, productRepo productRepo, orderRepo orderStore) (*storage, error) {
	sellerService, err := sellers.NewService(sellerRepo, logg)
	if err != nil {
		return nil, multierr.Append(err, closer.Close())
	}
	productService, err := products.NewService(productRepo)
	if err != nil {
		return nil, multierr.Append(err, closer.Close())
	}
	return &storage{
		sellers:  sellerService,
		products: productService,
		orders:   orderRepo,
		pinger:   pinger,
		closer:   closer,
	}, nil
}
