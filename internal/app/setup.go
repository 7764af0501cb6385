// Package app wires the stores, transports and infrastructure of the shop service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/flatshop/internal/cart"
	"github.com/abgdnv/flatshop/internal/config"
	"github.com/abgdnv/flatshop/internal/product"
	"github.com/abgdnv/flatshop/internal/storage"
	"github.com/abgdnv/flatshop/internal/transport/rest"
	"github.com/abgdnv/flatshop/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/flatshop/pkg/config"
	"github.com/abgdnv/flatshop/pkg/messaging"
	pnats "github.com/abgdnv/flatshop/pkg/nats"
	"github.com/abgdnv/flatshop/pkg/server"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName identifies the service in telemetry and the gRPC health registry.
const ServiceName = "shop"

type Dependencies struct {
	ProductStore product.ProductStore
	CartStore    cart.CartStore
	Logger       *slog.Logger
	StrictErrors bool

	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	MetricsPath    string
	Health         *health.Server
}

// Repositories holds the persistence backends of both collections.
type Repositories struct {
	Products storage.Repository[product.Product]
	Carts    storage.Repository[cart.Cart]
}

// SetupRepositories opens the configured storage backend.
// The returned close function releases the backend and is never nil.
func SetupRepositories(ctx context.Context, cfg pkgconfig.StorageConfig, logger *slog.Logger) (*Repositories, func(), error) {
	switch cfg.Driver {
	case pkgconfig.StorageDriverPostgres:
		if err := storage.Migrate(cfg.Database.URL); err != nil {
			return nil, nil, err
		}
		dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Successfully connected to the database!")
		return &Repositories{
			Products: storage.NewPgRepository[product.Product](dbPool, storage.ProductsCollection),
			Carts:    storage.NewPgRepository[cart.Cart](dbPool, storage.CartsCollection),
		}, dbPool.Close, nil
	case pkgconfig.StorageDriverFile:
		products, err := storage.NewFileRepository[product.Product](cfg.File.Products)
		if err != nil {
			return nil, nil, err
		}
		carts, err := storage.NewFileRepository[cart.Cart](cfg.File.Carts)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using file storage", "products", products.Path(), "carts", carts.Path())
		return &Repositories{Products: products, Carts: carts}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
	}
}

// SetupPublisher connects to JetStream when events are enabled and returns a
// circuit-breaking publisher. With events disabled it returns a NopPublisher.
func SetupPublisher(ctx context.Context, cfg pkgconfig.EventsConfig, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.Enabled {
		return messaging.NopPublisher{}, func() {}, nil
	}
	nc, err := pnats.NewClient(cfg.Nats, logger)
	if err != nil {
		return nil, nil, err
	}
	js, err := pnats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	if err := pnats.EnsureStream(ctx, js, cfg.Stream, "shop.products.*", "shop.carts.*"); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Publishing events to NATS", "url", nc.ConnectedUrl(), "stream", cfg.Stream)

	publisher := messaging.NewBreakerPublisher("nats-publisher",
		pnats.NewNatsPublisher(js, cfg.Resilience.Retry),
		cfg.Resilience.CircuitBreaker)
	return publisher, func() {
		if err := nc.Drain(); err != nil {
			logger.Warn("Failed to drain NATS connection", "error", err)
		}
	}, nil
}

func SetupDependencies(repos *Repositories, publisher messaging.Publisher, cfg *config.Config, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		ProductStore: product.NewStore(repos.Products, product.WithPublisher(publisher), product.WithLogger(logger)),
		CartStore:    cart.NewStore(repos.Carts, cart.WithPublisher(publisher), cart.WithLogger(logger)),
		Logger:       logger,
		StrictErrors: cfg.API.StrictErrors,
		MetricsPath:  cfg.Telemetry.Metrics.Path,
		Health:       health.NewServer(),
	}
}

// SetupHttpHandler initializes the router, routes and HTTP instrumentation.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return otelhttp.NewHandler(mux, ServiceName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	handler := rest.NewHandler(deps.ProductStore, deps.CartStore, deps.StrictErrors, deps.Logger)
	handler.RegisterRoutes(mux)
	if deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, deps.MetricsPath, deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures the HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}

// SetupGrpcServer creates the gRPC server exposing the health service.
// Both the overall status and the shop service start as SERVING.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	deps.Health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	deps.Health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, server.WithHealth(deps.Health))
}
