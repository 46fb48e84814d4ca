// Package app wires configuration, storage, domain services and the HTTP
// server into a runnable API process.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/ulule/limiter/v3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/keoshop/storefront/internal/cache"
	"github.com/keoshop/storefront/internal/domain/order"
	"github.com/keoshop/storefront/internal/domain/promotion"
	"github.com/keoshop/storefront/internal/handler"
	"github.com/keoshop/storefront/internal/storage/postgres"
	"github.com/keoshop/storefront/pkg/health"
	"github.com/keoshop/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck("postgres", pool.Ping))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Read cache: Redis when configured, no-op otherwise. A configured Redis
	// joins the readiness checks alongside Postgres.
	var readCache cache.Cache = cache.Noop{}
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisAddr, lg)
		if err != nil {
			return errors.Wrap(err, "connect redis")
		}
		defer func() {
			_ = redisCache.Close()
		}()
		readCache = redisCache
		healthSvc.AddReadinessCheck("redis", time.Second, health.PingCheck("redis", redisCache.Ping))
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	orderRepo := postgres.NewOrderRepository(pool)
	promotionRepo := postgres.NewPromotionRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	postRepo := postgres.NewPostRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	apikeyRepo := postgres.NewAPIKeyRepository(pool)

	// Domain services.
	orderService := order.NewService(orderRepo)
	promotionService := promotion.NewService(promotionRepo)

	// HTTP engine.
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		httpmiddleware.Logging(lg),
		httpmiddleware.Recovery(),
		httpmiddleware.RequestID(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins: cfg.CORS.Origins,
			AllowHeaders: []string{"Content-Type", "Authorization", "X-API-Key"},
			MaxAge:       86400,
		}),
		httpmiddleware.RateLimit(limiter.Rate{
			Limit:  cfg.RateLimit.Max,
			Period: cfg.RateLimit.Window,
		}),
	)

	engine.GET("/livez", healthSvc.LiveEndpoint)
	engine.GET("/readyz", healthSvc.ReadyEndpoint)

	handler.Handlers{
		Orders:     handler.NewOrderHandler(orderService),
		Promotions: handler.NewPromotionHandler(promotionService),
		Catalog:    handler.NewCatalogHandler(productRepo, categoryRepo, readCache),
		Blog:       handler.NewBlogHandler(postRepo),
		Customers:  handler.NewCustomerHandler(customerRepo),
		Locations:  handler.NewLocationHandler(locationRepo),
		Security:   handler.NewSecurity(apikeyRepo, cfg.APIKeyPepper),
	}.Register(engine)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: otelhttp.NewHandler(engine, "storefront-api",
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
