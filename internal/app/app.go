package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/config"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/event"
	handler "github.com/FilipeCampos25/SiteClienteLucas/internal/handler/http"
	postgresrepo "github.com/FilipeCampos25/SiteClienteLucas/internal/repository/postgres"
	redisrepo "github.com/FilipeCampos25/SiteClienteLucas/internal/repository/redis"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/service"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/watcher"
	"github.com/FilipeCampos25/SiteClienteLucas/internal/whatsapp"
	"github.com/FilipeCampos25/SiteClienteLucas/migrations"
	"github.com/FilipeCampos25/SiteClienteLucas/pkg/database"
	"github.com/FilipeCampos25/SiteClienteLucas/pkg/health"
	"github.com/FilipeCampos25/SiteClienteLucas/pkg/httpclient"
	pkgkafka "github.com/FilipeCampos25/SiteClienteLucas/pkg/kafka"
	"github.com/FilipeCampos25/SiteClienteLucas/pkg/tracing"
)

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	pool      *pgxpool.Pool
	rdb       *redis.Client
	producer  *pkgkafka.Producer
	consumers []*pkgkafka.Consumer

	catalog *service.CatalogCache
	watcher *watcher.Watcher

	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Tracing (no-op unless enabled).
	tracingCfg := tracing.DefaultConfig("storefront")
	tracingCfg.Environment = cfg.Environment
	tracingCfg.OTLPEndpoint = cfg.OTELEndpoint
	tracingCfg.SampleRate = cfg.OTELSampleRate
	tracingCfg.Enabled = cfg.OTELEnabled
	tracingShutdown, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// PostgreSQL pool for the product catalog.
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPassword
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSLMode

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	database.RegisterPoolMetrics(pool, "storefront")
	database.SetSlowQueryLogging(200*time.Millisecond, logger)

	// Redis client for the cart store.
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort)),
		slog.Int("db", cfg.RedisDB),
	)

	// Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	eventProducer := event.NewProducer(producer, logger)

	cartStore := redisrepo.NewCartStore(rdb, cfg.CartTTL(), logger)
	productRepo := postgresrepo.NewProductRepository(pool)

	cartService := service.NewCartService(cartStore, eventProducer, logger)
	productService := service.NewProductService(productRepo, eventProducer, logger)

	catalogClient := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("catalog"),
		logger,
	)
	catalogCache := service.NewCatalogCache(
		service.NewHTTPCatalogSource(catalogClient, cfg.CatalogURL),
		logger,
	)

	// Checkout links are built in-process unless a remote link service is
	// configured.
	var linkService service.LinkService = whatsapp.NewBuilder(cfg.WhatsAppNumber)
	if cfg.LinkServiceURL != "" {
		linkClient := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("link-service"),
			logger,
		)
		linkService = service.NewHTTPLinkService(linkClient, cfg.LinkServiceURL)
		logger.Info("using remote link service", slog.String("url", cfg.LinkServiceURL))
	}

	checkoutService := service.NewCheckoutService(cartService, catalogCache, linkService, eventProducer, logger)

	cartWatcher := watcher.New(cartStore, cfg.WatcherInterval, logger)

	var consumers []*pkgkafka.Consumer
	if cfg.ConsumerEnabled {
		consumers = event.NewConsumers(cfg.KafkaBrokers, event.NewConsumerHandler(logger), logger)
		logger.Info("activity consumers enabled", slog.Int("consumers", len(consumers)))
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		Carts:              cartService,
		Checkout:           checkoutService,
		Products:           productService,
		Links:              linkService,
		Health:             healthHandler,
		Logger:             logger,
		AdminUser:          cfg.AdminUser,
		AdminPassword:      cfg.AdminPassword,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		PprofAllowedCIDRs:  cfg.PprofAllowedCIDRs,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		pool:            pool,
		rdb:             rdb,
		producer:        producer,
		consumers:       consumers,
		catalog:         catalogCache,
		watcher:         cartWatcher,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run starts the HTTP server and background workers, blocking until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	// Warm the catalog cache without gating startup: a down catalog only
	// degrades checkout name resolution.
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.catalog.Load(runCtx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.watcher.Run(runCtx)
	}()

	for _, consumer := range a.consumers {
		wg.Add(1)
		go func(c *pkgkafka.Consumer) {
			defer wg.Done()
			if err := c.Start(runCtx); err != nil {
				a.logger.Error("consumer stopped", slog.String("error", err.Error()))
			}
		}(consumer)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		cancel()
		wg.Wait()
		return err
	}

	cancel()
	wg.Wait()
	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	for _, consumer := range a.consumers {
		if err := consumer.Close(); err != nil {
			a.logger.Error("consumer close error", slog.String("error", err.Error()))
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
