package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"theme-images-manager/internal/application"
	"theme-images-manager/internal/application/webhook_handlers"
	"theme-images-manager/internal/config"
	apiinfra "theme-images-manager/internal/infrastructure/api"
	"theme-images-manager/internal/infrastructure/encryption"
	"theme-images-manager/internal/infrastructure/metrics"
	"theme-images-manager/internal/infrastructure/repository"
	shopifyinfra "theme-images-manager/internal/infrastructure/shopify"
	"theme-images-manager/internal/infrastructure/statestore"
	"theme-images-manager/internal/ports"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// indexer is implemented by repositories that manage their own indexes
type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger = logger.Level(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	encryptionService, err := encryption.NewService(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}

	// Repositories: MongoDB when configured, process memory otherwise
	var (
		shopRepo        ports.ShopRepository
		integrationRepo ports.IntegrationRepository
	)
	if cfg.MongoURI != "" {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer client.Disconnect(context.Background())

		db := client.Database(cfg.MongoDatabase)
		shopRepo = repository.NewMongoShopRepository(db)
		integrationRepo = repository.NewMongoIntegrationRepository(db)
		for _, repo := range []any{shopRepo, integrationRepo} {
			if idx, ok := repo.(indexer); ok {
				if err := idx.EnsureIndexes(ctx); err != nil {
					logger.Fatal().Err(err).Msg("Failed to create MongoDB indexes")
				}
			}
		}
		logger.Info().Str("database", cfg.MongoDatabase).Msg("Using MongoDB storage")
	} else {
		shopRepo = repository.NewInMemoryShopRepository()
		integrationRepo = repository.NewInMemoryIntegrationRepository()
		logger.Warn().Msg("MONGODB_URI not set, installs are kept in memory only")
	}

	stateStore, closeStateStore, err := newStateStore(ctx, cfg.RedisURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer closeStateStore()

	m := metrics.New()

	shopifyClient := shopifyinfra.NewClientWithOptions(cfg.ShopifyAPIKey, cfg.ShopifyAPISecret, shopifyinfra.Options{
		APIVersion:  cfg.ShopifyAPIVersion,
		HTTPClient:  &http.Client{Timeout: cfg.HTTPTimeout},
		RateLimiter: shopifyinfra.NewRateLimiter(logger),
		Metrics:     m,
		Logger:      logger,
	})

	// Initialize application services
	credentials := application.NewCredentialStore(shopRepo, encryptionService, logger)
	integrationService := application.NewIntegrationService(integrationRepo, logger)
	assetService := application.NewAssetService(shopifyClient, credentials, m, application.AssetServiceConfig{
		ThemeID:     cfg.ShopifyThemeID,
		Concurrency: cfg.UploadConcurrency,
	}, logger)
	oauthService := application.NewOAuthService(application.OAuthConfig{
		APIKey:           cfg.ShopifyAPIKey,
		APISecret:        cfg.ShopifyAPISecret,
		Scopes:           cfg.ShopifyScopes,
		RedirectURI:      cfg.RedirectURI(),
		WebhookURL:       cfg.WebhookURL(),
		ShopDomainSuffix: cfg.ShopDomainSuffix,
	}, shopifyClient, credentials, integrationService, assetService, stateStore, m, logger)

	// Initialize webhook dispatcher and register handlers
	webhookDispatcher := application.NewWebhookDispatcher(logger)
	webhookDispatcher.RegisterHandler(webhook_handlers.NewAppUninstalledHandler(logger, credentials, integrationService, assetService))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewThemePublishHandler(logger, assetService))

	if cfg.SeedShop != "" {
		if err := seedShop(ctx, cfg, credentials, integrationService, os.Stderr, logger); err != nil {
			logger.Fatal().Err(err).Str("shop", cfg.SeedShop).Msg("Failed to seed shop")
		}
	}

	server := apiinfra.NewServer(apiinfra.Config{
		StaticDir:      cfg.StaticDir,
		SwaggerFile:    "./docs/swagger.json",
		UploadMaxBytes: cfg.UploadMaxBytes,
		SecureCookies:  strings.HasPrefix(cfg.AppURL, "https://"),
		AllowedOrigins: []string{cfg.AppURL},
	}, oauthService, assetService, integrationService, webhookDispatcher,
		shopifyinfra.NewWebhookVerifier(cfg.ShopifyAPISecret), m, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	logger.Info().Str("port", cfg.Port).Msg("Starting API server")
	logger.Info().Msg("Install at " + cfg.AppURL + "/install?shop=<shop>")
	logger.Info().Msg("Swagger documentation available at " + cfg.AppURL + "/swagger/index.html")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
	logger.Info().Msg("Server stopped")
}

// newStateStore picks Redis when redisURL is set so nonces are shared between
// instances, and a process-local store otherwise
func newStateStore(ctx context.Context, redisURL string, logger zerolog.Logger) (ports.StateStore, func(), error) {
	if redisURL == "" {
		logger.Info().Msg("REDIS_URL not set, install nonces are kept in memory")
		return statestore.NewMemoryStateStore(), func() {}, nil
	}
	redisStore, err := statestore.NewRedisStateStore(ctx, redisURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Msg("Using Redis install state store")
	return redisStore, func() { _ = redisStore.Close() }, nil
}

// seedShop stores a pre-issued token so the gateway works without an OAuth
// install. The session key is a bearer credential, so it goes to out once
// and never into the logs.
func seedShop(
	ctx context.Context,
	cfg *config.Config,
	credentials *application.CredentialStore,
	integrations *application.IntegrationService,
	out io.Writer,
	logger zerolog.Logger,
) error {
	if err := credentials.Save(ctx, cfg.SeedShop, cfg.SeedAccessToken, strings.Join(cfg.ShopifyScopes, ",")); err != nil {
		return err
	}
	integration, err := integrations.CreateIntegration(ctx, cfg.SeedShop)
	if err != nil {
		return err
	}
	logger.Info().Str("shop", cfg.SeedShop).Msg("Seeded shop")
	_, err = fmt.Fprintf(out, "X-Integration-Key for %s: %s\n", cfg.SeedShop, integration.Key)
	return err
}
