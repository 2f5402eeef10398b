package main

import (
	"context"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"opshub-integrations-layer/internal/application"
	"opshub-integrations-layer/internal/application/webhook_handlers"
	"opshub-integrations-layer/internal/infrastructure/config"
	"opshub-integrations-layer/internal/infrastructure/filestore"
	"opshub-integrations-layer/internal/infrastructure/metrics"
	"opshub-integrations-layer/internal/infrastructure/oauthstate"
	"opshub-integrations-layer/internal/infrastructure/quickbooks"
	"opshub-integrations-layer/internal/infrastructure/repository"
	shopifyinfra "opshub-integrations-layer/internal/infrastructure/shopify"
	slackinfra "opshub-integrations-layer/internal/infrastructure/slack"
	"opshub-integrations-layer/internal/infrastructure/trigger"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Connect to MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB)

	// Initialize infrastructure (implementations)
	connRepo := repository.NewMongoConnectionRepository(db)
	stateCodec := oauthstate.NewCodec(cfg.StateSecret)
	verifier := shopifyinfra.NewWebhookVerifier(cfg.WebhookSecret)
	triggerBus := trigger.NewRedisBus(cfg.RedisAddr, logger)
	defer triggerBus.Close()

	approvalStore, err := filestore.NewApprovalFileStore(cfg.DataDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize approval store")
	}
	rejectionStore, err := filestore.NewRejectionFileStore(cfg.DataDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize rejection store")
	}
	pendingMarker := filestore.NewPendingMarker(cfg.DataDir)

	m := metrics.New()

	// Initialize application services
	webhookManager := application.NewWebhookManager(connRepo, logger, cfg.WebhookAddress())

	connectService := application.NewConnectService(connRepo, webhookManager, stateCodec, logger)
	connectService.RegisterProvider(shopifyinfra.NewClient(
		cfg.Shopify.ClientID,
		cfg.Shopify.ClientSecret,
		cfg.RedirectURI(),
		logger,
	))
	connectService.RegisterProvider(quickbooks.NewClient(
		cfg.QuickBooks.ClientID,
		cfg.QuickBooks.ClientSecret,
		cfg.RedirectURI(),
		cfg.QuickBooksSandbox,
		logger,
	))
	connectService.RegisterProvider(slackinfra.NewClient(
		cfg.Slack.ClientID,
		cfg.Slack.ClientSecret,
		cfg.RedirectURI(),
		logger,
	))

	syncService := application.NewSyncService(approvalStore, rejectionStore, pendingMarker, logger)
	taskService := application.NewTaskService(approvalStore, logger)

	// Initialize webhook dispatcher and register handlers
	webhookDispatcher := application.NewWebhookDispatcher(logger)
	webhookDispatcher.RegisterHandler(webhook_handlers.NewOrderHandler(triggerBus, logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewProductHandler(triggerBus, logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewCustomerHandler(logger))

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Health check - must be public for monitoring
	r.Get("/health", healthHandler())
	r.Handle("/metrics", m.Handler())

	// OAuth routes
	r.Post("/connect", connectHandler(connectService, logger))
	r.Get("/callback", callbackHandler(connectService, m, logger))
	r.Post("/disconnect", disconnectHandler(connectService, logger))

	// Webhook ingress
	r.Post("/webhooks", webhookHandler(connRepo, verifier, webhookDispatcher, m, logger))

	// Dashboard polling and task routes
	r.Get("/sync-status", syncStatusHandler(syncService, connectService, m, logger))
	r.Get("/tasks", listTasksHandler(taskService, logger))
	r.Post("/tasks/{taskID}/complete", completeTaskHandler(taskService, logger))

	logger.Info().Str("port", cfg.Port).Msg("Starting API server")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
