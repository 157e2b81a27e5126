package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/piresc/kasbot/internal/pkg/config"
	"github.com/piresc/kasbot/internal/pkg/database"
	"github.com/piresc/kasbot/internal/pkg/health"
	"github.com/piresc/kasbot/internal/pkg/logger"
	"github.com/piresc/kasbot/internal/pkg/middleware"
	natspkg "github.com/piresc/kasbot/internal/pkg/nats"
	"github.com/piresc/kasbot/internal/pkg/server"
	"github.com/piresc/kasbot/services/bot/gateway"
	"github.com/piresc/kasbot/services/bot/handler"
	httpHandler "github.com/piresc/kasbot/services/bot/handler/http"
	"github.com/piresc/kasbot/services/bot/repository"
	"github.com/piresc/kasbot/services/bot/usecase"
	currencyGateway "github.com/piresc/kasbot/services/currency/gateway"
	currencyRepository "github.com/piresc/kasbot/services/currency/repository"
	currencyUsecase "github.com/piresc/kasbot/services/currency/usecase"
	extractionGateway "github.com/piresc/kasbot/services/extraction/gateway"
	extractionUsecase "github.com/piresc/kasbot/services/extraction/usecase"
)

func main() {
	appName := "kasbot"
	configs := config.InitConfig("config/bot.env")

	zapLogger, err := logger.InitZapLoggerFromConfig(configs)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	zapLogger.Info("Starting application",
		zap.String("app", appName),
		zap.String("version", configs.App.Version),
		zap.String("environment", configs.App.Environment),
	)

	// Initialize PostgreSQL database connection
	postgresClient, err := database.NewPostgresClient(configs.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer postgresClient.Close()

	// Initialize Redis client
	redisClient, err := database.NewRedisClient(configs.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize NATS
	natsClient, err := natspkg.NewClient(configs.NATS.URL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsClient.Close()

	// Currency conversion pipeline
	rateCache := currencyRepository.NewRateCacheRepo(redisClient, time.Duration(configs.Currency.CacheTTLMins)*time.Minute)
	primaryProvider := currencyGateway.NewPrimaryProvider(configs.Currency.PrimaryURL, configs.Currency.PrimaryKey, 10*time.Second)
	fallbackProvider := currencyGateway.NewFallbackProvider(configs.Currency.FallbackURL, 10*time.Second)
	converter := currencyUsecase.NewConverterUC(rateCache, primaryProvider, fallbackProvider)

	// Repositories
	pendingRepo := repository.NewPendingRepo(redisClient)
	contextRepo := repository.NewContextRepo(postgresClient.GetDB())
	userRepo := repository.NewUserRepo(postgresClient.GetDB())
	txRepo := repository.NewTransactionRepo(postgresClient.GetDB())

	// Extraction pipeline
	openAIGW := extractionGateway.NewOpenAIGW(configs)
	geminiGW, err := extractionGateway.NewGeminiGW(context.Background(), configs)
	if err != nil {
		zapLogger.Fatal("Failed to initialize vision gateway", zap.Error(err))
	}
	extractor := extractionUsecase.NewExtractorUC(configs, openAIGW, geminiGW, openAIGW, pendingRepo)

	// Gateways
	telegramGW := gateway.NewTelegramGW(configs)
	eventsGW := gateway.NewEventsGW(natsClient)

	// UseCase
	botUC, err := usecase.NewBotUC(configs, pendingRepo, contextRepo, userRepo, txRepo, telegramGW, eventsGW, extractor, converter)
	if err != nil {
		zapLogger.Fatal("Failed to initialize bot use case", zap.Error(err))
	}

	// Handlers
	webhookHandler := httpHandler.NewWebhookHandler(botUC, configs.Telegram.WebhookToken)
	h := handler.NewHandler(webhookHandler, configs)

	// Initialize Echo router
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestIDMiddleware())
	e.Use(middleware.PanicRecoveryMiddleware(middleware.DefaultPanicRecoveryConfig()))
	e.Use(logger.ZapEchoMiddleware(zapLogger))

	health.RegisterHealthEndpoints(e, appName)
	h.RegisterRoutes(e)

	zapLogger.Info("Starting server",
		zap.String("app", appName),
		zap.Int("port", configs.Server.Port),
	)

	srv := server.NewGracefulServer(e, zapLogger, configs.Server.Port)
	if err := srv.Start(); err != nil {
		zapLogger.Fatal("Server exited with error",
			zap.String("app", appName),
			zap.Error(err),
		)
	}
}
