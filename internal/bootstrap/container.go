package bootstrap

import (
	"context"
	"log"

	"doc-verify-bot/internal/config"
	"doc-verify-bot/internal/controller"
	"doc-verify-bot/internal/pkg/logger"
	"doc-verify-bot/internal/repository/contract"
	"doc-verify-bot/internal/repository/implementation"
	"doc-verify-bot/internal/repository/memory"
	"doc-verify-bot/internal/service"
	"doc-verify-bot/pkg/analysis"
	"doc-verify-bot/pkg/crm"
	"doc-verify-bot/pkg/database"
	"doc-verify-bot/pkg/filestore"
	"doc-verify-bot/pkg/ocr"
	"doc-verify-bot/pkg/telegram"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	WebhookController controller.IWebhookController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Session store: redis in production, in-process cache as fallback.
	var sessionRepo contract.SessionRepository
	if cfg.App.SessionStore == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Fatalf("[FATAL] Failed to parse Redis URL: %v", err)
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		sessionRepo = implementation.NewSessionRepositoryRedis(rdb)
		log.Printf("[INFO] Using Session Store: REDIS")
	} else {
		sessionRepo = memory.NewSessionRepository()
		log.Printf("[INFO] Using Session Store: MEMORY")
	}

	// Audit trail: postgres when a DSN is configured, in-memory otherwise.
	var auditRepo contract.AuditRepository
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Fatalf("[FATAL] Unable to connect to audit DB: %v", err)
		}
		auditRepo = implementation.NewAuditRepository(db)
		log.Printf("[INFO] Using Audit Trail: POSTGRES")
	} else {
		auditRepo = memory.NewAuditRepository()
		log.Printf("[INFO] Using Audit Trail: MEMORY")
	}

	// External collaborators
	telegramClient := telegram.NewClient(cfg.Telegram.APIBaseURL, cfg.Telegram.BotToken)
	fileStore := filestore.NewClient(cfg.Storage.URL, cfg.Storage.ServiceKey, cfg.Storage.Bucket)
	ocrClient := ocr.NewClient(cfg.OCR.Endpoint, cfg.OCR.APIKey)
	analysisClient := analysis.NewClient(cfg.Analysis.Endpoint, cfg.Analysis.APIKey, cfg.Analysis.Model)
	crmClient := crm.NewClient(cfg.CRM.WebhookURL, cfg.CRM.EntityTypeID, auditRepo, sysLogger)

	// Task queue for photo extraction
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	publisherService := service.NewPublisherService(cfg.App.PhotoTopic, pubSub)

	extractionService := service.NewExtractionService(
		sessionRepo,
		auditRepo,
		telegramClient,
		fileStore,
		ocrClient,
		analysisClient,
		sysLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.PhotoTopic,
		cfg.App.PhotoWorkers,
		extractionService,
		sysLogger,
	)

	verificationService := service.NewVerificationService(
		sessionRepo,
		crmClient,
		telegramClient,
		sysLogger,
	)

	return &Container{
		WebhookController: controller.NewWebhookController(verificationService, publisherService, sysLogger),
		ConsumerService:   consumerService,
		Logger:            sysLogger,
	}
}
