package bootstrap

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"brd-discovery-be/internal/config"
	"brd-discovery-be/internal/controller"
	"brd-discovery-be/internal/handler"
	"brd-discovery-be/internal/pkg/logger"
	"brd-discovery-be/internal/pkg/mailer"
	"brd-discovery-be/internal/repository/memory"
	"brd-discovery-be/internal/repository/unitofwork"
	"brd-discovery-be/internal/service"
	"brd-discovery-be/internal/websocket"
	"brd-discovery-be/pkg/embedding"
	"brd-discovery-be/pkg/extraction"
	"brd-discovery-be/pkg/llm/factory"
	"brd-discovery-be/pkg/stages"

	pktNats "brd-discovery-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DiscoveryController controller.IDiscoveryController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	LiveHandler  *handler.LiveHandler
	WebSocketHub *websocket.Hub
}

// NewContainer wires the whole application. db may be nil, in which
// case the in-memory repositories back everything.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	} else {
		log.Printf("[WARN] No database configured, using in-memory repositories")
		uowFactory = memory.NewRepositoryFactory()
	}
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GoogleGeminiKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.HuggingFaceKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	wsLogger := logger.NewIsolatedLogger("logs/live.log")
	wsHub := websocket.NewHub(rdb, wsLogger)

	// 5. Stage roster and instruction assets
	roster, err := stages.Load(cfg.Discovery.StagesConfigPath, cfg.Discovery.InstructionsDir, nil)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	drafterInstruction := mustReadInstruction(cfg.Discovery.InstructionsDir, "brd_drafter.md")
	wrapupInstruction := mustReadInstruction(cfg.Discovery.InstructionsDir, "wrapup.md")

	// 6. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Discovery.CompletedTopic)
	notificationService := service.NewNotificationService(wsHub, wsLogger)
	memoryService := service.NewMemoryService(uowFactory, embeddingProvider, sysLogger)

	workflowService := service.NewWorkflowService(uowFactory, notificationService, publisherService, natsPub, sysLogger)
	transitionService := service.NewTransitionService(uowFactory, extraction.DefaultRegistry(), memoryService, sysLogger)
	brdService := service.NewBRDService(uowFactory, llmProvider, notificationService, emailService, drafterInstruction, sysLogger)
	researchService := service.NewResearchService(uowFactory, llmProvider, sysLogger)

	toolkit := service.NewToolkit(workflowService, transitionService, researchService, brdService, roster, sysLogger)
	if err := roster.ResolveTools(toolkit); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	conversationService := service.NewConversationService(
		uowFactory,
		llmProvider,
		roster,
		toolkit,
		memoryService,
		wrapupInstruction,
		sysLogger,
	)
	discoveryService := service.NewDiscoveryService(uowFactory, roster, memoryService, cfg.App.JWTSecret, sysLogger)

	consumerService := service.NewConsumerService(pubSub, cfg.Discovery.CompletedTopic, brdService)

	return &Container{
		DiscoveryController: controller.NewDiscoveryController(discoveryService),
		ConsumerService:     consumerService,
		LiveHandler:         handler.NewLiveHandler(conversationService, wsHub, wsLogger),
		WebSocketHub:        wsHub,
	}
}

func mustReadInstruction(dir, name string) string {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		log.Fatalf("[FATAL] Failed to read instruction %s: %v", name, err)
	}
	return string(raw)
}
