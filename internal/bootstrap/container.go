package bootstrap

import (
	"context"
	"log"
	"time"

	"smart-grocery-be/internal/config"
	"smart-grocery-be/internal/controller"
	"smart-grocery-be/internal/pkg/logger"
	"smart-grocery-be/internal/repository/memory"
	"smart-grocery-be/internal/repository/redisstore"
	"smart-grocery-be/internal/repository/unitofwork"
	"smart-grocery-be/internal/service"
	"smart-grocery-be/internal/websocket"
	"smart-grocery-be/pkg/classifier"
	"smart-grocery-be/pkg/llm"
	"smart-grocery-be/pkg/llm/factory"
	pktNats "smart-grocery-be/pkg/nats"
	"smart-grocery-be/pkg/orchestrator"
	"smart-grocery-be/pkg/stage"
	"smart-grocery-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController    controller.IChatController
	CartController    controller.ICartController
	ProfileController controller.IProfileController

	// Background Services (Exposed for main.go to run)
	FeedbackConsumer service.IFeedbackConsumer
	WebSocketHub     *websocket.Hub

	Logger *logger.ZapLogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { pubSub.Close() })

	// NATS
	var publisher orchestrator.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		publisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	redisUp := true
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		redisUp = false
	}
	cancel()
	c.closers = append(c.closers, func() { rdb.Close() })

	// 3. Sessions
	var sessions store.SessionStore
	if cfg.Session.Store == "redis" && redisUp {
		sessions = redisstore.NewSessionStore(rdb, cfg.Session.TTL, redisstore.WithLockTTL(2*cfg.Session.TurnTimeout))
		log.Printf("[INFO] Using Session Store: REDIS")
	} else {
		if cfg.Session.Store == "redis" {
			log.Printf("[WARN] Redis unavailable, falling back to in-memory sessions")
		}
		sessions = memory.NewSessionRepository(cfg.Session.TTL)
		log.Printf("[INFO] Using Session Store: MEMORY")
	}

	// 4. Language model
	var responder stage.Responder
	var oracle classifier.Classifier
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL)
	if err != nil {
		log.Printf("[WARN] LLM provider unavailable, using canned answers: %v", err)
	} else {
		responder = llm.NewResponder(llmProvider)
		if cfg.Ai.OracleEnabled {
			oracle = classifier.NewOracleBacked(classifier.NewLLMOracle(llmProvider))
		}
		log.Printf("[INFO] Using LLM Provider: %s (%s), oracle enabled: %t", cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OracleEnabled)
	}

	cls := classifier.NewFallback(oracle, classifier.NewRuleBased(), classifier.Policy{
		MinConfidence: cfg.Ai.OracleMinConfidence,
		Timeout:       cfg.Ai.OracleTimeout,
	}, sysLogger)

	// 5. Services
	defaultBudget := decimal.NewFromFloat(cfg.Assistant.DefaultBudget)
	catalogService := service.NewCatalogService(uowFactory, sysLogger)
	registry := stage.NewRegistry(stage.Deps{
		Profiles:            catalogService,
		Catalog:             catalogService,
		Carts:               catalogService,
		Responder:           responder,
		Logger:              sysLogger,
		DefaultBudget:       defaultBudget,
		RecommendationLimit: cfg.Assistant.RecommendationLimit,
	})

	opts := []orchestrator.Option{
		orchestrator.WithTurnTimeout(cfg.Session.TurnTimeout),
		orchestrator.WithMaxSessionsPerUser(cfg.Session.MaxSessionsPerUser),
		orchestrator.WithFeedbackSink(service.NewFeedbackPublisher(pubSub, cfg.App.FeedbackTopic)),
	}
	if publisher != nil {
		opts = append(opts, orchestrator.WithPublisher(publisher))
	}
	orch, err := orchestrator.New(cls, sessions, registry, sysLogger, opts...)
	if err != nil {
		log.Fatalf("[FATAL] Failed to build orchestrator: %v", err)
	}

	assistantService := service.NewAssistantService(orch, catalogService, catalogService, uowFactory, sysLogger)
	c.FeedbackConsumer = service.NewFeedbackConsumer(pubSub, cfg.App.FeedbackTopic, catalogService, defaultBudget, sysLogger)

	// WebSocket Hub
	var hubRedis *redis.Client
	if redisUp {
		hubRedis = rdb
	}
	c.WebSocketHub = websocket.NewHub(hubRedis, sysLogger)

	// 6. Controllers
	c.ChatController = controller.NewChatController(assistantService, c.WebSocketHub, cfg.App.JwtSecret, sysLogger)
	c.CartController = controller.NewCartController(assistantService, cfg.App.JwtSecret)
	c.ProfileController = controller.NewProfileController(service.NewProfileService(catalogService, defaultBudget, sysLogger), cfg.App.JwtSecret)

	return c
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.Logger.Sync()
}
