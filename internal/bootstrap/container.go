package bootstrap

import (
	"context"
	"log"

	"video-consulta-sync/internal/config"
	"video-consulta-sync/internal/handler"
	"video-consulta-sync/internal/metrics"
	"video-consulta-sync/internal/pkg/logger"
	"video-consulta-sync/internal/repository/contract"
	"video-consulta-sync/internal/repository/implementation"
	"video-consulta-sync/internal/repository/memory"
	"video-consulta-sync/internal/service"
	"video-consulta-sync/internal/websocket"

	pktNats "video-consulta-sync/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Handlers
	RoomHandler *handler.RoomHandler

	// Background Services (Exposed for main.go to run)
	AgentBridgeService service.IAgentBridgeService

	// WebSockets & Metrics
	WebSocketHub *websocket.Hub
	Metrics      *metrics.Metrics
}

// NewContainer wires the relay. db may be nil, in which case section
// actions are not persisted and the relay runs purely in memory.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
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
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/room.log")
	wsHub := websocket.NewHub(rdb, wsLogger)

	// 3. Repositories
	roomRepo := memory.NewRoomRepository(cfg.Agent.RoomTTL)
	var encounterRepo contract.EncounterRepository
	if db != nil {
		encounterRepo = implementation.NewEncounterRepository(db)
	} else {
		log.Println("[WARN] No database configured, encounter persistence disabled")
	}

	// 4. Metrics
	promMetrics := metrics.NewMetrics()

	// 5. Services
	roomService := service.NewRoomService(
		roomRepo,
		encounterRepo,
		wsHub,
		pubSub,
		cfg.Agent.ProcessSubject,
		natsPub,
		promMetrics,
		sysLogger,
	)
	wsHub.SetHandler(roomService)
	go wsHub.Run()

	agentBridge := service.NewAgentBridgeService(
		pubSub,
		cfg.Agent.ProcessSubject,
		cfg.Agent.ProposalSubject,
		natsPub,
		natsSub,
		wsHub,
		promMetrics,
		sysLogger,
	)

	roomHandler := handler.NewRoomHandler(wsHub, wsLogger)

	return &Container{
		RoomHandler:        roomHandler,
		AgentBridgeService: agentBridge,
		WebSocketHub:       wsHub,
		Metrics:            promMetrics,
	}
}
