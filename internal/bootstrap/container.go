package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/SantanaPablo/Manuales-IA/internal/config"
	"github.com/SantanaPablo/Manuales-IA/internal/controller"
	"github.com/SantanaPablo/Manuales-IA/internal/pkg/logger"
	"github.com/SantanaPablo/Manuales-IA/internal/repository/memory"
	"github.com/SantanaPablo/Manuales-IA/internal/service"
	"github.com/SantanaPablo/Manuales-IA/internal/websocket"
	"github.com/SantanaPablo/Manuales-IA/pkg/database"
	"github.com/SantanaPablo/Manuales-IA/pkg/embedding"
	"github.com/SantanaPablo/Manuales-IA/pkg/index"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/pipeline"

	pktNats "github.com/SantanaPablo/Manuales-IA/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sharedCacheTTL = 24 * time.Hour

type Container struct {
	// Controllers
	SearchController controller.ISearchController
	IngestController controller.IIngestController
	LogController    controller.ILogController

	// WebSockets
	WebSocketHandler *websocket.Handler
	WebSocketHub     *websocket.Hub

	// Background Services (Exposed for main.go to run)
	ConsumerService  service.IConsumerService
	IndexSyncService *service.IndexSyncService

	Pipeline *pipeline.PipelineContext
	Logger   logger.ILogger

	closers []func()
}

// NewPipeline builds the PipelineContext with the optional infrastructure
// (Redis, Postgres, NATS) that the configuration enables. Unreachable
// optional services are logged and skipped.
func NewPipeline(cfg *config.Config, sysLogger logger.ILogger, origin string) (*pipeline.PipelineContext, *pktNats.Publisher, []func(), error) {
	var (
		opts    []pipeline.Option
		closers []func()
	)

	// Redis
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v (shared embedding cache disabled)", err)
			_ = rdb.Close()
		} else {
			opts = append(opts, pipeline.WithSharedCache(embedding.NewRedisCache(rdb, cfg.Ai.EmbeddingModel, sharedCacheTTL)))
			closers = append(closers, func() { _ = rdb.Close() })
		}
	}

	// Index backend
	if cfg.Index.Backend == "pgvector" {
		db, err := database.Open(cfg.Database.Connection, cfg.App.Environment != "production")
		if err != nil {
			return nil, nil, closers, fmt.Errorf("connect postgres: %w", err)
		}
		idx, err := index.NewPgvectorIndex(db)
		if err != nil {
			return nil, nil, closers, err
		}
		opts = append(opts, pipeline.WithIndex(idx))
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { _ = sqlDB.Close() })
		}
	}

	// NATS
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
			opts = append(opts, pipeline.WithPublisher(pub, origin))
			closers = append(closers, pub.Close)
		}
	}

	p, err := pipeline.New(cfg, sysLogger, opts...)
	if err != nil {
		return nil, nil, closers, err
	}
	return p, natsPub, closers, nil
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	origin := "rest-" + uuid.NewString()

	// 2. Pipeline
	p, natsPub, closers, err := NewPipeline(cfg, sysLogger, origin)
	if err != nil {
		runAll(closers)
		return nil, err
	}
	closers = append(closers, p.Close)

	// 3. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	closers = append(closers, func() { _ = pubSub.Close() })

	// WebSocket Hub
	wsHub := websocket.NewHub(sysLogger)
	go wsHub.Run()
	closers = append(closers, wsHub.Stop)

	// 4. Services
	jobRepo := memory.NewJobRepository()
	publisherService := service.NewPublisherService(cfg.App.IngestTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.App.IngestTopic, p.Ingestor, jobRepo, wsHub, sysLogger)

	searchService := service.NewSearchService(p.Coordinator, p.Generator, cfg.Pipeline.TopK, p.Cache)
	ingestService := service.NewIngestService(publisherService, jobRepo, cfg.Pipeline.ManualsFolder)
	logService := service.NewLogService(sysLogger)

	// Index sync only matters when another process can write the index.
	var indexSync *service.IndexSyncService
	if natsPub != nil {
		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			indexSync = service.NewIndexSyncService(natsSub, p, origin, sysLogger)
			closers = append(closers, natsSub.Close)
		}
	}

	// 5. Controllers
	return &Container{
		SearchController: controller.NewSearchController(searchService, sysLogger),
		IngestController: controller.NewIngestController(ingestService),
		LogController:    controller.NewLogController(logService),
		WebSocketHandler: websocket.NewHandler(wsHub, searchService, sysLogger),
		WebSocketHub:     wsHub,

		ConsumerService:  consumerService,
		IndexSyncService: indexSync,

		Pipeline: p,
		Logger:   sysLogger,
		closers:  closers,
	}, nil
}

// Close releases everything in reverse order of creation.
func (c *Container) Close() {
	runAll(c.closers)
	_ = c.Logger.Sync()
}

func runAll(closers []func()) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}
