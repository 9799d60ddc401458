package di

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"

	"roomrec-server/config"
	"roomrec-server/dao"
	"roomrec-server/dao/redis"
	"roomrec-server/dao/sqlite"
	"roomrec-server/db"
	"roomrec-server/ingest"
	"roomrec-server/metrics"
	"roomrec-server/recommender"
	"roomrec-server/server"
	"roomrec-server/server/handlers"
	services "roomrec-server/service"
)

// Container holds all application dependencies.
type Container struct {
	Config                   config.Config
	Metrics                  *metrics.Metrics
	RoomDao                  dao.RoomDAO
	Recommender              *recommender.Recommender
	RecommendationCache      *services.RecommendationCache
	SnapshotRefresherService *services.SnapshotRefresherService
	RoomService              *services.RoomService
	RoomHandler              *handlers.RoomHandler
	MuxRouter                *mux.Router
	Router                   *server.Router
	RoomRecHttpServer        *server.RoomRecHttpServer
	SensorSubscriber         *ingest.SensorSubscriber

	closers []io.Closer
}

// NewContainer opens the configured store and wires up all dependencies.
func NewContainer(ctx context.Context, cfg config.Config, logger *log.Logger) (*Container, error) {
	logger.Info("initializing container", "store", cfg.Store)

	var (
		store   dao.RoomDAO
		closers []io.Closer
	)
	switch cfg.Store {
	case config.STORE_SQLITE:
		sqliteDao := sqlite.NewSQLiteRoomDAO(cfg.SQLitePath, cfg.MaxReadingsPerRoom, logger)
		if err := sqliteDao.Open(ctx); err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		store = sqliteDao
		closers = append(closers, sqliteDao)
	default:
		redisInternalClient := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		redisClient := db.NewRoomRedisClient(redisInternalClient, logger)
		if err := redisClient.Ping(ctx); err != nil {
			redisInternalClient.Close()
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddress, err)
		}
		store = redis.NewRedisRoomDAO(redisClient, cfg.MaxReadingsPerRoom, logger)
		closers = append(closers, redisInternalClient)
	}

	c := NewContainerWithStore(cfg, store, logger)
	c.closers = closers
	return c, nil
}

// NewContainerWithStore wires everything on top of an already opened store.
func NewContainerWithStore(cfg config.Config, store dao.RoomDAO, logger *log.Logger) *Container {
	m := metrics.New()

	rec := recommender.New(logger)
	cache := services.NewRecommendationCache(cfg.CacheSize, cfg.CacheTTL, m)

	refresher := services.NewSnapshotRefresherService(store, m, logger)
	refresher.OnSwap(func(*recommender.Snapshot) { cache.Purge() })

	roomService := services.NewRoomService(refresher, rec, cfg.PipelineOptions(), cache, m, logger)
	roomHandler := handlers.NewRoomHandler(roomService, refresher, logger)

	muxRouter := mux.NewRouter()
	router := server.NewRouter(roomHandler, muxRouter, m, server.RouterOptions{
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger)
	httpServer := server.NewRoomRecHttpServer(router, cfg.HTTPAddress, cfg.ShutdownTimeout, logger)

	var subscriber *ingest.SensorSubscriber
	if cfg.MQTTBroker != "" {
		subscriber = ingest.NewSensorSubscriber(cfg.MQTTBroker, cfg.MQTTTopic, cfg.MQTTClientID, store, m, logger)
	}

	return &Container{
		Config:                   cfg,
		Metrics:                  m,
		RoomDao:                  store,
		Recommender:              rec,
		RecommendationCache:      cache,
		SnapshotRefresherService: refresher,
		RoomService:              roomService,
		RoomHandler:              roomHandler,
		MuxRouter:                muxRouter,
		Router:                   router,
		RoomRecHttpServer:        httpServer,
		SensorSubscriber:         subscriber,
	}
}

// Close releases the store connections.
func (c *Container) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
