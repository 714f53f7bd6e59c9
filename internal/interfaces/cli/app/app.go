// Package app assembles the full dependency graph shared by the CLI
// commands: config, logging, database, redis, crypto services, repositories
// and the application facades.
package app

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	clientapp "serialhub/internal/application/client"
	serialapp "serialhub/internal/application/serial"
	"serialhub/internal/infrastructure/cache"
	"serialhub/internal/infrastructure/config"
	"serialhub/internal/infrastructure/crypto"
	"serialhub/internal/infrastructure/database"
	"serialhub/internal/infrastructure/pubsub"
	"serialhub/internal/infrastructure/repository"
	"serialhub/internal/shared/logger"
)

// App is the wired process. Every CLI command that needs storage goes
// through here so the graph is built exactly one way.
type App struct {
	Config   *config.Config
	Logger   logger.Interface
	Redis    *redis.Client
	Serials  *serialapp.Service
	Clients  *clientapp.Service
	EventBus *pubsub.RedisSerialEventBus
}

// New loads configuration for the environment and wires the process.
func New(env string) (*App, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient, err := cache.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	signer, err := crypto.NewSigner(&cfg.Crypto)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize signer: %w", err)
	}
	integrity, err := crypto.NewIntegrityService(cfg.Crypto.IntegritySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize integrity service: %w", err)
	}

	db := database.Get()
	serialRepo := repository.NewSerialRepository(db, log)
	usageRepo := repository.NewUsageRepository(db, log)
	auditRepo := repository.NewAuditRepository(db, log)
	clientRepo := repository.NewClientRepository(db, log)

	kv := cache.NewRedisCache(redisClient, log)
	serialCache := cache.NewRedisSerialCache(redisClient, cacheTTL(cfg), log)
	warnMarkers := cache.NewWarnMarkerStore(redisClient)
	eventBus := pubsub.NewRedisSerialEventBus(redisClient, log)

	serials := serialapp.NewService(serialapp.Dependencies{
		SerialRepo:  serialRepo,
		UsageRepo:   usageRepo,
		AuditRepo:   auditRepo,
		ClientRepo:  clientRepo,
		Signer:      signer,
		Integrity:   integrity,
		Locks:       kv,
		SerialCache: serialCache,
		WarnMarkers: warnMarkers,
		Publisher:   eventBus,
		Config:      &cfg.Serial,
		Logger:      log,
	})
	clients := clientapp.NewService(clientRepo, serialRepo, auditRepo, kv, log)

	return &App{
		Config:   cfg,
		Logger:   log,
		Redis:    redisClient,
		Serials:  serials,
		Clients:  clients,
		EventBus: eventBus,
	}, nil
}

func cacheTTL(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Serial.CacheTTLMinutes) * time.Minute
}

// Close releases database and redis connections.
func (a *App) Close() {
	if err := database.Close(); err != nil {
		a.Logger.Warnw("failed to close database", "error", err)
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warnw("failed to close redis", "error", err)
		}
	}
}
