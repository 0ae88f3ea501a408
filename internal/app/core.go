package app

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/directory"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/storage"
	redisstorage "github.com/MrSnakeDoc/shelf/internal/storage/redis"
	"github.com/MrSnakeDoc/shelf/internal/storage/sqlite"
	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/MrSnakeDoc/shelf/internal/utils"
)

// Core is the storage stack shared by the server and the one-shot commands.
type Core struct {
	Backend   storage.Backend
	Store     *store.Store
	Directory *directory.Service

	logger logger.Logger
}

// OpenCore opens the configured backend and builds the directory over it.
func OpenCore(ctx context.Context, cfg *config.Config, log logger.Logger) (*Core, error) {
	backend, err := openBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("storage initialized",
		logger.String("backend", backend.Name()),
		logger.String("key", cfg.StorageKey))

	st := store.New(backend, log, store.WithKey(cfg.StorageKey))
	return &Core{
		Backend:   backend,
		Store:     st,
		Directory: directory.New(st, log),
		logger:    log,
	}, nil
}

// Close releases the backend.
func (c *Core) Close() {
	utils.MustClose(c.Backend, c.logger)
}

func openBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (storage.Backend, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		log.Info("opening sqlite database", logger.String("path", cfg.DatabasePath()))
		b, err := sqlite.Open(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return b, nil

	case config.StorageRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redisstorage.Dial(ctx, redisstorage.DialOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisstorage.NewBackend(client), nil

	case config.StorageMemory:
		log.Warn("using in-memory storage, changes are lost on exit")
		return storage.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
}
