package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pcbuildsite/pcbuild-backend/config"
	"github.com/pcbuildsite/pcbuild-backend/internal/drafts/repository"
)

type StoreOptions struct {
	Backend    string
	DraftsPath string
	Redis      config.RedisConfig
	PingTO     time.Duration
}

// OpenDraftStore returns the configured draft store and a function that
// releases its resources.
func OpenDraftStore(ctx context.Context, opt StoreOptions, logger *zap.Logger) (repository.Store, func() error, error) {
	switch opt.Backend {
	case "", config.BackendFile:
		logger.Info("using file draft store", zap.String("path", opt.DraftsPath))
		return repository.NewFileStore(opt.DraftsPath, logger), func() error { return nil }, nil

	case config.BackendRedis:
		if opt.PingTO == 0 {
			opt.PingTO = 2 * time.Second
		}

		client := redis.NewClient(&redis.Options{
			Addr:     opt.Redis.Addr,
			Password: opt.Redis.Password,
			DB:       opt.Redis.DB,
		})

		pctx, cancel := context.WithTimeout(ctx, opt.PingTO)
		defer cancel()

		if err := client.Ping(pctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}

		logger.Info("using redis draft store", zap.String("addr", opt.Redis.Addr), zap.String("key", opt.Redis.DraftsKey))
		return repository.NewRedisStore(client, opt.Redis.DraftsKey, logger), client.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown drafts backend %q", opt.Backend)
}
