package server

import (
	"context"
	"fmt"

	"tonetranslate-go/internal/config"
	"tonetranslate-go/internal/usage"

	log "github.com/sirupsen/logrus"
)

// BuildUsageStorage opens the configured usage backend. A networked backend
// that cannot be reached falls back to memory so the service still starts.
func BuildUsageStorage(ctx context.Context, cfg config.UsageConfig) (usage.Storage, error) {
	switch cfg.Backend {
	case "", "memory":
		return usage.NewMemoryStorage(), nil
	case "file":
		return usage.NewFileStorage(cfg.FileDir)
	case "redis":
		rs, err := usage.NewRedisStorage(ctx, usage.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return memoryFallback(cfg.Backend, err), nil
		}
		return rs, nil
	case "postgres":
		ps, err := usage.NewPostgresStorage(ctx, cfg.PostgresDSN)
		if err != nil {
			return memoryFallback(cfg.Backend, err), nil
		}
		return ps, nil
	case "mongodb":
		ms, err := usage.NewMongoStorage(ctx, usage.MongoOptions{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
		if err != nil {
			return memoryFallback(cfg.Backend, err), nil
		}
		return ms, nil
	default:
		return nil, fmt.Errorf("unsupported usage backend: %s", cfg.Backend)
	}
}

// 存储不可用时降级为内存，避免服务无法启动
func memoryFallback(backend string, err error) usage.Storage {
	log.WithError(err).WithField("backend", backend).Warn("usage backend unavailable, falling back to memory")
	return usage.NewMemoryStorage()
}
