// Package storage is the durable key/value store the session survives in.
//
// Every implementation applies a Set or Remove batch atomically: readers see
// either all of its keys changed or none of them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venuebook/pkg/config"
	"venuebook/pkg/logger"
)

var ErrClosed = errors.New("storage is closed")

type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, entries map[string]string) error
	Remove(ctx context.Context, keys ...string) error
	Close(ctx context.Context) error
}

// Open builds the backend selected by cfg.StorageBackend.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		return NewMemory(), nil
	case config.StorageFile:
		return NewFile(cfg.StatePath)
	case config.StorageMongo:
		ctx, cancel := context.WithTimeout(ctx, connTimeout(cfg.MongoConnTimeout))
		defer cancel()
		return ConnectMongo(ctx, log, cfg.MongoURI, cfg.MongoDatabaseName)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func connTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return config.DefaultMongoConnTimeout
	}
	return d
}
