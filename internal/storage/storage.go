// Package storage keeps uploaded order media and hands back durable URLs.
package storage

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/repairhub/internal/config"
)

// Object describes a stored blob.
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Store persists blobs under caller-chosen keys.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (Object, error)
	Delete(ctx context.Context, key string) error
}

// Module provides the configured Store.
var Module = fx.Provide(NewStore)

// NewStore builds the store selected by STORAGE_DRIVER.
func NewStore(cfg config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Storage.Driver {
	case "local":
		logger.Info("media stored on local disk", zap.String("path", cfg.Storage.Local.Path))
		return NewLocalStore(cfg.Storage.Local.Path, cfg.Storage.PublicBaseURL), nil
	case "s3":
		logger.Info("media stored in s3", zap.String("bucket", cfg.Storage.S3.Bucket), zap.String("region", cfg.Storage.S3.Region))
		return NewS3Store(context.Background(), cfg.Storage.S3, cfg.Storage.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}
