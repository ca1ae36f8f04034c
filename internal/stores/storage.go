package stores

import (
	"context"
	"fmt"
	"os"

	"InkBoard/internal/core"
	"InkBoard/internal/stores/aws"
	"InkBoard/internal/stores/filesystem"
	"InkBoard/internal/stores/memory"
	"InkBoard/internal/stores/sqlite"

	"github.com/sirupsen/logrus"
)

// Config selects and configures a snapshot store.
type Config struct {
	Type           string // memory, filesystem, sqlite or s3
	LocalPath      string
	DataSourceName string
	Bucket         string
}

// ConfigFromEnv reads the store configuration from the environment.
func ConfigFromEnv() Config {
	return Config{
		Type:           os.Getenv("STORAGE_TYPE"),
		LocalPath:      os.Getenv("LOCAL_STORAGE_PATH"),
		DataSourceName: os.Getenv("DATA_SOURCE_NAME"),
		Bucket:         os.Getenv("S3_BUCKET_NAME"),
	}
}

// GetStore opens the store described by cfg. An unknown or empty type
// selects the in-memory store.
func GetStore(ctx context.Context, cfg Config) (core.SnapshotStore, error) {
	var (
		store core.SnapshotStore
		err   error
	)
	storageField := logrus.Fields{
		"storageType": cfg.Type,
	}

	switch cfg.Type {
	case "filesystem":
		basePath := cfg.LocalPath
		if basePath == "" {
			basePath = "./data"
		}
		storageField["basePath"] = basePath
		store, err = filesystem.NewStore(basePath)
	case "sqlite":
		dataSourceName := cfg.DataSourceName
		if dataSourceName == "" {
			dataSourceName = "inkboard.db"
		}
		storageField["dataSourceName"] = dataSourceName
		store, err = sqlite.NewStore(dataSourceName)
	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET_NAME must be set for s3 storage")
		}
		storageField["bucketName"] = cfg.Bucket
		store, err = aws.NewStore(ctx, cfg.Bucket)
	default:
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Type, err)
	}

	logrus.WithFields(storageField).Info("Use storage")
	return store, nil
}
