package core

import (
	"context"
	"fmt"

	"workledger/internal/blob"
	"workledger/internal/config"
	blobfs "workledger/internal/infra/blob/fs"
	blobmem "workledger/internal/infra/blob/memory"
	blobs3 "workledger/internal/infra/blob/s3"
	"workledger/internal/infra/persistence/blobdoc"
	"workledger/internal/infra/persistence/memory"
	"workledger/internal/infra/persistence/postgres"
	"workledger/internal/infra/persistence/redis"
	"workledger/internal/infra/persistence/sqlite"
	"workledger/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageRedis    StorageDriver = "redis"    // single JSON value in Redis
	StorageBlob     StorageDriver = "blob"     // JSON objects in a blob store
)

// OpenPersistentStore opens the backend selected by cfg.Driver, defaulting to
// sqlite, and loads the stored document.
func OpenPersistentStore(ctx context.Context, cfg config.Storage, engine *domain.RulesEngine, opts ...memory.Option) (domain.PersistentStore, error) {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	driver := StorageDriver(cfg.Driver)
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(engine, opts...), nil
	case StorageSQLite:
		return storeOrNil(sqlite.NewStore(ctx, cfg.SQLitePath, engine, opts...))
	case StoragePostgres:
		return storeOrNil(postgres.NewStore(ctx, cfg.PostgresDSN, engine, opts...))
	case StorageRedis:
		return storeOrNil(redis.Open(ctx, redis.Options{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			Key:        cfg.Redis.Key,
			SessionKey: cfg.Redis.SessionKey,
		}, engine, opts...))
	case StorageBlob:
		blobs, err := OpenBlobStore(ctx, cfg.Blob)
		if err != nil {
			return nil, err
		}
		return storeOrNil(blobdoc.NewStore(ctx, blobs, cfg.Blob.Prefix, engine, opts...))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// storeOrNil keeps a failed constructor from returning a typed nil interface.
func storeOrNil[S domain.PersistentStore](store S, err error) (domain.PersistentStore, error) {
	if err != nil {
		return nil, err
	}
	return store, nil
}

// OpenBlobStore selects a blob.Store implementation, defaulting to the filesystem.
func OpenBlobStore(ctx context.Context, cfg config.Blob) (blob.Store, error) {
	driver := blob.Driver(cfg.Driver)
	if driver == "" {
		driver = blob.DriverFilesystem
	}
	switch driver {
	case blob.DriverFilesystem:
		store, err := blobfs.New(cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return store, nil
	case blob.DriverMemory:
		return blobmem.New(), nil
	case blob.DriverS3:
		store, err := blobs3.New(ctx, blobs3.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			PathStyle:       cfg.S3.PathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
