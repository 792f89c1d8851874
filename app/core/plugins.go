package core

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/civitas-ai/civitas-ai/pkg/object-storage/s3"
)

// Cache adapts a redis client to the types.Cache contract used by the
// state management backend.
type Cache struct {
	redis redis.UniversalClient
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	return c.redis.Get(ctx, key).Result()
}

func (c *Cache) SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error {
	return c.redis.SetEx(ctx, key, value, expiresAt).Err()
}

func (c *Cache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.redis.Expire(ctx, key, expiration).Err()
}

func (c *Cache) Del(ctx context.Context, key string) error {
	return c.redis.Del(ctx, key).Err()
}

func setupCache(core *Core) {
	cfg := core.cfg.Redis
	if cfg.Addr == "" && len(cfg.ClusterAddrs) == 0 {
		return
	}

	var client redis.UniversalClient
	if cfg.Cluster {
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        cfg.ClusterAddrs,
			Password:     cfg.ClusterPasswd,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			MaxRetries:   cfg.MaxRetries,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			MaxRetries:   cfg.MaxRetries,
		})
	}

	core.cache = &Cache{redis: client}
}

// FileStorage is the contract for raw content uploads.
type FileStorage interface {
	GetStaticDomain() string
	SaveFile(ctx context.Context, fullPath string, content []byte) error
	DeleteFile(ctx context.Context, fullFilePath string) error
	GenGetObjectPreSignURL(path string) (string, error)
	DownloadFile(ctx context.Context, filePath string) (*s3.GetObjectResult, error)
}

type s3FileStorage struct {
	staticDomain string
	client       *s3.S3
}

func (s *s3FileStorage) GetStaticDomain() string {
	return s.staticDomain
}

func (s *s3FileStorage) SaveFile(ctx context.Context, fullPath string, content []byte) error {
	return s.client.UploadBytes(ctx, fullPath, content)
}

func (s *s3FileStorage) DeleteFile(ctx context.Context, fullFilePath string) error {
	return s.client.Delete(ctx, fullFilePath)
}

func (s *s3FileStorage) GenGetObjectPreSignURL(path string) (string, error) {
	return s.client.GenGetObjectPreSignURL(path)
}

func (s *s3FileStorage) DownloadFile(ctx context.Context, filePath string) (*s3.GetObjectResult, error) {
	return s.client.GetObject(ctx, filePath)
}

// localDiscardStorage keeps content upload workflows runnable without
// an object storage backend. Writes succeed without persisting, reads
// fail.
type localDiscardStorage struct{}

func (l *localDiscardStorage) GetStaticDomain() string { return "" }

func (l *localDiscardStorage) SaveFile(ctx context.Context, fullPath string, content []byte) error {
	return nil
}

func (l *localDiscardStorage) DeleteFile(ctx context.Context, fullFilePath string) error {
	return nil
}

func (l *localDiscardStorage) GenGetObjectPreSignURL(path string) (string, error) {
	return "", fmt.Errorf("object storage is not configured")
}

func (l *localDiscardStorage) DownloadFile(ctx context.Context, filePath string) (*s3.GetObjectResult, error) {
	return nil, fmt.Errorf("object storage is not configured")
}

func setupFileStorage(core *Core) {
	cfg := core.cfg.ObjectStorage
	if cfg.Driver != "s3" || cfg.S3 == nil {
		core.fileStorage = &localDiscardStorage{}
		return
	}
	core.fileStorage = &s3FileStorage{
		staticDomain: cfg.StaticDomain,
		client:       s3.NewS3Client(cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.Bucket, cfg.S3.AccessKey, cfg.S3.SecretKey),
	}
}
