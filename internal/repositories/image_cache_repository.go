package repositories

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ImageCacheRepository keeps remote image URL → data URI conversions in
// Redis so repeated suggestion requests do not refetch the same images.
type ImageCacheRepository struct {
	rdb      *redis.Client
	ttl      time.Duration
	errorLog *log.Logger
}

func NewImageCacheRepository(rdb *redis.Client, ttl time.Duration, errorLog *log.Logger) *ImageCacheRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ImageCacheRepository{rdb: rdb, ttl: ttl, errorLog: errorLog}
}

func imageCacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "images:datauri:" + hex.EncodeToString(sum[:])
}

func (r *ImageCacheRepository) Get(ctx context.Context, url string) (string, bool) {
	if r == nil || r.rdb == nil {
		return "", false
	}
	val, err := r.rdb.Get(ctx, imageCacheKey(url)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && r.errorLog != nil {
			r.errorLog.Printf("image cache get: %v", err)
		}
		return "", false
	}
	return val, true
}

func (r *ImageCacheRepository) Set(ctx context.Context, url, dataURI string) {
	if r == nil || r.rdb == nil {
		return
	}
	if err := r.rdb.Set(ctx, imageCacheKey(url), dataURI, r.ttl).Err(); err != nil && r.errorLog != nil {
		r.errorLog.Printf("image cache set: %v", err)
	}
}
