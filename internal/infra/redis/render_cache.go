package redis

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RenderCache stores rendered certificate PNGs: SET certificate:{id}:png {bytes} EX ttl
type RenderCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRenderCache(client *redis.Client, ttl time.Duration) *RenderCache {
	return &RenderCache{client: client, ttl: ttl}
}

func (c *RenderCache) GetImage(ctx context.Context, certificateID string) ([]byte, bool) {
	data, err := c.client.Get(ctx, c.key(certificateID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("render cache: get %s: %v", certificateID, err)
		}
		return nil, false
	}
	return data, true
}

func (c *RenderCache) PutImage(ctx context.Context, certificateID string, png []byte) {
	if err := c.client.Set(ctx, c.key(certificateID), png, c.ttl).Err(); err != nil {
		log.Printf("render cache: put %s: %v", certificateID, err)
	}
}

func (c *RenderCache) DeleteImage(ctx context.Context, certificateID string) {
	if err := c.client.Del(ctx, c.key(certificateID)).Err(); err != nil {
		log.Printf("render cache: delete %s: %v", certificateID, err)
	}
}

func (c *RenderCache) key(certificateID string) string {
	return "certificate:" + certificateID + ":png"
}
