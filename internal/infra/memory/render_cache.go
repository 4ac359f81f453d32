package memory

import (
	"context"
	"sync"
	"time"
)

// RenderCache keeps rendered certificate images for a TTL.
type RenderCache struct {
	ttl   time.Duration
	clock func() time.Time

	mu     sync.RWMutex
	images map[string]cachedImage
}

type cachedImage struct {
	png       []byte
	expiresAt time.Time
}

// NewRenderCache creates a cache; ttl <= 0 keeps images until replaced.
func NewRenderCache(ttl time.Duration) *RenderCache {
	return &RenderCache{
		ttl:    ttl,
		clock:  time.Now,
		images: make(map[string]cachedImage),
	}
}

func (c *RenderCache) GetImage(_ context.Context, certificateID string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.images[certificateID]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(c.clock()) {
		return nil, false
	}
	return entry.png, true
}

func (c *RenderCache) PutImage(_ context.Context, certificateID string, png []byte) {
	entry := cachedImage{png: png}
	if c.ttl > 0 {
		entry.expiresAt = c.clock().Add(c.ttl)
	}
	c.mu.Lock()
	c.images[certificateID] = entry
	c.mu.Unlock()
}

func (c *RenderCache) DeleteImage(_ context.Context, certificateID string) {
	c.mu.Lock()
	delete(c.images, certificateID)
	c.mu.Unlock()
}
