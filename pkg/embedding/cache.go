package embedding

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/SantanaPablo/Manuales-IA/internal/pkg/logger"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const DefaultCacheSize = 1000

// SharedCache is an optional second level shared between processes.
type SharedCache interface {
	Get(ctx context.Context, text string) ([]float32, bool, error)
	Set(ctx context.Context, text string, vec []float32) error
}

// CachedEmbedder memoises a provider with a bounded LRU keyed by exact text.
// Concurrent misses for the same text share a single model call.
type CachedEmbedder struct {
	provider EmbeddingProvider
	entries  *lru.Cache[string, []float32]
	flight   singleflight.Group
	shared   SharedCache
	logger   logger.ILogger

	hits   atomic.Int64
	misses atomic.Int64
}

func NewCachedEmbedder(provider EmbeddingProvider, size int, shared SharedCache, log logger.ILogger) (*CachedEmbedder, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &CachedEmbedder{
		provider: provider,
		entries:  entries,
		shared:   shared,
		logger:   log,
	}, nil
}

// Embed returns a copy of the cached vector, computing it on a miss.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.entries.Get(text); ok {
		c.hits.Add(1)
		return slices.Clone(vec), nil
	}

	ch := c.flight.DoChan(text, func() (interface{}, error) {
		return c.load(context.WithoutCancel(ctx), text)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]float32)), nil
	}
}

func (c *CachedEmbedder) load(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.entries.Get(text); ok {
		c.hits.Add(1)
		return vec, nil
	}
	c.misses.Add(1)

	if c.shared != nil {
		vec, found, err := c.shared.Get(ctx, text)
		if err != nil {
			c.logger.Warn("EMBEDDING", "Shared cache read failed", map[string]interface{}{"error": err.Error()})
		} else if found {
			c.entries.Add(text, vec)
			return vec, nil
		}
	}

	vec, err := c.provider.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.entries.Add(text, vec)

	if c.shared != nil {
		if err := c.shared.Set(ctx, text, vec); err != nil {
			c.logger.Warn("EMBEDDING", "Shared cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return vec, nil
}

type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

func (c *CachedEmbedder) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.entries.Len(),
	}
}
