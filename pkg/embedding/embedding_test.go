package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	calls   atomic.Int64
	release chan struct{}
	err     error
}

func (p *countingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.calls.Add(1)
	if p.release != nil {
		<-p.release
	}
	if p.err != nil {
		return nil, p.err
	}
	return []float32{float32(len(text)), 1}, nil
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]float32
}

func (m *mapCache) Get(_ context.Context, text string) ([]float32, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[text]
	return v, ok, nil
}

func (m *mapCache) Set(_ context.Context, text string, vec []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[text] = vec
	return nil
}

func TestCachedEmbedderReusesVector(t *testing.T) {
	p := &countingProvider{}
	c, err := NewCachedEmbedder(p, 10, nil, nil)
	require.NoError(t, err)

	first, err := c.Embed(context.Background(), "como reinicio el router")
	require.NoError(t, err)
	second, err := c.Embed(context.Background(), "como reinicio el router")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), p.calls.Load())
	assert.Equal(t, CacheStats{Hits: 1, Misses: 1, Size: 1}, c.Stats())
}

func TestCachedEmbedderReturnsCopies(t *testing.T) {
	c, err := NewCachedEmbedder(&countingProvider{}, 10, nil, nil)
	require.NoError(t, err)

	v, err := c.Embed(context.Background(), "abc")
	require.NoError(t, err)
	v[0] = 99

	again, err := c.Embed(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, float32(3), again[0])
}

func TestCachedEmbedderEvictsLeastRecentlyUsed(t *testing.T) {
	p := &countingProvider{}
	c, err := NewCachedEmbedder(p, 2, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, _ = c.Embed(ctx, "a")
	_, _ = c.Embed(ctx, "bb")
	_, _ = c.Embed(ctx, "a")   // a is now most recent
	_, _ = c.Embed(ctx, "ccc") // evicts bb
	require.Equal(t, int64(3), p.calls.Load())

	_, _ = c.Embed(ctx, "a")
	assert.Equal(t, int64(3), p.calls.Load())

	_, _ = c.Embed(ctx, "bb")
	assert.Equal(t, int64(4), p.calls.Load())
}

func TestCachedEmbedderCollapsesConcurrentMisses(t *testing.T) {
	p := &countingProvider{release: make(chan struct{})}
	c, err := NewCachedEmbedder(p, 10, nil, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]float32, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Embed(context.Background(), "misma pregunta")
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	close(p.release)
	wg.Wait()

	assert.Equal(t, int64(1), p.calls.Load())
	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func TestCachedEmbedderDoesNotCacheErrors(t *testing.T) {
	p := &countingProvider{err: errors.New("model down")}
	c, err := NewCachedEmbedder(p, 10, nil, nil)
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), "x")
	assert.EqualError(t, err, "model down")
	_, err = c.Embed(context.Background(), "x")
	assert.Error(t, err)
	assert.Equal(t, int64(2), p.calls.Load())
}

func TestCachedEmbedderHonoursCancellation(t *testing.T) {
	p := &countingProvider{release: make(chan struct{})}
	defer close(p.release)
	c, err := NewCachedEmbedder(p, 10, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Embed(ctx, "lenta")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCachedEmbedderUsesSharedCache(t *testing.T) {
	p := &countingProvider{}
	shared := &mapCache{data: map[string][]float32{"remota": {0.6, 0.8}}}
	c, err := NewCachedEmbedder(p, 10, shared, nil)
	require.NoError(t, err)

	v, err := c.Embed(context.Background(), "remota")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.6, 0.8}, v)
	assert.Zero(t, p.calls.Load())

	_, err = c.Embed(context.Background(), "local")
	require.NoError(t, err)
	_, found, _ := shared.Get(context.Background(), "local")
	assert.True(t, found)
}

func TestOllamaProviderNormalises(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req ollamaEmbeddingRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "all-minilm", req.Model)
		assert.Equal(t, WarmUpText, req.Prompt)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"embedding": []float64{3, 4}})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "")
	require.NoError(t, WarmUp(context.Background(), p))

	v, err := p.Embed(context.Background(), WarmUpText)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, v, 1e-6)
}

func TestOllamaProviderErrors(t *testing.T) {
	missing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer missing.Close()

	_, err := NewOllamaProvider(missing.URL, "x").Embed(context.Background(), "hola")
	assert.ErrorContains(t, err, "status 404")

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":[]}`))
	}))
	defer empty.Close()

	_, err = NewOllamaProvider(empty.URL, "x").Embed(context.Background(), "hola")
	assert.ErrorIs(t, err, ErrEmptyEmbedding)
}

func TestVectorEncoding(t *testing.T) {
	vec := []float32{0.25, -1.5, 3}
	out, err := decodeVector(encodeVector(vec))
	require.NoError(t, err)
	assert.Equal(t, vec, out)

	_, err = decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}
