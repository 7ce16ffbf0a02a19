package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/philippgille/chromem-go"
)

// ChromemIndex keeps the collection in memory and, when a path is given,
// persists it to disk.
type ChromemIndex struct {
	path string
	name string

	mu         sync.RWMutex
	collection *chromem.Collection
}

var _ Index = (*ChromemIndex)(nil)

// NewChromemIndex opens (or creates) the collection. An empty path keeps everything in memory.
func NewChromemIndex(path, collectionName string) (*ChromemIndex, error) {
	collection, err := openCollection(path, collectionName)
	if err != nil {
		return nil, err
	}
	return &ChromemIndex{
		path:       path,
		name:       collectionName,
		collection: collection,
	}, nil
}

func openCollection(path, collectionName string) (*chromem.Collection, error) {
	var (
		db  *chromem.DB
		err error
	)
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("open vector db %s: %w", path, err)
		}
	}

	collection, err := db.GetOrCreateCollection(collectionName, map[string]string{"hnsw:space": "cosine"}, nil)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", collectionName, err)
	}

	return collection, nil
}

// Reload re-reads the persisted collection so writes made by another
// process become visible. In-memory indexes are left as they are.
func (c *ChromemIndex) Reload() error {
	if c.path == "" {
		return nil
	}
	collection, err := openCollection(c.path, c.name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.collection = collection
	c.mu.Unlock()
	return nil
}

func (c *ChromemIndex) current() *chromem.Collection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collection
}

func (c *ChromemIndex) Upsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := validateEntries(entries); err != nil {
		return err
	}

	ids := make([]string, len(entries))
	vectors := make([][]float32, len(entries))
	metadatas := make([]map[string]string, len(entries))
	contents := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		vectors[i] = e.Embedding
		metadatas[i] = e.Metadata
		contents[i] = e.Text
	}

	if err := c.current().Add(ctx, ids, vectors, metadatas, contents); err != nil {
		return fmt.Errorf("add %d entries: %w", len(entries), err)
	}
	return nil
}

func (c *ChromemIndex) Exists(ctx context.Context, id string) (bool, error) {
	// GetByID only fails for unknown ids.
	if _, err := c.current().GetByID(ctx, id); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *ChromemIndex) Query(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	collection := c.current()
	count := collection.Count()
	if count == 0 || topK <= 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, Hit{
			ID:       r.ID,
			Text:     r.Content,
			Metadata: r.Metadata,
			Distance: 1 - float64(r.Similarity),
		})
	}
	return hits, nil
}

func (c *ChromemIndex) Count(ctx context.Context) (int, error) {
	return c.current().Count(), nil
}
