// Package ingest reads manuals, segments them, embeds every segment and
// writes the result to the index.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/SantanaPablo/Manuales-IA/internal/pkg/logger"
	"github.com/SantanaPablo/Manuales-IA/pkg/embedding"
	"github.com/SantanaPablo/Manuales-IA/pkg/events"
	"github.com/SantanaPablo/Manuales-IA/pkg/index"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/segment"
	"github.com/SantanaPablo/Manuales-IA/pkg/reader"
	"github.com/SantanaPablo/Manuales-IA/pkg/worker"

	"golang.org/x/sync/errgroup"
)

type Status string

const (
	StatusIndexed     Status = "indexed"
	StatusSkipped     Status = "skipped" // already indexed
	StatusEmpty       Status = "empty"   // no text or no segments
	StatusUnsupported Status = "unsupported"
	StatusFailed      Status = "failed"
)

// FileResult reports what happened to one document.
type FileResult struct {
	DocumentID string        `json:"document_id"`
	Path       string        `json:"path"`
	Status     Status        `json:"status"`
	Segments   int           `json:"segments"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`

	Err error `json:"-"`
}

type Config struct {
	MaxTokens        int
	Stride           int
	EmbedConcurrency int
	// Origin tags published events so a process can ignore its own.
	Origin string
}

type Ingestor struct {
	readers   *reader.Registry
	segmenter *segment.Segmenter
	embedder  embedding.EmbeddingProvider
	index     index.Index
	pool      *worker.Pool
	publisher events.Publisher
	cfg       Config
	logger    logger.ILogger
}

func NewIngestor(
	readers *reader.Registry,
	segmenter *segment.Segmenter,
	embedder embedding.EmbeddingProvider,
	idx index.Index,
	pool *worker.Pool,
	publisher events.Publisher,
	cfg Config,
	log logger.ILogger,
) *Ingestor {
	if cfg.EmbedConcurrency <= 0 {
		cfg.EmbedConcurrency = 1
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Ingestor{
		readers:   readers,
		segmenter: segmenter,
		embedder:  embedder,
		index:     idx,
		pool:      pool,
		publisher: publisher,
		cfg:       cfg,
		logger:    log,
	}
}

// IngestFolder processes every supported file directly inside dir on the
// worker pool. One failing document never stops the others.
func (i *Ingestor) IngestFolder(ctx context.Context, dir string) ([]FileResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !i.readers.Supports(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	return i.IngestPaths(ctx, paths), nil
}

// IngestPaths returns one result per path, in the order given.
func (i *Ingestor) IngestPaths(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, len(paths))
	var wg sync.WaitGroup

	for n, path := range paths {
		n, path := n, path
		wg.Add(1)
		err := i.pool.Submit(ctx, func() {
			defer wg.Done()
			results[n] = i.IngestFile(ctx, path)
		})
		if err != nil {
			wg.Done()
			results[n] = failed(filepath.Base(path), path, err, 0)
		}
	}
	wg.Wait()
	return results
}

// IngestFile indexes one file unless its first segment id is already present.
func (i *Ingestor) IngestFile(ctx context.Context, path string) FileResult {
	start := time.Now()
	docID := filepath.Base(path)

	if !i.readers.Supports(path) {
		return FileResult{DocumentID: docID, Path: path, Status: StatusUnsupported}
	}

	indexed, err := index.AlreadyIndexed(ctx, i.index, docID)
	if err != nil {
		return i.fail(ctx, docID, path, fmt.Errorf("check index: %w", err), start)
	}
	if indexed {
		i.logger.Info("INGEST", "Document already indexed, skipping", map[string]interface{}{"document": docID})
		return FileResult{DocumentID: docID, Path: path, Status: StatusSkipped, Duration: time.Since(start)}
	}

	doc, err := i.readers.Read(path)
	if err != nil {
		return i.fail(ctx, docID, path, err, start)
	}
	if doc.Text == "" {
		i.logger.Warn("INGEST", "Document has no text", map[string]interface{}{"document": docID})
		return FileResult{DocumentID: docID, Path: path, Status: StatusEmpty, Duration: time.Since(start)}
	}

	result := i.IngestDocument(ctx, doc)
	result.Duration = time.Since(start)
	return result
}

// IngestDocument segments, embeds and writes an already extracted document.
// It does not check the index first.
func (i *Ingestor) IngestDocument(ctx context.Context, doc reader.Document) FileResult {
	start := time.Now()

	segments, err := i.segmenter.SegmentDocument(doc.ID, doc.Text, i.cfg.MaxTokens, i.cfg.Stride)
	if err != nil {
		return i.fail(ctx, doc.ID, doc.Path, err, start)
	}
	if len(segments) == 0 {
		return FileResult{DocumentID: doc.ID, Path: doc.Path, Status: StatusEmpty, Duration: time.Since(start)}
	}

	entries, err := i.embedSegments(ctx, segments)
	if err != nil {
		return i.fail(ctx, doc.ID, doc.Path, err, start)
	}

	if err := i.index.Upsert(ctx, entries); err != nil {
		return i.fail(ctx, doc.ID, doc.Path, fmt.Errorf("write index: %w", err), start)
	}

	i.logger.Info("INGEST", "Document indexed", map[string]interface{}{
		"document": doc.ID,
		"segments": len(entries),
	})
	i.publish(ctx, events.DocumentIndexed, map[string]interface{}{
		"document_id": doc.ID,
		"segments":    len(entries),
	})

	return FileResult{
		DocumentID: doc.ID,
		Path:       doc.Path,
		Status:     StatusIndexed,
		Segments:   len(entries),
		Duration:   time.Since(start),
	}
}

// embedSegments embeds in parallel; entries keep segment order.
func (i *Ingestor) embedSegments(ctx context.Context, segments []segment.Segment) ([]index.Entry, error) {
	entries := make([]index.Entry, len(segments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.cfg.EmbedConcurrency)
	for n, seg := range segments {
		n, seg := n, seg
		g.Go(func() error {
			vec, err := i.embedder.Embed(gctx, seg.Body)
			if err != nil {
				return fmt.Errorf("embed segment %d: %w", seg.SequenceIndex, err)
			}
			entries[n] = index.NewEntry(seg, vec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (i *Ingestor) fail(ctx context.Context, docID, path string, err error, start time.Time) FileResult {
	i.logger.Error("INGEST", "Document failed", map[string]interface{}{
		"document": docID,
		"error":    err.Error(),
	})
	i.publish(ctx, events.DocumentFailed, map[string]interface{}{
		"document_id": docID,
		"error":       err.Error(),
	})
	return failed(docID, path, err, time.Since(start))
}

func failed(docID, path string, err error, d time.Duration) FileResult {
	return FileResult{
		DocumentID: docID,
		Path:       path,
		Status:     StatusFailed,
		Error:      err.Error(),
		Err:        err,
		Duration:   d,
	}
}

func (i *Ingestor) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if i.publisher == nil {
		return
	}
	if i.cfg.Origin != "" {
		data["origin"] = i.cfg.Origin
	}
	if err := i.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		i.logger.Warn("INGEST", "Failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

// Summary counts results per status.
func Summary(results []FileResult) map[Status]int {
	out := make(map[Status]int)
	for _, r := range results {
		out[r.Status]++
	}
	return out
}

// IsFailure reports whether err came from a document rather than the pipeline itself.
func IsFailure(r FileResult) bool {
	return r.Status == StatusFailed && !errors.Is(r.Err, worker.ErrPoolClosed)
}
