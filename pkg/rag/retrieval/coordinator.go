// Package retrieval turns a question into the context handed to the model.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SantanaPablo/Manuales-IA/internal/pkg/logger"
	"github.com/SantanaPablo/Manuales-IA/pkg/embedding"
	"github.com/SantanaPablo/Manuales-IA/pkg/index"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// NoRelevantInformation replaces the context when nothing was retrieved.
	NoRelevantInformation = "No se encontró información relevante"

	DefaultTopK             = 3
	DefaultMaxContextLength = 2000
	contextSeparator        = "\n"
)

// Result is what one retrieval produced. Context is never empty.
type Result struct {
	Context  string
	Hits     []index.Hit
	Found    bool
	Duration time.Duration
}

type Coordinator struct {
	embedder         embedding.EmbeddingProvider
	index            index.Index
	maxContextLength int
	logger           logger.ILogger
}

func NewCoordinator(embedder embedding.EmbeddingProvider, idx index.Index, maxContextLength int, log logger.ILogger) *Coordinator {
	if maxContextLength <= 0 {
		maxContextLength = DefaultMaxContextLength
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Coordinator{
		embedder:         embedder,
		index:            idx,
		maxContextLength: maxContextLength,
		logger:           log,
	}
}

type embedResult struct {
	vec []float32
	err error
}

// Retrieve embeds the query and looks up the topK closest segments.
// Index failures degrade to NoRelevantInformation; embedding failures are returned.
func (c *Coordinator) Retrieve(ctx context.Context, query string, topK int) (Result, error) {
	start := time.Now()
	ctx, span := otel.Tracer("rag/retrieval").Start(ctx, "retrieve")
	defer span.End()

	if topK <= 0 {
		topK = DefaultTopK
	}

	// The model call may outlive a cancelled request; the request does not wait for it.
	embedded := make(chan embedResult, 1)
	go func() {
		vec, err := c.embedder.Embed(ctx, query)
		embedded <- embedResult{vec: vec, err: err}
	}()

	var vec []float32
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-embedded:
		if r.err != nil {
			span.RecordError(r.err)
			return Result{}, fmt.Errorf("embed query: %w", r.err)
		}
		vec = r.vec
	}

	hits, err := c.index.Query(ctx, vec, topK)
	if err != nil {
		c.logger.Error("RETRIEVAL", "Index query failed", map[string]interface{}{"error": err.Error()})
		hits = nil
	}

	result := Result{Hits: hits}
	if len(hits) == 0 {
		result.Context = NoRelevantInformation
	} else {
		result.Found = true
		result.Context = c.assemble(hits)
	}
	result.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("retrieval.hits", len(hits)),
		attribute.Int("retrieval.context_length", len([]rune(result.Context))),
	)
	c.logger.Info("RETRIEVAL", "Search finished", map[string]interface{}{
		"hits":        len(hits),
		"found":       result.Found,
		"duration_ms": result.Duration.Milliseconds(),
	})
	return result, nil
}

// assemble joins hit texts in rank order and keeps the first maxContextLength characters.
func (c *Coordinator) assemble(hits []index.Hit) string {
	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Text
	}
	return Truncate(strings.Join(texts, contextSeparator), c.maxContextLength)
}

// Truncate keeps at most max characters (runes) of s.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}
