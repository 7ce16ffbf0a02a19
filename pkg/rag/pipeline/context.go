// Package pipeline wires the retrieval pipeline once per process.
package pipeline

import (
	"context"
	"fmt"

	"github.com/SantanaPablo/Manuales-IA/internal/config"
	"github.com/SantanaPablo/Manuales-IA/internal/pkg/logger"
	"github.com/SantanaPablo/Manuales-IA/pkg/embedding"
	"github.com/SantanaPablo/Manuales-IA/pkg/events"
	"github.com/SantanaPablo/Manuales-IA/pkg/index"
	"github.com/SantanaPablo/Manuales-IA/pkg/llm"
	"github.com/SantanaPablo/Manuales-IA/pkg/llm/ollama"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/ingest"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/prompt"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/response"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/retrieval"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/segment"
	"github.com/SantanaPablo/Manuales-IA/pkg/reader"
	"github.com/SantanaPablo/Manuales-IA/pkg/tokenizer"
	"github.com/SantanaPablo/Manuales-IA/pkg/worker"
)

// PipelineContext owns the model handles, the embedding cache, the index and
// the worker pool. Build it once and share it by pointer.
type PipelineContext struct {
	Config *config.Config

	Embedder    embedding.EmbeddingProvider // raw, used for ingestion
	Cache       *embedding.CachedEmbedder   // used for queries
	Index       index.Index
	Pool        *worker.Pool
	Segmenter   *segment.Segmenter
	Readers     *reader.Registry
	Coordinator *retrieval.Coordinator
	Generator   *response.Generator
	Ingestor    *ingest.Ingestor

	logger logger.ILogger
}

type options struct {
	embedder  embedding.EmbeddingProvider
	llm       llm.LLMProvider
	index     index.Index
	tokenizer segment.Tokenizer
	splitter  segment.SentenceSplitter
	shared    embedding.SharedCache
	publisher events.Publisher
	origin    string
}

type Option func(*options)

func WithEmbeddingProvider(p embedding.EmbeddingProvider) Option {
	return func(o *options) { o.embedder = p }
}

func WithLLMProvider(p llm.LLMProvider) Option {
	return func(o *options) { o.llm = p }
}

// WithIndex replaces the chromem index built from config.
func WithIndex(idx index.Index) Option {
	return func(o *options) { o.index = idx }
}

func WithTokenizer(t segment.Tokenizer) Option {
	return func(o *options) { o.tokenizer = t }
}

func WithSentenceSplitter(s segment.SentenceSplitter) Option {
	return func(o *options) { o.splitter = s }
}

func WithSharedCache(c embedding.SharedCache) Option {
	return func(o *options) { o.shared = c }
}

// WithPublisher enables document.indexed / document.failed events tagged with origin.
func WithPublisher(p events.Publisher, origin string) Option {
	return func(o *options) {
		o.publisher = p
		o.origin = origin
	}
}

func New(cfg *config.Config, log logger.ILogger, opts ...Option) (*PipelineContext, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.embedder == nil {
		o.embedder = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
	}
	if o.llm == nil {
		o.llm = ollama.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.LLMModel, llm.DefaultOptions())
	}
	if o.index == nil {
		idx, err := index.NewChromemIndex(cfg.Index.Path, cfg.Index.CollectionName)
		if err != nil {
			return nil, fmt.Errorf("open index: %w", err)
		}
		o.index = idx
	}
	if o.tokenizer == nil {
		tok, err := tokenizer.Load(tokenizer.Options{
			Kind:     cfg.Pipeline.Tokenizer,
			File:     cfg.Pipeline.TokenizerFile,
			Model:    cfg.Pipeline.TokenizerModel,
			Encoding: cfg.Pipeline.TokenizerEncoding,
		})
		if err != nil {
			return nil, fmt.Errorf("load tokenizer: %w", err)
		}
		o.tokenizer = tok
	}
	if o.splitter == nil {
		punkt, err := segment.NewPunktSplitter()
		if err != nil {
			log.Warn("PIPELINE", "Punkt model unavailable, using punctuation splitter", map[string]interface{}{"error": err.Error()})
			o.splitter = segment.NewRegexSplitter()
		} else {
			o.splitter = punkt
		}
	}

	cache, err := embedding.NewCachedEmbedder(o.embedder, cfg.Pipeline.EmbeddingCacheSize, o.shared, log)
	if err != nil {
		return nil, fmt.Errorf("embedding cache: %w", err)
	}

	builder, err := prompt.LoadBuilder(cfg.Ai.PromptTemplateFile)
	if err != nil {
		return nil, err
	}

	pool := worker.NewPool(cfg.Pipeline.IngestWorkers, log)
	segmenter := segment.NewSegmenter(o.tokenizer, o.splitter)
	readers := reader.NewRegistry()

	p := &PipelineContext{
		Config:      cfg,
		Embedder:    o.embedder,
		Cache:       cache,
		Index:       o.index,
		Pool:        pool,
		Segmenter:   segmenter,
		Readers:     readers,
		Coordinator: retrieval.NewCoordinator(cache, o.index, cfg.Pipeline.MaxContextLength, log),
		Generator: response.NewGenerator(o.llm, builder, log,
			llm.WithModel(cfg.Ai.LLMModel),
			llm.WithTemperature(cfg.Ai.Temperature),
			llm.WithMaxTokens(cfg.Ai.NumPredict),
			llm.WithRepeatPenalty(cfg.Ai.RepeatPenalty),
			llm.WithNumThread(cfg.Ai.NumThread),
		),
		Ingestor: ingest.NewIngestor(readers, segmenter, o.embedder, o.index, pool, o.publisher, ingest.Config{
			MaxTokens:        cfg.Pipeline.MaxTokens,
			Stride:           cfg.Pipeline.Stride,
			EmbedConcurrency: cfg.Pipeline.EmbedConcurrency,
			Origin:           o.origin,
		}, log),
		logger: log,
	}

	log.Info("PIPELINE", "Pipeline ready", map[string]interface{}{
		"embedding_model": cfg.Ai.EmbeddingModel,
		"llm_model":       cfg.Ai.LLMModel,
		"index_backend":   cfg.Index.Backend,
		"workers":         pool.Size(),
	})
	return p, nil
}

// WarmUp embeds a fixed text through the cache so the first query does not pay
// for model loading. Callers treat a failure as fatal.
func (p *PipelineContext) WarmUp(ctx context.Context) error {
	if err := embedding.WarmUp(ctx, p.Cache); err != nil {
		return fmt.Errorf("warm up embedding model: %w", err)
	}
	return nil
}

// Reload re-reads the index from disk when the backend supports it.
func (p *PipelineContext) Reload() error {
	r, ok := p.Index.(interface{ Reload() error })
	if !ok {
		return nil
	}
	return r.Reload()
}

func (p *PipelineContext) Close() {
	p.Pool.Close()
}
