package service

import (
	"context"

	"github.com/SantanaPablo/Manuales-IA/internal/dto"
	"github.com/SantanaPablo/Manuales-IA/pkg/embedding"
	"github.com/SantanaPablo/Manuales-IA/pkg/index"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/response"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/retrieval"
)

type ISearchService interface {
	// Stream retrieves context for the question and starts generation.
	// The caller owns the returned stream.
	Stream(ctx context.Context, pregunta string) (*response.Stream, error)
	Answer(ctx context.Context, pregunta string) (*dto.AnswerResponse, error)
	// CacheStats is nil when queries are not cached.
	CacheStats() *dto.CacheStats
}

type searchService struct {
	coordinator *retrieval.Coordinator
	generator   *response.Generator
	topK        int
	cache       *embedding.CachedEmbedder
}

func NewSearchService(coordinator *retrieval.Coordinator, generator *response.Generator, topK int, cache *embedding.CachedEmbedder) ISearchService {
	return &searchService{
		coordinator: coordinator,
		generator:   generator,
		topK:        topK,
		cache:       cache,
	}
}

func (s *searchService) CacheStats() *dto.CacheStats {
	if s.cache == nil {
		return nil
	}
	st := s.cache.Stats()
	return &dto.CacheStats{Hits: st.Hits, Misses: st.Misses, Size: st.Size}
}

func (s *searchService) Stream(ctx context.Context, pregunta string) (*response.Stream, error) {
	res, err := s.coordinator.Retrieve(ctx, pregunta, s.topK)
	if err != nil {
		return nil, err
	}
	return s.generator.Generate(ctx, pregunta, res.Context), nil
}

func (s *searchService) Answer(ctx context.Context, pregunta string) (*dto.AnswerResponse, error) {
	res, err := s.coordinator.Retrieve(ctx, pregunta, s.topK)
	if err != nil {
		return nil, err
	}

	answer, err := s.generator.Answer(ctx, pregunta, res.Context)
	if err != nil {
		return nil, err
	}

	sources := make([]dto.Source, len(res.Hits))
	for i, h := range res.Hits {
		sources[i] = dto.Source{
			Id:       h.ID,
			Filename: h.Metadata[index.MetaFilename],
			Titulo:   h.Metadata[index.MetaTitle],
			Distance: h.Distance,
		}
	}

	return &dto.AnswerResponse{
		Respuesta: answer,
		Fuentes:   sources,
		Duracion:  res.Duration.String(),
	}, nil
}
