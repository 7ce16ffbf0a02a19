package mapper

import (
	"github.com/SantanaPablo/Manuales-IA/internal/dto"
	"github.com/SantanaPablo/Manuales-IA/internal/entity"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/ingest"
)

type IngestJobMapper struct{}

func NewIngestJobMapper() *IngestJobMapper {
	return &IngestJobMapper{}
}

func (m *IngestJobMapper) ToResponse(job *entity.IngestJob) *dto.IngestJobResponse {
	if job == nil {
		return nil
	}
	return &dto.IngestJobResponse{
		Id:        job.Id,
		Path:      job.Path,
		Status:    job.Status,
		Error:     job.Error,
		Files:     m.ToFileResults(job.Results),
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}

func (m *IngestJobMapper) ToFileResults(results []ingest.FileResult) []dto.IngestFileResult {
	out := make([]dto.IngestFileResult, len(results))
	for i, r := range results {
		out[i] = dto.IngestFileResult{
			DocumentId: r.DocumentID,
			Status:     string(r.Status),
			Segments:   r.Segments,
			Error:      r.Error,
			Duration:   r.Duration.String(),
		}
	}
	return out
}
