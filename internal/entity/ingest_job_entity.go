package entity

import (
	"time"

	"github.com/SantanaPablo/Manuales-IA/pkg/rag/ingest"

	"github.com/google/uuid"
)

type IngestJob struct {
	Id        uuid.UUID
	Path      string
	Status    string
	Error     string
	Results   []ingest.FileResult
	CreatedAt time.Time
	UpdatedAt time.Time
}
