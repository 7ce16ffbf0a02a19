package dto

import (
	"time"

	"github.com/google/uuid"
)

const (
	IngestJobQueued  = "queued"
	IngestJobRunning = "running"
	IngestJobDone    = "done"
	IngestJobFailed  = "failed"
)

type IngestRequest struct {
	// Path is a file or folder; empty means the configured manuals folder.
	Path string `json:"path" validate:"max=1024"`
}

type IngestAcceptedResponse struct {
	JobId uuid.UUID `json:"job_id"`
}

// PublishIngestMessage is the payload queued for the ingest consumer.
type PublishIngestMessage struct {
	JobId uuid.UUID `json:"job_id"`
	Path  string    `json:"path"`
}

type IngestFileResult struct {
	DocumentId string `json:"document_id"`
	Status     string `json:"status"`
	Segments   int    `json:"segments"`
	Error      string `json:"error,omitempty"`
	Duration   string `json:"duration"`
}

type IngestJobResponse struct {
	Id        uuid.UUID          `json:"id"`
	Path      string             `json:"path"`
	Status    string             `json:"status"`
	Error     string             `json:"error,omitempty"`
	Files     []IngestFileResult `json:"files"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}
