package memory

import (
	"testing"
	"time"

	"github.com/SantanaPablo/Manuales-IA/internal/entity"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/ingest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobRepositorySaveGet(t *testing.T) {
	repo := NewJobRepository()
	job := &entity.IngestJob{Id: uuid.New(), Path: "manuales/", Status: "queued", CreatedAt: time.Now()}

	repo.Save(job)
	job.Status = "running"
	job.Results = append(job.Results, ingest.FileResult{DocumentID: "a.txt"})

	got, ok := repo.Get(job.Id)
	require.True(t, ok)
	assert.Equal(t, "queued", got.Status)
	assert.Empty(t, got.Results)
	assert.Equal(t, 1, repo.Count())

	repo.Delete(job.Id)
	_, ok = repo.Get(job.Id)
	assert.False(t, ok)
}

func TestJobRepositoryUnknown(t *testing.T) {
	_, ok := NewJobRepository().Get(uuid.New())
	assert.False(t, ok)
}
