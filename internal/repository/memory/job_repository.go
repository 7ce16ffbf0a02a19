package memory

import (
	"time"

	"github.com/SantanaPablo/Manuales-IA/internal/entity"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/ingest"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	jobTTL           = 1 * time.Hour
	jobPurgeInterval = 10 * time.Minute
)

// JobRepository keeps ingestion jobs for an hour after their last update.
type JobRepository struct {
	cache *cache.Cache
}

func NewJobRepository() *JobRepository {
	return &JobRepository{
		cache: cache.New(jobTTL, jobPurgeInterval),
	}
}

// Save stores a copy, so callers may keep mutating their value.
func (r *JobRepository) Save(job *entity.IngestJob) {
	stored := *job
	stored.Results = append([]ingest.FileResult(nil), job.Results...)
	r.cache.Set(job.Id.String(), &stored, cache.DefaultExpiration)
}

func (r *JobRepository) Get(id uuid.UUID) (*entity.IngestJob, bool) {
	if x, found := r.cache.Get(id.String()); found {
		job := *x.(*entity.IngestJob)
		return &job, true
	}
	return nil, false
}

func (r *JobRepository) Delete(id uuid.UUID) {
	r.cache.Delete(id.String())
}

func (r *JobRepository) Count() int {
	return r.cache.ItemCount()
}
