package service

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/SantanaPablo/Manuales-IA/internal/dto"
	"github.com/SantanaPablo/Manuales-IA/internal/entity"
	"github.com/SantanaPablo/Manuales-IA/internal/mapper"
	"github.com/SantanaPablo/Manuales-IA/internal/repository/memory"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IIngestService interface {
	Submit(ctx context.Context, req *dto.IngestRequest) (*dto.IngestAcceptedResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.IngestJobResponse, error)
}

type ingestService struct {
	publisher     IPublisherService
	jobs          *memory.JobRepository
	mapper        *mapper.IngestJobMapper
	manualsFolder string
}

func NewIngestService(publisher IPublisherService, jobs *memory.JobRepository, manualsFolder string) IIngestService {
	return &ingestService{
		publisher:     publisher,
		jobs:          jobs,
		mapper:        mapper.NewIngestJobMapper(),
		manualsFolder: manualsFolder,
	}
}

// Submit queues an ingestion job. Paths are resolved against the manuals
// folder and may not leave it.
func (s *ingestService) Submit(ctx context.Context, req *dto.IngestRequest) (*dto.IngestAcceptedResponse, error) {
	path, err := s.resolve(req.Path)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	job := &entity.IngestJob{
		Id:        uuid.New(),
		Path:      path,
		Status:    dto.IngestJobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.jobs.Save(job)

	payload, err := json.Marshal(dto.PublishIngestMessage{JobId: job.Id, Path: path})
	if err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.jobs.Delete(job.Id)
		return nil, err
	}

	return &dto.IngestAcceptedResponse{JobId: job.Id}, nil
}

func (s *ingestService) Show(ctx context.Context, id uuid.UUID) (*dto.IngestJobResponse, error) {
	job, ok := s.jobs.Get(id)
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "Ingest job not found")
	}
	return s.mapper.ToResponse(job), nil
}

// resolve follows symlinks before the containment check, so a link inside
// the manuals folder cannot point ingestion elsewhere.
func (s *ingestService) resolve(path string) (string, error) {
	root, err := filepath.Abs(s.manualsFolder)
	if err != nil {
		return "", err
	}
	if root, err = evalExisting(root); err != nil {
		return "", err
	}
	if path == "" {
		return root, nil
	}

	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	if target, err = evalExisting(filepath.Clean(target)); err != nil {
		return "", err
	}

	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fiber.NewError(fiber.StatusBadRequest, "La ruta debe estar dentro de la carpeta de manuales.")
	}
	return target, nil
}

// evalExisting resolves symlinks in the longest existing prefix of path. The
// missing remainder is kept as is so the job can report it.
func evalExisting(path string) (string, error) {
	var missing []string
	for {
		resolved, err := filepath.EvalSymlinks(path)
		if err == nil {
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path, nil
		}
		missing = append(missing, filepath.Base(path))
		path = parent
	}
}
