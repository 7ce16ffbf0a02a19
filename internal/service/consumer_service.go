package service

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/SantanaPablo/Manuales-IA/internal/dto"
	"github.com/SantanaPablo/Manuales-IA/internal/entity"
	"github.com/SantanaPablo/Manuales-IA/internal/mapper"
	"github.com/SantanaPablo/Manuales-IA/internal/pkg/logger"
	"github.com/SantanaPablo/Manuales-IA/internal/repository/memory"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/ingest"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// FileIngestor is the part of ingest.Ingestor the consumer needs.
type FileIngestor interface {
	IngestFolder(ctx context.Context, dir string) ([]ingest.FileResult, error)
	IngestFile(ctx context.Context, path string) ingest.FileResult
}

// JobNotifier pushes finished jobs to connected clients.
type JobNotifier interface {
	Broadcast(v interface{})
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	ingestor   FileIngestor
	jobs       *memory.JobRepository
	mapper     *mapper.IngestJobMapper
	notifier   JobNotifier
	logger     logger.ILogger
}

// notifier may be nil.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	ingestor FileIngestor,
	jobs *memory.JobRepository,
	notifier JobNotifier,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		ingestor:   ingestor,
		jobs:       jobs,
		mapper:     mapper.NewIngestJobMapper(),
		notifier:   notifier,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Invalid ingest message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // redelivery cannot fix a bad payload
		return
	}

	job, ok := cs.jobs.Get(payload.JobId)
	if !ok {
		job = &entity.IngestJob{Id: payload.JobId, Path: payload.Path, CreatedAt: time.Now()}
	}
	job.Status = dto.IngestJobRunning
	job.UpdatedAt = time.Now()
	cs.jobs.Save(job)

	cs.logger.Info("CONSUMER", "Ingest job started", map[string]interface{}{
		"job_id": payload.JobId.String(),
		"path":   payload.Path,
	})

	results, err := cs.run(ctx, payload.Path)

	job.Results = results
	job.UpdatedAt = time.Now()
	if err != nil {
		job.Status = dto.IngestJobFailed
		job.Error = err.Error()
	} else {
		job.Status = dto.IngestJobDone
	}
	cs.jobs.Save(job)
	if cs.notifier != nil {
		cs.notifier.Broadcast(dto.WsMessage{Tipo: dto.WsTypeIngest, Job: cs.mapper.ToResponse(job)})
	}

	summary := ingest.Summary(results)
	cs.logger.Info("CONSUMER", "Ingest job finished", map[string]interface{}{
		"job_id":  payload.JobId.String(),
		"status":  job.Status,
		"indexed": summary[ingest.StatusIndexed],
		"skipped": summary[ingest.StatusSkipped],
		"failed":  summary[ingest.StatusFailed],
	})
	msg.Ack()
}

func (cs *consumerService) run(ctx context.Context, path string) ([]ingest.FileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return cs.ingestor.IngestFolder(ctx, path)
	}

	res := cs.ingestor.IngestFile(ctx, path)
	if res.Status == ingest.StatusFailed {
		return []ingest.FileResult{res}, res.Err
	}
	return []ingest.FileResult{res}, nil
}
