package service

import (
	"context"

	"github.com/SantanaPablo/Manuales-IA/internal/pkg/logger"
	"github.com/SantanaPablo/Manuales-IA/pkg/events"
	pktNats "github.com/SantanaPablo/Manuales-IA/pkg/nats"
)

type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType string, handler pktNats.EventHandler) error
}

type Reloader interface {
	Reload() error
}

// IndexSyncService reloads the local index when another process reports
// that it indexed a document.
type IndexSyncService struct {
	subscriber EventSubscriber
	index      Reloader
	origin     string
	logger     logger.ILogger
}

func NewIndexSyncService(sub EventSubscriber, idx Reloader, origin string, log logger.ILogger) *IndexSyncService {
	return &IndexSyncService{
		subscriber: sub,
		index:      idx,
		origin:     origin,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *IndexSyncService) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, events.DocumentIndexed, s.handleEvent); err != nil {
		s.logger.Error("INDEX_SYNC", "Failed to start index subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("INDEX_SYNC", "Listening for "+events.DocumentIndexed, nil)
	return nil
}

func (s *IndexSyncService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	if origin, _ := payload["origin"].(string); origin != "" && origin == s.origin {
		return nil
	}

	if err := s.index.Reload(); err != nil {
		s.logger.Error("INDEX_SYNC", "Failed to reload index", map[string]interface{}{"error": err.Error()})
		return err
	}

	s.logger.Info("INDEX_SYNC", "Index reloaded", map[string]interface{}{
		"document_id": payload["document_id"],
	})
	return nil
}
