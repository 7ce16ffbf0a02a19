package service

import (
	"context"
	"errors"
	"testing"

	"github.com/SantanaPablo/Manuales-IA/internal/pkg/logger"
	"github.com/SantanaPablo/Manuales-IA/pkg/events"
	pktNats "github.com/SantanaPablo/Manuales-IA/pkg/nats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingSubscriber struct {
	eventType string
	handler   pktNats.EventHandler
}

func (c *capturingSubscriber) Subscribe(_ context.Context, eventType string, handler pktNats.EventHandler) error {
	c.eventType = eventType
	c.handler = handler
	return nil
}

type countingReloader struct {
	calls int
	err   error
}

func (c *countingReloader) Reload() error {
	c.calls++
	return c.err
}

func TestIndexSyncReloadsOnForeignEvents(t *testing.T) {
	sub := &capturingSubscriber{}
	idx := &countingReloader{}
	svc := NewIndexSyncService(sub, idx, "rest-1", logger.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, svc.Start(ctx))
	assert.Equal(t, events.DocumentIndexed, sub.eventType)

	require.NoError(t, sub.handler(ctx, events.New(events.DocumentIndexed, map[string]interface{}{"origin": "rest-1"})))
	assert.Equal(t, 0, idx.calls)

	require.NoError(t, sub.handler(ctx, events.New(events.DocumentIndexed, map[string]interface{}{"origin": "cli-7", "document_id": "a.txt"})))
	assert.Equal(t, 1, idx.calls)
}

func TestIndexSyncReturnsReloadError(t *testing.T) {
	sub := &capturingSubscriber{}
	idx := &countingReloader{err: errors.New("disk")}
	svc := NewIndexSyncService(sub, idx, "rest-1", logger.NewNopLogger())
	require.NoError(t, svc.Start(context.Background()))

	err := sub.handler(context.Background(), events.New(events.DocumentIndexed, map[string]interface{}{}))

	assert.Error(t, err)
}
