package websocket

import (
	"context"

	"github.com/SantanaPablo/Manuales-IA/internal/pkg/logger"
	"github.com/SantanaPablo/Manuales-IA/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const pendingQuestions = 4

type Handler struct {
	hub    *Hub
	search service.ISearchService
	logger logger.ILogger
}

func NewHandler(hub *Hub, search service.ISearchService, log logger.ILogger) *Handler {
	return &Handler{hub: hub, search: search, logger: log}
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	r.Get("/ws/buscar", websocket.New(h.serve))
}

// serve runs for the lifetime of one connection.
func (h *Handler) serve(conn *websocket.Conn) {
	client := &Client{
		ID:        uuid.New(),
		Hub:       h.hub,
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
		search:    h.search,
		questions: make(chan string, pendingQuestions),
		done:      make(chan struct{}),
		logger:    h.logger,
	}
	if !h.hub.join(client) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	written := make(chan struct{})
	go func() {
		defer close(written)
		client.writePump()
	}()
	go client.answerLoop(ctx)
	client.readPump(cancel)

	// the connection is released when serve returns
	<-written
}
