package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/SantanaPablo/Manuales-IA/internal/dto"
	"github.com/SantanaPablo/Manuales-IA/internal/pkg/logger"
	"github.com/SantanaPablo/Manuales-IA/internal/service"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Client is one websocket connection. Questions are answered one at a time,
// in the order they arrive.
type Client struct {
	ID   uuid.UUID
	Hub  *Hub
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	search    service.ISearchService
	questions chan string
	done      chan struct{}
	logger    logger.ILogger
}

// readPump reads questions until the connection fails.
func (c *Client) readPump(cancel context.CancelFunc) {
	defer func() {
		cancel()
		close(c.questions)
		close(c.done)
		c.Hub.leave(c)
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WEBSOCKET", "Unexpected close", map[string]interface{}{"error": err.Error()})
			}
			return
		}

		var req dto.WsQuestion
		if err := json.Unmarshal(raw, &req); err != nil {
			c.reply(dto.WsMessage{Tipo: dto.WsTypeError, Error: "Mensaje inválido"})
			continue
		}
		pregunta := strings.TrimSpace(req.Pregunta)
		if pregunta == "" {
			c.reply(dto.WsMessage{Tipo: dto.WsTypeError, Error: "La pregunta es requerida."})
			continue
		}

		select {
		case c.questions <- pregunta:
		default:
			c.reply(dto.WsMessage{Tipo: dto.WsTypeError, Error: "Demasiadas preguntas pendientes"})
		}
	}
}

// answerLoop streams one answer at a time into Send.
func (c *Client) answerLoop(ctx context.Context) {
	for pregunta := range c.questions {
		stream, err := c.search.Stream(ctx, pregunta)
		if err != nil {
			c.enqueue(dto.WsMessage{Tipo: dto.WsTypeError, Error: err.Error()})
			continue
		}
		for fragment := range stream.Fragments() {
			c.enqueue(dto.WsMessage{Tipo: dto.WsTypeFragment, Respuesta: fragment.Text})
		}
		stream.Close()
		c.enqueue(dto.WsMessage{Tipo: dto.WsTypeDone})
	}
}

// enqueue drops the message once the connection is gone.
func (c *Client) enqueue(msg dto.WsMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.Send <- payload:
	case <-c.done:
	}
}

// reply is used by the reader, which must never block on a full Send.
func (c *Client) reply(msg dto.WsMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.Send <- payload:
	default:
	}
}

// writePump pumps messages to the websocket connection and keeps it alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
