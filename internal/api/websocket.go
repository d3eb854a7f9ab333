package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/thereceipt/titlecard-engine/internal/batch"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// WebSocket message types
const (
	EventRender       = "render"
	EventBatchStarted = "batch_started"
	EventCardDone     = "card_done"
	EventResponse     = "response"
	EventError        = "error"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

// WSClient represents a connected WebSocket client
type WSClient struct {
	conn   *websocket.Conn
	send   chan WSMessage
	server *Server
	once   sync.Once
}

// Hub tracks connected clients and broadcasts batch progress to them
type Hub struct {
	clients map[*WSClient]bool
	mu      sync.RWMutex
	logger  *slog.Logger
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*WSClient]bool),
		logger:  logger,
	}
}

func (h *Hub) add(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
}

func (h *Hub) remove(client *WSClient) {
	h.mu.Lock()
	if h.clients[client] {
		delete(h.clients, client)
		client.close()
	}
	h.mu.Unlock()
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends msg to every client, dropping it for clients whose
// buffer is full
func (h *Hub) Broadcast(msg WSMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			h.logger.Warn("websocket client buffer full, dropping event", "event", msg.Event)
		}
	}
}

// OnStart implements batch.Observer
func (h *Hub) OnStart(total int) {
	h.Broadcast(WSMessage{
		Event: EventBatchStarted,
		Data:  map[string]any{"total": total},
	})
}

// OnCardDone implements batch.Observer
func (h *Hub) OnCardDone(done, total int, res batch.Result) {
	data := map[string]any{
		"done":    done,
		"total":   total,
		"id":      res.ID,
		"variant": res.Variant,
		"output":  res.Output,
		"status":  res.Status,
	}
	if res.Group != "" {
		data["group"] = res.Group
	}
	if res.ErrorKind != "" {
		data["error_kind"] = res.ErrorKind
		data["error"] = res.ErrorMsg
	}
	h.Broadcast(WSMessage{Event: EventCardDone, Data: data})
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		client.close()
	}
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		conn:   conn,
		send:   make(chan WSMessage, 256),
		server: s,
	}
	s.hub.add(client)
	s.logger.Info("websocket client connected", "remote", conn.RemoteAddr().String())

	go client.readPump()
	go client.writePump()
}

func (c *WSClient) close() {
	c.once.Do(func() { close(c.send) })
}

func (c *WSClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			c.server.logger.Debug("websocket write failed", "error", err)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *WSClient) readPump() {
	defer func() {
		c.server.hub.remove(c)
		c.conn.Close()
		c.server.logger.Info("websocket client disconnected")
	}()

	for {
		var msg WSMessage
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.server.logger.Warn("websocket read failed", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

func (c *WSClient) handleMessage(msg *WSMessage) {
	switch msg.Event {
	case EventRender:
		c.handleRenderEvent(msg.Data)
	default:
		c.sendError(fmt.Sprintf("unknown event: %s", msg.Event))
	}
}

// handleRenderEvent renders the card in data["card"] and replies with its
// result. Progress is broadcast like any other render.
func (c *WSClient) handleRenderEvent(data map[string]any) {
	raw, ok := data["card"]
	if !ok {
		c.sendError("card is required")
		return
	}

	cardBytes, _ := json.Marshal(raw)
	spec, err := cardformat.ParseCard(cardBytes)
	if err != nil {
		c.sendError(fmt.Sprintf("invalid card: %v", err))
		return
	}

	obs := c.server.observer()
	obs.OnStart(1)
	res := c.server.runner.RenderOne(context.Background(), *spec)
	obs.OnCardDone(1, 1, res)

	c.sendResponse(map[string]any{
		"success": res.Status == batch.StatusRendered,
		"result":  res,
	})
}

func (c *WSClient) sendResponse(data map[string]any) {
	c.trySend(WSMessage{Event: EventResponse, Data: data})
}

func (c *WSClient) sendError(message string) {
	c.trySend(WSMessage{
		Event: EventError,
		Data: map[string]any{
			"error": message,
		},
	})
}

// trySend queues a reply unless the client has already been closed
func (c *WSClient) trySend(msg WSMessage) {
	c.server.hub.mu.RLock()
	defer c.server.hub.mu.RUnlock()
	if !c.server.hub.clients[c] {
		return
	}
	select {
	case c.send <- msg:
	default:
		c.server.logger.Warn("websocket client buffer full, dropping reply", "event", msg.Event)
	}
}
