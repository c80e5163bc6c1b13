package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"multimodal-assistant-be/internal/pkg/logger"
	"multimodal-assistant-be/pkg/events"
)

// Hub pushes dispatch events to the browser tabs of the session they belong to.
type Hub struct {
	// session id -> open connections (several tabs may share a session)
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
	closed  bool

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  log,
	}
}

func (h *Hub) add(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.clients[client.sessionID] == nil {
		h.clients[client.sessionID] = make(map[*Client]struct{})
	}
	h.clients[client.sessionID][client] = struct{}{}
	h.logger.Debug("WS", "Client registered", map[string]interface{}{"session_id": client.sessionID})
	return true
}

// remove is safe to call more than once per client
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[client.sessionID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.sessionID)
	}
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, id)
	}
	return nil
}

// Connections reports how many sockets are open for sessionID
func (h *Hub) Connections(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

type wireEvent struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

// Publish delivers event to the session named in its "session_id" payload
// field. Events without one, or for sessions with no open socket, are dropped.
func (h *Hub) Publish(_ context.Context, event events.Event) error {
	sessionID, _ := event.Payload()["session_id"].(string)
	if sessionID == "" {
		return nil
	}

	data, err := json.Marshal(wireEvent{
		Type:       event.EventType(),
		OccurredAt: event.Timestamp(),
		Data:       event.Payload(),
	})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[sessionID] {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("WS", "Client send buffer full, dropping event", map[string]interface{}{"session_id": sessionID})
		}
	}
	return nil
}
