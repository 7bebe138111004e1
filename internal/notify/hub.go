package notify

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Hub tracks the websocket connections of each session.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*websocket.Conn]struct{}
}

type Stats struct {
	Sessions  int `json:"sessions"`
	WSClients int `json:"ws_clients"`
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*websocket.Conn]struct{})}
}

func (h *Hub) Add(sessionID string, ws *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[sessionID]
	if !ok {
		conns = make(map[*websocket.Conn]struct{})
		h.clients[sessionID] = conns
	}
	conns[ws] = struct{}{}
}

func (h *Hub) Remove(sessionID string, ws *websocket.Conn) {
	h.mu.Lock()
	h.removeLocked(sessionID, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

func (h *Hub) removeLocked(sessionID string, ws *websocket.Conn) {
	conns := h.clients[sessionID]
	delete(conns, ws)
	if len(conns) == 0 {
		delete(h.clients, sessionID)
	}
}

// SendJSON writes v to every connection of the session, dropping the ones
// that fail.
func (h *Hub) SendJSON(sessionID string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ws := range h.clients[sessionID] {
		_ = ws.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			h.removeLocked(sessionID, ws)
		}
	}
}

// CloseAll disconnects every client, used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sid, conns := range h.clients {
		for ws := range conns {
			_ = ws.Close()
		}
		delete(h.clients, sid)
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	st := Stats{Sessions: len(h.clients)}
	for _, conns := range h.clients {
		st.WSClients += len(conns)
	}
	return st
}
