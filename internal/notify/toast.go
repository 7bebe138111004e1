package notify

import (
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Toast is one transient, non-blocking user notification.
type Toast struct {
	Type    string    `json:"type"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// maxPending bounds each session queue; the oldest toast is dropped first.
const maxPending = 20

// Center queues toasts per session until a page renders them and pushes
// each one live to the session's websocket clients.
type Center struct {
	mu      sync.Mutex
	pending map[string][]Toast
	hub     *Hub
}

func NewCenter(hub *Hub) *Center {
	return &Center{pending: make(map[string][]Toast), hub: hub}
}

func (c *Center) Push(sessionID string, level Level, message string) {
	t := Toast{Type: "toast", Level: level, Message: message, At: time.Now().UTC()}

	c.mu.Lock()
	q := append(c.pending[sessionID], t)
	if len(q) > maxPending {
		q = q[len(q)-maxPending:]
	}
	c.pending[sessionID] = q
	c.mu.Unlock()

	if c.hub != nil {
		c.hub.SendJSON(sessionID, t)
	}
}

// Drain returns and forgets the queued toasts of a session, oldest first.
func (c *Center) Drain(sessionID string) []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.pending[sessionID]
	delete(c.pending, sessionID)
	return q
}

// For returns a notifier bound to one session.
func (c *Center) For(sessionID string) *SessionNotifier {
	return &SessionNotifier{center: c, sessionID: sessionID}
}

type SessionNotifier struct {
	center    *Center
	sessionID string
}

func (n *SessionNotifier) Success(msg string) { n.center.Push(n.sessionID, LevelSuccess, msg) }
func (n *SessionNotifier) Error(msg string)   { n.center.Push(n.sessionID, LevelError, msg) }
func (n *SessionNotifier) Info(msg string)    { n.center.Push(n.sessionID, LevelInfo, msg) }
