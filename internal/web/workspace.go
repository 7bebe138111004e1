package web

import (
	"sync"
	"time"

	"queryosity/internal/wizard"
)

// DefaultWorkspaceIdle is how long an untouched session keeps its working
// sets.
const DefaultWorkspaceIdle = 2 * time.Hour

type slot struct {
	key  string
	step any
}

type workspace struct {
	slots map[wizard.Step]slot
	seen  time.Time
}

// Workspaces holds the page-local working sets of every session. Each
// session keeps at most one working set per step; opening a step under a
// new navigation key replaces the previous one.
type Workspaces struct {
	mu        sync.Mutex
	sessions  map[string]*workspace
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewWorkspaces(idle time.Duration) *Workspaces {
	if idle <= 0 {
		idle = DefaultWorkspaceIdle
	}
	return &Workspaces{sessions: make(map[string]*workspace), idle: idle, now: time.Now}
}

func (w *Workspaces) get(sid string, step wizard.Step, key string) (any, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	w.sweepLocked(now)

	ws, ok := w.sessions[sid]
	if !ok {
		return nil, false
	}
	ws.seen = now
	s, ok := ws.slots[step]
	if !ok || s.key != key {
		return nil, false
	}
	return s.step, true
}

// put stores v unless another request stored one for the same key first,
// and returns whichever is kept.
func (w *Workspaces) put(sid string, step wizard.Step, key string, v any) any {
	w.mu.Lock()
	defer w.mu.Unlock()
	ws, ok := w.sessions[sid]
	if !ok {
		ws = &workspace{slots: make(map[wizard.Step]slot)}
		w.sessions[sid] = ws
	}
	ws.seen = w.now()
	if s, ok := ws.slots[step]; ok && s.key == key {
		return s.step
	}
	ws.slots[step] = slot{key: key, step: v}
	return v
}

func (w *Workspaces) sweepLocked(now time.Time) {
	if now.Sub(w.lastSweep) < w.idle/4 {
		return
	}
	w.lastSweep = now
	for sid, ws := range w.sessions {
		if now.Sub(ws.seen) > w.idle {
			delete(w.sessions, sid)
		}
	}
}

// Reset forgets every working set of a session.
func (w *Workspaces) Reset(sid string) {
	w.mu.Lock()
	delete(w.sessions, sid)
	w.mu.Unlock()
}

func (w *Workspaces) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.sessions)
}

// openStep returns the session's working set for step under key, opening
// a new one outside the lock when none exists.
func openStep[T any](w *Workspaces, sid string, step wizard.Step, key string, open func() T) T {
	if v, ok := w.get(sid, step, key); ok {
		if t, ok := v.(T); ok {
			return t
		}
	}
	return w.put(sid, step, key, open()).(T)
}
