package store

import (
	"context"
	"sync"

	"queryosity/pkg/models"
)

// Memory keeps records for the lifetime of the process.
type Memory struct {
	mu      sync.RWMutex
	records map[string]models.Project
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]models.Project)}
}

func (m *Memory) Get(_ context.Context, sessionID string) (models.Project, error) {
	if sessionID == "" {
		return models.Project{}, ErrNoSession
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records[sessionID].Clone(), nil
}

func (m *Memory) Replace(_ context.Context, sessionID string, p models.Project) error {
	if sessionID == "" {
		return ErrNoSession
	}
	m.mu.Lock()
	m.records[sessionID] = p.Clone()
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrNoSession
	}
	m.mu.Lock()
	delete(m.records, sessionID)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
