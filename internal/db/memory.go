package db

import (
	"context"
	"sync"

	"fitplan/internal/models"
)

// MemoryStore keeps the profile in process memory. It is used when no
// persistent store is configured and by tests.
type MemoryStore struct {
	mu      sync.RWMutex
	profile *models.Profile
	nextID  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(_ context.Context) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profile.Clone(), nil
}

func (m *MemoryStore) Replace(_ context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	m.profile = p.Clone()
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) Persistent() bool { return false }
