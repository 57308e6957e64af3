package poller

import (
	"fmt"
	"sync"
)

// Manager owns the pollers of every configured contest
type Manager struct {
	mu      sync.RWMutex
	pollers map[string]*Poller
	order   []string
}

// NewManager creates an empty manager
func NewManager() *Manager {
	return &Manager{pollers: make(map[string]*Poller)}
}

// Register adds a poller; contest ids must be unique
func (m *Manager) Register(p *Poller) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := p.Contest().ID
	if _, ok := m.pollers[id]; ok {
		return fmt.Errorf("contest %s already registered", id)
	}
	m.pollers[id] = p
	m.order = append(m.order, id)
	return nil
}

// Get retrieves a poller by contest id
func (m *Manager) Get(id string) (*Poller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.pollers[id]
	if !ok {
		return nil, fmt.Errorf("no poller found for contest: %s", id)
	}
	return p, nil
}

// All returns the pollers in registration order
func (m *Manager) All() []*Poller {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Poller, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.pollers[id])
	}
	return out
}

// StartAll starts every poller
func (m *Manager) StartAll() {
	for _, p := range m.All() {
		p.Start()
	}
}

// StopAll stops every poller
func (m *Manager) StopAll() {
	for _, p := range m.All() {
		p.Stop()
	}
}
