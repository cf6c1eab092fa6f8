package match

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/checkraise/checkraise/internal/matchid"
)

// Registry tracks live matches by identifier. One explicit instance
// owns every match; there is no ambient or package-level state.
type Registry struct {
	logger *log.Logger
	mu     sync.RWMutex
	list   map[string]*Match
}

// NewRegistry constructs an empty registry.
func NewRegistry(logger *log.Logger) *Registry {
	return &Registry{
		logger: logger.WithPrefix("registry"),
		list:   make(map[string]*Match),
	}
}

// Create builds and registers a match. An empty ID gets a generated
// one. Fails if the id is taken.
func (r *Registry) Create(cfg Config) (*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg.ID == "" {
		cfg.ID = matchid.New()
	}
	if _, ok := r.list[cfg.ID]; ok {
		return nil, fmt.Errorf("registry: match %q already exists", cfg.ID)
	}

	m, err := New(cfg)
	if err != nil {
		return nil, err
	}
	r.list[cfg.ID] = m
	r.logger.Info("match created", "match", cfg.ID)
	return m, nil
}

// Get retrieves a match by id.
func (r *Registry) Get(id string) (*Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.list[id]
	return m, ok
}

// Remove deletes a match by id and returns it.
func (r *Registry) Remove(id string) (*Match, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.list[id]
	if !ok {
		return nil, false
	}
	delete(r.list, id)
	r.logger.Info("match removed", "match", id)
	return m, true
}

// IDs returns a snapshot of registered match ids.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.list))
	for id := range r.list {
		ids = append(ids, id)
	}
	return ids
}
