package store

import (
	"log/slog"
	"sync"

	"github.com/graphsight/graphsight/internal/graph"
	"github.com/graphsight/graphsight/internal/models"
)

// Memory holds the mutable topology and event set behind a read/write lock.
// Analysis callers never touch the live maps: Snapshot returns an immutable
// copy so concurrent ingestion cannot corrupt a running analysis.
type Memory struct {
	mu            sync.RWMutex
	logger        *slog.Logger
	items         map[string]models.ConfigurationItem
	relationships []models.Relationship
	events        []models.Event
	generation    uint64
}

// NewMemory constructs an empty store.
func NewMemory(logger *slog.Logger) *Memory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Memory{
		logger: logger,
		items:  make(map[string]models.ConfigurationItem),
	}
}

// UpsertItems inserts or replaces configuration items by id.
func (s *Memory) UpsertItems(items ...models.ConfigurationItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		s.items[item.ID] = item
	}
	s.generation++
}

// AddRelationships appends relationships. Duplicates are allowed; edges
// referencing unknown items are kept and simply dropped at snapshot time.
func (s *Memory) AddRelationships(rels ...models.Relationship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relationships = append(s.relationships, rels...)
	s.generation++
}

// ReplaceTopology swaps the whole component/relationship set atomically.
// Existing events are retained.
func (s *Memory) ReplaceTopology(items []models.ConfigurationItem, rels []models.Relationship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]models.ConfigurationItem, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		s.items[item.ID] = item
	}
	s.relationships = append([]models.Relationship(nil), rels...)
	s.generation++
	s.logger.Info("topology replaced",
		slog.Int("items", len(s.items)),
		slog.Int("relationships", len(s.relationships)),
	)
}

// AppendEvents adds events to the store.
func (s *Memory) AppendEvents(events ...models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	s.generation++
}

// Snapshot returns an immutable adjacency view plus a frozen copy of the
// event list and the store generation at capture time. The generation changes
// on every mutation, making it usable as a cache-key component.
func (s *Memory) Snapshot() (*graph.Snapshot, []models.Event, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.ConfigurationItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	rels := append([]models.Relationship(nil), s.relationships...)
	events := append([]models.Event(nil), s.events...)

	return graph.NewSnapshot(items, rels), events, s.generation
}

// Counts reports current store sizes.
func (s *Memory) Counts() (items, relationships, events int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), len(s.relationships), len(s.events)
}
