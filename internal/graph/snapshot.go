package graph

import (
	"sort"

	"github.com/graphsight/graphsight/internal/models"
)

// Edge is one directed relationship inside a snapshot.
type Edge struct {
	From string
	To   string
	Type models.RelationshipKind
}

// Snapshot is a read-only adjacency view over configuration items and
// relationships, valid for the duration of one analysis call. Builders must
// not mutate the inputs after construction.
type Snapshot struct {
	items    map[string]models.ConfigurationItem
	outgoing map[string][]Edge
	incoming map[string][]Edge
}

// NewSnapshot indexes the supplied items and relationships. Relationships
// referencing unknown items are dropped so that every path the engine returns
// stays inside the snapshot.
func NewSnapshot(items []models.ConfigurationItem, relationships []models.Relationship) *Snapshot {
	s := &Snapshot{
		items:    make(map[string]models.ConfigurationItem, len(items)),
		outgoing: make(map[string][]Edge),
		incoming: make(map[string][]Edge),
	}
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		s.items[item.ID] = item
	}
	for _, rel := range relationships {
		if _, ok := s.items[rel.FromID]; !ok {
			continue
		}
		if _, ok := s.items[rel.ToID]; !ok {
			continue
		}
		edge := Edge{From: rel.FromID, To: rel.ToID, Type: rel.Type}
		s.outgoing[rel.FromID] = append(s.outgoing[rel.FromID], edge)
		s.incoming[rel.ToID] = append(s.incoming[rel.ToID], edge)
	}
	return s
}

// Item returns the configuration item for id, if present.
func (s *Snapshot) Item(id string) (models.ConfigurationItem, bool) {
	item, ok := s.items[id]
	return item, ok
}

// Contains reports whether id exists in the snapshot.
func (s *Snapshot) Contains(id string) bool {
	_, ok := s.items[id]
	return ok
}

// Len returns the number of configuration items.
func (s *Snapshot) Len() int { return len(s.items) }

// Items returns all configuration items sorted by id for deterministic
// iteration.
func (s *Snapshot) Items() []models.ConfigurationItem {
	out := make([]models.ConfigurationItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Outgoing returns the edges leaving id.
func (s *Snapshot) Outgoing(id string) []Edge { return s.outgoing[id] }

// Incoming returns the edges arriving at id.
func (s *Snapshot) Incoming(id string) []Edge { return s.incoming[id] }

// step is one traversal move: the neighbor reached and the edge type crossed.
type step struct {
	next string
	rel  models.RelationshipKind
}

// steps enumerates neighbor moves from id for the given direction. Undirected
// traversal treats an edge in either orientation as connecting.
func (s *Snapshot) steps(id string, dir Direction) []step {
	var moves []step
	if dir == DirectionDownstream || dir == DirectionBoth {
		for _, e := range s.outgoing[id] {
			moves = append(moves, step{next: e.To, rel: e.Type})
		}
	}
	if dir == DirectionUpstream || dir == DirectionBoth {
		for _, e := range s.incoming[id] {
			moves = append(moves, step{next: e.From, rel: e.Type})
		}
	}
	return moves
}
