package graph

import "github.com/graphsight/graphsight/internal/models"

// Direction selects which edge orientations a traversal follows.
type Direction string

const (
	DirectionDownstream Direction = "downstream"
	DirectionUpstream   Direction = "upstream"
	DirectionBoth       Direction = "both"
)

// Path is an ordered walk through the snapshot. Relationships[i] is the edge
// crossed between Nodes[i] and Nodes[i+1].
type Path struct {
	Nodes         []string
	Relationships []models.RelationshipKind
}

// Hops returns the number of edges on the path.
func (p Path) Hops() int {
	if len(p.Nodes) == 0 {
		return 0
	}
	return len(p.Nodes) - 1
}

// ReachableComponent tags a discovered component with its minimum hop distance
// and the relationship type of the edge it was first reached through.
type ReachableComponent struct {
	ID           string
	HopDistance  int
	Relationship models.RelationshipKind
}

type dfsFrame struct {
	nodes []string
	rels  []models.RelationshipKind
}

// FindPath locates a connecting path between fromID and toID within maxHops,
// treating edges as undirected. It returns the first path found by iterative
// depth-first exploration, which is not guaranteed to be the shortest. The
// visited check is path-local: a node blocked on one branch stays expandable
// through a shorter prefix on another, so connectivity within the hop bound
// is never missed. Cycles terminate because no node repeats on a single path
// and path length is bounded by maxHops. Missing endpoints yield no path.
func FindPath(s *Snapshot, fromID, toID string, maxHops int) (Path, bool) {
	if s == nil || !s.Contains(fromID) || !s.Contains(toID) {
		return Path{}, false
	}
	if fromID == toID {
		return Path{Nodes: []string{fromID}}, true
	}
	if maxHops < 1 {
		maxHops = 1
	}

	stack := []dfsFrame{{nodes: []string{fromID}}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		current := frame.nodes[len(frame.nodes)-1]
		if len(frame.nodes)-1 >= maxHops {
			continue
		}

		moves := s.steps(current, DirectionBoth)
		// Push in reverse so the first neighbor is explored first, matching
		// recursive depth-first order.
		for i := len(moves) - 1; i >= 0; i-- {
			move := moves[i]
			if move.next == toID {
				nodes := append(append([]string(nil), frame.nodes...), move.next)
				rels := append(append([]models.RelationshipKind(nil), frame.rels...), move.rel)
				return Path{Nodes: nodes, Relationships: rels}, true
			}
			if onPath(frame.nodes, move.next) {
				continue
			}
			nodes := append(append([]string(nil), frame.nodes...), move.next)
			rels := append(append([]models.RelationshipKind(nil), frame.rels...), move.rel)
			stack = append(stack, dfsFrame{nodes: nodes, rels: rels})
		}
	}

	return Path{}, false
}

// onPath reports whether id already occurs on the current path. Paths are at
// most maxHops+1 nodes, so the linear scan is cheaper than cloning a set per
// branch.
func onPath(nodes []string, id string) bool {
	for _, n := range nodes {
		if n == id {
			return true
		}
	}
	return false
}

type bfsItem struct {
	id  string
	hop int
	rel models.RelationshipKind
}

// Reachable returns every component within maxHops of rootID following the
// requested direction, each reported once at its minimum discovered hop count
// together with the relationship type of the edge it was first reached
// through. The root itself is not included.
func Reachable(s *Snapshot, rootID string, maxHops int, dir Direction) []ReachableComponent {
	if s == nil || !s.Contains(rootID) || maxHops < 1 {
		return nil
	}

	visited := map[string]bool{rootID: true}
	queue := []bfsItem{{id: rootID, hop: 0}}
	var found []ReachableComponent

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		if item.hop >= maxHops {
			continue
		}
		for _, move := range s.steps(item.id, dir) {
			if visited[move.next] {
				continue
			}
			visited[move.next] = true
			next := bfsItem{id: move.next, hop: item.hop + 1, rel: move.rel}
			queue = append(queue, next)
			found = append(found, ReachableComponent{
				ID:           next.id,
				HopDistance:  next.hop,
				Relationship: next.rel,
			})
		}
	}

	return found
}
