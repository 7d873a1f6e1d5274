package fairlock

import "fmt"

// Node describes one group node when constructing a hierarchy. Ids must be
// dense and in slice order: node i carries ID i. Node 0 is the root and is
// its own parent; every other node names an earlier node as its parent, so
// a valid list can never contain a cycle.
//
// The root's weight may be zero because the root never competes with
// siblings. Every other weight must be positive.
type Node struct {
	ID     int
	Parent int
	Weight int
}

// node is one arena entry. Group nodes come from New, leaf nodes from
// Register. Children stay sorted by id because both paths append in id
// order.
type node struct {
	id     int
	parent int
	weight int
	leaf   bool

	children []int

	service     uint64
	bannedUntil uint64
	sliceEnd    uint64
	grants      uint64

	// pending counts parked leaves in this subtree. A parked leaf raises it
	// on every node up to the root, which is what lets the grant descent
	// find the leaf again.
	pending int

	// ready parks the leaf's goroutine. Buffered so the granting side never
	// blocks. Nil for group nodes.
	ready chan struct{}
}

// buildArena validates the construction spec and lays the group nodes out
// as a slice indexed by id, with per-parent child lists precomputed.
func buildArena(specs []Node) ([]node, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrInvalidHierarchy)
	}
	nodes := make([]node, len(specs))
	for i, s := range specs {
		if s.ID != i {
			return nil, fmt.Errorf("%w: node at position %d has id %d, ids must be dense and ordered", ErrInvalidHierarchy, i, s.ID)
		}
		if i == 0 {
			if s.Parent != 0 {
				return nil, fmt.Errorf("%w: root must be its own parent, got parent %d", ErrInvalidHierarchy, s.Parent)
			}
			if s.Weight < 0 {
				return nil, fmt.Errorf("%w: root weight %d is negative", ErrInvalidHierarchy, s.Weight)
			}
		} else {
			if s.Parent < 0 || s.Parent >= i {
				return nil, fmt.Errorf("%w: node %d has parent %d, parents must precede children", ErrInvalidHierarchy, i, s.Parent)
			}
			if s.Weight <= 0 {
				return nil, fmt.Errorf("%w: node %d weight %d must be positive", ErrInvalidHierarchy, i, s.Weight)
			}
		}
		nodes[i] = node{id: i, parent: s.Parent, weight: s.Weight}
		if i != 0 {
			nodes[s.Parent].children = append(nodes[s.Parent].children, i)
		}
	}
	return nodes, nil
}
