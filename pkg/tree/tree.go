// Package tree builds an in-memory navigable tree from a stream of scanned
// entries, with memoized aggregate-size queries and a "contains a match"
// taint that propagates up to every ancestor of a matched file.
package tree

import (
	"path"
	"time"

	"github.com/soren-n/dusk/pkg/diskentry"
)

// Node is one path's worth of tree state.
type Node struct {
	Name          string
	Kind          diskentry.Kind
	DirectSize    uint64
	Modified      time.Time
	Created       time.Time
	Children      map[string]struct{}
	ContainsMatch bool
}

// Store holds every node observed so far, keyed by root-relative path.
type Store struct {
	nodes map[string]*Node
}

// New returns an empty Store.
func New() *Store {
	return &Store{nodes: make(map[string]*Node)}
}

// Clear empties the tree.
func (s *Store) Clear() {
	s.nodes = make(map[string]*Node)
}

// Upsert creates or refreshes the node at e.Relative, links it into its
// parent's children set, and — for a File — marks it and every ancestor as
// containing a match.
func (s *Store) Upsert(e diskentry.Entry) {
	node, ok := s.nodes[e.Relative]
	if !ok {
		node = &Node{Children: make(map[string]struct{})}
		if e.Kind == diskentry.File {
			node.ContainsMatch = true
		}
		s.nodes[e.Relative] = node
	}
	node.Name = e.FileName
	node.Kind = e.Kind
	node.DirectSize = e.DirectSize
	node.Modified = e.Modified
	node.Created = e.Created

	if e.Relative != "." {
		parent := path.Dir(e.Relative)
		if pn, ok := s.nodes[parent]; ok {
			pn.Children[e.Relative] = struct{}{}
		}
	}

	if e.Kind == diskentry.File {
		s.markContainsMatchUpwards(e.Relative)
	}
}

func (s *Store) markContainsMatchUpwards(relative string) {
	current := relative
	for current != "." {
		parent := path.Dir(current)
		if node, ok := s.nodes[parent]; ok {
			node.ContainsMatch = true
		}
		current = parent
	}
}

// Get returns the node at path, if any.
func (s *Store) Get(relative string) (*Node, bool) {
	n, ok := s.nodes[relative]
	return n, ok
}

// Children returns the relative paths of path's direct children.
func (s *Store) Children(relative string) []string {
	node, ok := s.nodes[relative]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(node.Children))
	for c := range node.Children {
		out = append(out, c)
	}
	return out
}

// AggregatedSize returns the recursive sum of direct sizes under relative,
// memoizing results in cache across repeated calls.
func (s *Store) AggregatedSize(relative string, cache map[string]uint64) uint64 {
	if v, ok := cache[relative]; ok {
		return v
	}
	node, ok := s.nodes[relative]
	if !ok {
		return 0
	}
	total := node.DirectSize
	if node.Kind == diskentry.Directory {
		for child := range node.Children {
			total += s.AggregatedSize(child, cache)
		}
	}
	cache[relative] = total
	return total
}
