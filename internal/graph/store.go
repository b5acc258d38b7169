// Package graph holds the in-memory relationship graph of users, devices and
// flagged actors. It is a simple undirected graph: one edge per node pair,
// re-insertion overwrites the edge tag.
package graph

import (
	"sort"
	"strings"
	"sync"
)

type node struct {
	kind Kind
	adj  map[NodeID]Tag
}

// Store is safe for concurrent use. Readers see either the state before or
// after a mutation, never a partial edge.
type Store struct {
	mu    sync.RWMutex
	nodes map[NodeID]*node
	edges int
}

// NewStore creates an empty graph.
func NewStore() *Store {
	return &Store{nodes: make(map[NodeID]*node)}
}

// AddNode creates the node if absent. An existing node keeps its kind.
func (s *Store) AddNode(ref Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(ref)
}

// AddEdge creates missing endpoints and sets the edge tag. Self loops only
// create the node.
func (s *Store) AddEdge(a, b Ref, tag Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()

	na := s.ensure(a)
	if a.ID == b.ID {
		return
	}
	nb := s.ensure(b)
	if _, exists := na.adj[b.ID]; !exists {
		s.edges++
	}
	na.adj[b.ID] = tag
	nb.adj[a.ID] = tag
}

// MarkFlagged turns a node into a flagged actor, creating it if needed.
func (s *Store) MarkFlagged(id NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.ensure(Ref{ID: id, Kind: KindFlaggedActor})
	n.kind = KindFlaggedActor
}

// Has reports whether the node exists.
func (s *Store) Has(id NodeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[id]
	return ok
}

// Kind returns the node kind.
func (s *Store) Kind(id NodeID) (Kind, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return "", false
	}
	return n.kind, true
}

// Neighbors returns adjacent node ids in no particular order.
func (s *Store) Neighbors(id NodeID) []NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return []NodeID{}
	}
	out := make([]NodeID, 0, len(n.adj))
	for nb := range n.adj {
		out = append(out, nb)
	}
	return out
}

// Degree returns the number of unique neighbors, 0 for unknown nodes.
func (s *Store) Degree(id NodeID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.nodes[id]; ok {
		return len(n.adj)
	}
	return 0
}

// Neighborhood returns every neighbor with its kind and edge tag, read under
// a single lock so callers get a consistent view. ok is false for unknown nodes.
func (s *Store) Neighborhood(id NodeID) ([]Neighbor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil, false
	}
	out := make([]Neighbor, 0, len(n.adj))
	for nbID, tag := range n.adj {
		out = append(out, Neighbor{ID: nbID, Kind: s.nodes[nbID].kind, Tag: tag})
	}
	return out, true
}

// NodesOfKind lists node ids of one kind, sorted for stable output.
func (s *Store) NodesOfKind(kind Kind) []NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []NodeID
	for id, n := range s.nodes {
		if n.kind == kind {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Stats returns node and edge counts.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{Nodes: len(s.nodes), Edges: s.edges, NodesByKind: make(map[Kind]int)}
	for _, n := range s.nodes {
		st.NodesByKind[n.kind]++
	}
	return st
}

// Reset drops every node and edge.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = make(map[NodeID]*node)
	s.edges = 0
}

// ensure must be called with s.mu held for writing.
func (s *Store) ensure(ref Ref) *node {
	if n, ok := s.nodes[ref.ID]; ok {
		return n
	}
	n := &node{kind: ref.Kind, adj: make(map[NodeID]Tag)}
	s.nodes[ref.ID] = n
	return n
}

// UserIDOf strips the user namespace from a node id.
func UserIDOf(id NodeID) (string, bool) {
	return strings.CutPrefix(string(id), userPrefix)
}
