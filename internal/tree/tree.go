// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tree provides an ordered forest used to navigate categories and
// comment threads. Rows are stored as an adjacency list (parent_id) and the
// forest is assembled once per read, so listing a subtree never needs a
// recursive query.
package tree

import (
	"cmp"
	"fmt"
	"iter"
	"slices"

	"threadpress/internal/models"
)

type node[K comparable] struct {
	parent    K
	hasParent bool
	children  []K
	depth     int
}

// Forest is an ordered set of trees. Children keep insertion order, which
// callers feed in creation-time order. A Forest is not safe for concurrent
// mutation; build it, then share it read-only.
type Forest[K comparable] struct {
	nodes map[K]*node[K]
	roots []K
}

// New returns an empty forest.
func New[K comparable]() *Forest[K] {
	return &Forest[K]{nodes: make(map[K]*node[K])}
}

// Len returns the number of nodes in the forest.
func (f *Forest[K]) Len() int {
	return len(f.nodes)
}

// Has reports whether id is a node of the forest.
func (f *Forest[K]) Has(id K) bool {
	_, ok := f.nodes[id]
	return ok
}

// Insert appends id as the last child of parent, or as a new root when
// parent is nil. It fails with models.ErrInvalidParent if the parent is not
// in the forest.
func (f *Forest[K]) Insert(id K, parent *K) error {
	if _, exists := f.nodes[id]; exists {
		return fmt.Errorf("insert %v: duplicate node", id)
	}

	if parent == nil {
		f.nodes[id] = &node[K]{}
		f.roots = append(f.roots, id)
		return nil
	}

	p, ok := f.nodes[*parent]
	if !ok {
		return fmt.Errorf("insert %v under %v: %w", id, *parent, models.ErrInvalidParent)
	}
	f.nodes[id] = &node[K]{parent: *parent, hasParent: true, depth: p.depth + 1}
	p.children = append(p.children, id)
	return nil
}

// Roots returns the root ids in insertion order.
func (f *Forest[K]) Roots() []K {
	return slices.Clone(f.roots)
}

// ChildrenOf returns the direct children of id in insertion order. Unknown
// ids have no children.
func (f *Forest[K]) ChildrenOf(id K) []K {
	n, ok := f.nodes[id]
	if !ok {
		return nil
	}
	return slices.Clone(n.children)
}

// ParentOf returns the parent of id and whether it has one.
func (f *Forest[K]) ParentOf(id K) (K, bool) {
	n, ok := f.nodes[id]
	if !ok || !n.hasParent {
		var zero K
		return zero, false
	}
	return n.parent, true
}

// DepthOf returns 0 for a root and parent depth + 1 for every child.
func (f *Forest[K]) DepthOf(id K) (int, error) {
	n, ok := f.nodes[id]
	if !ok {
		return 0, fmt.Errorf("depth of %v: %w", id, models.ErrNotFound)
	}
	return n.depth, nil
}

// IsDescendant reports whether a lies anywhere under b. A node is not its
// own descendant.
func (f *Forest[K]) IsDescendant(a, b K) bool {
	n, ok := f.nodes[a]
	if !ok {
		return false
	}
	for n.hasParent {
		if n.parent == b {
			return true
		}
		n = f.nodes[n.parent]
	}
	return false
}

// CheckParent validates that parent may become the parent of id without
// creating a cycle.
func (f *Forest[K]) CheckParent(id, parent K) error {
	if !f.Has(parent) {
		return fmt.Errorf("parent %v: %w", parent, models.ErrInvalidParent)
	}
	if id == parent || f.IsDescendant(parent, id) {
		return fmt.Errorf("parent %v of %v: %w", parent, id, models.ErrCyclicHierarchy)
	}
	return nil
}

// Subtree yields id and all of its descendants in pre-order. The sequence
// is restartable and yields nothing for an unknown id.
func (f *Forest[K]) Subtree(id K) iter.Seq[K] {
	return func(yield func(K) bool) {
		if !f.Has(id) {
			return
		}
		f.walk(id, func(k K, _ int) bool { return yield(k) })
	}
}

// Walk yields every node of the forest in pre-order together with its depth.
func (f *Forest[K]) Walk() iter.Seq2[K, int] {
	return func(yield func(K, int) bool) {
		for _, r := range f.roots {
			if !f.walk(r, yield) {
				return
			}
		}
	}
}

func (f *Forest[K]) walk(id K, yield func(K, int) bool) bool {
	n := f.nodes[id]
	if !yield(id, n.depth) {
		return false
	}
	for _, c := range n.children {
		if !f.walk(c, yield) {
			return false
		}
	}
	return true
}

// Remove deletes id together with its whole subtree and returns the removed
// ids in pre-order.
func (f *Forest[K]) Remove(id K) []K {
	n, ok := f.nodes[id]
	if !ok {
		return nil
	}

	removed := slices.Collect(f.Subtree(id))
	if n.hasParent {
		p := f.nodes[n.parent]
		p.children = slices.DeleteFunc(p.children, func(k K) bool { return k == id })
	} else {
		f.roots = slices.DeleteFunc(f.roots, func(k K) bool { return k == id })
	}
	for _, k := range removed {
		delete(f.nodes, k)
	}
	return removed
}

// SortChildren reorders every sibling list (roots included) by key. It is a
// presentation step: categories display alphabetically while the structural
// order stays creation order.
func SortChildren[K comparable, O cmp.Ordered](f *Forest[K], key func(K) O) {
	byKey := func(a, b K) int { return cmp.Compare(key(a), key(b)) }
	slices.SortStableFunc(f.roots, byKey)
	for _, n := range f.nodes {
		slices.SortStableFunc(n.children, byKey)
	}
}

// Build assembles a forest from rows in creation order. Rows whose parent
// appears later in the slice are attached once the parent is seen; a row
// whose parent never appears fails with models.ErrInvalidParent.
func Build[T any, K comparable](rows []T, id func(T) K, parent func(T) *K) (*Forest[K], error) {
	f := New[K]()
	pending := rows
	for len(pending) > 0 {
		var deferred []T
		for _, row := range pending {
			p := parent(row)
			if p != nil && !f.Has(*p) {
				deferred = append(deferred, row)
				continue
			}
			if err := f.Insert(id(row), p); err != nil {
				return nil, err
			}
		}
		if len(deferred) == len(pending) {
			first := deferred[0]
			return nil, fmt.Errorf("build forest: node %v: %w", id(first), models.ErrInvalidParent)
		}
		pending = deferred
	}
	return f, nil
}
