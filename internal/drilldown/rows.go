// Package drilldown turns a ranked list of dimension slices into a
// deduplicated, hierarchical, lazily expandable row forest and its flat
// tabular export.
package drilldown

import (
	"encoding/json"
)

// RowStatus is one node of a row forest. Each node exclusively owns its
// children; the parent's components are always contained in the child's.
type RowStatus struct {
	Key                   []string
	KeyComponents         []string
	IsExpanded            bool
	HasCalculatedChildren bool

	children   map[string]*RowStatus
	childOrder []string
}

func newRow(parentPath []string, key string, components []string, calculated bool) *RowStatus {
	path := make([]string, len(parentPath), len(parentPath)+1)
	copy(path, parentPath)
	return &RowStatus{
		Key:                   append(path, key),
		KeyComponents:         components,
		HasCalculatedChildren: calculated,
	}
}

// SliceKey returns the canonical key this row stands for.
func (r *RowStatus) SliceKey() string {
	return r.Key[len(r.Key)-1]
}

// Children returns the direct children in insertion order.
func (r *RowStatus) Children() []*RowStatus {
	out := make([]*RowStatus, len(r.childOrder))
	for i, key := range r.childOrder {
		out[i] = r.children[key]
	}
	return out
}

// Child returns the direct child stored under key.
func (r *RowStatus) Child(key string) (*RowStatus, bool) {
	child, ok := r.children[key]
	return child, ok
}

// NumChildren returns the number of direct children.
func (r *RowStatus) NumChildren() int {
	return len(r.childOrder)
}

func (r *RowStatus) addChild(child *RowStatus) {
	if r.children == nil {
		r.children = make(map[string]*RowStatus)
	}
	key := child.SliceKey()
	if _, exists := r.children[key]; !exists {
		r.childOrder = append(r.childOrder, key)
	}
	r.children[key] = child
}

// Walk visits r and every descendant depth-first, children in insertion order.
func (r *RowStatus) Walk(visit func(row *RowStatus, depth int)) {
	r.walk(visit, 0)
}

func (r *RowStatus) walk(visit func(row *RowStatus, depth int), depth int) {
	visit(r, depth)
	for _, key := range r.childOrder {
		r.children[key].walk(visit, depth+1)
	}
}

type rowJSON struct {
	Key                   []string     `json:"key"`
	KeyComponents         []string     `json:"keyComponents"`
	IsExpanded            bool         `json:"isExpanded"`
	HasCalculatedChildren bool         `json:"hasCalculatedChildren"`
	Children              []*RowStatus `json:"children"`
}

// MarshalJSON renders children as an ordered array.
func (r *RowStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(rowJSON{
		Key:                   r.Key,
		KeyComponents:         r.KeyComponents,
		IsExpanded:            r.IsExpanded,
		HasCalculatedChildren: r.HasCalculatedChildren,
		Children:              r.Children(),
	})
}

// Forest is an insertion-ordered set of top-level rows keyed by canonical key.
type Forest struct {
	rows  map[string]*RowStatus
	order []string
}

// NewForest returns an empty forest.
func NewForest() *Forest {
	return &Forest{rows: make(map[string]*RowStatus)}
}

func (f *Forest) add(row *RowStatus) {
	key := row.SliceKey()
	if _, exists := f.rows[key]; !exists {
		f.order = append(f.order, key)
	}
	f.rows[key] = row
}

// Get returns the top-level row stored under key.
func (f *Forest) Get(key string) (*RowStatus, bool) {
	if f == nil {
		return nil, false
	}
	row, ok := f.rows[key]
	return row, ok
}

// Len returns the number of top-level rows.
func (f *Forest) Len() int {
	if f == nil {
		return 0
	}
	return len(f.order)
}

// Keys returns the top-level canonical keys in insertion order.
func (f *Forest) Keys() []string {
	if f == nil {
		return nil
	}
	keys := make([]string, len(f.order))
	copy(keys, f.order)
	return keys
}

// Rows returns the top-level rows in insertion order.
func (f *Forest) Rows() []*RowStatus {
	if f == nil {
		return nil
	}
	out := make([]*RowStatus, len(f.order))
	for i, key := range f.order {
		out[i] = f.rows[key]
	}
	return out
}

// Walk visits every node of the forest depth-first.
func (f *Forest) Walk(visit func(row *RowStatus, depth int)) {
	for _, row := range f.Rows() {
		row.Walk(visit)
	}
}

// MarshalJSON renders the forest as an ordered array of rows.
func (f *Forest) MarshalJSON() ([]byte, error) {
	rows := f.Rows()
	if rows == nil {
		rows = []*RowStatus{}
	}
	return json.Marshal(rows)
}
