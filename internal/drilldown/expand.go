package drilldown

import (
	"fmt"

	"sliceinsight/domain/insight"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultLazyMaxChildren caps children per row during lazy expansion.
	DefaultLazyMaxChildren = 10
	// DefaultCandidateCacheSize is the number of dimensions whose candidate
	// slice lists are memoized.
	DefaultCandidateCacheSize = 64
)

// Expander fills in the children of dimension-scoped rows on first expansion.
// It looks at the whole catalog rather than the filtered top drivers.
type Expander struct {
	catalog     *insight.Catalog
	maxChildren int
	candidates  *lru.Cache[string, []string]
}

// NewExpander builds an expander over catalog. A non-positive maxChildren
// falls back to DefaultLazyMaxChildren.
func NewExpander(catalog *insight.Catalog, maxChildren, cacheSize int) (*Expander, error) {
	if maxChildren <= 0 {
		maxChildren = DefaultLazyMaxChildren
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCandidateCacheSize
	}
	cache, err := lru.New[string, []string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate cache: %w", err)
	}
	return &Expander{
		catalog:     catalog,
		maxChildren: maxChildren,
		candidates:  cache,
	}, nil
}

// Expand computes row's children from every multi-dimension slice that
// constrains dimension. It is a no-op once the row's children are calculated
// and reports whether any work was done.
func (e *Expander) Expand(row *RowStatus, dimension string) bool {
	if row.HasCalculatedChildren {
		return false
	}
	for _, key := range e.candidatesFor(dimension) {
		info, _ := e.catalog.Get(key)
		// Candidates beyond the cap are left out of the lazy view.
		attach(row, key, info.Key.Components(), nil, e.maxChildren)
	}
	row.HasCalculatedChildren = true
	return true
}

// candidatesFor lists, in catalog order, the slices with more than one
// component that constrain dimension.
func (e *Expander) candidatesFor(dimension string) []string {
	if keys, ok := e.candidates.Get(dimension); ok {
		return keys
	}
	var keys []string
	for _, info := range e.catalog.Entries() {
		if len(info.Key) > 1 && info.Key.HasDimension(dimension) {
			keys = append(keys, info.SerializedKey)
		}
	}
	e.candidates.Add(dimension, keys)
	return keys
}
