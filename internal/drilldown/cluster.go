package drilldown

import (
	"fmt"
	"math"
	"sort"

	"sliceinsight/domain/insight"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// OverlapTolerance is the largest relative difference in combined record
// count for which two nested slices are considered the same story.
const OverlapTolerance = 0.05

// Clusters records groups of near-equivalent overlapping slices. Only groups
// with at least two members are kept; every other key stands alone.
type Clusters struct {
	groups         [][]string
	representative map[string]string
	groupIndex     map[string]int
}

// Groups returns every multi-member cluster, members in processing order.
func (c *Clusters) Groups() [][]string {
	if c == nil {
		return nil
	}
	return c.groups
}

// Len returns the number of multi-member clusters.
func (c *Clusters) Len() int {
	if c == nil {
		return 0
	}
	return len(c.groups)
}

// Representative returns the elected representative of key's cluster.
func (c *Clusters) Representative(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	rep, ok := c.representative[key]
	return rep, ok
}

// IdentitySet returns the keys a row for key stands for: the whole cluster
// when key represents one, otherwise key alone.
func (c *Clusters) IdentitySet(key string) []string {
	if c != nil {
		if idx, ok := c.groupIndex[key]; ok {
			return c.groups[idx]
		}
	}
	return []string{key}
}

// ClusterOverlaps groups keys whose slices nest and have nearly the same
// record count, elects one representative per group and returns the keys
// with every non-representative member removed, in their original order.
func ClusterOverlaps(catalog *insight.Catalog, keys []string) (*Clusters, []string, error) {
	sorted := sortByComponentCount(keys)
	g, err := buildOverlapGraph(catalog, sorted)
	if err != nil {
		return nil, nil, err
	}

	var components [][]int
	for _, nodes := range topo.ConnectedComponents(g) {
		if len(nodes) < 2 {
			continue
		}
		ids := make([]int, len(nodes))
		for i, n := range nodes {
			ids[i] = int(n.ID())
		}
		sort.Ints(ids)
		components = append(components, ids)
	}
	sort.Slice(components, func(i, j int) bool { return components[i][0] < components[j][0] })

	clusters := &Clusters{
		representative: make(map[string]string),
		groupIndex:     make(map[string]int),
	}
	for idx, ids := range components {
		members := make([]string, len(ids))
		rep := sorted[ids[0]]
		repSize := len(insight.SplitKey(rep))
		for i, id := range ids {
			members[i] = sorted[id]
			if size := len(insight.SplitKey(sorted[id])); size > repSize {
				rep, repSize = sorted[id], size
			}
		}
		for _, member := range members {
			clusters.representative[member] = rep
		}
		clusters.groupIndex[rep] = idx
		clusters.groups = append(clusters.groups, members)
	}

	kept := make([]string, 0, len(keys))
	for _, key := range keys {
		if rep, ok := clusters.representative[key]; ok && rep != key {
			continue
		}
		kept = append(kept, key)
	}
	return clusters, kept, nil
}

// sortByComponentCount returns a copy of keys ordered by ascending number of
// components; keys with equal counts keep their relative order.
func sortByComponentCount(keys []string) []string {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(insight.SplitKey(sorted[i])) < len(insight.SplitKey(sorted[j]))
	})
	return sorted
}

// buildOverlapGraph links each key to every earlier key whose components it
// contains when their combined counts are within OverlapTolerance. Node IDs
// are positions in sorted.
func buildOverlapGraph(catalog *insight.Catalog, sorted []string) (*simple.UndirectedGraph, error) {
	g := simple.NewUndirectedGraph()
	for i := range sorted {
		g.AddNode(simple.Node(i))
	}

	for i, key := range sorted {
		info, err := catalog.Lookup(key)
		if err != nil {
			return nil, fmt.Errorf("clustering overlaps: %w", err)
		}
		components := insight.SplitKey(key)

		for j := 0; j < i; j++ {
			candidate := sorted[j]
			if candidate == key || !insight.ContainsAll(components, insight.SplitKey(candidate)) {
				continue
			}
			candidateInfo, err := catalog.Lookup(candidate)
			if err != nil {
				return nil, fmt.Errorf("clustering overlaps: %w", err)
			}
			if nearlySameSize(info.CombinedCount(), candidateInfo.CombinedCount()) {
				g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
			}
		}
	}
	return g, nil
}

// nearlySameSize compares count against the reference count. A zero reference
// never matches.
func nearlySameSize(count, reference int) bool {
	if reference == 0 {
		return false
	}
	return math.Abs(float64(count-reference)/float64(reference)) < OverlapTolerance
}
