package drilldown

import (
	"sliceinsight/domain/insight"
)

// BuildOptions controls how a ranked key list becomes a forest.
type BuildOptions struct {
	// GroupRows nests slices under the rows whose components they contain.
	// When false every key becomes an independent top-level row.
	GroupRows bool
	// MaxChildren caps direct children per row. Zero means unlimited. A key
	// whose accepting subtree is full becomes a top-level row instead.
	MaxChildren int
}

// BuildForest inserts keys in rank order into a new forest. With grouping on,
// each key lands under the first structurally compatible branch met in
// insertion order, or becomes a new top-level row when none accepts it.
// Rows for cluster representatives accept keys containing any cluster member.
// Every distinct key appears exactly once in the result.
func BuildForest(keys []string, clusters *Clusters, opts BuildOptions) *Forest {
	forest := NewForest()
	placed := make(map[string]struct{}, len(keys))

	for _, key := range keys {
		if _, dup := placed[key]; dup {
			continue
		}
		placed[key] = struct{}{}
		components := insight.SplitKey(key)

		matched := false
		if opts.GroupRows {
			for _, row := range forest.Rows() {
				if accepted, placed := attach(row, key, components, clusters, opts.MaxChildren); accepted {
					matched = placed
					break
				}
			}
		}
		if !matched {
			forest.add(newRow(nil, key, components, true))
		}
	}
	return forest
}

// attach offers key to row's subtree. accepted is false when row's identity
// set has no member contained in key. Otherwise key is passed to the first
// child that accepts it, or attached directly under row when no child does and
// row has room. placed is false when the accepting subtree is at its cap.
func attach(row *RowStatus, key string, components []string, clusters *Clusters, maxChildren int) (accepted, placed bool) {
	if !acceptsKey(row, components, clusters) {
		return false, false
	}

	for _, child := range row.Children() {
		if ok, done := attach(child, key, components, clusters, maxChildren); ok {
			return true, done
		}
	}

	if maxChildren > 0 && row.NumChildren() >= maxChildren {
		return true, false
	}
	row.addChild(newRow(row.Key, key, components, true))
	return true, true
}

func acceptsKey(row *RowStatus, components []string, clusters *Clusters) bool {
	if len(components) == len(row.KeyComponents) && insight.ContainsAll(components, row.KeyComponents) {
		return false
	}
	for _, member := range clusters.IdentitySet(row.SliceKey()) {
		if insight.ContainsAll(components, insight.SplitKey(member)) {
			return true
		}
	}
	return false
}
