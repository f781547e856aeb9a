package insight

import (
	"fmt"
	"strings"
)

const (
	// ComponentSeparator joins dimension:value components into a canonical key.
	ComponentSeparator = "|"
	// PairSeparator joins a dimension and its value inside one component.
	PairSeparator = ":"
)

// DimensionValuePair is one dimension=value constraint of a slice.
type DimensionValuePair struct {
	Dimension string      `json:"dimension" validate:"required"`
	Value     interface{} `json:"value"`
}

// Component renders the pair as a dimension:value atom.
func (p DimensionValuePair) Component() string {
	return p.Dimension + PairSeparator + fmt.Sprintf("%v", p.Value)
}

// SliceKey is the ordered list of pairs describing one segment.
type SliceKey []DimensionValuePair

// Components returns the dimension:value atoms in key order.
func (k SliceKey) Components() []string {
	components := make([]string, len(k))
	for i, pair := range k {
		components[i] = pair.Component()
	}
	return components
}

// Canonical returns the canonical string key of the slice.
func (k SliceKey) Canonical() string {
	return strings.Join(k.Components(), ComponentSeparator)
}

// Dimensions returns the dimension names in key order.
func (k SliceKey) Dimensions() []string {
	dims := make([]string, len(k))
	for i, pair := range k {
		dims[i] = pair.Dimension
	}
	return dims
}

// Values returns the values rendered as strings, in key order.
func (k SliceKey) Values() []string {
	values := make([]string, len(k))
	for i, pair := range k {
		values[i] = fmt.Sprintf("%v", pair.Value)
	}
	return values
}

// HasDimension reports whether the slice constrains dimension.
func (k SliceKey) HasDimension(dimension string) bool {
	for _, pair := range k {
		if pair.Dimension == dimension {
			return true
		}
	}
	return false
}

// duplicateDimension returns the first dimension that appears twice, if any.
func (k SliceKey) duplicateDimension() (string, bool) {
	seen := make(map[string]struct{}, len(k))
	for _, pair := range k {
		if _, ok := seen[pair.Dimension]; ok {
			return pair.Dimension, true
		}
		seen[pair.Dimension] = struct{}{}
	}
	return "", false
}

// SplitKey splits a canonical key into its components.
func SplitKey(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, ComponentSeparator)
}

// ContainsAll reports whether every component of subset appears in superset.
// Components are compared as a set; order is irrelevant.
func ContainsAll(superset, subset []string) bool {
	if len(subset) > len(superset) {
		return false
	}
	have := make(map[string]struct{}, len(superset))
	for _, c := range superset {
		have[c] = struct{}{}
	}
	for _, c := range subset {
		if _, ok := have[c]; !ok {
			return false
		}
	}
	return true
}
