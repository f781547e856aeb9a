package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"sliceinsight/domain/insight"
)

// SliceGeneratorConfig configures the synthetic slice catalog generator
type SliceGeneratorConfig struct {
	Dimensions         int     `json:"dimensions"`
	ValuesPerDimension int     `json:"values_per_dimension"`
	MaxDepth           int     `json:"max_depth"`
	BaseCount          int     `json:"base_count"`
	NestedShare        float64 `json:"nested_share"` // probability a nested slice keeps almost all of its parent's records
	Seed               int64   `json:"seed"`
}

// DefaultSliceConfig returns sensible defaults for catalog generation
func DefaultSliceConfig() SliceGeneratorConfig {
	return SliceGeneratorConfig{
		Dimensions:         3,
		ValuesPerDimension: 3,
		MaxDepth:           2,
		BaseCount:          1000,
		NestedShare:        0.3,
		Seed:               42,
	}
}

// SliceGenerator generates catalogs of overlapping dimension slices
type SliceGenerator struct {
	config SliceGeneratorConfig
	rng    *rand.Rand
}

// NewSliceGenerator creates a new slice generator
func NewSliceGenerator(config SliceGeneratorConfig) *SliceGenerator {
	return &SliceGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds a metric whose catalog holds every combination of up to
// MaxDepth dimensions. Top drivers are ranked by descending absolute impact.
func (g *SliceGenerator) Generate(name string) (*insight.InsightMetric, error) {
	dims := make([]string, g.config.Dimensions)
	for i := range dims {
		dims[i] = fmt.Sprintf("dim%d", i)
	}

	b := NewMetric(name)
	counts := make(map[string]int)
	var keys []string

	for _, combo := range g.combinations(dims) {
		key := combo.Canonical()
		count := g.countFor(combo, counts)
		counts[key] = count

		baseline := count / 2
		b.Slice(key,
			WithCounts(baseline, count-baseline),
			WithImpact(math.Round(g.rng.NormFloat64()*1000)/100),
			WithOutlier(g.rng.Float64()*0.4, g.rng.Float64()*0.1),
			WithSizes(float64(baseline), float64(count-baseline)),
			WithValues(g.rng.Float64()*100, g.rng.Float64()*100),
		)
		keys = append(keys, key)
	}

	m, err := b.Build()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, _ := m.DimensionSliceInfo.Get(keys[i])
		c, _ := m.DimensionSliceInfo.Get(keys[j])
		return math.Abs(a.Impact) > math.Abs(c.Impact)
	})
	m.TopDriverSliceKeys = keys
	return m, nil
}

// combinations enumerates slices breadth-first so parents precede children.
func (g *SliceGenerator) combinations(dims []string) []insight.SliceKey {
	var out []insight.SliceKey
	var frontier []insight.SliceKey
	for _, dim := range dims {
		for v := 0; v < g.config.ValuesPerDimension; v++ {
			frontier = append(frontier, insight.SliceKey{{Dimension: dim, Value: fmt.Sprintf("v%d", v)}})
		}
	}
	for depth := 1; depth <= g.config.MaxDepth && len(frontier) > 0; depth++ {
		out = append(out, frontier...)
		var next []insight.SliceKey
		for _, key := range frontier {
			last := dimIndex(dims, key[len(key)-1].Dimension)
			for d := last + 1; d < len(dims); d++ {
				for v := 0; v < g.config.ValuesPerDimension; v++ {
					child := append(append(insight.SliceKey{}, key...), insight.DimensionValuePair{Dimension: dims[d], Value: fmt.Sprintf("v%d", v)})
					next = append(next, child)
				}
			}
		}
		frontier = next
	}
	return out
}

// countFor derives a record count no larger than the slice's parent, which
// is the slice minus its last pair.
func (g *SliceGenerator) countFor(key insight.SliceKey, counts map[string]int) int {
	if len(key) == 1 {
		return g.config.BaseCount/2 + g.rng.Intn(g.config.BaseCount)
	}
	parent := counts[key[:len(key)-1].Canonical()]
	if g.rng.Float64() < g.config.NestedShare {
		return parent - g.rng.Intn(parent/100+1)
	}
	return g.rng.Intn(parent/2 + 1)
}

func dimIndex(dims []string, dim string) int {
	for i, d := range dims {
		if d == dim {
			return i
		}
	}
	return -1
}
