package testkit

import (
	"testing"
)

func TestSliceGenerator_Basic(t *testing.T) {
	config := DefaultSliceConfig()
	generator := NewSliceGenerator(config)

	metric, err := generator.Generate("revenue")
	if err != nil {
		t.Fatalf("Failed to generate metric: %v", err)
	}

	// 3 dims x 3 values singles + 3 dim pairs x 9 value pairs
	if want := 9 + 27; metric.DimensionSliceInfo.Len() != want {
		t.Errorf("Expected %d slices, got %d", want, metric.DimensionSliceInfo.Len())
	}
	if len(metric.TopDriverSliceKeys) != metric.DimensionSliceInfo.Len() {
		t.Errorf("Expected every slice to be a top driver, got %d", len(metric.TopDriverSliceKeys))
	}

	for _, info := range metric.DimensionSliceInfo.Entries() {
		if info.CombinedCount() < 0 {
			t.Errorf("Slice %s has negative count", info.SerializedKey)
		}
	}
}

func TestSliceGenerator_Deterministic(t *testing.T) {
	a, err := NewSliceGenerator(DefaultSliceConfig()).Generate("m")
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewSliceGenerator(DefaultSliceConfig()).Generate("m")
	if err != nil {
		t.Fatal(err)
	}

	for i := range a.TopDriverSliceKeys {
		if a.TopDriverSliceKeys[i] != b.TopDriverSliceKeys[i] {
			t.Fatalf("Expected identical ranking at %d: %s vs %s", i, a.TopDriverSliceKeys[i], b.TopDriverSliceKeys[i])
		}
	}
}

func TestMetricBuilderDefaults(t *testing.T) {
	m := NewMetric("orders").
		Slice("country:US", WithImpact(3)).
		Slice("country:US|device:mobile").
		MustBuild()

	if got := m.TopDriverSliceKeys; len(got) != 2 || got[0] != "country:US" {
		t.Errorf("Expected top drivers in insertion order, got %v", got)
	}
	info, ok := m.DimensionSliceInfo.Get("country:US")
	if !ok {
		t.Fatal("Expected country:US in catalog")
	}
	if info.Impact != 3 || info.CombinedCount() != 200 {
		t.Errorf("Unexpected fixture values: %+v", info)
	}
}
