package drilldown

import (
	"fmt"

	"sliceinsight/domain/insight"
)

// FilterSignificant returns the keys worth surfacing for mode and sensitivity.
// Impact mode keeps every key in its given order; outlier mode keeps a key only
// when its changeDev exceeds the sensitivity threshold and its confidence is
// below insight.ConfidenceCutoff. Keys missing from the catalog are reported.
func FilterSignificant(catalog *insight.Catalog, keys []string, mode insight.Mode, sensitivity insight.Sensitivity) ([]string, error) {
	if _, err := insight.ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if _, err := insight.ParseSensitivity(string(sensitivity)); err != nil {
		return nil, err
	}
	threshold := sensitivity.Threshold()
	kept := make([]string, 0, len(keys))

	for _, key := range keys {
		info, err := catalog.Lookup(key)
		if err != nil {
			return nil, fmt.Errorf("filtering top drivers: %w", err)
		}
		if mode == insight.ModeOutlier &&
			!(info.ChangeDev > threshold && info.Confidence < insight.ConfidenceCutoff) {
			continue
		}
		kept = append(kept, key)
	}
	return kept, nil
}
