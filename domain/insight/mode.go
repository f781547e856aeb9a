package insight

import (
	"fmt"

	"sliceinsight/domain/core"
)

// Mode selects how slices are ranked and surfaced.
type Mode string

const (
	ModeImpact  Mode = "impact"
	ModeOutlier Mode = "outlier"
)

// ParseMode parses a ranking mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeImpact, ModeOutlier:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrInvalidMode, s)
}

// Sensitivity selects the changeDev threshold used in outlier mode.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// ConfidenceCutoff is the significance level a slice must beat in outlier mode.
const ConfidenceCutoff = 0.05

var sensitivityThresholds = map[Sensitivity]float64{
	SensitivityLow:    0.075,
	SensitivityMedium: 0.15,
	SensitivityHigh:   0.25,
}

// ParseSensitivity parses a sensitivity name.
func ParseSensitivity(s string) (Sensitivity, error) {
	if _, ok := sensitivityThresholds[Sensitivity(s)]; ok {
		return Sensitivity(s), nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrInvalidSensitivity, s)
}

// Threshold returns the changeDev threshold for s. Unknown values fall back to medium.
func (s Sensitivity) Threshold() float64 {
	if t, ok := sensitivityThresholds[s]; ok {
		return t
	}
	return sensitivityThresholds[SensitivityMedium]
}
