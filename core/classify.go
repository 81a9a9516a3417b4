package core

import (
	"math"

	"github.com/physqa/rundiag/schema"
)

// classifySeverity grades the magnitude of a z-score against a threshold
// triple. Bounds are inclusive and checked severe-first, so overlapping
// bounds resolve to the harsher tier. NaN magnitudes fail every check and
// come back normal.
func classifySeverity(value float64, th schema.Threshold) schema.Severity {
	magnitude := math.Abs(value)
	switch {
	case magnitude >= th.Severe:
		return schema.SeveritySevere
	case magnitude >= th.Moderate:
		return schema.SeverityModerate
	case magnitude >= th.Mild:
		return schema.SeverityMild
	default:
		return schema.SeverityNormal
	}
}
