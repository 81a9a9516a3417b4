package core

import (
	"math"
	"testing"

	"github.com/physqa/rundiag/schema"
	"github.com/stretchr/testify/assert"
)

// TestClassifySeverity tests severity grading against threshold bounds.
func TestClassifySeverity(t *testing.T) {
	th := schema.Threshold{Mild: 1, Moderate: 2, Severe: 3}

	tests := []struct {
		name     string
		value    float64
		expected schema.Severity
	}{
		{name: "well below mild", value: 0.2, expected: schema.SeverityNormal},
		{name: "zero stays normal", value: 0, expected: schema.SeverityNormal},
		{name: "exactly mild", value: 1, expected: schema.SeverityMild},
		{name: "between mild and moderate", value: 1.7, expected: schema.SeverityMild},
		{name: "exactly moderate", value: 2, expected: schema.SeverityModerate},
		{name: "between moderate and severe", value: 2.5, expected: schema.SeverityModerate},
		{name: "exactly severe", value: 3, expected: schema.SeveritySevere},
		{name: "far beyond severe", value: 12.4, expected: schema.SeveritySevere},
		{name: "negative magnitude counts", value: -3.2, expected: schema.SeveritySevere},
		{name: "negative mild", value: -1.5, expected: schema.SeverityMild},
		{name: "NaN fails every bound", value: math.NaN(), expected: schema.SeverityNormal},
		{name: "positive infinity", value: math.Inf(1), expected: schema.SeveritySevere},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifySeverity(tt.value, th))
		})
	}
}

// TestClassifySeverityOverlappingBounds ensures equal bounds resolve to the
// harsher tier.
func TestClassifySeverityOverlappingBounds(t *testing.T) {
	th := schema.Threshold{Mild: 2, Moderate: 2, Severe: 4}

	assert.Equal(t, schema.SeverityModerate, classifySeverity(2, th))
	assert.Equal(t, schema.SeverityModerate, classifySeverity(-2.5, th))
	assert.Equal(t, schema.SeveritySevere, classifySeverity(4, th))
	assert.Equal(t, schema.SeverityNormal, classifySeverity(1.99, th))
}

// TestClassifySeverityZeroMild covers a mild bound of zero, where every
// finite value is at least mild.
func TestClassifySeverityZeroMild(t *testing.T) {
	th := schema.Threshold{Mild: 0, Moderate: 2, Severe: 4}

	assert.Equal(t, schema.SeverityMild, classifySeverity(0, th))
	assert.Equal(t, schema.SeverityMild, classifySeverity(0.01, th))
	assert.Equal(t, schema.SeverityNormal, classifySeverity(math.NaN(), th))
}

// TestClassifySeverityMonotone checks that growing magnitudes never map to
// a milder tier.
func TestClassifySeverityMonotone(t *testing.T) {
	th := schema.Threshold{Mild: 1.5, Moderate: 2.5, Severe: 4}

	prev := -1
	for _, v := range []float64{0, 0.5, 1.5, 2, 2.5, 3.9, 4, 100} {
		rank := schema.SeverityRank(classifySeverity(v, th))
		assert.GreaterOrEqual(t, rank, prev, "severity regressed at %v", v)
		prev = rank
	}
}
