package core

import (
	"testing"

	"github.com/physqa/rundiag/internal/ingest"
	"github.com/physqa/rundiag/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildCohortSummary tests distinct-run frequency counting.
func TestBuildCohortSummary(t *testing.T) {
	symptoms := []ingest.SymptomRow{
		{Run: "1", Metric: "adc_mpv", Severity: schema.SeveritySevere, Cluster: "gain_drift"},
		{Run: "2", Metric: "adc_mpv", Severity: schema.SeveritySevere, Cluster: "gain_drift"},
		{Run: "3", Metric: "adc_mpv", Severity: schema.SeverityNormal, Cluster: "gain_drift"},
		{Run: "1", Metric: "time_delta", Severity: schema.SeverityMild, Cluster: "timing_desync"},
	}
	causes := []ingest.CauseRow{
		{Run: "1", Labels: map[string]schema.CauseLabel{"gain_drift": schema.LabelStrong, "timing_desync": schema.LabelWeak}},
		{Run: "2", Labels: map[string]schema.CauseLabel{"gain_drift": schema.LabelStrong, "timing_desync": schema.LabelNone}},
		{Run: "3", Labels: map[string]schema.CauseLabel{"gain_drift": schema.LabelNone, "timing_desync": schema.LabelNone}},
	}

	summary := BuildCohortSummary(symptoms, causes, []string{"gain_drift", "timing_desync"})

	assert.Equal(t, 3, summary.TotalRuns)

	require.Len(t, summary.Metrics, 2)
	assert.Equal(t, "adc_mpv", summary.Metrics[0].Metric)
	assert.Equal(t, 2, summary.Metrics[0].Counts[schema.SeveritySevere])
	assert.Equal(t, 1, summary.Metrics[0].Counts[schema.SeverityNormal])
	assert.Equal(t, 0, summary.Metrics[0].Counts[schema.SeverityMild])
	assert.Equal(t, "time_delta", summary.Metrics[1].Metric)
	assert.Equal(t, 1, summary.Metrics[1].Counts[schema.SeverityMild])

	require.Len(t, summary.Clusters, 2)
	assert.Equal(t, "gain_drift", summary.Clusters[0].Cluster)
	assert.Equal(t, 2, summary.Clusters[0].Counts[schema.LabelStrong])
	assert.Equal(t, 1, summary.Clusters[0].Counts[schema.LabelNone])
	assert.Equal(t, "timing_desync", summary.Clusters[1].Cluster)
	assert.Equal(t, 1, summary.Clusters[1].Counts[schema.LabelWeak])
	assert.Equal(t, 2, summary.Clusters[1].Counts[schema.LabelNone])
}

// TestBuildCohortSummaryDistinctRuns ensures duplicated rows for the same
// run count once per pair.
func TestBuildCohortSummaryDistinctRuns(t *testing.T) {
	symptoms := []ingest.SymptomRow{
		{Run: "7", Metric: "adc_mpv", Severity: schema.SeveritySevere, Cluster: "gain_drift"},
		{Run: "7", Metric: "adc_mpv", Severity: schema.SeveritySevere, Cluster: "gain_drift"},
		{Run: "7", Metric: "adc_mpv", Severity: schema.SeverityMild, Cluster: "gain_drift"},
	}

	summary := BuildCohortSummary(symptoms, nil, nil)

	require.Len(t, summary.Metrics, 1)
	assert.Equal(t, 1, summary.Metrics[0].Counts[schema.SeveritySevere])
	assert.Equal(t, 1, summary.Metrics[0].Counts[schema.SeverityMild])
	assert.Equal(t, 1, summary.TotalRuns)
}

// TestBuildCohortSummaryMetricOrder ensures metrics come back name-sorted
// regardless of row order.
func TestBuildCohortSummaryMetricOrder(t *testing.T) {
	symptoms := []ingest.SymptomRow{
		{Run: "1", Metric: "zz_last", Severity: schema.SeverityNormal, Cluster: "c"},
		{Run: "1", Metric: "aa_first", Severity: schema.SeverityNormal, Cluster: "c"},
		{Run: "1", Metric: "mm_mid", Severity: schema.SeverityNormal, Cluster: "c"},
	}

	summary := BuildCohortSummary(symptoms, nil, nil)

	require.Len(t, summary.Metrics, 3)
	assert.Equal(t, "aa_first", summary.Metrics[0].Metric)
	assert.Equal(t, "mm_mid", summary.Metrics[1].Metric)
	assert.Equal(t, "zz_last", summary.Metrics[2].Metric)
}

// TestBuildCohortSummaryClusterOrder ensures the cluster order mirrors the
// causes table columns, including clusters with no rows.
func TestBuildCohortSummaryClusterOrder(t *testing.T) {
	causes := []ingest.CauseRow{
		{Run: "1", Labels: map[string]schema.CauseLabel{"beam_instability": schema.LabelWeak}},
	}

	summary := BuildCohortSummary(nil, causes, []string{"beam_instability", "gain_drift"})

	require.Len(t, summary.Clusters, 2)
	assert.Equal(t, "beam_instability", summary.Clusters[0].Cluster)
	assert.Equal(t, 1, summary.Clusters[0].Counts[schema.LabelWeak])
	assert.Equal(t, "gain_drift", summary.Clusters[1].Cluster)
	assert.Empty(t, summary.Clusters[1].Counts)
}

// TestBuildCohortSummaryEmpty covers empty inputs.
func TestBuildCohortSummaryEmpty(t *testing.T) {
	summary := BuildCohortSummary(nil, nil, nil)

	assert.Zero(t, summary.TotalRuns)
	assert.Empty(t, summary.Metrics)
	assert.Empty(t, summary.Clusters)
}
