package outwriter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/physqa/rundiag/internal/contract"
	"github.com/physqa/rundiag/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryFixture() schema.CohortSummary {
	return schema.CohortSummary{
		Metrics: []schema.MetricSeverityCount{
			{
				Metric: "intt_adc_landau_mpv",
				Counts: map[schema.Severity]int{
					schema.SeveritySevere:   3,
					schema.SeverityModerate: 7,
					schema.SeverityMild:     12,
					schema.SeverityNormal:   390,
				},
			},
			{
				Metric: "tpc_laser_time_delta_ns",
				Counts: map[schema.Severity]int{
					schema.SeverityMild:   4,
					schema.SeverityNormal: 408,
				},
			},
		},
		Clusters: []schema.ClusterLabelCount{
			{
				Cluster: "gain_drift",
				Counts: map[schema.CauseLabel]int{
					schema.LabelStrong: 2,
					schema.LabelWeak:   11,
					schema.LabelNone:   399,
				},
			},
			{
				Cluster: "timing_desync",
				Counts: map[schema.CauseLabel]int{
					schema.LabelNone: 412,
				},
			},
		},
		TotalRuns: 412,
	}
}

func summaryTestConfig(t *testing.T) *contract.Config {
	tmpDir := t.TempDir()
	return &contract.Config{
		ResultLimit:    contract.DefaultResultLimit,
		Workers:        4,
		Precision:      contract.DefaultPrecision,
		Width:          120,
		Output:         schema.TextOut,
		SummaryFile:    filepath.Join(tmpDir, "cohort_summary_symptoms.csv"),
		ReportFile:     filepath.Join(tmpDir, "DIAGNOSIS_SUMMARY.md"),
		HistoryBackend: schema.NoneBackend,
	}
}

func TestWriteSummaryCSV(t *testing.T) {
	cfg := summaryTestConfig(t)

	err := writeSummaryCSV(summaryFixture(), cfg)
	require.NoError(t, err)

	content, err := os.ReadFile(cfg.SummaryFile)
	require.NoError(t, err)

	// Missing buckets are zero-filled
	expected := "metric,severe,moderate,mild,normal\n" +
		"intt_adc_landau_mpv,3,7,12,390\n" +
		"tpc_laser_time_delta_ns,0,0,4,408\n"
	assert.Equal(t, expected, string(content))
}

func TestWriteSummaryReport(t *testing.T) {
	cfg := summaryTestConfig(t)

	err := writeSummaryReport(summaryFixture(), cfg)
	require.NoError(t, err)

	content, err := os.ReadFile(cfg.ReportFile)
	require.NoError(t, err)

	expected := "# Cohort Diagnosis Summary\n" +
		"\n" +
		"## Per-metric symptom frequencies\n" +
		"- intt_adc_landau_mpv: severe=3, moderate=7, mild=12, normal=390\n" +
		"- tpc_laser_time_delta_ns: severe=0, moderate=0, mild=4, normal=408\n" +
		"\n" +
		"## Per-cluster cause labels (run counts)\n" +
		"- gain_drift: strong=2, moderate=0, weak=11, none=399\n" +
		"- timing_desync: strong=0, moderate=0, weak=0, none=412\n"
	assert.Equal(t, expected, string(content))
}

func TestWriteSummaryTables(t *testing.T) {
	cfg := summaryTestConfig(t)

	var buf bytes.Buffer
	err := writeSummaryTables(summaryFixture(), cfg, 42*time.Millisecond, &buf)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Per-metric symptom frequencies:")
	assert.Contains(t, output, "Per-cluster cause labels:")
	assert.Contains(t, output, "intt_adc_landau_mpv")
	assert.Contains(t, output, "gain_drift")
	assert.Contains(t, output, "Summarized 412 runs across 2 metrics and 2 clusters")
	assert.Contains(t, output, "Summary completed in 42ms")
}

func TestWriteSummaryTablesEmojis(t *testing.T) {
	cfg := summaryTestConfig(t)
	cfg.UseEmojis = true

	var buf bytes.Buffer
	err := writeSummaryTables(summaryFixture(), cfg, time.Second, &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "🩺 Summarized 412 runs")
}

func TestWriteCohortSummaryCSVMode(t *testing.T) {
	cfg := summaryTestConfig(t)
	cfg.Output = schema.CSVOut

	err := WriteCohortSummary(summaryFixture(), cfg, time.Second)
	require.NoError(t, err)

	// Both artifacts exist regardless of output mode
	_, err = os.Stat(cfg.SummaryFile)
	require.NoError(t, err)
	_, err = os.Stat(cfg.ReportFile)
	require.NoError(t, err)
}

func TestWriteCohortSummaryBadSummaryPath(t *testing.T) {
	cfg := summaryTestConfig(t)
	cfg.SummaryFile = filepath.Join(t.TempDir(), "missing", "summary.csv")

	err := WriteCohortSummary(summaryFixture(), cfg, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error writing summary CSV")
}

func TestWriteCohortSummaryBadReportPath(t *testing.T) {
	cfg := summaryTestConfig(t)
	cfg.ReportFile = filepath.Join(t.TempDir(), "missing", "report.md")

	err := WriteCohortSummary(summaryFixture(), cfg, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error writing summary report")
}
