// Package parquet provides data structures and functions for exporting
// diagnosis history data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/physqa/rundiag/schema"
)

// DiagnosisRun represents a single diagnosis run with metadata.
// This struct maps to the rundiag_diagnosis_runs database table.
type DiagnosisRun struct {
	// DiagnosisID is the unique identifier for this diagnosis run
	DiagnosisID int64 `parquet:"diagnosis_id,snappy"`

	// StartTime is when the diagnosis began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the diagnosis completed (nullable, stored as TIMESTAMP with nanosecond precision)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the diagnosis run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalRuns is the number of runs scored in this diagnosis
	TotalRuns int32 `parquet:"total_runs,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// CauseScore represents one cluster's score for one run in a diagnosis.
// This struct maps to the rundiag_cause_scores database table.
type CauseScore struct {
	// DiagnosisID references the parent diagnosis run
	DiagnosisID int64 `parquet:"diagnosis_id,snappy"`

	// Run is the run identifier the score belongs to
	Run string `parquet:"run,snappy"`

	// Cluster is the cause cluster that was scored
	Cluster string `parquet:"cluster,snappy"`

	// Score is the summed severity weight across the cluster's keys
	Score int32 `parquet:"score,snappy"`

	// Label is the cause label assigned from the score
	Label string `parquet:"label,snappy"`

	// DiagnosisTime is when this run was scored (stored as TIMESTAMP with nanosecond precision)
	DiagnosisTime time.Time `parquet:"diagnosis_time,snappy"`
}

// WriteDiagnosisRunsParquet writes a slice of DiagnosisRun structs to a Parquet file.
func WriteDiagnosisRunsParquet(data []DiagnosisRun, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the DiagnosisRun struct tags
	writer := parquet.NewGenericWriter[DiagnosisRun](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteCauseScoresParquet writes a slice of CauseScore structs to a Parquet file.
func WriteCauseScoresParquet(data []CauseScore, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the CauseScore struct tags
	writer := parquet.NewGenericWriter[CauseScore](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// MockFetchDiagnosisRuns generates sample DiagnosisRun data for demonstration.
func MockFetchDiagnosisRuns() []DiagnosisRun {
	now := time.Now()
	startTime1 := now.Add(-2 * time.Hour)
	endTime1 := startTime1.Add(42 * time.Second)
	durationMs1 := int32(endTime1.Sub(startTime1).Milliseconds())
	configParams1 := `{"metrics":"out/metrics_*_perrun.csv","workers":8,"breakpoints":"weak=1,moderate=3,strong=6"}`

	startTime2 := now.Add(-24 * time.Hour)
	endTime2 := startTime2.Add(3 * time.Minute)
	durationMs2 := int32(endTime2.Sub(startTime2).Milliseconds())
	configParams2 := `{"metrics":"out/metrics_*_perrun.csv","workers":4,"breakpoints":"weak=2,moderate=5,strong=9"}`

	startTime3 := now.Add(-10 * time.Minute)
	// Note: endTime3, durationMs3, configParams3 are nil to demonstrate nullable fields

	return []DiagnosisRun{
		{
			DiagnosisID:   1,
			StartTime:     startTime1,
			EndTime:       &endTime1,
			RunDurationMs: &durationMs1,
			TotalRuns:     412,
			ConfigParams:  &configParams1,
		},
		{
			DiagnosisID:   2,
			StartTime:     startTime2,
			EndTime:       &endTime2,
			RunDurationMs: &durationMs2,
			TotalRuns:     389,
			ConfigParams:  &configParams2,
		},
		{
			DiagnosisID:   3,
			StartTime:     startTime3,
			EndTime:       nil, // Still running - nullable field
			RunDurationMs: nil, // Not yet calculated - nullable field
			TotalRuns:     0,
			ConfigParams:  nil, // No config stored - nullable field
		},
	}
}

// MockFetchCauseScores generates sample CauseScore data for demonstration.
func MockFetchCauseScores() []CauseScore {
	now := time.Now()

	return []CauseScore{
		{
			DiagnosisID:   1,
			Run:           "53877",
			Cluster:       "gain_drift",
			Score:         7,
			Label:         string(schema.LabelStrong),
			DiagnosisTime: now.Add(-2 * time.Hour),
		},
		{
			DiagnosisID:   1,
			Run:           "53877",
			Cluster:       "timing_desync",
			Score:         1,
			Label:         string(schema.LabelWeak),
			DiagnosisTime: now.Add(-2 * time.Hour),
		},
		{
			DiagnosisID:   2,
			Run:           "53912",
			Cluster:       "gain_drift",
			Score:         0,
			Label:         string(schema.LabelNone),
			DiagnosisTime: now.Add(-24 * time.Hour),
		},
	}
}

// ConvertDiagnosisRunRecords converts schema.DiagnosisRunRecord to DiagnosisRun for Parquet export.
func ConvertDiagnosisRunRecords(records []schema.DiagnosisRunRecord) []DiagnosisRun {
	result := make([]DiagnosisRun, len(records))
	for i, record := range records {
		result[i] = DiagnosisRun{
			DiagnosisID:   record.DiagnosisID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalRuns:     record.TotalRuns,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertCauseScoreRecords converts schema.CauseScoreRecord to CauseScore for Parquet export.
func ConvertCauseScoreRecords(records []schema.CauseScoreRecord) []CauseScore {
	result := make([]CauseScore, len(records))
	for i, record := range records {
		result[i] = CauseScore{
			DiagnosisID:   record.DiagnosisID,
			Run:           record.Run,
			Cluster:       record.Cluster,
			Score:         record.Score,
			Label:         record.Label,
			DiagnosisTime: record.DiagnosisTime,
		}
	}
	return result
}
