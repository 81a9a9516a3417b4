package parquet

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/physqa/rundiag/schema"
)

// Symptom represents one classified observation in the diagnose output.
// Rows are long-format: one row per (run, metric, cluster) observation.
type Symptom struct {
	// Run is the run identifier the observation belongs to
	Run string `parquet:"run,snappy"`

	// Metric is the configured key name the observation was classified under
	Metric string `parquet:"metric,snappy"`

	// Z is the deviation magnitude that was classified
	Z float64 `parquet:"z,snappy"`

	// Severity is the tier assigned to the deviation
	Severity string `parquet:"severity,snappy"`

	// Cluster is the cause cluster the metric feeds
	Cluster string `parquet:"cluster,snappy"`
}

// Cause represents one cluster's scored outcome for one run in the
// diagnose output. Rows are long-format: one row per (run, cluster).
type Cause struct {
	// Run is the run identifier the score belongs to
	Run string `parquet:"run,snappy"`

	// Cluster is the cause cluster that was scored
	Cluster string `parquet:"cluster,snappy"`

	// Score is the summed severity weight across the cluster's keys
	Score int32 `parquet:"score,snappy"`

	// Label is the cause label assigned from the score
	Label string `parquet:"label,snappy"`
}

// ConvertDiagnosisResult flattens a cohort diagnosis into long-format
// Symptom and Cause rows. Cause rows follow the rule-set cluster order
// within each run so repeated conversions yield identical row sequences.
func ConvertDiagnosisResult(result *schema.DiagnosisResult) ([]Symptom, []Cause) {
	symptoms := make([]Symptom, 0, result.TotalSymptoms())
	causes := make([]Cause, 0, len(result.Runs)*len(result.Clusters))

	for _, run := range result.Runs {
		for _, s := range run.Symptoms {
			symptoms = append(symptoms, Symptom{
				Run:      run.Run,
				Metric:   s.Metric,
				Z:        s.Z,
				Severity: string(s.Severity),
				Cluster:  s.Cluster,
			})
		}
		for _, cluster := range result.Clusters {
			causes = append(causes, Cause{
				Run:     run.Run,
				Cluster: cluster,
				Score:   int32(run.Scores[cluster]),
				Label:   string(run.Labels[cluster]),
			})
		}
	}

	return symptoms, causes
}

// WriteSymptomsParquet writes a slice of Symptom structs to a Parquet file.
func WriteSymptomsParquet(data []Symptom, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the Symptom struct tags
	writer := parquet.NewGenericWriter[Symptom](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteCausesParquet writes a slice of Cause structs to a Parquet file.
func WriteCausesParquet(data []Cause, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the Cause struct tags
	writer := parquet.NewGenericWriter[Cause](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}
