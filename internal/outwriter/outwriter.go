// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/physqa/rundiag/internal/contract"
	"github.com/physqa/rundiag/schema"
)

// WriteDiagnosisResults outputs the diagnosis results, dispatching based on the output format configured.
func WriteDiagnosisResults(result *schema.DiagnosisResult, cfg *contract.Config, duration time.Duration) error {
	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeDiagnosisJSON(result, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeSymptomsCSV(result, cfg); err != nil {
			return fmt.Errorf("error writing symptoms CSV: %w", err)
		}
		if err := writeCausesCSV(result, cfg); err != nil {
			return fmt.Errorf("error writing causes CSV: %w", err)
		}
	case schema.ParquetOut:
		if err := writeDiagnosisParquet(result, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable tables
		return writeWithFile("", func(w io.Writer) error {
			return writeDiagnosisTables(result, cfg, duration, w)
		}, "Wrote table")
	}
	return nil
}

// limitRuns truncates the run list for display purposes. File outputs
// always carry every run.
func limitRuns(runs []schema.RunDiagnosis, limit int) []schema.RunDiagnosis {
	if limit > 0 && len(runs) > limit {
		return runs[:limit]
	}
	return runs
}

// formatSeverity renders a severity for table output, colored when enabled.
func formatSeverity(s schema.Severity, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorSeverity(s)
	}
	return string(s)
}

// formatLabel renders a cause label for table output, colored when enabled.
func formatLabel(l schema.CauseLabel, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(l)
	}
	return string(l)
}
