package iohistory

import (
	"errors"
	"fmt"

	"github.com/physqa/rundiag/internal/parquet"
)

// ExecuteHistoryExport performs the actual export of diagnosis history to Parquet files.
func ExecuteHistoryExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Get the history store
	store := Manager.GetHistoryStore()
	if store == nil {
		return errors.New("history store is not initialized")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}

	if status.TotalDiagnoses == 0 {
		return errors.New("no diagnosis history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total diagnosis sessions: %d\n", status.TotalDiagnoses)
	fmt.Printf("Total cause score records: %d\n", status.TableSizes[causeScoresTable])

	// Retrieve all diagnosis sessions
	diagnosisRuns, err := store.GetAllDiagnosisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve diagnosis sessions: %w", err)
	}

	// Retrieve all cause scores
	causeScores, err := store.GetAllCauseScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve cause scores: %w", err)
	}

	// Convert to Parquet format
	parquetDiagnosisRuns := parquet.ConvertDiagnosisRunRecords(diagnosisRuns)
	parquetCauseScores := parquet.ConvertCauseScoreRecords(causeScores)

	// Write diagnosis sessions to Parquet
	diagnosisRunsFile := outputFile + ".diagnosis_runs.parquet"
	if err := parquet.WriteDiagnosisRunsParquet(parquetDiagnosisRuns, diagnosisRunsFile); err != nil {
		return fmt.Errorf("failed to write diagnosis sessions: %w", err)
	}
	fmt.Printf("Exported %d diagnosis sessions to: %s\n", len(parquetDiagnosisRuns), diagnosisRunsFile)

	// Write cause scores to Parquet
	causeScoresFile := outputFile + ".cause_scores.parquet"
	if err := parquet.WriteCauseScoresParquet(parquetCauseScores, causeScoresFile); err != nil {
		return fmt.Errorf("failed to write cause scores: %w", err)
	}
	fmt.Printf("Exported %d cause score records to: %s\n", len(parquetCauseScores), causeScoresFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
