// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/physqa/rundiag/schema"
)

// HistoryManager defines the interface for accessing history stores.
// This allows the persistence layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore defines the interface for tracking diagnosis sessions and
// storing per-run cause scores.
type HistoryStore interface {
	// BeginDiagnosis creates a new diagnosis session and returns its unique ID
	BeginDiagnosis(startTime time.Time, configParams map[string]any) (int64, error)

	// EndDiagnosis updates the diagnosis session with completion data
	EndDiagnosis(diagnosisID int64, endTime time.Time, totalRuns int) error

	// RecordRunCauses stores the per-cluster scores and labels for one run
	RecordRunCauses(diagnosisID int64, diagnosisTime time.Time, diag schema.RunDiagnosis) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllDiagnosisRuns retrieves all diagnosis sessions for export
	GetAllDiagnosisRuns() ([]schema.DiagnosisRunRecord, error)

	// GetAllCauseScores retrieves all stored cause scores for export
	GetAllCauseScores() ([]schema.CauseScoreRecord, error)

	// Close closes the underlying connection
	Close() error
}
