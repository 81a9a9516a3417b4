package schema

import "time"

// HistoryStatus represents the status of the diagnosis history store.
type HistoryStatus struct {
	Backend             string           `json:"backend"`
	Connected           bool             `json:"connected"`
	TotalDiagnoses      int              `json:"total_diagnoses"`
	LastDiagnosisID     int64            `json:"last_diagnosis_id"`
	LastDiagnosisTime   time.Time        `json:"last_diagnosis_time"`
	OldestDiagnosisTime time.Time        `json:"oldest_diagnosis_time"`
	TotalRunsDiagnosed  int              `json:"total_runs_diagnosed"`
	TableSizes          map[string]int64 `json:"table_sizes"`
}

// DiagnosisRunRecord represents a row from the rundiag_diagnosis_runs table.
type DiagnosisRunRecord struct {
	DiagnosisID   int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalRuns     int32
	ConfigParams  *string
}

// CauseScoreRecord represents a row from the rundiag_cause_scores table.
type CauseScoreRecord struct {
	DiagnosisID   int64
	Run           string
	Cluster       string
	Score         int32
	Label         string
	DiagnosisTime time.Time
}
