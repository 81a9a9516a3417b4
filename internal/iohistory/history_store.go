package iohistory

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/physqa/rundiag/internal/contract"
	"github.com/physqa/rundiag/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

// Table names for diagnosis history tracking.
const (
	diagnosisRunsTable = "rundiag_diagnosis_runs"
	causeScoresTable   = "rundiag_cause_scores"
)

// HistoryStoreImpl implements the HistoryStore interface on database/sql.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... port=... user=... dbname=...", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{
			db:      nil,
			backend: backend,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database server is running and accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	// Create the table schemas
	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{
		db:      db,
		backend: backend,
	}, nil
}

// createHistoryTables creates the diagnosis history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	for _, name := range []string{diagnosisRunsTable, causeScoresTable} {
		if err := validateTableName(name); err != nil {
			return err
		}
	}

	tables := []struct {
		name  string
		query string
	}{
		{diagnosisRunsTable, getCreateDiagnosisRunsQuery(backend)},
		{causeScoresTable, getCreateCauseScoresQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateDiagnosisRunsQuery returns the CREATE TABLE query for rundiag_diagnosis_runs.
func getCreateDiagnosisRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(diagnosisRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				diagnosis_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_runs INT,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				diagnosis_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_runs INT,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				diagnosis_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_runs INTEGER,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateCauseScoresQuery returns the CREATE TABLE query for rundiag_cause_scores.
func getCreateCauseScoresQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(causeScoresTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				diagnosis_id BIGINT NOT NULL,
				run VARCHAR(64) NOT NULL,
				cluster VARCHAR(128) NOT NULL,
				score INT NOT NULL,
				label VARCHAR(50) NOT NULL,
				diagnosis_time DATETIME(6) NOT NULL,
				PRIMARY KEY (diagnosis_id, run, cluster)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				diagnosis_id BIGINT NOT NULL,
				run TEXT NOT NULL,
				cluster TEXT NOT NULL,
				score INT NOT NULL,
				label TEXT NOT NULL,
				diagnosis_time TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (diagnosis_id, run, cluster)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				diagnosis_id INTEGER NOT NULL,
				run TEXT NOT NULL,
				cluster TEXT NOT NULL,
				score INTEGER NOT NULL,
				label TEXT NOT NULL,
				diagnosis_time TEXT NOT NULL,
				PRIMARY KEY (diagnosis_id, run, cluster)
			);
		`, quotedTableName)
	}
}

// BeginDiagnosis creates a new diagnosis session and returns its unique ID.
func (hs *HistoryStoreImpl) BeginDiagnosis(startTime time.Time, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	// Serialize config params to JSON
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(diagnosisRunsTable, hs.backend)

	var diagnosisID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING diagnosis_id`, quotedTableName)
		err = hs.db.QueryRow(query, startTime, string(configJSON)).Scan(&diagnosisID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, quotedTableName)
		var result sql.Result
		result, err = hs.db.Exec(query, formatTime(startTime, hs.backend), string(configJSON))
		if err != nil {
			return 0, err
		}
		diagnosisID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert diagnosis session: %w", err)
	}

	return diagnosisID, nil
}

// EndDiagnosis updates the diagnosis session with completion data.
func (hs *HistoryStoreImpl) EndDiagnosis(diagnosisID int64, endTime time.Time, totalRuns int) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	// First, get the start_time to calculate duration
	quotedTableName := quoteTableName(diagnosisRunsTable, hs.backend)
	var startTime time.Time

	var query string
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE diagnosis_id = $1`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE diagnosis_id = ?`, quotedTableName)
	}

	row := hs.db.QueryRow(query, diagnosisID)

	// Handle different time storage formats per backend
	switch hs.backend {
	case schema.SQLiteBackend:
		var startTimeStr string
		if err := row.Scan(&startTimeStr); err != nil {
			return fmt.Errorf("failed to get start_time for diagnosis %d: %w", diagnosisID, err)
		}
		var err error
		startTime, err = time.Parse(time.RFC3339Nano, startTimeStr)
		if err != nil {
			return fmt.Errorf("failed to parse start_time: %w", err)
		}
	default: // MySQL and PostgreSQL store as native datetime
		if err := row.Scan(&startTime); err != nil {
			return fmt.Errorf("failed to get start_time for diagnosis %d: %w", diagnosisID, err)
		}
	}

	// Calculate duration in milliseconds
	durationMs := endTime.Sub(startTime).Milliseconds()

	// Update the diagnosis session with completion data
	var updateQuery string
	var args []any

	switch hs.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_runs = $3 WHERE diagnosis_id = $4`, quotedTableName)
		args = []any{endTime, durationMs, totalRuns, diagnosisID}
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_runs = ? WHERE diagnosis_id = ?`, quotedTableName)
		args = []any{formatTime(endTime, hs.backend), durationMs, totalRuns, diagnosisID}
	}

	_, err := hs.db.Exec(updateQuery, args...)
	if err != nil {
		return fmt.Errorf("failed to update diagnosis session: %w", err)
	}

	return nil
}

// RecordRunCauses stores one row per cluster for a single run's diagnosis.
// Cluster order is name-sorted so repeated diagnoses write identical row
// sequences.
func (hs *HistoryStoreImpl) RecordRunCauses(diagnosisID int64, diagnosisTime time.Time, diag schema.RunDiagnosis) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(causeScoresTable, hs.backend)

	var query string
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`
			INSERT INTO %s (diagnosis_id, run, cluster, score, label, diagnosis_time)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`
			INSERT INTO %s (diagnosis_id, run, cluster, score, label, diagnosis_time)
			VALUES (?, ?, ?, ?, ?, ?)
		`, quotedTableName)
	}

	recordTime := formatTime(diagnosisTime, hs.backend)
	for _, cluster := range slices.Sorted(maps.Keys(diag.Scores)) {
		args := []any{
			diagnosisID, diag.Run, cluster, diag.Scores[cluster],
			string(diag.Labels[cluster]), recordTime,
		}
		if _, err := hs.db.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to insert cause score for run %s cluster %s: %w", diag.Run, cluster, err)
		}
	}

	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	// Get total diagnoses
	runsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(diagnosisRunsTable, hs.backend))
	row := hs.db.QueryRow(runsQuery)
	if err := row.Scan(&status.TotalDiagnoses); err != nil {
		return status, fmt.Errorf("failed to get total diagnoses: %w", err)
	}

	if status.TotalDiagnoses > 0 {
		// Get last diagnosis info
		lastQuery := fmt.Sprintf("SELECT diagnosis_id, start_time FROM %s ORDER BY diagnosis_id DESC LIMIT 1", quoteTableName(diagnosisRunsTable, hs.backend))
		row = hs.db.QueryRow(lastQuery)

		switch hs.backend {
		case schema.SQLiteBackend:
			var lastID int64
			var lastTimeStr string
			if err := row.Scan(&lastID, &lastTimeStr); err != nil {
				return status, fmt.Errorf("failed to get last diagnosis info: %w", err)
			}
			status.LastDiagnosisID = lastID
			lastTime, err := time.Parse(time.RFC3339Nano, lastTimeStr)
			if err != nil {
				return status, fmt.Errorf("failed to parse last diagnosis time: %w", err)
			}
			status.LastDiagnosisTime = lastTime
		default: // MySQL and PostgreSQL store as native datetime
			if err := row.Scan(&status.LastDiagnosisID, &status.LastDiagnosisTime); err != nil {
				return status, fmt.Errorf("failed to get last diagnosis info: %w", err)
			}
		}

		// Get oldest diagnosis time
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY diagnosis_id ASC LIMIT 1", quoteTableName(diagnosisRunsTable, hs.backend))
		row = hs.db.QueryRow(oldestQuery)

		switch hs.backend {
		case schema.SQLiteBackend:
			var oldestTimeStr string
			if err := row.Scan(&oldestTimeStr); err != nil {
				return status, fmt.Errorf("failed to get oldest diagnosis time: %w", err)
			}
			oldestTime, err := time.Parse(time.RFC3339Nano, oldestTimeStr)
			if err != nil {
				return status, fmt.Errorf("failed to parse oldest diagnosis time: %w", err)
			}
			status.OldestDiagnosisTime = oldestTime
		default: // MySQL and PostgreSQL store as native datetime
			if err := row.Scan(&status.OldestDiagnosisTime); err != nil {
				return status, fmt.Errorf("failed to get oldest diagnosis time: %w", err)
			}
		}

		// Get total runs diagnosed
		totalQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_runs), 0) FROM %s", quoteTableName(diagnosisRunsTable, hs.backend))
		row = hs.db.QueryRow(totalQuery)
		if err := row.Scan(&status.TotalRunsDiagnosed); err != nil {
			return status, fmt.Errorf("failed to get total runs diagnosed: %w", err)
		}
	}

	// Get table sizes
	tables := []string{diagnosisRunsTable, causeScoresTable}
	for _, table := range tables {
		quotedTable := quoteTableName(table, hs.backend)
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTable)
		row = hs.db.QueryRow(countQuery)
		var count int64
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllDiagnosisRuns retrieves all diagnosis sessions from the store.
func (hs *HistoryStoreImpl) GetAllDiagnosisRuns() ([]schema.DiagnosisRunRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(diagnosisRunsTable, hs.backend)
	query := fmt.Sprintf("SELECT diagnosis_id, start_time, end_time, run_duration_ms, total_runs, config_params FROM %s ORDER BY diagnosis_id", quotedTableName)

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnosis sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.DiagnosisRunRecord

	for rows.Next() {
		var record schema.DiagnosisRunRecord
		var totalRuns sql.NullInt32

		switch hs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.DiagnosisID, &startTimeStr, &endTimeStr, &record.RunDurationMs, &totalRuns, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan diagnosis session: %w", err)
			}
			// Parse start time
			startTime, err := time.Parse(time.RFC3339Nano, startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			// Parse end time if present
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.DiagnosisID, &record.StartTime, &record.EndTime, &record.RunDurationMs, &totalRuns, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan diagnosis session: %w", err)
			}
		}

		if totalRuns.Valid {
			record.TotalRuns = totalRuns.Int32
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating diagnosis sessions: %w", err)
	}

	return results, nil
}

// GetAllCauseScores retrieves all stored cause scores from the store.
func (hs *HistoryStoreImpl) GetAllCauseScores() ([]schema.CauseScoreRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(causeScoresTable, hs.backend)
	query := fmt.Sprintf("SELECT diagnosis_id, run, cluster, score, label, diagnosis_time FROM %s ORDER BY diagnosis_id, run, cluster", quotedTableName)

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cause scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CauseScoreRecord

	for rows.Next() {
		var record schema.CauseScoreRecord

		switch hs.backend {
		case schema.SQLiteBackend:
			var diagnosisTimeStr string
			if err := rows.Scan(&record.DiagnosisID, &record.Run, &record.Cluster, &record.Score, &record.Label, &diagnosisTimeStr); err != nil {
				return nil, fmt.Errorf("failed to scan cause score: %w", err)
			}
			// Parse diagnosis time
			diagnosisTime, err := time.Parse(time.RFC3339Nano, diagnosisTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse diagnosis_time: %w", err)
			}
			record.DiagnosisTime = diagnosisTime
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.DiagnosisID, &record.Run, &record.Cluster, &record.Score, &record.Label, &record.DiagnosisTime); err != nil {
				return nil, fmt.Errorf("failed to scan cause score: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cause scores: %w", err)
	}

	return results, nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.Format(time.RFC3339Nano)
	default:
		return t
	}
}
