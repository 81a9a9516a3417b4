package iohistory

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/physqa/rundiag/schema"
)

func TestHistoryLifecycle(t *testing.T) {
	t.Run("single setup", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "history.db")
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		// Test initialization with SQLite backend
		err := InitHistory(schema.SQLiteBackend, dbPath)
		if err != nil {
			t.Fatalf("Failed to initialize history tracking: %v", err)
		}

		// Test that Manager is accessible
		if Manager == nil {
			t.Fatal("Manager is nil")
		}

		// Test that the store is accessible
		if Manager.GetHistoryStore() == nil {
			t.Fatal("History store is nil")
		}

		// Test cleanup
		CloseHistory()

		// Verify database file was created
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Fatal("Database file was not created")
		}
	})

	t.Run("idempotent setup", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "history.db")
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		// Multiple initializations should be safe (sync.Once)
		err1 := InitHistory(schema.SQLiteBackend, dbPath)
		err2 := InitHistory(schema.SQLiteBackend, dbPath)
		err3 := InitHistory(schema.SQLiteBackend, dbPath)

		if err1 != nil {
			t.Fatalf("First init failed: %v", err1)
		}
		if err2 != nil {
			t.Fatalf("Second init failed: %v", err2)
		}
		if err3 != nil {
			t.Fatalf("Third init failed: %v", err3)
		}

		// Multiple closes should be safe (sync.Once)
		CloseHistory()
		CloseHistory()
		CloseHistory()
	})

	t.Run("disabled tracking", func(t *testing.T) {
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		// Empty backend disables history tracking entirely
		err := InitHistory("", "")
		if err != nil {
			t.Fatalf("Failed to initialize with disabled tracking: %v", err)
		}

		// No store should be registered
		if Manager.GetHistoryStore() != nil {
			t.Fatal("History store should be nil when tracking is disabled")
		}

		// Cleanup is safe with no store
		CloseHistory()
	})

	t.Run("none backend", func(t *testing.T) {
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test

		// Test initialization with None backend (no database)
		err := InitHistory(schema.NoneBackend, "")
		if err != nil {
			t.Fatalf("Failed to initialize history tracking with none backend: %v", err)
		}

		// Test that the no-op store is accessible
		store := Manager.GetHistoryStore()
		if store == nil {
			t.Fatal("History store is nil")
		}

		// Test cleanup (should be safe even with no DB)
		CloseHistory()
	})
}

// TestValidateTableName tests the validateTableName function with various inputs.
func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{
			name:      "valid simple name",
			tableName: "rundiag_diagnosis_runs",
			wantErr:   false,
		},
		{
			name:      "valid name with numbers",
			tableName: "history_table_123",
			wantErr:   false,
		},
		{
			name:      "valid name starting with underscore",
			tableName: "_history_table",
			wantErr:   false,
		},
		{
			name:      "valid uppercase name",
			tableName: "HISTORY_TABLE",
			wantErr:   false,
		},
		{
			name:      "empty name",
			tableName: "",
			wantErr:   true,
		},
		{
			name:      "starts with number",
			tableName: "123_table",
			wantErr:   true,
		},
		{
			name:      "contains dash",
			tableName: "history-table",
			wantErr:   true,
		},
		{
			name:      "contains space",
			tableName: "history table",
			wantErr:   true,
		},
		{
			name:      "sql injection attempt",
			tableName: "history'; DROP TABLE runs; --",
			wantErr:   true,
		},
		{
			name:      "contains dot",
			tableName: "history.table",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateTableName(%q) error = %v, wantErr %v", tt.tableName, err, tt.wantErr)
			}
		})
	}
}

// TestQuoteTableName tests the quoteTableName function for all backends.
func TestQuoteTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		backend   schema.DatabaseBackend
		want      string
	}{
		{
			name:      "SQLite backend",
			tableName: "history_table",
			backend:   schema.SQLiteBackend,
			want:      `"history_table"`,
		},
		{
			name:      "MySQL backend",
			tableName: "history_table",
			backend:   schema.MySQLBackend,
			want:      "`history_table`",
		},
		{
			name:      "PostgreSQL backend",
			tableName: "history_table",
			backend:   schema.PostgreSQLBackend,
			want:      `"history_table"`,
		},
		{
			name:      "None backend defaults to SQLite style",
			tableName: "history_table",
			backend:   schema.NoneBackend,
			want:      `"history_table"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := quoteTableName(tt.tableName, tt.backend)
			if got != tt.want {
				t.Errorf("quoteTableName(%q, %q) = %q, want %q", tt.tableName, tt.backend, got, tt.want)
			}
		})
	}
}

// TestClearHistory tests the ClearHistory function.
func TestClearHistory(t *testing.T) {
	t.Run("SQLite backend", func(t *testing.T) {
		// Create a temporary test database in a temp directory
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "test_clear.db")

		// Create the database file directly with sql.Open
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			t.Fatalf("Failed to create database: %v", err)
		}

		// Create a simple table
		_, err = db.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY)")
		if err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
		_ = db.Close()

		// Verify file exists
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Fatal("Database file should exist before ClearHistory")
		}

		// Clear the history
		err = ClearHistory(schema.SQLiteBackend, dbPath, "")
		if err != nil {
			t.Fatalf("ClearHistory failed: %v", err)
		}

		// Verify file is removed
		if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
			t.Error("Database file should be removed after ClearHistory")
		}
	})

	t.Run("SQLite backend - non-existent file", func(t *testing.T) {
		// Clearing non-existent file should not error
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "non_existent.db")
		err := ClearHistory(schema.SQLiteBackend, dbPath, "")
		if err != nil {
			t.Errorf("ClearHistory on non-existent file should not error: %v", err)
		}
	})

	t.Run("NoneBackend", func(t *testing.T) {
		// NoneBackend should be no-op
		err := ClearHistory(schema.NoneBackend, "", "")
		if err != nil {
			t.Errorf("ClearHistory with NoneBackend should not error: %v", err)
		}
	})

	t.Run("empty dbFilePath for SQLite", func(t *testing.T) {
		err := ClearHistory(schema.SQLiteBackend, "", "")
		if err == nil {
			t.Error("Expected error for empty dbFilePath with SQLite backend")
		}
	})

	t.Run("unsupported backend", func(t *testing.T) {
		err := ClearHistory(schema.DatabaseBackend("unsupported"), "", "")
		if err == nil {
			t.Error("Expected error for unsupported backend")
		}
	})
}

// TestInitHistoryErrors tests error handling in InitHistory.
func TestInitHistoryErrors(t *testing.T) {
	t.Run("invalid MySQL connection", func(t *testing.T) {
		// Reset for clean test
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		defer func() {
			initOnce = sync.Once{}
			closeOnce = sync.Once{}
		}()

		// This should fail during database connection
		err := InitHistory(schema.MySQLBackend, "invalid://connection")
		if err == nil {
			t.Error("Expected error for invalid MySQL connection string")
		}
	})
}

// TestHistoryStoreCloseNil tests closing a store without a database.
func TestHistoryStoreCloseNil(t *testing.T) {
	store := &HistoryStoreImpl{
		db:      nil,
		backend: schema.NoneBackend,
	}

	err := store.Close()
	if err != nil {
		t.Errorf("Close on nil db should not error: %v", err)
	}
}

// TestHistoryStoreManagerConcurrency tests concurrent access to HistoryStoreManager.
func TestHistoryStoreManagerConcurrency(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "concurrent.db")

	initOnce = sync.Once{}
	closeOnce = sync.Once{}

	err := InitHistory(schema.SQLiteBackend, dbPath)
	if err != nil {
		t.Fatalf("InitHistory failed: %v", err)
	}
	defer CloseHistory()

	// Concurrently access the manager
	const numGoroutines = 10
	done := make(chan bool, numGoroutines)

	for i := range numGoroutines {
		go func(id int) {
			defer func() { done <- true }()
			store := Manager.GetHistoryStore()
			if store == nil {
				t.Errorf("Goroutine %d: GetHistoryStore returned nil", id)
				return
			}
			// Perform some operations
			if _, err := store.GetStatus(); err != nil {
				t.Errorf("Goroutine %d: GetStatus failed: %v", id, err)
			}
		}(i)
	}

	// Wait for all goroutines to complete
	for range numGoroutines {
		<-done
	}
}

// TestTableNameLength verifies long and unicode table names.
func TestTableNameLength(t *testing.T) {
	// Very long table name
	longName := strings.Repeat("a", 1000)
	if err := validateTableName(longName); err != nil {
		t.Errorf("Long valid table name should not error: %v", err)
	}

	// Unicode characters
	if err := validateTableName("history_表"); err == nil {
		t.Error("Unicode characters should be rejected")
	}
}
