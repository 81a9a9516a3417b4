package iohistory

import (
	"fmt"
	"regexp"

	"github.com/physqa/rundiag/schema"
)

// validTableNamePattern matches valid SQL table identifiers.
var validTableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateTableName ensures a table name is a safe SQL identifier.
func validateTableName(name string) error {
	if !validTableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %q", name)
	}
	return nil
}

// quoteTableName quotes a table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // PostgreSQL and SQLite use double quotes
		return fmt.Sprintf("%q", name)
	}
}
