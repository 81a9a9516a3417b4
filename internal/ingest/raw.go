package ingest

import (
	"fmt"
	"slices"
)

// RequiredRawColumns are the columns every raw per-segment metrics CSV
// must carry before extraction is considered trustworthy.
var RequiredRawColumns = []string{"run", "segment", "file", "value", "error", "weight"}

// CheckRawMetricsFile verifies a raw extraction CSV has the required
// columns and at least one data row.
func CheckRawMetricsFile(path string) error {
	header, rows, err := readCSVTable(path)
	if err != nil {
		return err
	}

	var missing []string
	for _, col := range RequiredRawColumns {
		if !slices.Contains(header, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns %v", missing)
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data rows")
	}
	return nil
}
