// Package ingest discovers and parses the per-metric z-score tables and
// the physics-quality table, and assembles them into merged per-run rows
// for the scoring engine. Missing cells stay missing: an absent or
// unparseable value never becomes a zero.
package ingest

import (
	"encoding/csv"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/physqa/rundiag/schema"
)

// MetricFilePrefix and MetricFileSuffix delimit the metric name inside a
// per-metric table filename, e.g. metrics_intt_adc_landau_mpv_perrun.csv.
const (
	MetricFilePrefix = "metrics_"
	MetricFileSuffix = "_perrun.csv"
)

// RunColumn is the run identifier column every input table must carry.
const RunColumn = "run"

// MetricTable holds one metric's z-scores keyed by run identifier.
type MetricTable struct {
	Metric     string
	SourceFile string
	Column     string // the z column the loader matched
	Values     map[string]float64
}

// SkippedTable describes an input file the loader could not use.
type SkippedTable struct {
	Path   string
	Reason string
}

// QualityTable holds the physics-quality indicators keyed by run, then by
// indicator column name.
type QualityTable struct {
	Columns []string
	Values  map[string]map[string]float64
}

// zColumnCandidates returns the column names that may carry the z-score
// for a metric, in priority order. The first present column wins.
func zColumnCandidates(metric string) []string {
	return []string{"z_" + metric, "z_local", metric + "_z_local"}
}

// MetricNameFromPath extracts the metric name from a per-metric table
// path, or "" when the filename does not follow the naming scheme.
func MetricNameFromPath(path string) string {
	base := filepath.Base(path)
	if !strings.HasPrefix(base, MetricFilePrefix) || !strings.HasSuffix(base, MetricFileSuffix) {
		return ""
	}
	name := strings.TrimPrefix(base, MetricFilePrefix)
	name = strings.TrimSuffix(name, MetricFileSuffix)
	return name
}

// DiscoverMetricTables globs for per-metric tables and parses each one.
// Files without the naming scheme, without a run column or without any
// recognizable z column are reported in skipped rather than failing the
// whole batch. Zero usable tables is fatal: there is nothing to diagnose
// and partial output would be misleading.
func DiscoverMetricTables(glob string) ([]MetricTable, []SkippedTable, error) {
	paths, err := filepath.Glob(glob)
	if err != nil {
		return nil, nil, fmt.Errorf("bad metrics glob %q: %w", glob, err)
	}
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no metric tables match %q", glob)
	}
	slices.Sort(paths)

	var tables []MetricTable
	var skipped []SkippedTable
	for _, path := range paths {
		table, err := LoadMetricTable(path)
		if err != nil {
			skipped = append(skipped, SkippedTable{Path: path, Reason: err.Error()})
			continue
		}
		tables = append(tables, table)
	}

	if len(tables) == 0 {
		return nil, skipped, fmt.Errorf("none of the %d files matching %q has a usable z-score column", len(paths), glob)
	}
	return tables, skipped, nil
}

// LoadMetricTable parses one per-metric CSV into run-keyed z values.
func LoadMetricTable(path string) (MetricTable, error) {
	metric := MetricNameFromPath(path)
	if metric == "" {
		return MetricTable{}, fmt.Errorf("filename does not follow %s<metric>%s", MetricFilePrefix, MetricFileSuffix)
	}

	header, rows, err := readCSVTable(path)
	if err != nil {
		return MetricTable{}, err
	}

	runIdx := slices.Index(header, RunColumn)
	if runIdx < 0 {
		return MetricTable{}, fmt.Errorf("no %q column", RunColumn)
	}

	zIdx := -1
	zCol := ""
	for _, candidate := range zColumnCandidates(metric) {
		if idx := slices.Index(header, candidate); idx >= 0 {
			zIdx = idx
			zCol = candidate
			break
		}
	}
	if zIdx < 0 {
		return MetricTable{}, fmt.Errorf("no z-score column among %v", zColumnCandidates(metric))
	}

	values := make(map[string]float64, len(rows))
	for _, row := range rows {
		run := strings.TrimSpace(row[runIdx])
		if run == "" {
			continue
		}
		if v, ok := parseCell(row[zIdx]); ok {
			values[run] = v
		}
	}

	return MetricTable{Metric: metric, SourceFile: path, Column: zCol, Values: values}, nil
}

// LoadQualityTable parses the physics-quality CSV. Every column except
// the run identifier becomes an indicator key. An empty path is an
// explicit opt-out and yields a nil table.
func LoadQualityTable(path string) (*QualityTable, error) {
	if path == "" {
		return nil, nil
	}

	header, rows, err := readCSVTable(path)
	if err != nil {
		return nil, fmt.Errorf("quality table %s: %w", path, err)
	}

	runIdx := slices.Index(header, RunColumn)
	if runIdx < 0 {
		return nil, fmt.Errorf("quality table %s has no %q column", path, RunColumn)
	}

	var columns []string
	for i, col := range header {
		if i != runIdx {
			columns = append(columns, col)
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("quality table %s has no indicator columns", path)
	}

	values := make(map[string]map[string]float64, len(rows))
	for _, row := range rows {
		run := strings.TrimSpace(row[runIdx])
		if run == "" {
			continue
		}
		indicators := make(map[string]float64, len(columns))
		for i, col := range header {
			if i == runIdx {
				continue
			}
			if v, ok := parseCell(row[i]); ok {
				indicators[col] = v
			}
		}
		values[run] = indicators
	}

	return &QualityTable{Columns: columns, Values: values}, nil
}

// BuildRunRows outer-joins the metric tables on run identifier and
// left-joins the quality table. A run missing from one table simply has
// no key for that table's column. Rows come back sorted by run.
func BuildRunRows(tables []MetricTable, quality *QualityTable) []schema.RunRow {
	runs := make(map[string]struct{})
	for _, table := range tables {
		for run := range table.Values {
			runs[run] = struct{}{}
		}
	}

	sorted := slices.SortedFunc(maps.Keys(runs), schema.CompareRunIDs)

	rows := make([]schema.RunRow, 0, len(sorted))
	for _, run := range sorted {
		values := make(map[string]float64)
		for _, table := range tables {
			if v, ok := table.Values[run]; ok {
				values["z_"+table.Metric] = v
			}
		}
		// Quality indicators attach after metrics, so an indicator
		// that shadows a z column wins deterministically.
		if quality != nil {
			for col, v := range quality.Values[run] {
				values[col] = v
			}
		}
		rows = append(rows, schema.RunRow{Run: run, Values: values})
	}
	return rows
}

// readCSVTable reads a CSV file into a header row and data rows.
func readCSVTable(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty file")
	}

	header := make([]string, len(records[0]))
	for i, col := range records[0] {
		header[i] = strings.TrimSpace(col)
	}
	return header, records[1:], nil
}

// parseCell converts one CSV cell to a float. Blank and non-numeric
// cells mean "not measured" and report ok=false.
func parseCell(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
