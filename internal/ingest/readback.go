package ingest

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/physqa/rundiag/schema"
)

// LabelColumnPrefix marks the per-cluster label columns of a cause table.
const LabelColumnPrefix = "label_"

// SymptomRow is one row read back from a symptom table.
type SymptomRow struct {
	Run      string
	Metric   string
	Z        float64
	Severity schema.Severity
	Cluster  string
}

// CauseRow is one row read back from a cause table.
type CauseRow struct {
	Run    string
	Scores map[string]int
	Labels map[string]schema.CauseLabel
}

// ReadSymptoms reads a previously written symptom table. Extra columns
// are tolerated; the five canonical ones are required.
func ReadSymptoms(path string) ([]SymptomRow, error) {
	header, rows, err := readCSVTable(path)
	if err != nil {
		return nil, fmt.Errorf("symptom table %s: %w", path, err)
	}

	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[col] = i
	}
	for _, col := range []string{"run", "metric", "z", "severity", "cluster"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("symptom table %s is missing column %q", path, col)
		}
	}

	out := make([]SymptomRow, 0, len(rows))
	for n, row := range rows {
		z, err := strconv.ParseFloat(strings.TrimSpace(row[idx["z"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("symptom table %s row %d: bad z value %q", path, n+2, row[idx["z"]])
		}
		out = append(out, SymptomRow{
			Run:      strings.TrimSpace(row[idx["run"]]),
			Metric:   row[idx["metric"]],
			Z:        z,
			Severity: schema.Severity(row[idx["severity"]]),
			Cluster:  row[idx["cluster"]],
		})
	}
	return out, nil
}

// ReadCauses reads a previously written cause table. Cluster score and
// label columns are discovered from the header: every label_<cluster>
// column must pair with a <cluster> score column.
func ReadCauses(path string) ([]CauseRow, []string, error) {
	header, rows, err := readCSVTable(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cause table %s: %w", path, err)
	}

	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[col] = i
	}
	if _, ok := idx[RunColumn]; !ok {
		return nil, nil, fmt.Errorf("cause table %s is missing column %q", path, RunColumn)
	}

	var clusters []string
	for _, col := range header {
		name, ok := strings.CutPrefix(col, LabelColumnPrefix)
		if !ok {
			continue
		}
		if _, scoreOK := idx[name]; !scoreOK {
			return nil, nil, fmt.Errorf("cause table %s has %q without a %q score column", path, col, name)
		}
		clusters = append(clusters, name)
	}
	if len(clusters) == 0 {
		return nil, nil, fmt.Errorf("cause table %s has no cluster columns", path)
	}
	slices.Sort(clusters)

	out := make([]CauseRow, 0, len(rows))
	for n, row := range rows {
		cr := CauseRow{
			Run:    strings.TrimSpace(row[idx[RunColumn]]),
			Scores: make(map[string]int, len(clusters)),
			Labels: make(map[string]schema.CauseLabel, len(clusters)),
		}
		for _, cluster := range clusters {
			score, err := strconv.Atoi(strings.TrimSpace(row[idx[cluster]]))
			if err != nil {
				return nil, nil, fmt.Errorf("cause table %s row %d: bad score %q for cluster %s", path, n+2, row[idx[cluster]], cluster)
			}
			cr.Scores[cluster] = score
			cr.Labels[cluster] = schema.CauseLabel(row[idx[LabelColumnPrefix+cluster]])
		}
		out = append(out, cr)
	}
	return out, clusters, nil
}
