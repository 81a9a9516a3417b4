package core

import (
	"context"
	"slices"
	"sync"

	"github.com/physqa/rundiag/internal/contract"
	"github.com/physqa/rundiag/schema"
)

// diagnoseRun scores every cluster for a single run row. Clusters are
// independent: each one sees the same row and contributes its own score,
// label and symptom records.
func diagnoseRun(row schema.RunRow, rules *schema.RuleSet) schema.RunDiagnosis {
	diag := schema.RunDiagnosis{
		Run:    row.Run,
		Scores: make(map[string]int, len(rules.Clusters)),
		Labels: make(map[string]schema.CauseLabel, len(rules.Clusters)),
	}
	for _, cluster := range rules.Clusters {
		score, records := scoreCluster(row, cluster, rules.Thresholds)
		diag.Scores[cluster.Name] = score
		diag.Labels[cluster.Name] = assignLabel(score, rules.Breakpoints)
		diag.Symptoms = append(diag.Symptoms, records...)
	}
	return diag
}

// diagnoseRuns fans run rows across a worker pool and collects the per-run
// diagnoses sorted by run ID. Workers share the rule set read-only, so no
// locking is needed around scoring.
func diagnoseRuns(ctx context.Context, cfg *contract.Config, rules *schema.RuleSet, rows []schema.RunRow) []schema.RunDiagnosis {
	// Initialize channels based on the final number of rows to be processed.
	rowCh := make(chan schema.RunRow, len(rows))
	diagCh := make(chan schema.RunDiagnosis, len(rows))
	var wg sync.WaitGroup

	// Start worker pool
	for range cfg.Workers {
		wg.Go(func() {
			for row := range rowCh {
				select {
				case <-ctx.Done():
					return
				default:
				}
				diagCh <- diagnoseRun(row, rules)
			}
		})
	}

	// Send rows to worker channel
	for _, row := range rows {
		rowCh <- row
	}
	close(rowCh)

	// Wait for all workers to finish scoring
	wg.Wait()
	close(diagCh)

	diagnoses := make([]schema.RunDiagnosis, 0, len(rows))
	for diag := range diagCh {
		diagnoses = append(diagnoses, diag)
	}

	// Worker completion order is nondeterministic; run ID order is the
	// output contract.
	slices.SortFunc(diagnoses, func(a, b schema.RunDiagnosis) int {
		return schema.CompareRunIDs(a.Run, b.Run)
	})
	return diagnoses
}
