package core

import (
	"maps"
	"slices"

	"github.com/physqa/rundiag/internal/ingest"
	"github.com/physqa/rundiag/schema"
)

// BuildCohortSummary reduces symptom and cause rows into distinct-run
// counts. A run counts once per (metric, severity) and once per
// (cluster, label) no matter how many rows repeat the pair, so re-diagnosed
// or duplicated rows cannot inflate the frequencies.
func BuildCohortSummary(symptoms []ingest.SymptomRow, causes []ingest.CauseRow, clusters []string) schema.CohortSummary {
	metricRuns := make(map[string]map[schema.Severity]map[string]struct{})
	clusterRuns := make(map[string]map[schema.CauseLabel]map[string]struct{})
	allRuns := make(map[string]struct{})

	for _, row := range symptoms {
		allRuns[row.Run] = struct{}{}
		bySeverity, ok := metricRuns[row.Metric]
		if !ok {
			bySeverity = make(map[schema.Severity]map[string]struct{})
			metricRuns[row.Metric] = bySeverity
		}
		runs, ok := bySeverity[row.Severity]
		if !ok {
			runs = make(map[string]struct{})
			bySeverity[row.Severity] = runs
		}
		runs[row.Run] = struct{}{}
	}

	for _, row := range causes {
		allRuns[row.Run] = struct{}{}
		for cluster, label := range row.Labels {
			byLabel, ok := clusterRuns[cluster]
			if !ok {
				byLabel = make(map[schema.CauseLabel]map[string]struct{})
				clusterRuns[cluster] = byLabel
			}
			runs, ok := byLabel[label]
			if !ok {
				runs = make(map[string]struct{})
				byLabel[label] = runs
			}
			runs[row.Run] = struct{}{}
		}
	}

	summary := schema.CohortSummary{TotalRuns: len(allRuns)}

	for _, metric := range slices.Sorted(maps.Keys(metricRuns)) {
		counts := make(map[schema.Severity]int, len(schema.SeverityOrder))
		for severity, runs := range metricRuns[metric] {
			counts[severity] = len(runs)
		}
		summary.Metrics = append(summary.Metrics, schema.MetricSeverityCount{
			Metric: metric,
			Counts: counts,
		})
	}

	// Cluster order follows the causes table columns, which the diagnose
	// command already emits name-sorted.
	for _, cluster := range clusters {
		counts := make(map[schema.CauseLabel]int, len(schema.LabelOrder))
		for label, runs := range clusterRuns[cluster] {
			counts[label] = len(runs)
		}
		summary.Clusters = append(summary.Clusters, schema.ClusterLabelCount{
			Cluster: cluster,
			Counts:  counts,
		})
	}

	return summary
}
