package core

import "github.com/physqa/rundiag/schema"

// A resolveStrategy derives the row key that may carry a metric's z-score.
type resolveStrategy struct {
	Name string
	Key  func(metric string) string
}

// resolutionStrategies are tried in order and the first key present in the
// row wins. The order is part of the scoring contract: a harmonized z_
// column always shadows a local one.
var resolutionStrategies = []resolveStrategy{
	{Name: "z-prefix", Key: func(metric string) string { return "z_" + metric }},
	{Name: "local-suffix", Key: func(metric string) string { return metric + "_z_local" }},
}

// resolveMetricValue looks up the z-score for a configured metric in a run
// row. A metric with no resolvable key reports ok=false and is skipped by
// the caller rather than scored as zero.
func resolveMetricValue(row schema.RunRow, metric string) (float64, bool) {
	for _, strategy := range resolutionStrategies {
		if value, ok := row.Values[strategy.Key(metric)]; ok {
			return value, true
		}
	}
	return 0, false
}
