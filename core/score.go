package core

import "github.com/physqa/rundiag/schema"

// scoreCluster totals severity weights for one cluster against one run row.
// Configured metrics resolve through the z-score strategies; quality
// indicators read their raw row key directly. Every key that resolves
// yields a symptom record, normal included, so the symptom table shows
// exactly what was checked. Keys that do not resolve contribute nothing.
func scoreCluster(row schema.RunRow, cluster schema.ClusterDefinition, thresholds schema.ThresholdMap) (int, []schema.SymptomRecord) {
	weights := schema.GetSeverityWeights()
	score := 0
	records := make([]schema.SymptomRecord, 0, len(cluster.Metrics)+len(cluster.Indicators))

	for _, metric := range cluster.Metrics {
		value, ok := resolveMetricValue(row, metric)
		if !ok {
			continue
		}
		severity := classifySeverity(value, thresholds.Resolve(metric))
		score += weights[severity]
		records = append(records, schema.SymptomRecord{
			Metric:   metric,
			Z:        value,
			Severity: severity,
			Cluster:  cluster.Name,
		})
	}

	for _, indicator := range cluster.Indicators {
		value, ok := row.Values[indicator]
		if !ok {
			continue
		}
		severity := classifySeverity(value, thresholds.Resolve(indicator))
		score += weights[severity]
		records = append(records, schema.SymptomRecord{
			Metric:   indicator,
			Z:        value,
			Severity: severity,
			Cluster:  cluster.Name,
		})
	}

	return score, records
}
