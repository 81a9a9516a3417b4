package schema

// MetricSeverityCount holds, for one metric, the number of distinct runs
// that landed in each severity tier.
type MetricSeverityCount struct {
	Metric string           `json:"metric"`
	Counts map[Severity]int `json:"counts"`
}

// ClusterLabelCount holds, for one cluster, the number of distinct runs
// that received each cause label.
type ClusterLabelCount struct {
	Cluster string             `json:"cluster"`
	Counts  map[CauseLabel]int `json:"counts"`
}

// CohortSummary aggregates a whole cohort's diagnosis into frequency
// tables. A run counts at most once per (metric, severity) bucket even
// when the metric feeds several clusters. Metrics and Clusters are held
// in deterministic name order.
type CohortSummary struct {
	Metrics   []MetricSeverityCount `json:"metrics"`
	Clusters  []ClusterLabelCount   `json:"clusters"`
	TotalRuns int                   `json:"total_runs"`
}
