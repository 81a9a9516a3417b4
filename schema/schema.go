// Package schema has configs, models and shared constants for all parts of rundiag.
package schema

// Threshold holds the severity boundaries for one metric or indicator key.
// Classification compares |z| against these bounds in descending order,
// which is only meaningful when Severe >= Moderate >= Mild >= 0. The rule
// loader enforces that ordering before any run is scored.
type Threshold struct {
	Mild     float64 `yaml:"mild"`
	Moderate float64 `yaml:"moderate"`
	Severe   float64 `yaml:"severe"`
}

// ThresholdMap maps a metric or indicator key to its severity boundaries.
// The GlobalThresholdKey entry is mandatory and serves as the fallback for
// every key without a dedicated entry.
type ThresholdMap map[string]Threshold

// Resolve returns the threshold for key, falling back to the global entry.
// The loader guarantees the global entry exists, so the fallback lookup
// always succeeds on a validated map.
func (tm ThresholdMap) Resolve(key string) Threshold {
	if thr, ok := tm[key]; ok {
		return thr
	}
	return tm[GlobalThresholdKey]
}

// ClusterDefinition names a group of metrics and indicators believed to
// co-vary under one physical failure mode. Metrics require derived-key
// resolution against a run row; indicators are looked up by raw name.
type ClusterDefinition struct {
	Name       string
	Metrics    []string
	Indicators []string
}

// LabelBreakpoints holds the score boundaries for cause labels. A cluster
// score s maps to strong if s >= Strong, moderate if s >= Moderate, weak
// if s >= Weak, otherwise none. Requires Strong >= Moderate >= Weak >= 1.
type LabelBreakpoints struct {
	Weak     int
	Moderate int
	Strong   int
}

// RuleSet is the full validated diagnostic configuration: cluster
// definitions in deterministic name order, the threshold registry, and
// the label breakpoints. Loaded once and shared read-only across runs.
type RuleSet struct {
	Clusters    []ClusterDefinition
	Thresholds  ThresholdMap
	Breakpoints LabelBreakpoints
}

// ClusterNames returns the cluster names in rule-set order.
func (r *RuleSet) ClusterNames() []string {
	names := make([]string, len(r.Clusters))
	for i, c := range r.Clusters {
		names[i] = c.Name
	}
	return names
}

// RunRow is the merged per-run view over all metric tables and the
// physics-quality table. Keys are z-score columns ("z_"+metric or
// metric+"_z_local") and raw indicator names. An absent key means the
// quantity was not measured for this run and must be skipped, not
// treated as zero.
type RunRow struct {
	Run    string
	Values map[string]float64
}

// SymptomRecord is one classified observation for a run within a cluster.
// Metric carries the configured key name, not the resolved column name.
// Records are created during aggregation and never mutated afterwards.
type SymptomRecord struct {
	Metric   string   `json:"metric"`
	Z        float64  `json:"z"`
	Severity Severity `json:"severity"`
	Cluster  string   `json:"cluster"`
}

// RunDiagnosis holds the full scoring outcome for a single run: one
// integer score and one label per configured cluster, plus every symptom
// record that contributed (including normal-severity ones).
type RunDiagnosis struct {
	Run      string                `json:"run"`
	Scores   map[string]int        `json:"scores"`
	Labels   map[string]CauseLabel `json:"labels"`
	Symptoms []SymptomRecord       `json:"symptoms"`
}

// DiagnosisResult is the outcome of diagnosing a whole cohort. Runs are
// sorted by run identifier and Clusters preserves the rule-set order so
// table columns stay stable across invocations.
type DiagnosisResult struct {
	Runs     []RunDiagnosis
	Clusters []string
}

// TotalSymptoms counts symptom records across all runs.
func (d *DiagnosisResult) TotalSymptoms() int {
	total := 0
	for _, r := range d.Runs {
		total += len(r.Symptoms)
	}
	return total
}
