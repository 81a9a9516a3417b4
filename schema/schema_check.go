package schema

// CheckFinding describes one problem the check command found with a
// diagnostic input.
type CheckFinding struct {
	Target string // which input failed (rules, metrics, quality, raw)
	Detail string // human-readable explanation
}

// CheckResult holds the outcome of a pre-diagnosis input check.
type CheckResult struct {
	Passed       bool
	FilesChecked int
	SampleSize   int
	Findings     []CheckFinding

	// Inputs that were actually probed, for the result header.
	ClusterMapPath string
	ThresholdsPath string
	MetricsGlob    string
	QualityFile    string
	RawMetricsDir  string
}
