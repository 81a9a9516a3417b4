package contract

import (
	"fmt"
)

// LogDiagnosisHeader prints a concise, 2-line header for a diagnosis run.
func LogDiagnosisHeader(cfg *Config) {
	fmt.Printf("🔎 Metrics: %s (workers: %d)\n", cfg.MetricsGlob, cfg.Workers)
	fmt.Printf("📋 Rules: %s + %s\n", cfg.ClusterMapPath, cfg.ThresholdsPath)
}

// LogSummaryHeader prints a header for cohort summarization.
func LogSummaryHeader(cfg *Config) {
	fmt.Printf("🔎 Symptoms: %s\n", cfg.SymptomsFile)
	fmt.Printf("📋 Causes: %s\n", cfg.CausesFile)
}
