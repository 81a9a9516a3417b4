package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/physqa/rundiag/internal/contract"
	"github.com/physqa/rundiag/internal/ingest"
	"github.com/physqa/rundiag/internal/ruleset"
	"github.com/physqa/rundiag/schema"
)

// checkTargets orders the finding groups in the failure report.
var checkTargets = []string{"rules", "metrics", "quality", "raw"}

// ExecuteCheck probes the configured diagnostic inputs for CI/CD gating.
// It loads the rule files, samples the per-run metric tables and raw
// metric exports, and returns a non-zero exit code if anything is missing
// or unusable.
func ExecuteCheck(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()

	result := buildCheckResult(cfg)
	printCheckResult(result, time.Since(start))

	if !result.Passed {
		fmt.Printf("%d finding(s) across diagnostic inputs\n", len(result.Findings))
		os.Exit(1)
	}
	return nil
}

// buildCheckResult probes each configured input in turn and collects
// findings instead of stopping at the first failure, so one check run
// reports everything that needs fixing.
func buildCheckResult(cfg *contract.Config) *schema.CheckResult {
	result := &schema.CheckResult{
		SampleSize:     cfg.SampleSize,
		ClusterMapPath: cfg.ClusterMapPath,
		ThresholdsPath: cfg.ThresholdsPath,
		MetricsGlob:    cfg.MetricsGlob,
		QualityFile:    cfg.QualityFile,
		RawMetricsDir:  cfg.RawMetricsDir,
	}

	checkRuleFiles(cfg, result)
	checkMetricTables(cfg, result)
	checkQualityTable(cfg, result)
	checkRawMetrics(cfg, result)

	result.Passed = len(result.Findings) == 0
	return result
}

func addFinding(result *schema.CheckResult, target, detail string) {
	result.Findings = append(result.Findings, schema.CheckFinding{Target: target, Detail: detail})
}

func checkRuleFiles(cfg *contract.Config, result *schema.CheckResult) {
	if _, err := ruleset.Load(cfg.ClusterMapPath, cfg.ThresholdsPath, cfg.Breakpoints); err != nil {
		addFinding(result, "rules", err.Error())
		return
	}
	result.FilesChecked += 2
}

func checkMetricTables(cfg *contract.Config, result *schema.CheckResult) {
	matches, err := filepath.Glob(cfg.MetricsGlob)
	if err != nil {
		addFinding(result, "metrics", fmt.Sprintf("bad metrics glob %s: %v", cfg.MetricsGlob, err))
		return
	}
	if len(matches) == 0 {
		addFinding(result, "metrics", fmt.Sprintf("no metric tables match %s", cfg.MetricsGlob))
		return
	}

	// Probe a sorted prefix so repeated check runs inspect the same files.
	slices.Sort(matches)
	sample := min(len(matches), cfg.SampleSize)
	for _, path := range matches[:sample] {
		if _, err := ingest.LoadMetricTable(path); err != nil {
			addFinding(result, "metrics", err.Error())
			continue
		}
		result.FilesChecked++
	}
}

func checkQualityTable(cfg *contract.Config, result *schema.CheckResult) {
	if cfg.QualityFile == "" {
		return
	}
	if _, err := ingest.LoadQualityTable(cfg.QualityFile); err != nil {
		addFinding(result, "quality", err.Error())
		return
	}
	result.FilesChecked++
}

func checkRawMetrics(cfg *contract.Config, result *schema.CheckResult) {
	if cfg.RawMetricsDir == "" {
		return
	}
	matches, err := filepath.Glob(filepath.Join(cfg.RawMetricsDir, "*.csv"))
	if err != nil {
		addFinding(result, "raw", fmt.Sprintf("bad raw metrics dir %s: %v", cfg.RawMetricsDir, err))
		return
	}
	if len(matches) == 0 {
		addFinding(result, "raw", fmt.Sprintf("no raw metric files found in %s", cfg.RawMetricsDir))
		return
	}

	slices.Sort(matches)
	sample := min(len(matches), cfg.SampleSize)
	for _, path := range matches[:sample] {
		if err := ingest.CheckRawMetricsFile(path); err != nil {
			addFinding(result, "raw", err.Error())
			continue
		}
		result.FilesChecked++
	}
}

// printCheckResult prints the check result in a concise format suitable for CI/CD.
func printCheckResult(result *schema.CheckResult, duration time.Duration) {
	printCheckHeader(result, duration)

	if result.Passed {
		fmt.Printf("✅ All diagnostic inputs are usable\n")
		return
	}
	printCheckFindings(result)
}

// printCheckHeader prints the common header information for check results.
func printCheckHeader(result *schema.CheckResult, duration time.Duration) {
	fmt.Println("Input Check Results:")

	// Define labels and values for dynamic padding
	labels := []string{"Cluster map:", "Thresholds:", "Metrics:", "Quality:", "Raw metrics:"}
	values := []any{
		result.ClusterMapPath,
		result.ThresholdsPath,
		result.MetricsGlob,
		orNotConfigured(result.QualityFile),
		orNotConfigured(result.RawMetricsDir),
	}

	// Find the longest label for consistent padding
	maxLabelLen := 0
	for _, label := range labels {
		if len(label) > maxLabelLen {
			maxLabelLen = len(label)
		}
	}

	// Print each label-value pair with consistent padding
	for i, label := range labels {
		fmt.Printf("  %-*s %v\n", maxLabelLen+1, label, values[i])
	}
	fmt.Println()

	fmt.Printf("Checked %d files (sample size %d) in %v\n\n", result.FilesChecked, result.SampleSize, duration)
}

// printCheckFindings prints the failure case output grouped by target.
func printCheckFindings(result *schema.CheckResult) {
	fmt.Printf("❌ Input check failed: %d finding(s)\n\n", len(result.Findings))

	byTarget := make(map[string][]schema.CheckFinding)
	for _, finding := range result.Findings {
		byTarget[finding.Target] = append(byTarget[finding.Target], finding)
	}

	for _, target := range checkTargets {
		findings := byTarget[target]
		if len(findings) == 0 {
			continue
		}

		fmt.Printf("Target: %s (%d finding(s))\n", target, len(findings))

		// Show top 5 findings, with "+X more" if needed
		maxToShow := 5
		for i, finding := range findings {
			if i >= maxToShow {
				fmt.Printf("  ... and %d more\n", len(findings)-maxToShow)
				break
			}
			fmt.Printf("  - %s\n", finding.Detail)
		}
		fmt.Println()
	}
}

func orNotConfigured(path string) string {
	if path == "" {
		return "(not configured)"
	}
	return path
}
