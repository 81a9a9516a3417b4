// Package main provides a performance benchmarking tool for the rundiag CLI.
// It generates synthetic cohorts of increasing size, measures execution times
// for the diagnose and summary commands, running each test multiple times,
// treating the first successful history-backed run as cold and averaging the
// rest as warm, generating CSV output for performance analysis.
//
// Prerequisites:
// - rundiag binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where synthetic cohorts are generated
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-history average, cold run and average of warm runs).
type BenchmarkResult struct {
	Cohort        string
	Command       string
	NoHistoryTime string
	ColdTime      string
	WarmTime      string
}

// CohortSpec describes one synthetic cohort to generate.
type CohortSpec struct {
	Name    string
	Runs    int
	Metrics int
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir       string
	Timeout       time.Duration
	Workers       int
	NoHistoryRuns int
	HistoryRuns   int
	Cohorts       []CohortSpec
}

// clusterNames are the cause clusters used by every generated cohort.
var clusterNames = []string{"gain_drift", "timing_desync", "beam_instability"}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	config := BenchmarkConfig{
		WorkDir:       workDir,
		Timeout:       5 * time.Minute,
		Workers:       8,
		NoHistoryRuns: 3,
		HistoryRuns:   4,
		Cohorts: []CohortSpec{
			{Name: "cohort-small", Runs: 200, Metrics: 4},
			{Name: "cohort-medium", Runs: 2000, Metrics: 8},
			{Name: "cohort-large", Runs: 20000, Metrics: 12},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	if err := generateCohorts(config); err != nil {
		fmt.Printf("Cohort generation failed: %v\n", err)
		os.Exit(1)
	}

	// Clear the history store so the first sqlite run is a true cold run
	fmt.Printf("Clearing history...\n")
	clearCmd := exec.Command("rundiag", "history", "clear", "--history-backend", "sqlite")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear history: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("History cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the rundiag binary is available.
func checkPrerequisites(_ BenchmarkConfig) error {
	if _, err := exec.LookPath("rundiag"); err != nil {
		return fmt.Errorf("rundiag binary not found in PATH")
	}
	return nil
}

// generateCohorts writes every configured synthetic cohort to disk.
func generateCohorts(config BenchmarkConfig) error {
	for _, spec := range config.Cohorts {
		dir := filepath.Join(config.WorkDir, spec.Name)
		fmt.Printf("Generating %s (%d runs, %d metrics)\n", spec.Name, spec.Runs, spec.Metrics)
		if err := generateCohort(dir, spec); err != nil {
			return fmt.Errorf("generate %s: %w", spec.Name, err)
		}
	}
	return nil
}

// generateCohort writes one cohort with the default file layout: per-metric
// z-score tables, a quality table and the two rule files.
func generateCohort(dir string, spec CohortSpec) error {
	for _, sub := range []string{"out", "config"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return err
		}
	}

	// Deterministic values so repeated benchmark runs see identical cohorts
	rng := rand.New(rand.NewSource(42))

	metricNames := make([]string, spec.Metrics)
	for i := range metricNames {
		metricNames[i] = fmt.Sprintf("metric_%02d", i)
	}

	// Per-metric z-score tables
	for _, metric := range metricNames {
		var sb strings.Builder
		sb.WriteString("run,z_" + metric + "\n")
		for run := 0; run < spec.Runs; run++ {
			fmt.Fprintf(&sb, "%d,%.4f\n", 50000+run, rng.NormFloat64()*1.5)
		}
		name := filepath.Join(dir, "out", "metrics_"+metric+"_perrun.csv")
		if err := os.WriteFile(name, []byte(sb.String()), 0o644); err != nil {
			return err
		}
	}

	// Quality table with one indicator per cluster
	var qb strings.Builder
	qb.WriteString("run,gain_consistency,timing_rms,beam_background\n")
	for run := 0; run < spec.Runs; run++ {
		fmt.Fprintf(&qb, "%d,%.4f,%.4f,%.4f\n", 50000+run,
			rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64())
	}
	if err := os.WriteFile(filepath.Join(dir, "out", "physics_quality_perrun.csv"), []byte(qb.String()), 0o644); err != nil {
		return err
	}

	// Cluster map: metrics spread round-robin across the clusters
	var cb strings.Builder
	cb.WriteString("clusters:\n")
	indicators := []string{"gain_consistency", "timing_rms", "beam_background"}
	for i, cluster := range clusterNames {
		cb.WriteString("  " + cluster + ":\n")
		cb.WriteString("    metrics:\n")
		for j, metric := range metricNames {
			if j%len(clusterNames) == i {
				cb.WriteString("      - " + metric + "\n")
			}
		}
		cb.WriteString("    indicators:\n")
		cb.WriteString("      - " + indicators[i] + "\n")
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "cluster_map.yaml"), []byte(cb.String()), 0o644); err != nil {
		return err
	}

	thresholds := "global:\n  mild: 1.0\n  moderate: 2.0\n  severe: 3.0\n"
	return os.WriteFile(filepath.Join(dir, "config", "thresholds.yaml"), []byte(thresholds), 0o644)
}

// runBenchmarks executes all benchmark tests across configured cohorts.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d cohorts, %v timeout, %d workers, no-history: %d runs, history: %d runs\n",
		len(config.Cohorts), config.Timeout, config.Workers, config.NoHistoryRuns, config.HistoryRuns)

	for _, spec := range config.Cohorts {
		fmt.Printf("Benchmarking %s\n", spec.Name)

		cohortDir := filepath.Join(config.WorkDir, spec.Name)

		// Diagnose
		result := runBenchmarkSuite(config, spec.Name, cohortDir, "diagnose", "diagnose")
		results = append(results, result)

		// Summary needs the diagnose artifacts on disk first
		if err := writeSummaryInputs(config, cohortDir); err != nil {
			fmt.Printf("  Skipping summary: %v\n", err)
			continue
		}
		result = runBenchmarkSuite(config, spec.Name, cohortDir, "summary", "summary")
		results = append(results, result)
	}

	return results
}

// writeSummaryInputs runs an untimed CSV diagnosis so summary has its inputs.
func writeSummaryInputs(config BenchmarkConfig, cohortDir string) error {
	cmd := exec.Command("rundiag", "diagnose", "--output", "csv",
		"--workers", strconv.Itoa(config.Workers), "--history-backend", "none")
	cmd.Dir = cohortDir
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("diagnose --output csv failed: %v\nOutput: %s", err, string(output))
	}
	return nil
}

// runBenchmarkSuite runs both no-history and history benchmarks for a command.
func runBenchmarkSuite(config BenchmarkConfig, cohort, cohortDir, command, description string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, cohort)

	// Helper to run a benchmark phase
	runPhase := func(historyBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, cohortDir, command, historyBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-history runs
	_, noHistoryAvg := runPhase("none", config.NoHistoryRuns, "No-history")

	// Phase 2: History runs
	coldTime, warmAvg := runPhase("sqlite", config.HistoryRuns, "History")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-history average: %s, Cold time: %s, Warm average: %s\n", noHistoryAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Cohort:        cohort,
		Command:       command,
		NoHistoryTime: noHistoryAvg,
		ColdTime:      coldTimeStr,
		WarmTime:      warmAvg,
	}
}

// runBenchmark executes a rundiag command multiple times with the specified history backend and returns cold time and warm times.
func runBenchmark(config BenchmarkConfig, cohortDir, command, historyBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{command, "--history-backend", historyBackend, "--workers", strconv.Itoa(config.Workers)}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("rundiag", args...)
		cmd.Dir = cohortDir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion.
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)

	if command == "summary" {
		return strings.Contains(outputStr, "Summary completed in")
	}
	return strings.Contains(outputStr, "Diagnosis completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/rundiag_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"cohort", "cmd", "no_history_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Cohort, result.Command, result.NoHistoryTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "diagnose", "Diagnose:")
	printCommandSummary(results, "summary", "Summary:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type.
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-14s: No-history: %s, Cold: %s, Warm: %s\n", result.Cohort, result.NoHistoryTime, result.ColdTime, result.WarmTime)
		}
	}
}
