// Package core has core logic for ingestion, scoring and summarization.
package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/physqa/rundiag/internal/contract"
	"github.com/physqa/rundiag/internal/ingest"
	"github.com/physqa/rundiag/internal/outwriter"
	"github.com/physqa/rundiag/internal/ruleset"
	"github.com/physqa/rundiag/schema"
)

// GetDiagnosisResults runs the full diagnosis pipeline and returns the
// scored cohort: load rules, ingest the per-run metric tables, score
// every run and record history. Callers that want formatted output go
// through ExecuteDiagnose instead.
func GetDiagnosisResults(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) (*schema.DiagnosisResult, time.Duration, error) {
	start := time.Now()

	if cfg.Output == schema.TextOut && !shouldSuppressHeader(ctx) {
		contract.LogDiagnosisHeader(cfg)
	}

	// --- 1. Rule Loading ---
	rules, err := ruleset.Load(cfg.ClusterMapPath, cfg.ThresholdsPath, cfg.Breakpoints)
	if err != nil {
		return nil, 0, err
	}

	// --- 2. Metric Ingestion ---
	tables, skipped, err := ingest.DiscoverMetricTables(cfg.MetricsGlob)
	if err != nil {
		return nil, 0, err
	}
	for _, skip := range skipped {
		contract.LogWarn(fmt.Sprintf("Skipping %s", skip.Path), errors.New(skip.Reason))
	}
	quality, err := ingest.LoadQualityTable(cfg.QualityFile)
	if err != nil {
		// A missing quality table degrades to metric-only scoring, the same
		// shape as a cohort that never produced one.
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, 0, err
		}
		contract.LogWarn("Quality table unavailable", err)
		quality = nil
	}
	rows := ingest.BuildRunRows(tables, quality)

	// --- 3. Begin Diagnosis Tracking (if configured) ---
	var diagnosisID int64
	var store contract.HistoryStore
	if mgr != nil {
		store = mgr.GetHistoryStore()
	}
	if store != nil {
		var err error
		diagnosisID, err = store.BeginDiagnosis(start, cfg.HistoryParams())
		if err != nil {
			contract.LogWarn("Diagnosis tracking initialization failed", err)
		}
	}

	// --- 4. Scoring ---
	diagnoses := diagnoseRuns(ctx, cfg, rules, rows)

	// --- 5. End Diagnosis Tracking ---
	if store != nil && diagnosisID > 0 {
		diagnosisTime := time.Now()
		for _, diag := range diagnoses {
			if err := store.RecordRunCauses(diagnosisID, diagnosisTime, diag); err != nil {
				contract.LogWarn("Failed to record cause scores", err)
				break
			}
		}
		if err := store.EndDiagnosis(diagnosisID, time.Now(), len(diagnoses)); err != nil {
			contract.LogWarn("Failed to finalize diagnosis tracking", err)
		}
	}

	result := &schema.DiagnosisResult{
		Runs:     diagnoses,
		Clusters: rules.ClusterNames(),
	}
	return result, time.Since(start), nil
}

// ExecuteDiagnose runs the full diagnosis pipeline and writes the results
// in the configured output format. It serves as the main entry point for
// the 'diagnose' command.
func ExecuteDiagnose(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	result, duration, err := GetDiagnosisResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteDiagnosisResults(result, cfg, duration)
}

// GetCohortSummary rebuilds cohort-level frequencies from the symptom and
// cause tables of a previous diagnose run.
func GetCohortSummary(ctx context.Context, cfg *contract.Config) (schema.CohortSummary, time.Duration, error) {
	start := time.Now()

	if cfg.Output == schema.TextOut && !shouldSuppressHeader(ctx) {
		contract.LogSummaryHeader(cfg)
	}

	// --- 1. Read Back Diagnose Outputs ---
	symptoms, err := ingest.ReadSymptoms(cfg.SymptomsFile)
	if err != nil {
		return schema.CohortSummary{}, 0, err
	}
	causes, clusters, err := ingest.ReadCauses(cfg.CausesFile)
	if err != nil {
		return schema.CohortSummary{}, 0, err
	}

	// --- 2. Cohort Reduction ---
	summary := BuildCohortSummary(symptoms, causes, clusters)
	return summary, time.Since(start), nil
}

// ExecuteSummary rebuilds cohort-level frequencies and writes the summary
// artifacts. It serves as the main entry point for the 'summary' command.
func ExecuteSummary(ctx context.Context, cfg *contract.Config) error {
	summary, duration, err := GetCohortSummary(ctx, cfg)
	if err != nil {
		return err
	}
	return outwriter.WriteCohortSummary(summary, cfg, duration)
}
