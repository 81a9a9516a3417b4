package cmd

import (
	"github.com/physqa/rundiag/core"
	"github.com/physqa/rundiag/internal/contract"
	"github.com/spf13/cobra"
)

// diagnoseCmd performs per-run anomaly diagnosis.
var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Score every run against calibrated thresholds and rank by cause.",
	Long: `Scan the per-run metric tables and classify each z-scored metric as a symptom.

Symptoms are graded by severity (severe, moderate, mild, normal), weighted and
aggregated into per-cluster cause scores, helping you:
- Spot detector subsystems drifting out of calibration (gain, timing, beam)
- Separate isolated glitches from sustained hardware degradation
- Triage which runs shift crews should inspect first
- Produce machine-readable symptom and cause tables for downstream QA

Runs are ranked from highest to lowest total cause score, so the most
suspicious runs surface at the top of the table.

Examples:
  # Diagnose the cohort with the default rule files
  rundiag diagnose

  # Show only the 20 most suspicious runs
  rundiag diagnose --limit 20

  # Tighten the cause labeling for a noisy detector period
  rundiag diagnose --breakpoints "weak=2,moderate=5,strong=9"

  # Write symptom and cause tables for the summary step
  rundiag diagnose --output csv

  # Track this diagnosis in local history
  rundiag diagnose --history-backend sqlite`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDiagnose(rootCtx, cfg, historyManager); err != nil {
			contract.LogFatal("Cannot run diagnosis", err)
		}
	},
}
