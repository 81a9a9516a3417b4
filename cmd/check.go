package cmd

import (
	"github.com/physqa/rundiag/core"
	"github.com/physqa/rundiag/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD input validation.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate diagnostic inputs for CI/CD pipelines (fails build on findings)",
	Long: `Probe the rule files and metric tables without running a full diagnosis.

Designed for CI/CD integration - fails with non-zero exit code when rule files
are malformed, metric tables are missing, or sampled rows are unusable. Only a
sample of each table is read, making it fast enough for pre-flight gates.

Use cases:
- Nightly QA pipelines - fail early when the extraction step produced no tables
- Rule file reviews - catch malformed cluster maps before they reach operators
- Calibration updates - verify new threshold files parse and cover the metrics

Examples:
  # Validate the default inputs
  rundiag check

  # Sample more rows from each table
  rundiag check --sample 32

  # Also probe the raw metric exports
  rundiag check --raw-metrics out/raw

  # Validate a candidate rule set
  rundiag check --cluster-map config/cluster_map_v2.yaml --thresholds config/thresholds_v2.yaml`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Validation is done in ExecuteCheck
		if err := core.ExecuteCheck(rootCtx, cfg); err != nil {
			contract.LogFatal("Input check failed", err)
		}
	},
}
