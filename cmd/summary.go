package cmd

import (
	"github.com/physqa/rundiag/core"
	"github.com/physqa/rundiag/internal/contract"
	"github.com/spf13/cobra"
)

// summaryCmd aggregates per-run tables into cohort-level documents.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Aggregate symptom and cause tables into cohort-level reports.",
	Long: `Read the symptom and cause tables produced by diagnose and build cohort documents.

Produces two artifacts:
- A CSV with per-metric severity frequencies across the whole cohort
- A Markdown report with symptom frequencies and cause label counts

Use the report to:
- Brief shift crews on which metrics misbehave most often
- Compare detector health across run periods
- Feed cohort-level severity counts into dashboards

Examples:
  # Summarize the default diagnose artifacts
  rundiag summary

  # Summarize tables written to a custom location
  rundiag summary --symptoms-file qa/symptoms.csv --causes-file qa/causes.csv

  # Write the report next to the analysis notes
  rundiag summary --report-file notes/DIAGNOSIS_SUMMARY.md`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSummary(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run summary", err)
		}
	},
}
