// Package cmd defines the command-line interface for rundiag.
package cmd

import (
	"github.com/physqa/rundiag/internal/contract"
	"github.com/physqa/rundiag/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(historyCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("metrics", contract.DefaultMetricsGlob, "Glob pattern for per-run metric tables")
	rootCmd.PersistentFlags().String("quality", contract.DefaultQualityFile, "Physics quality indicator table (empty disables indicator checks)")
	rootCmd.PersistentFlags().String("cluster-map", contract.DefaultClusterMap, "YAML file mapping cause clusters to metrics and indicators")
	rootCmd.PersistentFlags().String("thresholds", contract.DefaultThresholds, "YAML file with per-metric severity thresholds")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of runs to display")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for z-score columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("symptoms-file", contract.DefaultSymptomsFile, "Symptom table destination or source (empty means stdout)")
	rootCmd.PersistentFlags().String("causes-file", contract.DefaultCausesFile, "Cause table destination or source (empty means stdout)")
	rootCmd.PersistentFlags().String("breakpoints", "", "Cause label breakpoints (format: 'weak=1,moderate=3,strong=6')")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("history-backend", string(schema.NoneBackend), "History backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of summaryCmd to Viper
	summaryCmd.Flags().String("summary-file", contract.DefaultSummaryFile, "Cohort summary CSV destination")
	summaryCmd.Flags().String("report-file", contract.DefaultReportFile, "Cohort summary Markdown destination")
	if err := viper.BindPFlags(summaryCmd.Flags()); err != nil {
		contract.LogFatal("Error binding summary flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().Int("sample", contract.DefaultSampleSize, "Number of data rows sampled from each input table")
	checkCmd.Flags().String("raw-metrics", "", "Optional directory of raw metric exports to probe")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of historyExportCmd to Viper
	historyExportCmd.Flags().String("output-file", "", "Destination prefix for the exported Parquet files")
	if err := viper.BindPFlags(historyExportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history export flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
