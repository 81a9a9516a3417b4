package contract

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/physqa/rundiag/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 50
	MaxResultLimit     = 10000
	DefaultPrecision   = 3
	MaxPrecision       = 6
	DefaultSampleSize  = 8

	DefaultMetricsGlob = "out/metrics_*_perrun.csv"
	DefaultQualityFile = "out/physics_quality_perrun.csv"
	DefaultClusterMap  = "config/cluster_map.yaml"
	DefaultThresholds  = "config/thresholds.yaml"

	DefaultSymptomsFile = "out/symptoms_perrun.csv"
	DefaultCausesFile   = "out/causes_per_run.csv"
	DefaultSummaryFile  = "out/cohort_summary_symptoms.csv"
	DefaultReportFile   = "out/DIAGNOSIS_SUMMARY.md"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a diagnosis.
// This struct remains the "final, validated" config.
type Config struct {
	MetricsGlob    string // Glob for per-metric z-score tables
	QualityFile    string // Physics-quality indicator table ("" = none)
	ClusterMapPath string // Cluster definition YAML
	ThresholdsPath string // Threshold registry YAML

	ResultLimit int // Maximum number of runs to show in text output
	Workers     int // Number of concurrent workers for scoring
	Precision   int // Decimal precision for z columns in text output
	Width       int // Terminal width override (0 = auto-detect)

	Output       schema.OutputMode
	SymptomsFile string // Symptom table destination ("" = stdout)
	CausesFile   string // Cause table destination ("" = stdout)
	SummaryFile  string // Cohort summary CSV destination
	ReportFile   string // Cohort summary markdown destination

	SampleSize    int    // Number of input files fully scanned by check
	RawMetricsDir string // Optional raw extraction directory checked by check

	Breakpoints schema.LabelBreakpoints

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
	OutputFile       string // Destination prefix for history exports

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// LabelsRawInput holds label breakpoint overrides from the YAML config file.
type LabelsRawInput struct {
	Weak     *int `mapstructure:"weak"`
	Moderate *int `mapstructure:"moderate"`
	Strong   *int `mapstructure:"strong"`
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Metrics          string `mapstructure:"metrics"`
	Quality          string `mapstructure:"quality"`
	ClusterMap       string `mapstructure:"cluster-map"`
	Thresholds       string `mapstructure:"thresholds"`
	Limit            int    `mapstructure:"limit"`
	Workers          int    `mapstructure:"workers"`
	Precision        int    `mapstructure:"precision"`
	Output           string `mapstructure:"output"`
	SymptomsFile     string `mapstructure:"symptoms-file"`
	CausesFile       string `mapstructure:"causes-file"`
	Width            int    `mapstructure:"width"`
	Breakpoints      string `mapstructure:"breakpoints"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Emoji            string `mapstructure:"emoji"`
	Color            string `mapstructure:"color"`

	// --- Fields from summaryCmd.Flags() ---
	SummaryFile string `mapstructure:"summary-file"`
	ReportFile  string `mapstructure:"report-file"`

	// --- Fields from checkCmd.Flags() ---
	Sample        int    `mapstructure:"sample"`
	RawMetricsDir string `mapstructure:"raw-metrics"`

	// --- Fields from historyExportCmd.Flags() ---
	OutputFile string `mapstructure:"output-file"`

	// --- Label breakpoints from config file ---
	Labels LabelsRawInput `mapstructure:"labels"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// HistoryParams returns the configuration values recorded alongside a
// diagnosis session for later auditing.
func (c *Config) HistoryParams() map[string]any {
	return map[string]any{
		"metrics":     c.MetricsGlob,
		"quality":     c.QualityFile,
		"cluster_map": c.ClusterMapPath,
		"thresholds":  c.ThresholdsPath,
		"workers":     c.Workers,
		"breakpoints": fmt.Sprintf("weak=%d,moderate=%d,strong=%d", c.Breakpoints.Weak, c.Breakpoints.Moderate, c.Breakpoints.Strong),
	}
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateInputPaths(cfg, input); err != nil {
		return err
	}
	if err := processLabelBreakpoints(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.SymptomsFile = input.SymptomsFile
	cfg.CausesFile = input.CausesFile
	cfg.SummaryFile = input.SummaryFile
	cfg.ReportFile = input.ReportFile
	cfg.RawMetricsDir = input.RawMetricsDir
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision Validation ---
	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	// --- 4. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}
	if cfg.Output == schema.ParquetOut && (cfg.SymptomsFile == "" || cfg.CausesFile == "") {
		return fmt.Errorf("parquet output requires --symptoms-file and --causes-file destinations")
	}

	// --- 5. Sample Validation ---
	if input.Sample < 0 {
		return fmt.Errorf("sample must be zero or greater (received %d)", input.Sample)
	}
	cfg.SampleSize = input.Sample
	if cfg.SampleSize == 0 {
		cfg.SampleSize = DefaultSampleSize
	}

	return nil
}

// validateInputPaths validates the input table and rule file locations.
func validateInputPaths(cfg *Config, input *ConfigRawInput) error {
	cfg.MetricsGlob = strings.TrimSpace(input.Metrics)
	if cfg.MetricsGlob == "" {
		return fmt.Errorf("metrics glob must not be empty")
	}

	// An empty quality path is an explicit opt-out: every indicator is
	// treated as not measured for every run.
	cfg.QualityFile = strings.TrimSpace(input.Quality)

	cfg.ClusterMapPath = strings.TrimSpace(input.ClusterMap)
	if cfg.ClusterMapPath == "" {
		return fmt.Errorf("cluster-map path must not be empty")
	}

	cfg.ThresholdsPath = strings.TrimSpace(input.Thresholds)
	if cfg.ThresholdsPath == "" {
		return fmt.Errorf("thresholds path must not be empty")
	}

	return nil
}

// processLabelBreakpoints resolves the label breakpoints from defaults,
// config file values and the --breakpoints flag, in that precedence order.
func processLabelBreakpoints(cfg *Config, input *ConfigRawInput) error {
	bp := schema.GetDefaultLabelBreakpoints()

	// Override with config file values if provided
	if input.Labels.Weak != nil {
		bp.Weak = *input.Labels.Weak
	}
	if input.Labels.Moderate != nil {
		bp.Moderate = *input.Labels.Moderate
	}
	if input.Labels.Strong != nil {
		bp.Strong = *input.Labels.Strong
	}

	// Override with command-line flag if provided (takes precedence)
	if input.Breakpoints != "" {
		parsed, err := ParseBreakpointsString(input.Breakpoints, bp)
		if err != nil {
			return fmt.Errorf("invalid --breakpoints format: %w", err)
		}
		bp = parsed
	}

	if bp.Weak < 1 {
		return fmt.Errorf("weak breakpoint must be at least 1 (received %d)", bp.Weak)
	}
	if bp.Moderate < bp.Weak {
		return fmt.Errorf("moderate breakpoint (%d) must not be below weak (%d)", bp.Moderate, bp.Weak)
	}
	if bp.Strong < bp.Moderate {
		return fmt.Errorf("strong breakpoint (%d) must not be below moderate (%d)", bp.Strong, bp.Moderate)
	}

	cfg.Breakpoints = bp
	return nil
}

// validateBackendConfigs validates the history backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backendStr := strings.ToLower(strings.TrimSpace(input.HistoryBackend))
	if backendStr == "" {
		backendStr = string(schema.NoneBackend)
	}
	cfg.HistoryBackend = schema.DatabaseBackend(backendStr)
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}

	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// ParseBreakpointsString parses a string like "weak=1,moderate=3,strong=6"
// into LabelBreakpoints, starting from the given base values so partial
// overrides keep the remaining boundaries.
func ParseBreakpointsString(s string, base schema.LabelBreakpoints) (schema.LabelBreakpoints, error) {
	bp := base
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		keyValue := strings.Split(part, "=")
		if len(keyValue) != 2 {
			return bp, fmt.Errorf("invalid breakpoint format '%s', expected 'label=score'", part)
		}

		labelStr := strings.TrimSpace(keyValue[0])
		valueStr := strings.TrimSpace(keyValue[1])

		value, err := strconv.Atoi(valueStr)
		if err != nil {
			return bp, fmt.Errorf("invalid breakpoint value '%s' for label %s: %w", valueStr, labelStr, err)
		}

		switch strings.ToLower(labelStr) {
		case "weak":
			bp.Weak = value
		case "moderate":
			bp.Moderate = value
		case "strong":
			bp.Strong = value
		default:
			return bp, fmt.Errorf("invalid label '%s', must be weak, moderate, or strong", labelStr)
		}
	}
	return bp, nil
}
