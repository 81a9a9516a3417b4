package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physqa/rundiag/schema"
)

// validRawInput returns a baseline raw input that passes validation.
func validRawInput() *ConfigRawInput {
	return &ConfigRawInput{
		Metrics:    DefaultMetricsGlob,
		Quality:    DefaultQualityFile,
		ClusterMap: DefaultClusterMap,
		Thresholds: DefaultThresholds,
		Limit:      DefaultResultLimit,
		Workers:    4,
		Precision:  DefaultPrecision,
		Output:     "text",
		Emoji:      "no",
		Color:      "no",
	}
}

func TestProcessAndValidateHappyPath(t *testing.T) {
	cfg := &Config{}
	input := validRawInput()

	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, DefaultMetricsGlob, cfg.MetricsGlob)
	assert.Equal(t, DefaultQualityFile, cfg.QualityFile)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, schema.GetDefaultLabelBreakpoints(), cfg.Breakpoints)
	assert.Equal(t, schema.NoneBackend, cfg.HistoryBackend)
	assert.Equal(t, DefaultSampleSize, cfg.SampleSize)
	assert.False(t, cfg.UseEmojis)
	assert.False(t, cfg.UseColors)
}

func TestProcessAndValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ConfigRawInput)
		wantErr string
	}{
		{"zero limit", func(in *ConfigRawInput) { in.Limit = 0 }, "limit must be greater than 0"},
		{"huge limit", func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 }, "limit must be greater than 0"},
		{"zero workers", func(in *ConfigRawInput) { in.Workers = 0 }, "workers must be greater than 0"},
		{"negative precision", func(in *ConfigRawInput) { in.Precision = -1 }, "precision must be between"},
		{"excessive precision", func(in *ConfigRawInput) { in.Precision = MaxPrecision + 1 }, "precision must be between"},
		{"bad output mode", func(in *ConfigRawInput) { in.Output = "xml" }, "invalid output format"},
		{"parquet without files", func(in *ConfigRawInput) { in.Output = "parquet" }, "parquet output requires"},
		{"empty metrics glob", func(in *ConfigRawInput) { in.Metrics = "  " }, "metrics glob must not be empty"},
		{"empty cluster map", func(in *ConfigRawInput) { in.ClusterMap = "" }, "cluster-map path must not be empty"},
		{"empty thresholds", func(in *ConfigRawInput) { in.Thresholds = "" }, "thresholds path must not be empty"},
		{"bad emoji flag", func(in *ConfigRawInput) { in.Emoji = "maybe" }, "invalid --emoji value"},
		{"bad color flag", func(in *ConfigRawInput) { in.Color = "sometimes" }, "invalid --color value"},
		{"negative sample", func(in *ConfigRawInput) { in.Sample = -1 }, "sample must be zero or greater"},
		{"unknown backend", func(in *ConfigRawInput) { in.HistoryBackend = "oracle" }, "invalid history backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			input := validRawInput()
			tt.mutate(input)

			err := ProcessAndValidate(cfg, input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProcessAndValidateParquetWithFiles(t *testing.T) {
	cfg := &Config{}
	input := validRawInput()
	input.Output = "parquet"
	input.SymptomsFile = "symptoms.parquet"
	input.CausesFile = "causes.parquet"

	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, schema.ParquetOut, cfg.Output)
}

func TestProcessLabelBreakpointsFromConfigFile(t *testing.T) {
	weak, moderate, strong := 2, 4, 8
	cfg := &Config{}
	input := validRawInput()
	input.Labels = LabelsRawInput{Weak: &weak, Moderate: &moderate, Strong: &strong}

	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, schema.LabelBreakpoints{Weak: 2, Moderate: 4, Strong: 8}, cfg.Breakpoints)
}

func TestProcessLabelBreakpointsFlagPrecedence(t *testing.T) {
	weak := 2
	cfg := &Config{}
	input := validRawInput()
	input.Labels = LabelsRawInput{Weak: &weak}
	input.Breakpoints = "weak=1,strong=9"

	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, schema.LabelBreakpoints{Weak: 1, Moderate: 3, Strong: 9}, cfg.Breakpoints)
}

func TestProcessLabelBreakpointsOrdering(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		wantErr string
	}{
		{"weak below one", "weak=0", "weak breakpoint must be at least 1"},
		{"moderate below weak", "weak=4,moderate=2", "must not be below weak"},
		{"strong below moderate", "strong=2", "must not be below moderate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			input := validRawInput()
			input.Breakpoints = tt.flag

			err := ProcessAndValidate(cfg, input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite empty ok", schema.SQLiteBackend, "", false},
		{"none empty ok", schema.NoneBackend, "", false},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"mysql missing tcp", schema.MySQLBackend, "root:pw/rundiag", true},
		{"mysql valid", schema.MySQLBackend, "root:pw@tcp(localhost:3306)/rundiag", false},
		{"postgres empty", schema.PostgreSQLBackend, "", true},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=rundiag", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost dbname=rundiag", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHistoryParams(t *testing.T) {
	cfg := &Config{
		MetricsGlob:    "out/metrics_*_perrun.csv",
		ClusterMapPath: "config/cluster_map.yaml",
		ThresholdsPath: "config/thresholds.yaml",
		Workers:        8,
		Breakpoints:    schema.GetDefaultLabelBreakpoints(),
	}
	params := cfg.HistoryParams()
	assert.Equal(t, "out/metrics_*_perrun.csv", params["metrics"])
	assert.Equal(t, 8, params["workers"])
	assert.Equal(t, "weak=1,moderate=3,strong=6", params["breakpoints"])
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{MetricsGlob: "a", Workers: 3}
	clone := cfg.Clone()
	clone.MetricsGlob = "b"
	clone.Workers = 9

	assert.Equal(t, "a", cfg.MetricsGlob)
	assert.Equal(t, 3, cfg.Workers)
}
