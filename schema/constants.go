package schema

// Custom string types for type safety.
type (
	// Severity is the ordinal classification of a deviation magnitude.
	Severity string

	// CauseLabel is the qualitative confidence label for a cluster score.
	CauseLabel string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for history tracking.
	DatabaseBackend string
)

// All severity tiers, from no deviation to the strongest one.
const (
	SeverityNormal   Severity = "normal"
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// All cause labels supported.
const (
	LabelNone     CauseLabel = "none"
	LabelWeak     CauseLabel = "weak"
	LabelModerate CauseLabel = "moderate"
	LabelStrong   CauseLabel = "strong"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// GlobalThresholdKey is the mandatory fallback entry of a ThresholdMap.
const GlobalThresholdKey = "global"

// SeverityOrder lists severities from worst to best, the order frequency
// reports present them in.
var SeverityOrder = []Severity{SeveritySevere, SeverityModerate, SeverityMild, SeverityNormal}

// LabelOrder lists cause labels from strongest to weakest.
var LabelOrder = []CauseLabel{LabelStrong, LabelModerate, LabelWeak, LabelNone}

// ValidSeverities lists all valid severity tiers.
var ValidSeverities = map[Severity]struct{}{
	SeverityNormal:   {},
	SeverityMild:     {},
	SeverityModerate: {},
	SeveritySevere:   {},
}

// ValidCauseLabels lists all valid cause labels.
var ValidCauseLabels = map[CauseLabel]struct{}{
	LabelNone:     {},
	LabelWeak:     {},
	LabelModerate: {},
	LabelStrong:   {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// GetSeverityWeights returns the score weight of each severity tier.
// Cluster scores are sums of these weights over all resolved symptoms.
func GetSeverityWeights() map[Severity]int {
	return map[Severity]int{
		SeverityNormal:   0,
		SeverityMild:     1,
		SeverityModerate: 2,
		SeveritySevere:   3,
	}
}

// GetDefaultLabelBreakpoints returns the historical 6/3/1 label
// boundaries used when no override is configured.
func GetDefaultLabelBreakpoints() LabelBreakpoints {
	return LabelBreakpoints{Weak: 1, Moderate: 3, Strong: 6}
}
