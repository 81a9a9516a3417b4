package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/physqa/rundiag/schema"
)

// Color variables for console output.
var (
	SevereColor   = color.New(color.FgRed, color.Bold)     // severeColor represents standard danger.
	ModerateColor = color.New(color.FgMagenta, color.Bold) // moderateColor represents strong, distinct warning.
	MildColor     = color.New(color.FgYellow)              // mildColor represents standard caution, not bold.
	NormalColor   = color.New(color.FgCyan)                // normalColor represents informational / low-priority signal.
)

// GetColorSeverity returns a colored severity string for console output.
// CSV, JSON and parquet always carry the plain value.
func GetColorSeverity(s schema.Severity) string {
	switch s {
	case schema.SeveritySevere:
		return SevereColor.Sprint(string(s))
	case schema.SeverityModerate:
		return ModerateColor.Sprint(string(s))
	case schema.SeverityMild:
		return MildColor.Sprint(string(s))
	default: // "normal"
		return NormalColor.Sprint(string(s))
	}
}

// GetColorLabel returns a colored cause label for console output. The
// same palette as severities, with strong mapping to the danger color.
func GetColorLabel(l schema.CauseLabel) string {
	switch l {
	case schema.LabelStrong:
		return SevereColor.Sprint(string(l))
	case schema.LabelModerate:
		return ModerateColor.Sprint(string(l))
	case schema.LabelWeak:
		return MildColor.Sprint(string(l))
	default: // "none"
		return NormalColor.Sprint(string(l))
	}
}

// SelectOutputFile returns the appropriate file handle for output, based
// on the provided file path. It falls back to os.Stdout for empty paths.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for history storage.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".rundiag_history.db"
	}
	return filepath.Join(homeDir, ".rundiag_history.db")
}

// TruncateKey truncates a metric or cluster key to a maximum width with
// ellipsis prefix. Requires maxWidth > 3 so there is room for both the
// "..." prefix and at least one character of content.
func TruncateKey(key string, maxWidth int) string {
	runes := []rune(key)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return key
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
