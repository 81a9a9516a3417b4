//go:build basic

package integration

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runRundiagOutput executes the shared binary inside dir and returns combined output.
func runRundiagOutput(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	rundiagPath := getRundiagBinary()
	cmd := exec.Command(rundiagPath, args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// TestVersionCommand verifies the version command reports build details.
func TestVersionCommand(t *testing.T) {
	output, err := runRundiagOutput(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, output, "rundiag CLI")
	assert.Contains(t, output, "Version:")
	assert.Contains(t, output, "Runtime:")
}

// TestDiagnoseSmoke runs a text-mode diagnosis end to end on a synthetic cohort.
func TestDiagnoseSmoke(t *testing.T) {
	cohortDir := t.TempDir()
	writeCohortDir(t, cohortDir)

	output, err := runRundiagOutput(t, cohortDir, "diagnose")
	require.NoError(t, err, "diagnose failed: %s", output)
	assert.Contains(t, output, "Showing")
	assert.Contains(t, output, "53877")
}

// TestDiagnoseLimitSmoke verifies the display limit trims the run table.
func TestDiagnoseLimitSmoke(t *testing.T) {
	cohortDir := t.TempDir()
	writeCohortDir(t, cohortDir)

	output, err := runRundiagOutput(t, cohortDir, "diagnose", "--limit", "1")
	require.NoError(t, err, "diagnose failed: %s", output)
	assert.Contains(t, output, "Showing 1 of 3 runs")
}

// TestCheckSmoke validates the default inputs of a healthy cohort.
func TestCheckSmoke(t *testing.T) {
	cohortDir := t.TempDir()
	writeCohortDir(t, cohortDir)

	output, err := runRundiagOutput(t, cohortDir, "check")
	require.NoError(t, err, "check failed: %s", output)
}

// TestCheckFailsOnMissingRules verifies the CI gate exits non-zero when a rule file is absent.
func TestCheckFailsOnMissingRules(t *testing.T) {
	cohortDir := t.TempDir()
	writeCohortDir(t, cohortDir)

	output, err := runRundiagOutput(t, cohortDir, "check", "--cluster-map", "config/missing.yaml")
	require.Error(t, err, "check should fail, got: %s", output)
}

// TestDiagnoseSummaryPipeline chains the two commands the way nightly QA does.
func TestDiagnoseSummaryPipeline(t *testing.T) {
	cohortDir := t.TempDir()
	writeCohortDir(t, cohortDir)

	output, err := runRundiagOutput(t, cohortDir, "diagnose", "--output", "csv")
	require.NoError(t, err, "diagnose failed: %s", output)

	output, err = runRundiagOutput(t, cohortDir, "summary")
	require.NoError(t, err, "summary failed: %s", output)
	assert.Contains(t, output, "Summarized 3 runs")
}
