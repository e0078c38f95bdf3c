package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeTest(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

// copyScenario copies a scenario and the shared schemas into a temp tree
// so golden files can be written without touching testdata.
func copyScenario(t *testing.T, name string) string {
	t.Helper()

	dir := t.TempDir()
	for _, rel := range []string{filepath.Join("scenarios", name), filepath.Join("schemas", "tasks.yaml")} {
		data, err := os.ReadFile(filepath.Join("testdata", rel))
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, filepath.Dir(rel)), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, rel), data, 0644))
	}
	return filepath.Join(dir, "scenarios")
}

func TestTest_PassingDirectory(t *testing.T) {
	out, err := executeTest(t, "text", filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	assert.Contains(t, out, "✓ smoke (2 case(s))")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTest_SingleFileJSON(t *testing.T) {
	out, err := executeTest(t, "json", filepath.Join("testdata", "scenarios", "smoke.yaml"))
	require.NoError(t, err)

	resp, payload := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, float64(1), payload["passed"])
	assert.Equal(t, float64(1), payload["total"])
}

func TestTest_Failures(t *testing.T) {
	out, err := executeTest(t, "text", filepath.Join("testdata", "failing"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✗ broken")
	assert.Contains(t, out, "ir mismatch")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTest_FailuresJSON(t *testing.T) {
	out, err := executeTest(t, "json", filepath.Join("testdata", "failing"))
	require.Error(t, err)

	resp, payload := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeScenarioFail, resp.Error.Code)
	assert.Equal(t, float64(1), payload["failed"])
}

func TestTest_Filter(t *testing.T) {
	out, err := executeTest(t, "text", filepath.Join("testdata", "scenarios"), "--filter", "nothing-*")
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTest_MissingPath(t *testing.T) {
	_, err := executeTest(t, "text", filepath.Join("testdata", "absent"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_GoldenRoundTrip(t *testing.T) {
	dir := copyScenario(t, "smoke.yaml")
	golden := filepath.Join(dir, "golden", "smoke.golden")

	out, err := executeTest(t, "text", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ smoke (golden updated)")
	require.FileExists(t, golden)

	// The golden directory is not scanned for scenarios
	out, err = executeTest(t, "text", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")

	require.NoError(t, os.WriteFile(golden, []byte(`{"cases":[],"scenario_name":"smoke"}`), 0644))
	out, err = executeTest(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "outputs do not match golden file")
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yml", "c.txt", "golden/a.golden", "golden/x.yaml", "nested/d.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, writeFile(path, ""))
	}

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "b.yml"),
		filepath.Join(dir, "nested", "d.yaml"),
	}, files)

	files, err = findScenarioFiles(dir, "[ab]")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles(dir, "[")
	assert.Error(t, err)
}
