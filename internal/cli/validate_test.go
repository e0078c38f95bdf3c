package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querymix/internal/schema"
)

func executeValidate(t *testing.T, format, path string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	return buf.String(), err
}

func TestValidate_ValidSchema(t *testing.T) {
	out, err := executeValidate(t, "text", tasksSchema)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Schema valid: 3 entity(ies)")
	assert.Contains(t, out, "task (table tasks): 7 field(s), search [title(like) body(prefix)]")
	assert.Contains(t, out, "user (table users): 2 field(s)")
}

func TestValidate_ValidSchemaJSON(t *testing.T) {
	out, err := executeValidate(t, "json", tasksSchema)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["valid"])
	assert.Len(t, data["entities"], 3)
}

func TestValidate_InvalidSchema(t *testing.T) {
	path := filepath.Join("testdata", "schemas", "invalid.yaml")

	out, err := executeValidate(t, "text", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✗ Validation failed")
	for _, code := range []string{schema.ErrEnumNoValues, schema.ErrUnknownReference, schema.ErrInvalidFieldType} {
		assert.Contains(t, out, code)
	}
}

func TestValidate_InvalidSchemaJSON(t *testing.T) {
	path := filepath.Join("testdata", "schemas", "invalid.yaml")

	out, err := executeValidate(t, "json", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)

	data := resp.Data.(map[string]any)
	assert.Equal(t, false, data["valid"])
	assert.Len(t, data["errors"], 3)
}

func TestValidate_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	unsupported := filepath.Join(dir, "schema.json")
	require.NoError(t, writeFile(unsupported, "{}"))

	tests := []struct {
		name     string
		path     string
		exitCode int
	}{
		{"missing file", filepath.Join(dir, "missing.yaml"), ExitCommandError},
		{"unsupported extension", unsupported, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeValidate(t, "text", tt.path)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))
			assert.Contains(t, out, "Error ["+ErrCodeSchema+"]")
		})
	}
}
