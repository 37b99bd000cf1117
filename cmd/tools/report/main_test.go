package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-dashboard/internal/testutil"
)

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inventory.csv")
	require.NoError(t, os.WriteFile(path, []byte(testutil.CSV(testutil.FixtureRows...)), 0o600))
	return path
}

func TestRun(t *testing.T) {
	path := writeCSV(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--file", path, "--disk-type", "HDD"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "disk_type=HDD")
	assert.Regexp(t, `Devices:\s+1\n`, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	unsupported := filepath.Join(dir, "inventory.json")
	require.NoError(t, os.WriteFile(unsupported, []byte("{}"), 0o600))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{"--file", filepath.Join(dir, "nope.csv")}, "not found"},
		{"unsupported format", []string{"--file", unsupported}, "unsupported"},
		{"missing mapping", []string{"--file", writeCSV(t), "--mapping", filepath.Join(dir, "m.yaml")}, "mapping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr.String(), tt.want)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRunBadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run([]string{"--colour"}, &stdout, &stderr))
}
