package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psantana5/loadtime/internal/store"
)

// executeCommand runs the root command with args and returns what it wrote
// to stdout. Flag variables keep their values between executions, so they
// are reset first.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfgFile = ""
	opName, message, metricsFile = "", "", ""
	noBar, largeDownload, jsonOutput = false, false, false
	attachPID = 0
	historyOutput = "table"

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRunCommand(t *testing.T) {
	requireShell(t)

	tests := []struct {
		name       string
		script     string
		wantCode   int
		wantStored bool
	}{
		{"success stores duration", "exit 0", 0, true},
		{"exit code propagates", "exit 3", 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := executeCommand(t, "run",
				"--cache-dir", dir, "--progress", "never", "--name", "build",
				"--", "sh", "-c", tt.script)

			if tt.wantCode == 0 {
				require.NoError(t, err)
			} else {
				var exitErr *ExitError
				require.True(t, errors.As(err, &exitErr), "got %v", err)
				assert.Equal(t, tt.wantCode, exitErr.Code)
			}

			_, ok := store.New(dir, nil).Load("build").Seconds()
			assert.Equal(t, tt.wantStored, ok)
		})
	}
}

func TestRunJSONReportIncludesOverruns(t *testing.T) {
	requireShell(t)

	dir := t.TempDir()
	store.New(dir, nil).Save("build", store.WithSeconds(0.000001))

	out, err := executeCommand(t, "run", "--json",
		"--cache-dir", dir, "--progress", "never", "--name", "build",
		"--", "sh", "-c", "exit 0")
	require.NoError(t, err)

	var doc struct {
		RunID    string `json:"run_id"`
		Name     string `json:"name"`
		Outcome  string `json:"outcome"`
		Overruns []struct {
			RunID string `json:"run_id"`
		} `json:"overruns"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)

	assert.Equal(t, "build", doc.Name)
	assert.Equal(t, "completed", doc.Outcome)
	require.NotEmpty(t, doc.RunID)

	found := false
	for _, o := range doc.Overruns {
		if o.RunID == doc.RunID {
			found = true
		}
	}
	assert.True(t, found, "run missing from overruns: %s", out)
}

func TestHistoryOutputFormats(t *testing.T) {
	dir := t.TempDir()
	s := store.New(dir, nil)
	s.Save("alpha", store.WithSeconds(75))
	s.Save("beta", store.Record{})

	tests := []struct {
		format string
		want   []string
	}{
		{"table", []string{"alpha", "01:15", "75.00", "beta"}},
		{"yaml", []string{"key: alpha", "total_time: 75", "key: beta"}},
		{"json", []string{`"key": "alpha"`, `"total_time": 75`, `"total_time": null`}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := executeCommand(t, "history", "--cache-dir", dir, "-o", tt.format)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestHistoryJSONEntries(t *testing.T) {
	dir := t.TempDir()
	store.New(dir, nil).Save("alpha", store.WithSeconds(75))

	out, err := executeCommand(t, "history", "--cache-dir", dir, "-o", "json")
	require.NoError(t, err)

	var entries []store.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "alpha", entries[0].Key)
	require.NotNil(t, entries[0].TotalTime)
	assert.Equal(t, 75.0, *entries[0].TotalTime)
}

func TestHistoryEmptyAndUnknownFormat(t *testing.T) {
	dir := t.TempDir()

	out, err := executeCommand(t, "history", "--cache-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No recorded durations")

	_, err = executeCommand(t, "history", "--cache-dir", dir, "-o", "xml")
	assert.Error(t, err)
}

func TestClearResetsRecord(t *testing.T) {
	dir := t.TempDir()
	s := store.New(dir, nil)
	s.Save("alpha", store.WithSeconds(75))

	out, err := executeCommand(t, "clear", "--cache-dir", dir, "alpha")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared "+filepath.Join(dir, "alpha.json"))

	data, err := os.ReadFile(s.Path("alpha"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_time":null}`, string(data))
}

func TestExitErrorFor(t *testing.T) {
	requireShell(t)

	plain := errors.New("not started")
	assert.Same(t, plain, exitErrorFor(plain))
	assert.NoError(t, exitErrorFor(nil))

	tests := []struct {
		name   string
		script string
		want   int
	}{
		{"exit status", "exit 7", 7},
		{"killed by signal", "kill -KILL $$", 137},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exec.Command("sh", "-c", tt.script).Run()
			var exitErr *ExitError
			require.True(t, errors.As(exitErrorFor(err), &exitErr), "got %v", err)
			assert.Equal(t, tt.want, exitErr.Code)
			assert.False(t, strings.HasPrefix(exitErr.Error(), "exit status -"))
		})
	}
}
