package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psantana5/loadtime/pkg/logging"
)

func TestLoadInitializesMissingRecord(t *testing.T) {
	s := New(t.TempDir(), nil)

	rec := s.Load("first-run")
	_, ok := rec.Seconds()
	assert.False(t, ok, "fresh record should have no total")

	data, err := os.ReadFile(s.Path("first-run"))
	require.NoError(t, err, "load should create the record file")
	assert.JSONEq(t, `{"total_time": null}`, string(data))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir(), nil)

	s.Save("model", WithSeconds(4.25))
	got, ok := s.Load("model").Seconds()
	require.True(t, ok)
	assert.Equal(t, 4.25, got)

	// A second store on the same directory sees the same value.
	again, ok := New(s.Dir(), nil).Load("model").Seconds()
	require.True(t, ok)
	assert.Equal(t, 4.25, again)
}

func TestClearThenLoadIsEmpty(t *testing.T) {
	s := New(t.TempDir(), nil)

	s.Save("model", WithSeconds(12))
	for i := 0; i < 2; i++ {
		s.Clear("model")
		_, ok := s.Load("model").Seconds()
		assert.False(t, ok, "clear must leave no total (iteration %d)", i)
	}
}

func TestSaveRejectsInvalidDurations(t *testing.T) {
	s := New(t.TempDir(), nil)

	negative := -3.0
	s.Save("model", Record{TotalTime: &negative})
	_, ok := s.Load("model").Seconds()
	assert.False(t, ok)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"org/model-7b", "org_model-7b"},
		{`C:\models\big`, "C:_models_big"},
		{"a/b\\c", "a_b_c"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SanitizeName(tt.input), "SanitizeName(%q)", tt.input)
	}
}

func TestPathStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, nil)

	path := s.Path("../../etc/passwd")
	assert.Equal(t, dir, filepath.Dir(path))
}

func TestCorruptRecordLoadsEmptyAndIsRepaired(t *testing.T) {
	s := New(t.TempDir(), nil)
	require.NoError(t, os.WriteFile(s.Path("broken"), []byte("{not json"), 0644))

	_, ok := s.Load("broken").Seconds()
	assert.False(t, ok)

	data, err := os.ReadFile(s.Path("broken"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_time": null}`, string(data))
}

func TestUnwritableDirIsSwallowed(t *testing.T) {
	// A regular file where the directory should be makes every write fail.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	var logs bytes.Buffer
	logger := logging.NewLogger(logging.DEBUG, false)
	logger.SetOutput(&logs)

	s := New(blocker, logger)
	assert.NotPanics(t, func() {
		s.Load("model")
		s.Save("model", WithSeconds(1))
		s.Clear("model")
	})
	assert.True(t, strings.Contains(logs.String(), "Failed to save record"))
}

func TestList(t *testing.T) {
	s := New(t.TempDir(), nil)
	s.Save("org/b", WithSeconds(2))
	s.Save("a", WithSeconds(1))
	s.Clear("c")
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("ignored"), 0644))

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "a", entries[0].Key)
	assert.Equal(t, "c", entries[1].Key)
	assert.Nil(t, entries[1].TotalTime)
	assert.Equal(t, "org_b", entries[2].Key)
	require.NotNil(t, entries[2].TotalTime)
	assert.Equal(t, 2.0, *entries[2].TotalTime)
}

func TestListMissingDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "absent"), nil)
	entries, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	dir, err := DefaultDir("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".cache", DefaultDirName), dir)

	dir, err = DefaultDir("timings")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".cache", "timings"), dir)
}

func TestEmptyDirNeverTouchesWorkingDir(t *testing.T) {
	wd := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(wd))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	s := New("", nil)
	s.Save("model", WithSeconds(3))
	_, ok := s.Load("model").Seconds()
	assert.False(t, ok)

	files, err := os.ReadDir(wd)
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = s.List()
	assert.Error(t, err)
}
