package migrate

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiz-k8s/entryctl/internal/config"
	"github.com/quiz-k8s/entryctl/internal/logging"
)

func TestLocateFirstCandidateWins(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "app")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	first := filepath.Join(nested, "alembic.ini")
	second := filepath.Join(dir, "alembic.ini")
	require.NoError(t, os.WriteFile(first, []byte("[alembic]\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("[alembic]\n"), 0o644))

	path, found := Locate("", []string{first, second})
	require.True(t, found)
	assert.Equal(t, first, path)

	path, found = Locate("", []string{filepath.Join(dir, "missing.ini"), second})
	require.True(t, found)
	assert.Equal(t, second, path)
}

func TestLocateRelativeResolvesAgainstWorkdir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alembic.ini"), []byte("[alembic]\n"), 0o644))

	path, found := Locate(dir, []string{"alembic.ini"})
	require.True(t, found)
	assert.Equal(t, filepath.Join(dir, "alembic.ini"), path)
}

func TestLocateMissIsNotAnError(t *testing.T) {
	_, found := Locate(t.TempDir(), []string{"/does/not/exist.ini", "also-missing.ini", ""})
	assert.False(t, found)
}

func TestLocateSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "alembic.ini"), 0o755))

	_, found := Locate(dir, []string{"alembic.ini"})
	assert.False(t, found)
}

func newTestRunner(cfg config.MigrateConfig) *Runner {
	return NewRunner(cfg, logging.NewLogger(io.Discard, logging.LevelError))
}

func TestRunnerRunsFromConfigDirectory(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "alembic.ini")
	require.NoError(t, os.WriteFile(configPath, []byte("[alembic]\n"), 0o644))

	// Fails unless the runner chdirs to the directory containing the config.
	r := newTestRunner(config.MigrateConfig{
		Tool: "sh",
		Args: []string{"-c", "test -f alembic.ini"},
	})

	require.NoError(t, r.Run(context.Background(), configPath))
}

func TestRunnerPropagatesExitCode(t *testing.T) {
	r := newTestRunner(config.MigrateConfig{
		Tool: "sh",
		Args: []string{"-c", "exit 3"},
	})

	err := r.Run(context.Background(), "")
	require.Error(t, err)

	code, ok := ExitCode(err)
	require.True(t, ok)
	assert.Equal(t, 3, code)
}

func TestRunnerTimeout(t *testing.T) {
	r := newTestRunner(config.MigrateConfig{
		Tool:    "sh",
		Args:    []string{"-c", "sleep 5"},
		Timeout: "100ms",
	})

	err := r.Run(context.Background(), "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "timed out")
}

func TestRunnerExplicitConfigFlag(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "alembic.ini")
	require.NoError(t, os.WriteFile(configPath, []byte("[alembic]\n"), 0o644))

	// A stand-in tool that asserts the located config path arrives via -c.
	tool := filepath.Join(dir, "faketool")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\n[ \"$1\" = \"-c\" ] && [ -f \"$2\" ]\n"), 0o755))

	r := newTestRunner(config.MigrateConfig{
		Tool:               tool,
		ExplicitConfigFlag: true,
	})

	require.NoError(t, r.Run(context.Background(), configPath))
}

func TestExitCodeNonExitError(t *testing.T) {
	_, ok := ExitCode(os.ErrNotExist)
	assert.False(t, ok)
}
