package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiz-k8s/entryctl/internal/env"
)

func TestDefaultMatchesShellEntrypoint(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "python", cfg.App.Command)
	assert.Equal(t, []string{"/app/app/main.py"}, cfg.App.Args)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "1", cfg.App.Env["PYTHONDONTWRITEBYTECODE"])
	assert.Equal(t, "1", cfg.App.Env["PYTHONUNBUFFERED"])

	assert.Equal(t, "alembic", cfg.Migrate.Tool)
	assert.Equal(t, []string{"upgrade", "head"}, cfg.Migrate.Args)
	assert.Equal(t, []string{"/app/app/alembic.ini", "/app/alembic.ini", "alembic.ini"}, cfg.Migrate.ConfigCandidates)
	assert.False(t, cfg.Migrate.Required)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, ctx, err := Load("", LoadOptions{UserVars: env.Vars{"X": "1"}})
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "1", ctx.EnvMap["X"])
}

func TestLoadRendersTemplatesAndEnvFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_CONFIG__DATABASE__URL=postgres://quiz:quiz@db:5432/quiz\n"), 0o644))

	raw := `
project: quiz-api
envFiles: [".env"]
app:
  command: python
  args: ["/app/app/main.py"]
  workdir: /app
migrate:
  timeout: 30s
wait:
  targets:
    - name: postgres
      kind: postgres
      dsn: '{{ envOr "APP_CONFIG__DATABASE__URL" "" }}'
      timeout: 45s
`
	path := filepath.Join(dir, "entrypoint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, ctx, err := Load(path, LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "quiz-api", ctx.Project)
	assert.Equal(t, dir, ctx.ConfigDir)

	// Unset fields keep their defaults.
	assert.Equal(t, "alembic", cfg.Migrate.Tool)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "/app", cfg.App.Workdir)

	require.Len(t, cfg.Wait.Targets, 1)
	assert.Equal(t, "postgres://quiz:quiz@db:5432/quiz", cfg.Wait.Targets[0].DSN)

	timeout, err := cfg.Migrate.RunTimeout()
	require.NoError(t, err)
	assert.Equal(t, "30s", timeout.String())

	probeTimeout, err := cfg.Wait.Targets[0].ProbeTimeout()
	require.NoError(t, err)
	assert.Equal(t, "45s", probeTimeout.String())
}

func TestLoadInlineVarsOverrideEnvFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ENTRY=from-file\n"), 0o644))

	raw := `
envFiles: [".env"]
app:
  command: python
  args: ['{{ envOr "ENTRY" "main.py" }}']
`
	path := filepath.Join(dir, "entrypoint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, _, err := Load(path, LoadOptions{UserVars: env.Vars{"ENTRY": "from-inline"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"from-inline"}, cfg.App.Args)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), LoadOptions{})
	assert.Error(t, err)
}

func TestValidateRejectsBadWaitTargets(t *testing.T) {
	writeAndLoad := func(t *testing.T, raw string) error {
		t.Helper()
		path := filepath.Join(t.TempDir(), "entrypoint.yaml")
		require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
		_, _, err := Load(path, LoadOptions{})
		return err
	}

	err := writeAndLoad(t, "wait:\n  targets:\n    - name: x\n      kind: carrier-pigeon\n")
	assert.ErrorContains(t, err, "unknown kind")

	err = writeAndLoad(t, "wait:\n  targets:\n    - name: redis\n      kind: tcp\n")
	assert.ErrorContains(t, err, "address is required")

	err = writeAndLoad(t, "wait:\n  targets:\n    - name: db\n      kind: postgres\n")
	assert.ErrorContains(t, err, "dsn is required")

	err = writeAndLoad(t, "migrate:\n  timeout: soon\n")
	assert.ErrorContains(t, err, "migrate.timeout")
}

func TestEvaluateWhen(t *testing.T) {
	ctx := Context{EnvMap: env.Vars{"FLAG": "true", "EMPTY": ""}}

	cases := []struct {
		expr string
		want bool
	}{
		{"", true},
		{"true", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"anything-else", true},
		{`{{ envOr "FLAG" "" }}`, true},
		{`{{ envOr "EMPTY" "" }}`, true},
		{`{{ envOr "MISSING" "false" }}`, false},
	}

	for _, tc := range cases {
		got, err := EvaluateWhen(tc.expr, ctx)
		require.NoError(t, err, "expr %q", tc.expr)
		assert.Equal(t, tc.want, got, "expr %q", tc.expr)
	}

	_, err := EvaluateWhen("{{ bogus", ctx)
	assert.Error(t, err)
}
