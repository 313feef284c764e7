package cli

import (
	envparse "github.com/caarlos0/env/v11"
)

// baseEnv defines root CLI defaults sourced from ENTRYCTL_* env vars.
type baseEnv struct {
	// ConfigPath is the entrypoint.yaml path from ENTRYCTL_CONFIG.
	ConfigPath string `env:"ENTRYCTL_CONFIG"`
	// LogLevel is the logging level from ENTRYCTL_LOG_LEVEL.
	LogLevel string `env:"ENTRYCTL_LOG_LEVEL"`
}

// runEnv captures ENTRYCTL_* inputs for the run command.
type runEnv struct {
	// SkipWait disables dependency probes from ENTRYCTL_SKIP_WAIT.
	SkipWait bool `env:"ENTRYCTL_SKIP_WAIT"`
	// SkipMigrations disables the migration step from ENTRYCTL_SKIP_MIGRATIONS.
	SkipMigrations bool `env:"ENTRYCTL_SKIP_MIGRATIONS"`
}

// parseEnv fills target from ENTRYCTL_* env vars via caarlos0/env.
func parseEnv(target any) error {
	return envparse.Parse(target)
}
