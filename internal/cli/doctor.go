package cli

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quiz-k8s/entryctl/internal/config"
	"github.com/quiz-k8s/entryctl/internal/migrate"
)

// newDoctorCommand creates the "doctor" subcommand that runs entrypoint
// preflight checks without side effects.
func newDoctorCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run entrypoint preflight checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			cfg, _, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			if err := runDoctorChecks(logger, cfg); err != nil {
				return err
			}

			logger.Info("doctor checks completed successfully")
			return nil
		},
	}

	return cmd
}

// runDoctorChecks validates that everything the startup sequence will invoke
// is present: the application command, the migration tool when a config file
// exists, and a shell when hooks are configured.
func runDoctorChecks(logger *slog.Logger, cfg *config.Config) error {
	required := []string{cfg.App.Command}

	configPath, found := migrate.Locate(cfg.App.Workdir, cfg.Migrate.ConfigCandidates)
	switch {
	case cfg.Migrate.Skip:
		logger.Info("migration step disabled in config")
	case found:
		logger.Info("migration config present", "path", configPath)
		required = append(required, cfg.Migrate.Tool)
	case cfg.Migrate.Required:
		logger.Error("migration config required but not found", "candidates", cfg.Migrate.ConfigCandidates)
		return fmt.Errorf("migration config not found in %v", cfg.Migrate.ConfigCandidates)
	default:
		logger.Warn("migration config not found; the migration step will be skipped", "candidates", cfg.Migrate.ConfigCandidates)
	}

	if len(cfg.Hooks.PreStart) > 0 || len(cfg.Hooks.PostMigrate) > 0 {
		required = append(required, "sh")
	}

	var missing []string
	for _, tool := range required {
		if _, err := exec.LookPath(tool); err != nil {
			logger.Error("doctor check failed: missing required tool", "tool", tool, "error", err)
			missing = append(missing, tool)
			continue
		}
		logger.Info("doctor check ok", "tool", tool)
	}

	for _, target := range cfg.Wait.Targets {
		if _, err := target.ProbeTimeout(); err != nil {
			return err
		}
		logger.Info("wait target configured", "target", target.Name, "kind", target.Kind)
	}

	if len(missing) > 0 {
		return fmt.Errorf("required tools missing from PATH: %s", strings.Join(missing, ", "))
	}

	return nil
}
