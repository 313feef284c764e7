package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/quiz-k8s/entryctl/internal/config"
	"github.com/quiz-k8s/entryctl/internal/hooks"
	"github.com/quiz-k8s/entryctl/internal/launch"
	"github.com/quiz-k8s/entryctl/internal/migrate"
	"github.com/quiz-k8s/entryctl/internal/waitfor"
)

// newRunCommand creates the "run" subcommand: the full entrypoint sequence
// ending in exec. On success this command never returns.
func newRunCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Wait for dependencies, migrate, and exec into the application",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			var envDefaults runEnv
			if err := parseEnv(&envDefaults); err != nil {
				return err
			}

			skipWait := envDefaults.SkipWait
			if cmd.Flags().Changed("skip-wait") {
				skipWait, _ = cmd.Flags().GetBool("skip-wait")
			}
			skipMigrations := envDefaults.SkipMigrations
			if cmd.Flags().Changed("skip-migrations") {
				skipMigrations, _ = cmd.Flags().GetBool("skip-migrations")
			}

			cfg, tctx, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			return runStartup(cmd.Context(), logger, cfg, tctx, skipWait, skipMigrations)
		},
	}

	cmd.Flags().Bool("skip-wait", false, "Skip dependency readiness probes")
	cmd.Flags().Bool("skip-migrations", false, "Skip the schema migration step")

	return cmd
}

// runStartup drives the entrypoint sequence: readiness probes, the migration
// step, hook steps, and finally the exec hand-off. Any error aborts before the
// application starts.
func runStartup(ctx context.Context, logger *slog.Logger, cfg *config.Config, tctx config.Context, skipWait, skipMigrations bool) error {
	if skipWait || len(cfg.Wait.Targets) == 0 {
		logger.Debug("no dependency probes to run")
	} else {
		if err := waitfor.WaitAll(ctx, logger, cfg.Wait.Targets); err != nil {
			return err
		}
	}

	if err := runMigrationStep(ctx, logger, cfg, skipMigrations); err != nil {
		return err
	}

	hookExec := hooks.NewExecutor(logger)
	if err := hookExec.RunSteps(ctx, "postMigrate", cfg.Hooks.PostMigrate, tctx); err != nil {
		return err
	}
	if err := hookExec.RunSteps(ctx, "preStart", cfg.Hooks.PreStart, tctx); err != nil {
		return err
	}

	return launchApp(cfg.App, logger)
}

// launchApp performs the final exec hand-off. It is a variable so tests can
// observe the hand-off without replacing the test process image.
var launchApp = func(cfg config.AppConfig, logger *slog.Logger) error {
	return launch.NewLauncher(cfg, logger).Exec()
}

// runMigrationStep locates the migration config and runs the tool when found.
// A missing config file is a skip unless the config marks migrations required.
func runMigrationStep(ctx context.Context, logger *slog.Logger, cfg *config.Config, skip bool) error {
	if skip || cfg.Migrate.Skip {
		logger.Info("migration step skipped")
		return nil
	}

	configPath, found := migrate.Locate(cfg.App.Workdir, cfg.Migrate.ConfigCandidates)
	if !found {
		if cfg.Migrate.Required {
			return fmt.Errorf("migration config not found in %v", cfg.Migrate.ConfigCandidates)
		}
		logger.Warn("migration config not found, skipping migrations", "candidates", cfg.Migrate.ConfigCandidates)
		return nil
	}

	logger.Info("migration config found", "path", configPath)
	return migrate.NewRunner(cfg.Migrate, logger).Run(ctx, configPath)
}
