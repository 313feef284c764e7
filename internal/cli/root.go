// Package cli defines the command-line interface for entryctl.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/quiz-k8s/entryctl/internal/logging"
)

const (
	// defaultConfigPath is the default path to the entrypoint configuration file.
	defaultConfigPath = "entrypoint.yaml"
)

// Options stores global CLI options shared between commands.
type Options struct {
	ConfigPath string
	LogLevel   logging.Level
}

// Execute builds the root command, runs it with the provided args and logger, and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo)
	}

	rootOpts := &Options{
		ConfigPath: defaultConfigPath,
		LogLevel:   logging.LevelInfo,
	}

	var base baseEnv
	if err := parseEnv(&base); err != nil {
		return err
	}
	if base.ConfigPath != "" {
		rootOpts.ConfigPath = base.ConfigPath
	}
	logLevelDefault := "info"
	if base.LogLevel != "" {
		logLevelDefault = base.LogLevel
	}

	rootCmd := newRootCommand(rootOpts, logger, logLevelDefault)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

// newRootCommand constructs the root cobra.Command with global flags and subcommands.
func newRootCommand(opts *Options, logger *slog.Logger, logLevelDefault string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entryctl",
		Short: "entryctl is the container entrypoint for the application image",
		Long:  "entryctl waits for dependencies, applies pending schema migrations, and execs into the application process, replacing the shell entrypoint scripts with one configurable binary.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := logging.ParseLevel(cmd.Flag("log-level").Value.String())
			opts.LogLevel = level
			logger = logging.NewLogger(os.Stderr, level)
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			logger.Debug("logger initialized", "level", level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", opts.ConfigPath, "Path to entrypoint.yaml configuration file")
	cmd.PersistentFlags().String("log-level", logLevelDefault, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("vars", "", "Additional template variables in k=v,k2=v2 format")
	cmd.PersistentFlags().String("var-file", "", "Path to .env-style file with additional template variables")

	cmd.AddCommand(
		newRunCommand(opts),
		newMigrateCommand(opts),
		newWaitCommand(opts),
		newDoctorCommand(opts),
		newRenderCommand(opts),
	)

	return cmd
}

// loggerKey is a private context key used to store a logger in command contexts.
type loggerKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return logging.NewLogger(os.Stderr, logging.LevelInfo)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo)
}
