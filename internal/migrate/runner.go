package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"

	"github.com/quiz-k8s/entryctl/internal/config"
	"github.com/quiz-k8s/entryctl/internal/logging"
)

// Runner wraps execution of the external migration tool.
type Runner struct {
	cfg    config.MigrateConfig
	logger *slog.Logger
}

// NewRunner constructs a Runner for the given migration configuration.
func NewRunner(cfg config.MigrateConfig, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger}
}

// Run invokes the migration tool with the configured arguments, streaming its
// output through the structured logger. configPath is the located config file;
// the tool runs from its directory unless an explicit workdir is configured.
// A non-zero exit from the tool is returned as an error wrapping
// *exec.ExitError so callers can propagate the original exit code.
func (r *Runner) Run(ctx context.Context, configPath string) error {
	timeout, err := r.cfg.RunTimeout()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := r.cfg.Args
	if r.cfg.ExplicitConfigFlag && configPath != "" {
		args = append([]string{"-c", configPath}, args...)
	}

	workdir := r.cfg.Workdir
	if workdir == "" && configPath != "" {
		workdir = filepath.Dir(configPath)
	}

	cmd := exec.CommandContext(ctx, r.cfg.Tool, args...)
	cmd.Dir = workdir
	cmd.Stdout = logging.NewWriter(r.logger, r.cfg.Tool)
	cmd.Stderr = logging.NewWriter(r.logger, r.cfg.Tool)

	r.logger.Info("running migrations", "tool", r.cfg.Tool, "args", args, "workdir", workdir)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("migration timed out after %s: %w", timeout, err)
		}
		return fmt.Errorf("%s %v failed: %w", r.cfg.Tool, args, err)
	}

	r.logger.Info("migrations applied", "tool", r.cfg.Tool)
	return nil
}

// ExitCode extracts the subprocess exit code from an error chain. The boolean
// reports whether the error originated from a subprocess exit at all.
func ExitCode(err error) (int, bool) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}
