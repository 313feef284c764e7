// Package hooks executes the shell steps configured around the launch sequence.
package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/quiz-k8s/entryctl/internal/config"
	"github.com/quiz-k8s/entryctl/internal/logging"
)

// Executor runs configured hook steps with per-step gating and timeouts.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor constructs an Executor bound to the provided logger.
func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{logger: logger}
}

// RunSteps executes the given steps in order. A step with a false "when"
// expression is skipped. A failing step aborts startup unless it is marked
// continueOnError.
func (e *Executor) RunSteps(ctx context.Context, phase string, steps []config.HookStep, tctx config.Context) error {
	for i, step := range steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("%s[%d]", phase, i)
		}

		enabled, err := config.EvaluateWhen(step.When, tctx)
		if err != nil {
			return fmt.Errorf("evaluate when for hook %q: %w", name, err)
		}
		if !enabled {
			e.logger.Debug("hook skipped", "phase", phase, "hook", name)
			continue
		}

		if err := e.runStep(ctx, name, step); err != nil {
			if step.ContinueOnError {
				e.logger.Warn("hook failed, continuing", "phase", phase, "hook", name, "error", err)
				continue
			}
			return fmt.Errorf("hook %q: %w", name, err)
		}
	}
	return nil
}

func (e *Executor) runStep(ctx context.Context, name string, step config.HookStep) error {
	timeout, err := step.StepTimeout()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	e.logger.Info("running hook", "hook", name, "run", step.Run)

	cmd := exec.CommandContext(ctx, "sh", "-c", step.Run)
	cmd.Stdout = logging.NewWriter(e.logger, name)
	cmd.Stderr = logging.NewWriter(e.logger, name)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("timed out after %s: %w", timeout, err)
		}
		return err
	}
	return nil
}
