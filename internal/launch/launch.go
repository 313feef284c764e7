// Package launch hands the container over to the application process.
package launch

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"github.com/quiz-k8s/entryctl/internal/config"
	"github.com/quiz-k8s/entryctl/internal/env"
)

// Launcher execs into the configured application command, replacing the
// entrypoint process image. After a successful Exec the application owns the
// container pid, receives signals directly, and its exit code becomes the
// container's.
type Launcher struct {
	cfg    config.AppConfig
	logger *slog.Logger

	// execFn and chdirFn are swappable for tests; syscall.Exec never
	// returns on success.
	execFn  func(argv0 string, argv []string, envv []string) error
	chdirFn func(dir string) error
}

// NewLauncher constructs a Launcher for the given application configuration.
func NewLauncher(cfg config.AppConfig, logger *slog.Logger) *Launcher {
	return &Launcher{
		cfg:     cfg,
		logger:  logger,
		execFn:  syscall.Exec,
		chdirFn: os.Chdir,
	}
}

// Exec resolves the application command, switches to the configured working
// directory, and replaces the current process image. It only returns on error.
func (l *Launcher) Exec() error {
	path, err := exec.LookPath(l.cfg.Command)
	if err != nil {
		return fmt.Errorf("resolve application command %q: %w", l.cfg.Command, err)
	}

	if l.cfg.Workdir != "" {
		if err := l.chdirFn(l.cfg.Workdir); err != nil {
			return fmt.Errorf("enter workdir %q: %w", l.cfg.Workdir, err)
		}
	}

	argv := l.Argv(path)
	envv := l.Environ()

	l.logger.Info("handing off to application", "command", path, "args", l.cfg.Args, "port", l.cfg.Port)

	if err := l.execFn(path, argv, envv); err != nil {
		return fmt.Errorf("exec %q: %w", path, err)
	}
	return nil
}

// Argv builds the argument vector for exec, with the resolved command path as
// argv[0].
func (l *Launcher) Argv(path string) []string {
	argv := make([]string, 0, len(l.cfg.Args)+1)
	argv = append(argv, path)
	argv = append(argv, l.cfg.Args...)
	return argv
}

// Environ builds the child environment: the inherited process environment
// with the configured overrides applied on top.
func (l *Launcher) Environ() []string {
	overrides := make(env.Vars, len(l.cfg.Env))
	for k, v := range l.cfg.Env {
		overrides[k] = v
	}
	return env.Merge(env.FromOS(), overrides).Environ()
}
