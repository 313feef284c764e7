// Package config contains the loader and strongly typed model for entrypoint.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quiz-k8s/entryctl/internal/env"
)

// Default paths mirror the layouts the entrypoint has to support: the image
// that copies the project under /app/app, the flat /app layout, and a relative
// layout entered via workdir.
const (
	// DefaultAppCommand is the interpreter used to launch the application.
	DefaultAppCommand = "python"
	// DefaultAppEntry is the application entry file.
	DefaultAppEntry = "/app/app/main.py"
	// DefaultAppPort is the port the launched application listens on.
	DefaultAppPort = 8080
	// DefaultMigrateTool is the schema migration tool invoked before launch.
	DefaultMigrateTool = "alembic"
)

// Config represents the full entrypoint description after template rendering.
type Config struct {
	// Project is the short project name used in logs.
	Project string `yaml:"project,omitempty"`
	// EnvFiles lists .env files to load before rendering.
	EnvFiles []string `yaml:"envFiles,omitempty"`
	// App describes the application process that ends up owning the container.
	App AppConfig `yaml:"app,omitempty"`
	// Migrate describes the schema migration step run before launch.
	Migrate MigrateConfig `yaml:"migrate,omitempty"`
	// Wait lists dependency readiness probes run before the migration step.
	Wait WaitConfig `yaml:"wait,omitempty"`
	// Hooks defines extra setup steps around the launch sequence.
	Hooks HookSet `yaml:"hooks,omitempty"`
}

// AppConfig describes the final process image the entrypoint execs into.
type AppConfig struct {
	// Command is the executable to run (resolved via PATH when relative).
	Command string `yaml:"command,omitempty"`
	// Args are the arguments passed to Command.
	Args []string `yaml:"args,omitempty"`
	// Workdir is the directory to change into before exec, when set.
	Workdir string `yaml:"workdir,omitempty"`
	// Port is the port the application listens on. Informational: the
	// entrypoint never binds it.
	Port int `yaml:"port,omitempty"`
	// Env contains environment overrides applied on top of the inherited
	// process environment.
	Env map[string]string `yaml:"env,omitempty"`
}

// MigrateConfig describes the conditional schema migration step.
type MigrateConfig struct {
	// Tool is the migration executable, e.g. "alembic".
	Tool string `yaml:"tool,omitempty"`
	// Args are the tool arguments, e.g. ["upgrade", "head"].
	Args []string `yaml:"args,omitempty"`
	// ConfigCandidates lists candidate paths for the tool's config file.
	// The first existing path wins; relative paths resolve against Workdir.
	ConfigCandidates []string `yaml:"configCandidates,omitempty"`
	// ExplicitConfigFlag passes the located config to the tool via "-c".
	ExplicitConfigFlag bool `yaml:"explicitConfigFlag,omitempty"`
	// Required makes a missing config file fatal instead of a skip.
	Required bool `yaml:"required,omitempty"`
	// Workdir is the directory to run the tool from. Defaults to the
	// directory containing the located config file.
	Workdir string `yaml:"workdir,omitempty"`
	// Timeout is a duration string bounding the migration run.
	Timeout string `yaml:"timeout,omitempty"`
	// Skip disables the migration step entirely.
	Skip bool `yaml:"skip,omitempty"`
}

// WaitConfig groups dependency readiness probes.
type WaitConfig struct {
	// Targets lists endpoints that must be ready before migration runs.
	Targets []WaitTarget `yaml:"targets,omitempty"`
}

// WaitTarget describes a single dependency readiness probe.
type WaitTarget struct {
	// Name is the identifier used in logs.
	Name string `yaml:"name"`
	// Kind selects the probe implementation: "tcp" or "postgres".
	Kind string `yaml:"kind"`
	// Address is the host:port for tcp probes.
	Address string `yaml:"address,omitempty"`
	// DSN is the connection string for postgres probes.
	DSN string `yaml:"dsn,omitempty"`
	// Timeout is a duration string bounding the whole probe.
	Timeout string `yaml:"timeout,omitempty"`
	// Interval is a duration string between attempts.
	Interval string `yaml:"interval,omitempty"`
}

// HookSet describes hook steps around the launch sequence.
type HookSet struct {
	// PreStart runs after a successful migration, before exec.
	PreStart []HookStep `yaml:"preStart,omitempty"`
	// PostMigrate runs immediately after the migration step.
	PostMigrate []HookStep `yaml:"postMigrate,omitempty"`
}

// HookStep describes a single shell step executed during startup.
type HookStep struct {
	// Name is the identifier used in logs.
	Name string `yaml:"name,omitempty"`
	// Run is the shell command to execute.
	Run string `yaml:"run"`
	// When is a template expression that enables the step.
	When string `yaml:"when,omitempty"`
	// ContinueOnError keeps the startup sequence going when the step fails.
	ContinueOnError bool `yaml:"continueOnError,omitempty"`
	// Timeout is a duration string bounding the step.
	Timeout string `yaml:"timeout,omitempty"`
}

// LoadOptions describes parameters that influence template rendering.
type LoadOptions struct {
	// UserVars are inline variables for template rendering.
	UserVars env.Vars
	// VarFiles lists additional .env-style var files to load.
	VarFiles []string
}

// Context is the data exposed to Go templates when rendering entrypoint.yaml.
type Context struct {
	// Project is the project identifier from the config header.
	Project string
	// ConfigDir is the directory containing the config file on disk.
	ConfigDir string
	// Now is the timestamp captured for template rendering.
	Now time.Time
	// UserVars contains inline user variables.
	UserVars env.Vars
	// EnvMap merges OS env, envFiles and user variables.
	EnvMap env.Vars
}

// rawHeader extracts top-level fields needed before templating.
type rawHeader struct {
	Project  string   `yaml:"project"`
	EnvFiles []string `yaml:"envFiles"`
}

// Default returns the configuration equivalent to the historical shell
// entrypoint: alembic upgrade against the first alembic.ini found, then
// python against the fixed entry file with bytecode writes disabled and
// unbuffered streams.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Command: DefaultAppCommand,
			Args:    []string{DefaultAppEntry},
			Port:    DefaultAppPort,
			Env: map[string]string{
				"PYTHONDONTWRITEBYTECODE": "1",
				"PYTHONUNBUFFERED":        "1",
			},
		},
		Migrate: MigrateConfig{
			Tool: DefaultMigrateTool,
			Args: []string{"upgrade", "head"},
			ConfigCandidates: []string{
				"/app/app/alembic.ini",
				"/app/alembic.ini",
				"alembic.ini",
			},
			Timeout: "2m",
		},
	}
}

// Load reads entrypoint.yaml, loads envFiles and user vars, renders the
// config through text/template and parses the result over the defaults.
// An empty path yields the pure default configuration.
func Load(path string, opts LoadOptions) (*Config, Context, error) {
	ctx := Context{
		Now:      time.Now().UTC(),
		UserVars: opts.UserVars,
	}

	varFileVars := make(env.Vars)
	for _, vf := range opts.VarFiles {
		if strings.TrimSpace(vf) == "" {
			continue
		}
		vars, err := env.LoadEnvFile(vf)
		if err != nil {
			return nil, Context{}, fmt.Errorf("load var-file %q: %w", vf, err)
		}
		varFileVars = env.Merge(varFileVars, vars)
	}

	cfg := Default()

	if path == "" {
		ctx.EnvMap = env.Merge(env.FromOS(), varFileVars, opts.UserVars)
		return cfg, ctx, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, Context{}, fmt.Errorf("resolve config path: %w", err)
	}

	rawBytes, err := os.ReadFile(absPath)
	if err != nil {
		return nil, Context{}, fmt.Errorf("read config %q: %w", absPath, err)
	}

	var header rawHeader
	if err := yaml.Unmarshal(rawBytes, &header); err != nil {
		return nil, Context{}, fmt.Errorf("parse top-level config fields: %w", err)
	}

	baseDir := filepath.Dir(absPath)

	envFileVars, err := env.LoadEnvFiles(baseDir, header.EnvFiles)
	if err != nil {
		return nil, Context{}, err
	}

	ctx.Project = header.Project
	ctx.ConfigDir = baseDir
	ctx.EnvMap = env.Merge(env.FromOS(), envFileVars, varFileVars, opts.UserVars)

	rendered, err := RenderTemplate(filepath.Base(absPath), rawBytes, ctx)
	if err != nil {
		return nil, Context{}, err
	}

	if err := yaml.Unmarshal(rendered, cfg); err != nil {
		return nil, Context{}, fmt.Errorf("parse rendered config %q: %w", absPath, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, Context{}, fmt.Errorf("validate config %q: %w", absPath, err)
	}

	return cfg, ctx, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.App.Command) == "" {
		return fmt.Errorf("app.command is empty")
	}
	if _, err := c.Migrate.RunTimeout(); err != nil {
		return err
	}
	for i, t := range c.Wait.Targets {
		switch t.Kind {
		case "tcp":
			if strings.TrimSpace(t.Address) == "" {
				return fmt.Errorf("wait target %d (%s): address is required for tcp", i, t.Name)
			}
		case "postgres":
			if strings.TrimSpace(t.DSN) == "" {
				return fmt.Errorf("wait target %d (%s): dsn is required for postgres", i, t.Name)
			}
		default:
			return fmt.Errorf("wait target %d (%s): unknown kind %q", i, t.Name, t.Kind)
		}
	}
	return nil
}

// RunTimeout parses the migration timeout, falling back to two minutes.
func (m MigrateConfig) RunTimeout() (time.Duration, error) {
	return parseDuration(m.Timeout, 2*time.Minute, "migrate.timeout")
}

// ProbeTimeout parses the target timeout, falling back to one minute.
func (t WaitTarget) ProbeTimeout() (time.Duration, error) {
	return parseDuration(t.Timeout, time.Minute, "wait timeout")
}

// ProbeInterval parses the retry interval, falling back to one second.
func (t WaitTarget) ProbeInterval() (time.Duration, error) {
	return parseDuration(t.Interval, time.Second, "wait interval")
}

// StepTimeout parses the hook step timeout, falling back to one minute.
func (s HookStep) StepTimeout() (time.Duration, error) {
	return parseDuration(s.Timeout, time.Minute, "hook timeout")
}

func parseDuration(value string, def time.Duration, what string) (time.Duration, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", what, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %q", what, value)
	}
	return d, nil
}
