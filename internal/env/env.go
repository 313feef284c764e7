// Package env contains helpers for loading and merging environment variables
// from the process environment, .env files and inline variable lists.
package env

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// Vars represents a simple string-to-string map of variables.
type Vars map[string]string

// FromOS builds a Vars map from the current process environment.
func FromOS() Vars {
	out := make(Vars)
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		out[parts[0]] = parts[1]
	}
	return out
}

// Merge merges several Vars maps into one, later maps overriding earlier keys.
func Merge(sets ...Vars) Vars {
	out := make(Vars)
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

// Environ flattens the map into sorted KEY=VALUE form suitable for exec.
func (v Vars) Environ() []string {
	out := make([]string, 0, len(v))
	for k, val := range v {
		out = append(out, k+"="+val)
	}
	sort.Strings(out)
	return out
}

// LoadEnvFile loads a single .env-style file into Vars.
func LoadEnvFile(path string) (Vars, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	envMap, err := godotenv.Parse(f)
	if err != nil {
		return nil, err
	}
	out := make(Vars, len(envMap))
	for k, v := range envMap {
		out[k] = v
	}
	return out, nil
}

// LoadEnvFiles loads multiple .env-style files and merges them in order.
// Missing files are skipped: the container may legitimately run without a
// .env when everything comes from the orchestrator's environment.
func LoadEnvFiles(baseDir string, files []string) (Vars, error) {
	var result Vars
	for _, name := range files {
		if name == "" {
			continue
		}
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, name)
		}
		vars, err := LoadEnvFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("load env file %q: %w", path, err)
		}
		result = Merge(result, vars)
	}
	return result, nil
}

// ParseInlineVars parses a comma-separated k=v list (e.g. "A=1,B=2") into Vars.
func ParseInlineVars(s string) (Vars, error) {
	out := make(Vars)
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid inline var %q, expected key=value", part)
		}
		key := strings.TrimSpace(kv[0])
		if key == "" {
			return nil, fmt.Errorf("empty key in inline var %q", part)
		}
		out[key] = strings.TrimSpace(kv[1])
	}
	return out, nil
}
