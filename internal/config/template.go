package config

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/quiz-k8s/entryctl/internal/env"
)

// RenderTemplate renders YAML or text content using the entrypoint template
// context and helpers. It backs both config loading and hook "when"
// expressions.
func RenderTemplate(name string, raw []byte, ctx Context) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(buildFuncMap(ctx)).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("execute template %q: %w", name, err)
	}
	return buf.Bytes(), nil
}

// EvaluateWhen renders a hook/step "when" expression and interprets the
// result as a boolean. Empty expressions and empty results enable the step.
func EvaluateWhen(expr string, ctx Context) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return true, nil
	}
	rendered, err := RenderTemplate("when", []byte(expr), ctx)
	if err != nil {
		return false, err
	}
	s := strings.TrimSpace(string(rendered))
	if s == "" {
		return true, nil
	}
	switch strings.ToLower(s) {
	case "false", "0", "no":
		return false, nil
	}
	return true, nil
}

// buildFuncMap constructs the template functions available in entrypoint.yaml.
func buildFuncMap(ctx Context) template.FuncMap {
	return template.FuncMap{
		"default": funcDef,
		"toLower": strings.ToLower,
		"envOr":   funcEnvOr(ctx.EnvMap),
		"ternary": funcTernary,
		"now":     func() time.Time { return ctx.Now },
		"join":    funcJoin,
	}
}

// funcDef returns def when value is empty or whitespace, otherwise value.
func funcDef(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

// funcEnvOr returns a function that looks up a key in envMap and falls back to def.
func funcEnvOr(envMap env.Vars) func(key, def string) string {
	return func(key, def string) string {
		if v, ok := envMap[key]; ok && v != "" {
			return v
		}
		return def
	}
}

// funcTernary returns a when cond is true, otherwise b.
func funcTernary(cond bool, a, b any) any {
	if cond {
		return a
	}
	return b
}

// funcJoin joins a slice of strings with the given separator.
func funcJoin(values []string, sep string) string {
	return strings.Join(values, sep)
}
