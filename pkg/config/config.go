// Package config loads filehash settings from YAML files that may be
// written as Go templates.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

const (
	varsKey            = "vars"
	noValuePlaceholder = "<no value>"
	maxVarPasses       = 10
)

// Option configures template processing.
type Option func(*options)

type options struct {
	vars map[string]string
	env  map[string]string
}

// WithVars provides template variables below environment priority and
// above the file's own vars: section.
func WithVars(vars map[string]string) Option {
	return func(o *options) {
		o.vars = vars
	}
}

// WithEnv replaces os.Environ() as the environment source.
func WithEnv(env map[string]string) Option {
	return func(o *options) {
		o.env = env
	}
}

// ProcessFile reads path and runs Process on its contents.
func ProcessFile(path string, opts ...Option) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Process(data, opts...)
}

// Process renders data as a template and returns YAML with the vars:
// section removed.
//
// Both {{ }} and [[ ]] delimiters are accepted. Available functions are
// default, env and required. Lookup priority is environment, then
// WithVars, then vars:. Vars may reference each other.
func Process(data []byte, opts ...Option) ([]byte, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.env == nil {
		o.env = environMap()
	}

	lookup := make(map[string]string, len(o.vars)+len(o.env))
	for k, v := range o.vars {
		lookup[k] = v
	}
	for k, v := range o.env {
		lookup[k] = v
	}

	vars, err := resolveVars(data, lookup, o.env)
	if err != nil {
		return nil, err
	}

	td := templateData(vars, lookup)
	out, err := render(data, td, o.env)
	if err != nil {
		return nil, err
	}

	if bytes.Contains(out, []byte(noValuePlaceholder)) {
		return nil, undefinedError(data, out)
	}

	return stripVars(out), nil
}

// resolveVars evaluates the vars: section, repeating until every var
// stops referencing another unresolved one.
func resolveVars(data []byte, lookup, env map[string]string) (map[string]string, error) {
	var raw struct {
		Vars map[string]any `yaml:"vars"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil || len(raw.Vars) == 0 {
		return nil, nil
	}

	pending := make(map[string]string, len(raw.Vars))
	for k, v := range raw.Vars {
		pending[k] = fmt.Sprintf("%v", v)
	}
	resolved := make(map[string]string, len(pending))

	for pass := 0; pass < maxVarPasses && len(pending) > 0; pass++ {
		progress := false
		for k, expr := range pending {
			val, err := render([]byte(expr), templateData(resolved, lookup), env)
			if err != nil || unresolved(string(val)) {
				continue
			}
			resolved[k] = string(val)
			delete(pending, k)
			progress = true
		}
		if !progress {
			break
		}
	}

	for k, expr := range pending {
		if _, err := render([]byte(expr), templateData(resolved, lookup), env); err != nil {
			return nil, fmt.Errorf("var %q: %w", k, err)
		}
		return nil, fmt.Errorf("var %q could not be resolved (circular reference?)", k)
	}

	return resolved, nil
}

func templateData(vars, lookup map[string]string) map[string]any {
	td := make(map[string]any, len(vars)+len(lookup))
	for k, v := range vars {
		td[k] = v
	}
	for k, v := range lookup {
		td[k] = v
	}
	return td
}

func unresolved(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "[[") ||
		strings.Contains(s, noValuePlaceholder)
}

// render applies both delimiter styles, [[ ]] first.
func render(data []byte, td map[string]any, env map[string]string) ([]byte, error) {
	out, err := execute(data, td, "[[", "]]", env)
	if err != nil {
		return nil, fmt.Errorf("template error (using [[ ]]): %w", err)
	}
	out, err = execute(out, td, "{{", "}}", env)
	if err != nil {
		return nil, fmt.Errorf("template error (using {{ }}): %w", err)
	}
	return out, nil
}

func execute(data []byte, td map[string]any, left, right string, env map[string]string) ([]byte, error) {
	if !bytes.Contains(data, []byte(left)) {
		return data, nil
	}

	tmpl, err := template.New("config").
		Delims(left, right).
		Option("missingkey=zero").
		Funcs(funcs(env)).
		Parse(string(data))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, td); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func funcs(env map[string]string) template.FuncMap {
	return template.FuncMap{
		"default": func(def, val any) any {
			if empty(val) {
				return def
			}
			return val
		},
		"env": func(name string) string {
			return env[name]
		},
		"required": func(msg string, val any) (any, error) {
			if empty(val) {
				return nil, fmt.Errorf("%s", msg)
			}
			return val, nil
		},
	}
}

func empty(val any) bool {
	if val == nil {
		return true
	}
	s, ok := val.(string)
	return ok && s == ""
}

// undefinedError lists the source lines whose rendering produced
// "<no value>".
func undefinedError(src, out []byte) error {
	srcLines := bytes.Split(src, []byte("\n"))
	var problems []string
	for i, line := range bytes.Split(out, []byte("\n")) {
		if !bytes.Contains(line, []byte(noValuePlaceholder)) {
			continue
		}
		orig := ""
		if i < len(srcLines) {
			orig = strings.TrimSpace(string(srcLines[i]))
		}
		problems = append(problems, fmt.Sprintf("  line %d: %s", i+1, orig))
	}
	return fmt.Errorf("undefined variable in config, use 'default' or define it:\n%s",
		strings.Join(problems, "\n"))
}

func stripVars(data []byte) []byte {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil || raw == nil {
		return data
	}
	if _, ok := raw[varsKey]; !ok {
		return data
	}
	delete(raw, varsKey)
	out, err := yaml.Marshal(raw)
	if err != nil {
		return data
	}
	return out
}

func environMap() map[string]string {
	env := make(map[string]string)
	for _, e := range os.Environ() {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}
	return env
}
