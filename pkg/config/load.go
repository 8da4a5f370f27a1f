package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gur-shatz/filehash/internal/configutil"
)

// DefaultFilename is searched for when Load is given no path. The .yml
// spelling is accepted too.
const DefaultFilename = "filehash.yaml"

// Load reads settings from path. With an empty path it searches the
// working directory and then the executable's directory for
// DefaultFilename; if neither has one, Defaults is returned and the
// returned path is empty.
//
// Values in the file override Defaults. The result is validated.
func Load(path string, opts ...Option) (Settings, string, error) {
	settings := Defaults()

	if path == "" {
		found, ok := configutil.FindYAML(DefaultFilename, searchDirs()...)
		if !ok {
			return settings, "", nil
		}
		path = found
	} else {
		path = configutil.ResolveYAMLPath(path)
	}

	cfg, err := LoadFile(path, opts...)
	if err != nil {
		return Settings{}, path, err
	}

	if err := cfg.GetInto("", &settings, WithValidation()); err != nil {
		return Settings{}, path, fmt.Errorf("config %s: %w", path, err)
	}
	return settings, path, nil
}

// LoadFile processes the template in path and decodes the result.
func LoadFile(path string, opts ...Option) (O, error) {
	processed, err := ProcessFile(path, opts...)
	if err != nil {
		return nil, err
	}
	return parse(path, processed)
}

func parse(path string, data []byte) (O, error) {
	var cfg O
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg == nil {
		cfg = O{}
	}
	return cfg, nil
}

// Exists reports whether a config file is present at path, accepting
// either YAML extension.
func Exists(path string) bool {
	_, err := os.Stat(configutil.ResolveYAMLPath(path))
	return !errors.Is(err, fs.ErrNotExist)
}

func searchDirs() []string {
	var dirs []string
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	return dirs
}
