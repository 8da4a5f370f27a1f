package configutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveYAMLPath returns path if it exists. Otherwise, when path ends in
// ".yaml" or ".yml" and the other spelling exists, that one is returned.
// When neither exists, path is returned unchanged so the caller's open
// error names what the user asked for.
func ResolveYAMLPath(path string) string {
	if exists(path) {
		return path
	}
	if alt, ok := alternate(path); ok && exists(alt) {
		return alt
	}
	return path
}

// FindYAML looks for name (with either YAML extension) in each dir in
// order and returns the first match.
func FindYAML(name string, dirs ...string) (string, bool) {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		candidate := ResolveYAMLPath(filepath.Join(dir, name))
		if exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func alternate(path string) (string, bool) {
	if base, ok := strings.CutSuffix(path, ".yaml"); ok {
		return base + ".yml", true
	}
	if base, ok := strings.CutSuffix(path, ".yml"); ok {
		return base + ".yaml", true
	}
	return "", false
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
