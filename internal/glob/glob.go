package glob

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Pattern represents a single glob pattern, either include or exclude.
type Pattern struct {
	Raw     string
	Negated bool
}

// Parse converts string patterns to a Pattern slice.
// Patterns prefixed with "!" are treated as negation (exclusion) patterns.
func Parse(raw []string) []Pattern {
	patterns := make([]Pattern, 0, len(raw))
	for _, r := range raw {
		if len(r) > 0 && r[0] == '!' {
			patterns = append(patterns, Pattern{Raw: r[1:], Negated: true})
		} else {
			patterns = append(patterns, Pattern{Raw: r})
		}
	}
	return patterns
}

// Filter matches slash-separated relative paths against include and exclude
// patterns. With no include patterns every path is included.
type Filter struct {
	includes []string
	excludes []string
}

// NewFilter validates patterns and builds a Filter.
func NewFilter(patterns []Pattern) (*Filter, error) {
	f := &Filter{}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p.Raw) {
			return nil, fmt.Errorf("glob %q: %w", p.Raw, doublestar.ErrBadPattern)
		}
		if p.Negated {
			f.excludes = append(f.excludes, p.Raw)
		} else {
			f.includes = append(f.includes, p.Raw)
		}
	}
	return f, nil
}

// FromFlags builds a Filter from separate include and exclude lists, as
// given on the command line. Exclude entries may omit the leading "!".
func FromFlags(include, exclude []string) (*Filter, error) {
	patterns := Parse(include)
	for _, x := range exclude {
		p := Parse([]string{x})[0]
		p.Negated = true
		patterns = append(patterns, p)
	}
	return NewFilter(patterns)
}

// Match reports whether rel is included and not excluded.
func (this *Filter) Match(rel string) bool {
	if this == nil {
		return true
	}
	if len(this.includes) > 0 && !matchAny(this.includes, rel) {
		return false
	}
	return !matchAny(this.excludes, rel)
}

// IsEmpty returns true if the filter accepts everything.
func (this *Filter) IsEmpty() bool {
	if this == nil {
		return true
	}
	return len(this.includes) == 0 && len(this.excludes) == 0
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if matched, _ := doublestar.Match(p, rel); matched {
			return true
		}
	}
	return false
}
