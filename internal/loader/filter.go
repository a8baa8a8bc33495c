package loader

import (
	"fmt"

	"github.com/gobwas/glob"
)

// compiledPattern holds a pattern and its compiled glob for efficient matching.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Filter selects which qualified names a load initializes.
//
// Patterns are glob expressions compiled with '.' as the segment separator:
//   - '*' matches a single segment (does not cross '.')
//   - '**' matches zero or more segments (crosses '.')
//
// Examples:
//   - "pkg.*" matches "pkg.Bar" but NOT "pkg.sub.Baz"
//   - "pkg.**" matches both "pkg.Bar" AND "pkg.sub.Baz"
type Filter struct {
	include []compiledPattern
	exclude []compiledPattern
}

// NewFilter compiles include and exclude patterns. An empty include list
// matches every name.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	var err error
	if f.include, err = compilePatterns(include); err != nil {
		return nil, fmt.Errorf("include: %w", err)
	}
	if f.exclude, err = compilePatterns(exclude); err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}
	return f, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, len(patterns))
	for i, pattern := range patterns {
		if pattern == "" {
			return nil, fmt.Errorf("pattern %d: empty pattern", i)
		}
		// Compile with '.' as separator so '*' doesn't cross segment boundaries
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return nil, fmt.Errorf("pattern %d (%q): %w", i, pattern, err)
		}
		compiled[i] = compiledPattern{pattern: pattern, glob: g}
	}
	return compiled, nil
}

// Match reports whether name passes the filter: it must match at least one
// include pattern (or the include list is empty) and no exclude pattern.
func (f *Filter) Match(name string) bool {
	if f == nil {
		return true
	}
	for _, p := range f.exclude {
		if p.glob.Match(name) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, p := range f.include {
		if p.glob.Match(name) {
			return true
		}
	}
	return false
}
