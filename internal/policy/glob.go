package policy

import (
	"fmt"

	"github.com/gobwas/glob"
)

type compiledGlob struct {
	glob    glob.Glob
	pattern string
}

// GlobPolicy allows a command when its trimmed form matches one of the
// configured glob patterns, e.g. "git status*" or "ls -l {src,docs}".
// Patterns are compiled without separators, so "*" spans spaces and slashes.
type GlobPolicy struct {
	globs []compiledGlob
}

// NewGlobPolicy compiles the given patterns. The first invalid pattern is
// returned as an error.
func NewGlobPolicy(patterns []string) (*GlobPolicy, error) {
	compiled := make([]compiledGlob, 0, len(patterns))
	for i, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %d %q: %w", i, p, err)
		}
		compiled = append(compiled, compiledGlob{glob: g, pattern: p})
	}
	return &GlobPolicy{globs: compiled}, nil
}

// Decide checks patterns in order and returns the first match.
func (p *GlobPolicy) Decide(cmd string) Result {
	trimmed := normalize(cmd)
	for _, cg := range p.globs {
		if cg.glob.Match(trimmed) {
			return Result{Decision: Allow, Entry: cg.pattern}
		}
	}
	return Result{Decision: Deny}
}
