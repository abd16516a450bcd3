package policy

import (
	"fmt"
	"regexp"
)

// compiledPattern holds a compiled regex and its original pattern string.
type compiledPattern struct {
	regex   *regexp.Regexp
	pattern string
}

// RegexPolicy allows a command when its trimmed form matches one of the
// configured regular expressions. Patterns are not implicitly anchored.
type RegexPolicy struct {
	patterns []compiledPattern
}

// NewRegexPolicy compiles the given patterns. The first invalid pattern is
// returned as an error.
func NewRegexPolicy(patterns []string) (*RegexPolicy, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %d %q: %w", i, p, err)
		}
		compiled = append(compiled, compiledPattern{regex: re, pattern: p})
	}
	return &RegexPolicy{patterns: compiled}, nil
}

// Decide checks patterns in order and returns the first match.
func (p *RegexPolicy) Decide(cmd string) Result {
	trimmed := normalize(cmd)
	for _, cp := range p.patterns {
		if cp.regex.MatchString(trimmed) {
			return Result{Decision: Allow, Entry: cp.pattern}
		}
	}
	return Result{Decision: Deny}
}
