// Package policy decides whether a command string may be executed on the host.
//
// Every matcher compares against the command with surrounding whitespace
// trimmed and nothing else normalized: no case folding, no shell tokenizing.
// The whitelist is fixed at construction and never mutated, so a Policy is
// safe for concurrent use.
package policy

import (
	"fmt"
	"strings"
)

// Decision is the outcome of evaluating a command against a policy.
type Decision int

const (
	// Deny indicates no whitelist entry matched.
	Deny Decision = iota
	// Allow indicates a whitelist entry matched.
	Allow
)

// String returns the string representation of a Decision.
func (d Decision) String() string {
	switch d {
	case Deny:
		return "deny"
	case Allow:
		return "allow"
	default:
		return "unknown"
	}
}

// Result contains the outcome of evaluating a command.
type Result struct {
	Decision Decision
	Entry    string // the whitelist entry that matched (empty on Deny)
}

// Allowed reports whether the result permits execution.
func (r Result) Allowed() bool {
	return r.Decision == Allow
}

// Policy decides whether a command may run.
type Policy interface {
	Decide(cmd string) Result
}

// Modes accepted by New.
const (
	ModePrefix = "prefix"
	ModeRegex  = "regex"
	ModeGlob   = "glob"
)

// IsAllowed is shorthand for p.Decide(cmd).Allowed().
func IsAllowed(p Policy, cmd string) bool {
	return p.Decide(cmd).Allowed()
}

// New builds the policy for the given mode. An empty mode means prefix.
// Regex and glob entries that fail to compile are reported as errors.
func New(mode string, entries []string) (Policy, error) {
	switch strings.ToLower(mode) {
	case "", ModePrefix:
		return NewPrefixPolicy(entries), nil
	case ModeRegex:
		return NewRegexPolicy(entries)
	case ModeGlob:
		return NewGlobPolicy(entries)
	default:
		return nil, fmt.Errorf("unknown policy mode %q (want %s, %s or %s)", mode, ModePrefix, ModeRegex, ModeGlob)
	}
}

// normalize is the only transformation applied before matching.
func normalize(cmd string) string {
	return strings.TrimSpace(cmd)
}
