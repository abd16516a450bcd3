package policy

import "strings"

// PrefixPolicy allows a command when its trimmed form starts with one of the
// whitelist entries.
//
// The match is a raw substring prefix, not word-aware: entry "ls -l" also
// admits "ls -lart", and "git pull" admits "git pulldown". This looseness is
// part of the contract; stricter matching belongs in another Policy.
type PrefixPolicy struct {
	entries []string
}

// NewPrefixPolicy creates a PrefixPolicy. Empty entries are skipped since
// they would match every command.
func NewPrefixPolicy(entries []string) *PrefixPolicy {
	kept := make([]string, 0, len(entries))
	for _, e := range entries {
		if e == "" {
			continue
		}
		kept = append(kept, e)
	}
	return &PrefixPolicy{entries: kept}
}

// Decide checks entries in order and returns the first match.
func (p *PrefixPolicy) Decide(cmd string) Result {
	trimmed := normalize(cmd)
	for _, e := range p.entries {
		if strings.HasPrefix(trimmed, e) {
			return Result{Decision: Allow, Entry: e}
		}
	}
	return Result{Decision: Deny}
}

// Entries returns a copy of the whitelist.
func (p *PrefixPolicy) Entries() []string {
	out := make([]string, len(p.entries))
	copy(out, p.entries)
	return out
}
