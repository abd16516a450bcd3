package pathutil

import "strings"

// VolumeDelimiter separates a volume designator from the rest of a host path
// (the ":" in "C:\work").
const VolumeDelimiter = ":"

// Translator maps paths between the caller's convention (rooted, forward
// slashes, no volume) and the host's convention (volume designator plus a
// different separator).
//
// Translation is purely syntactic. It does not resolve symlinks, collapse
// "." or "..", or check existence, and it assumes a single fixed volume:
// every rooted caller path lands on HostVolume. Paths that were never in the
// expected form degrade to a best-effort string instead of failing.
type Translator struct {
	HostVolume      string
	HostSeparator   string
	CallerSeparator string
}

// DefaultTranslator returns the mapping between POSIX-style caller paths and
// a Windows host's C: volume.
func DefaultTranslator() Translator {
	return Translator{
		HostVolume:      "C:",
		HostSeparator:   `\`,
		CallerSeparator: "/",
	}
}

// ToHostPath converts a caller path to host form. A path beginning with the
// caller root separator is placed under the host volume root; anything else
// is assumed to be host form already and returned unchanged.
func (t Translator) ToHostPath(callerPath string) string {
	if t.CallerSeparator == "" || !strings.HasPrefix(callerPath, t.CallerSeparator) {
		return callerPath
	}
	rest := strings.TrimPrefix(callerPath, t.CallerSeparator)
	return t.HostVolume + t.HostSeparator + t.swap(rest, t.CallerSeparator, t.HostSeparator)
}

// ToCallerPath converts a host path to caller form for display. Everything up
// to and including the first volume delimiter is dropped and the result is
// rooted. A path without a volume delimiter only has its separators replaced,
// so it comes back unrooted.
func (t Translator) ToCallerPath(hostPath string) string {
	_, rest, found := strings.Cut(hostPath, VolumeDelimiter)
	if !found {
		return t.swap(hostPath, t.HostSeparator, t.CallerSeparator)
	}
	rest = t.swap(rest, t.HostSeparator, t.CallerSeparator)
	if strings.HasPrefix(rest, t.CallerSeparator) {
		return rest
	}
	return t.CallerSeparator + rest
}

func (t Translator) swap(s, from, to string) string {
	if from == "" || from == to {
		return s
	}
	return strings.ReplaceAll(s, from, to)
}
