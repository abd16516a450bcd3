// Package gateway implements the hostgate HTTP server: it authenticates each
// request, gates commands through the whitelist policy, and dispatches to
// the executor, host file access and directory listing.
package gateway

import (
	"crypto/subtle"
	"net/http"

	"github.com/xdg/hostgate/internal/audit"
)

// APIKeyHeader is the HTTP header carrying the shared secret.
const APIKeyHeader = "X-API-Key" //nolint:gosec // G101: header name, not a credential

// Verifier decides whether a presented credential is valid. Implementations
// must not log or retain the credential.
type Verifier interface {
	Verify(credential string) bool
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(credential string) bool

// Verify calls f(credential).
func (f VerifierFunc) Verify(credential string) bool {
	return f(credential)
}

// StaticSecret verifies credentials against a fixed shared secret using a
// constant-time comparison. An empty StaticSecret accepts nothing.
type StaticSecret string

// Verify reports whether credential equals the secret.
func (s StaticSecret) Verify(credential string) bool {
	if s == "" || credential == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s), []byte(credential)) == 1
}

// AuthMiddleware creates HTTP middleware that rejects requests whose
// X-API-Key header is absent or not accepted by v.
//
// Rejections get 401 with a JSON error body and an AUTH_FAIL audit event.
// A nil verifier rejects every request.
func AuthMiddleware(v Verifier, auditLogger *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)

			reason := ""
			switch {
			case key == "":
				reason = "missing API key"
			case v == nil || !v.Verify(key):
				reason = "invalid API key"
			}
			if reason != "" {
				_ = auditLogger.LogAuthFail(sourceOf(r), r.Method+" "+r.URL.Path, reason)
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
