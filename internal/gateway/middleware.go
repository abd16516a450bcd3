package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/xdg/hostgate/internal/audit"
)

// RequestIDHeader echoes the per-request ID used in audit events.
const RequestIDHeader = "X-Request-Id"

// contextKey is a type for context keys to avoid collisions.
type contextKey int

const requestIDKey contextKey = iota

// RequestID returns the request ID attached by requestIDMiddleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// sourceOf identifies r for audit events.
func sourceOf(r *http.Request) audit.Source {
	return audit.Source{RequestID: RequestID(r.Context()), Remote: r.RemoteAddr}
}

// requestIDMiddleware assigns a random ID to every request.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// securityHeadersMiddleware marks every response as non-sniffable and
// non-cacheable.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// bodyLimitMiddleware rejects bodies larger than maxBytes with 413. A
// declared Content-Length is checked up front; the reader is also capped
// so an understated length is caught during decoding. maxBytes <= 0
// disables the limit.
func bodyLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: tooLargeMessage(maxBytes)})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func tooLargeMessage(maxBytes int64) string {
	return fmt.Sprintf("Request body too large. Maximum size is %d bytes.", maxBytes)
}
