package middleware

import (
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds handler execution when no timeout is configured
const DefaultRequestTimeout = 30 * time.Second

// Timeout cancels the request context and answers 503 once timeout elapses
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, `{"success":false,"error":"Service Unavailable","message":"Request timed out"}`)
	}
}
