package middleware

import (
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Timeout bounds JSON API handlers, including the upstream call they make.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return timeoutWith(timeout, `{"success":false,"error":{"code":"REQUEST_TIMEOUT","message":"request timed out"}}`)
}

// PageTimeout is Timeout for HTML pages.
func PageTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return timeoutWith(timeout, "<!doctype html><title>Timeout</title><p>The school API took too long to answer. Please try again.</p>")
}

func timeoutWith(timeout time.Duration, message string) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
