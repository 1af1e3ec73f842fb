// Package ratelimit extracts the remote tracker's API usage window
// from response headers.
package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/projectlens/lens/internal/types"
)

// Header names used by the remote tracker.
const (
	headerLimit     = "X-RateLimit-Limit"
	headerRemaining = "X-RateLimit-Remaining"
	headerReset     = "X-RateLimit-Reset"
)

// FromHeader extracts the rate-limit window from response headers.
// Each field is independently optional: a missing or non-integer
// header leaves that field nil. Extraction itself never fails.
func FromHeader(h http.Header) types.RateLimitWindow {
	var w types.RateLimitWindow
	if v := h.Get(headerLimit); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			w.Limit = &n
		}
	}
	if v := h.Get(headerRemaining); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			w.Remaining = &n
		}
	}
	if v := h.Get(headerReset); v != "" {
		reset := v
		w.Reset = &reset
	}
	return w
}
