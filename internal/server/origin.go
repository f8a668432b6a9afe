package server

import (
	"net/http"
	"strings"
)

// OriginChecker restricts which browser origins may open a WebSocket.
// An empty allow list accepts every origin.
type OriginChecker struct {
	allowed map[string]struct{}
}

func NewOriginChecker(allowed []string) *OriginChecker {
	checker := &OriginChecker{
		allowed: make(map[string]struct{}),
	}

	for _, origin := range allowed {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			checker.allowed[origin] = struct{}{}
		}
	}

	return checker
}

func (c *OriginChecker) Check(r *http.Request) bool {
	if len(c.allowed) == 0 {
		return true
	}

	// Non-browser clients send no Origin header.
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	_, ok := c.allowed[origin]

	return ok
}
