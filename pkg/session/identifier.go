// Package session generates stable identifiers for tutoring sessions.
package session

import (
	cryptorand "crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewID returns a fresh session identifier, lexically sortable by
// creation time so log and checkpoint files list in order.
func NewID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now()), cryptorand.Reader)
	if err != nil {
		// Monotonic fallback keeps IDs usable if the entropy source fails.
		return "session-" + time.Now().UTC().Format("20060102T150405.000000000")
	}
	return strings.ToLower(id.String())
}

// Valid reports whether s looks like an identifier NewID produced.
func Valid(s string) bool {
	if strings.HasPrefix(s, "session-") {
		return len(s) > len("session-")
	}
	_, err := ulid.ParseStrict(strings.ToUpper(s))
	return err == nil
}
