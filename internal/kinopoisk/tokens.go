package kinopoisk

import (
	"errors"
	"sync"
)

// ErrOutOfTokens is returned when the upstream reports quota exhaustion
// on the last configured credential. There is no further fallback; the
// condition is an operational error, not a per-request one.
var ErrOutOfTokens = errors.New("kinopoisk: all api tokens exhausted")

// tokenRing holds the ordered credential list and the rotation cursor.
// The cursor is process-wide, shared by every request, and only ever
// moves forward. Advancing uses compare-and-advance so that concurrent
// quota-exceeded responses observed against the same token move the
// cursor exactly one step instead of skipping past a valid credential.
type tokenRing struct {
	mu     sync.Mutex
	tokens []string
	cur    int
}

func newTokenRing(tokens []string) *tokenRing {
	return &tokenRing{tokens: tokens}
}

// current returns the active token together with its cursor position.
// Callers pass the position back to advance so a rotation triggered by
// a stale token is a no-op.
func (r *tokenRing) current() (string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tokens[r.cur], r.cur
}

// advance moves the cursor one step past the token at position seen.
// If another caller already rotated, the call is a no-op. Rotating past
// the last token yields ErrOutOfTokens.
func (r *tokenRing) advance(seen int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cur != seen {
		return nil // someone else already swapped this token out
	}
	if r.cur+1 == len(r.tokens) {
		return ErrOutOfTokens
	}
	r.cur++
	return nil
}
