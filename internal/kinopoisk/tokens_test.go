package kinopoisk

import (
	"errors"
	"sync"
	"testing"
)

func TestTokenRingAdvancesOncePerObservedToken(t *testing.T) {
	ring := newTokenRing([]string{"a", "b", "c"})
	_, pos := ring.current()

	// Many goroutines report quota-exceeded for the same token at once;
	// the cursor must move exactly one step, not past token "b".
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ring.advance(pos); err != nil {
				t.Errorf("unexpected advance error: %v", err)
			}
		}()
	}
	wg.Wait()

	tok, cur := ring.current()
	if tok != "b" || cur != 1 {
		t.Fatalf("expected cursor on token b (1), got %q (%d)", tok, cur)
	}
}

func TestTokenRingStaleAdvanceIsNoop(t *testing.T) {
	ring := newTokenRing([]string{"a", "b", "c"})
	if err := ring.advance(0); err != nil {
		t.Fatalf("advance: %v", err)
	}
	// A retry that observed token 0 must not move the cursor again.
	if err := ring.advance(0); err != nil {
		t.Fatalf("stale advance: %v", err)
	}
	if _, cur := ring.current(); cur != 1 {
		t.Fatalf("stale advance moved cursor to %d", cur)
	}
}

func TestTokenRingOutOfTokens(t *testing.T) {
	ring := newTokenRing([]string{"a", "b"})
	if err := ring.advance(0); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := ring.advance(1); !errors.Is(err, ErrOutOfTokens) {
		t.Fatalf("expected ErrOutOfTokens on last token, got %v", err)
	}
	// The cursor never resets or wraps.
	if tok, cur := ring.current(); tok != "b" || cur != 1 {
		t.Fatalf("cursor moved unexpectedly: %q (%d)", tok, cur)
	}
}
