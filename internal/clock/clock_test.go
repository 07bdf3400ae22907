package clock

import (
	"testing"
	"time"
)

func TestFixedClockReturnsUTC(t *testing.T) {
	loc := time.FixedZone("WIB", 7*60*60)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, loc)

	got := FixedClock{At: at}.Now()
	if !got.Equal(at) {
		t.Fatalf("expected %v, got %v", at, got)
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", got.Location())
	}
}

func TestSystemClockIsUTC(t *testing.T) {
	if loc := (SystemClock{}).Now().Location(); loc != time.UTC {
		t.Fatalf("expected UTC location, got %v", loc)
	}
}
