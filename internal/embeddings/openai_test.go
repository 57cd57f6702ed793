package embeddings

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateRunesKeepsValidUTF8(t *testing.T) {
	long := strings.Repeat("é", maxInputChars+100)
	got := truncateRunes(long, maxInputChars)
	if !utf8.ValidString(got) {
		t.Fatal("result is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(got); n != maxInputChars {
		t.Fatalf("rune count = %d, want %d", n, maxInputChars)
	}
}

func TestTruncateRunesShortInputUnchanged(t *testing.T) {
	if got := truncateRunes("short", maxInputChars); got != "short" {
		t.Fatalf("got %q", got)
	}
}
