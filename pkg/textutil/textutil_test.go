package textutil

import (
	"strings"
	"testing"
)

func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()

	got := CollapseWhitespace("  hello \n\t world  again  ")
	if got != "hello world again" {
		t.Fatalf("unexpected result: %q", got)
	}
	if CollapseWhitespace(" \n\t ") != "" {
		t.Fatal("blank input must collapse to empty string")
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	t.Parallel()

	s := strings.Repeat("ж", 12)
	got := Truncate(s, 10)
	if RuneLen(got) != 10 {
		t.Fatalf("expected 10 runes, got %d", RuneLen(got))
	}
	if Truncate("short", 10) != "short" {
		t.Fatal("short strings must be returned unchanged")
	}
	if Truncate("anything", 0) != "anything" {
		t.Fatal("non-positive limit disables truncation")
	}
}

func TestTruncateIsIdempotent(t *testing.T) {
	t.Parallel()

	once := Truncate(strings.Repeat("a", 9000), 8000)
	if Truncate(once, 8000) != once {
		t.Fatal("re-truncating must be a no-op")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	t.Parallel()

	if got := FirstNonEmpty("", "  ", " b ", "c"); got != "b" {
		t.Fatalf("unexpected value: %q", got)
	}
	if FirstNonEmpty("", " ") != "" {
		t.Fatal("expected empty result")
	}
}
