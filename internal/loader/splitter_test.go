package loader

import (
	"strings"
	"testing"
)

func TestSplitIntoWindowsNeverEmpty(t *testing.T) {
	text := strings.Repeat("Harry walked into the room. ", 400)
	windows := SplitIntoWindows(text, DefaultWindowSize, DefaultWindowOverlap)
	if len(windows) == 0 {
		t.Fatalf("expected at least one window")
	}
	for i, w := range windows {
		if strings.TrimSpace(w) == "" {
			t.Fatalf("window %d is empty", i)
		}
	}
}

func TestSplitIntoWindowsOverlapCarriesTail(t *testing.T) {
	text := strings.Repeat("a", 1200) + "\n\n" + strings.Repeat("b", 1200)
	windows := SplitIntoWindows(text, 1000, 200)
	if len(windows) < 2 {
		t.Fatalf("expected multiple windows, got %d", len(windows))
	}
	if !strings.HasPrefix(windows[1], "a") {
		t.Fatalf("expected window 1 to carry overlap from window 0's tail, got prefix: %q", windows[1][:10])
	}
}

func TestSplitIntoWindowsRespectsMinimumTargetSize(t *testing.T) {
	text := strings.Repeat("x", 5000)
	windows := SplitIntoWindows(text, 10, 0)
	for _, w := range windows {
		if len([]rune(w)) > 200 {
			t.Fatalf("window exceeds enforced minimum target size: %d runes", len([]rune(w)))
		}
	}
}

func TestSplitIntoWindowsEmptyInput(t *testing.T) {
	if windows := SplitIntoWindows("   ", 1000, 200); windows != nil {
		t.Fatalf("expected nil for blank input, got %v", windows)
	}
}

func TestTitleFromFilename(t *testing.T) {
	cases := map[string]string{
		"anna_karenina.pdf":  "anna karenina",
		"The-Night-Circus.epub": "The Night Circus",
	}
	for in, want := range cases {
		if got := TitleFromFilename(in); got != want {
			t.Fatalf("TitleFromFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	if _, _, err := Load("book.mobi"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
