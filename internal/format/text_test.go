package format

import (
	"testing"
)

func TestStripAnsi(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no ansi", "hello", "hello"},
		{"single color", "\x1b[31mred\x1b[0m", "red"},
		{"multiple colors", "\x1b[31mred\x1b[0m \x1b[32mgreen\x1b[0m", "red green"},
		{"complex", "\x1b[1;31;40mbold red on black\x1b[0m", "bold red on black"},
		{"hyperlink", "\x1b]8;;https://github.com/octocat\x1b\\octocat\x1b]8;;\x1b\\", "octocat"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripAnsi(tt.input)
			if got != tt.expected {
				t.Errorf("StripAnsi(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"empty", "", 0},
		{"ascii", "octocat", 7},
		{"with ansi", "\x1b[33m1.2k\x1b[0m", 4},
		{"hyperlink", "\x1b]8;;https://example.com\x1b\\repo\x1b]8;;\x1b\\", 4},
		{"wide chars", "日本語", 6},
		{"mixed", "Hello, 世界!", 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DisplayWidth(tt.input)
			if got != tt.expected {
				t.Errorf("DisplayWidth(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		expected string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact fit", "hello", 5, "hello"},
		{"truncate ascii", "hello world", 8, "hello..."},
		{"truncate wide", "日本語のリポジトリ", 7, "日本..."},
		{"only room for suffix", "hello", 3, "..."},
		{"narrower than suffix", "hello", 2, ".."},
		{"zero width", "hello", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.maxWidth)
			if got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.expected)
			}
			if w := DisplayWidth(got); w > tt.maxWidth {
				t.Errorf("Truncate(%q, %d) width = %d, exceeds max", tt.input, tt.maxWidth, w)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{"no padding needed", "hello", 5, "hello"},
		{"add padding", "hi", 5, "hi   "},
		{"already exceeds", "hello", 3, "hello"},
		{"with ansi", "\x1b[31mred\x1b[0m", 5, "\x1b[31mred\x1b[0m  "},
		{"wide chars", "世界", 6, "世界  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PadRight(tt.input, tt.width)
			if got != tt.expected {
				t.Errorf("PadRight(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.expected)
			}
		})
	}
}

func TestSingleLine(t *testing.T) {
	got := SingleLine("  Go developer.\n\nLikes   tea.\t")
	if got != "Go developer. Likes tea." {
		t.Errorf("SingleLine() = %q", got)
	}
}

func TestOrDefault(t *testing.T) {
	if got := OrDefault("  ", "none"); got != "none" {
		t.Errorf("OrDefault(blank) = %q, want none", got)
	}
	if got := OrDefault("bio", "none"); got != "bio" {
		t.Errorf("OrDefault(bio) = %q, want bio", got)
	}
}
