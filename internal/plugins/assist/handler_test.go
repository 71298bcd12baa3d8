package assist

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateMessage(t *testing.T) {
	hindi := "किसानों के लिए योजनाएं" // 3-byte runes

	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"under limit", "hello", 10, "hello"},
		{"exact limit", "hello", 5, "hello"},
		{"ascii cut", "hello world", 5, "hello"},
		{"multi-byte cut backs up to rune start", hindi, 10, hindi[:9]},
		{"multi-byte on boundary", hindi, 9, hindi[:9]},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateMessage(tt.input, tt.max)
			if got != tt.want {
				t.Errorf("truncateMessage(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncateMessage produced invalid UTF-8: %q", got)
			}
		})
	}
}

func TestTruncateMessage_LongInputStaysValid(t *testing.T) {
	long := strings.Repeat("स", 1500) // 4500 bytes
	got := truncateMessage(long, maxMessageLen)
	if len(got) > maxMessageLen {
		t.Errorf("truncated message is %d bytes, limit is %d", len(got), maxMessageLen)
	}
	if !utf8.ValidString(got) {
		t.Error("truncated message is not valid UTF-8")
	}
}
