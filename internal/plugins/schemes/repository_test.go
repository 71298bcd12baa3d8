package schemes

import "testing"

func TestLikePattern(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Agriculture", "%agriculture%"},
		{"trims and lowers", "  Telangana ", "%telangana%"},
		{"escapes percent", "100%", `%100\%%`},
		{"escapes underscore", "pm_kisan", `%pm\_kisan%`},
		{"escapes backslash", `a\b`, `%a\\b%`},
		{"bare wildcard", "%", `%\%%`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := likePattern(tt.input); got != tt.want {
				t.Errorf("likePattern(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
