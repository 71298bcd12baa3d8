package assist

import (
	"testing"
)

func TestIsGreeting(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"hi", true},
		{"Hello there", true},
		{"Namaste", true},
		{"good morning", true},
		{"hey, can you list all the agriculture schemes available in Telangana for small farmers", false},
		{"what schemes are there for farmers", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := isGreeting(tt.message); got != tt.want {
				t.Errorf("isGreeting(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestMatchFilter_Categories(t *testing.T) {
	tests := []struct {
		message  string
		category string
	}{
		{"schemes for farmers", "Agriculture"},
		{"anything about agriculture support", "Agriculture"},
		{"medical help for my family", "Health"},
		{"health insurance schemes", "Health"},
		{"scholarship for my daughter", "Education"},
		{"student benefits", "Education"},
		{"I need a house", "Housing"},
		{"housing subsidy", "Housing"},
		{"tell me something", ""},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			filter := matchFilter(tt.message)
			if filter.Category != tt.category {
				t.Errorf("category = %q, want %q", filter.Category, tt.category)
			}
		})
	}
}

func TestMatchFilter_WomenTargetGroups(t *testing.T) {
	filter := matchFilter("schemes for women entrepreneurs")
	if filter.Category != "" {
		t.Errorf("expected no category, got %q", filter.Category)
	}
	if len(filter.TargetGroups) != 2 || filter.TargetGroups[0] != "Women" || filter.TargetGroups[1] != "Girl Child" {
		t.Errorf("expected Women/Girl Child target groups, got %v", filter.TargetGroups)
	}
}

func TestMatchFilter_CategoryBeatsTargetGroups(t *testing.T) {
	// A farmer question that also mentions women routes by category.
	filter := matchFilter("schemes for women farmers")
	if filter.Category != "Agriculture" {
		t.Errorf("expected Agriculture, got %q", filter.Category)
	}
	if len(filter.TargetGroups) != 0 {
		t.Errorf("expected no target groups, got %v", filter.TargetGroups)
	}
}

func TestMatchFilter_StateDetection(t *testing.T) {
	tests := []struct {
		message string
		state   string
	}{
		{"health schemes in telangana", "Telangana"},
		{"schemes in Tamil Nadu please", "Tamil Nadu"},
		{"anything in andhra pradesh", "Andhra Pradesh"},
		{"schemes for farmers", ""},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			filter := matchFilter(tt.message)
			if filter.State != tt.state {
				t.Errorf("state = %q, want %q", filter.State, tt.state)
			}
		})
	}
}

func TestMatchFilter_Limit(t *testing.T) {
	if filter := matchFilter("farmer schemes"); filter.Limit != fallbackLimit {
		t.Errorf("expected limit %d, got %d", fallbackLimit, filter.Limit)
	}
}
