package assist

import (
	"strings"

	"github.com/yojanahub/yojanahub/internal/plugins/schemes"
)

// fallbackLimit caps how many schemes a keyword-matched answer lists.
const fallbackLimit = 10

// categoryKeywords maps message keywords to catalog categories. First match
// wins, so more specific terms come before broad ones.
var categoryKeywords = []struct {
	words    []string
	category string
}{
	{[]string{"farmer", "agriculture"}, "Agriculture"},
	{[]string{"health", "medical"}, "Health"},
	{[]string{"education", "scholarship", "student"}, "Education"},
	{[]string{"house", "housing"}, "Housing"},
}

// womenKeywords route to target groups instead of a category.
var womenKeywords = []string{"women", "woman", "girl"}

// knownStates are the state names the matcher detects in free text.
var knownStates = []string{
	"andhra pradesh", "telangana", "tamil nadu",
	"karnataka", "kerala", "maharashtra",
}

// greetings that short-circuit to a welcome answer when the message is
// nothing but a salutation.
var greetings = []string{
	"hi", "hello", "hey", "good morning", "good afternoon",
	"good evening", "namaste", "namaskar",
}

// isGreeting reports whether the message is a bare salutation rather than a
// question. Long messages that merely open with a greeting still count as
// questions.
func isGreeting(message string) bool {
	lower := strings.ToLower(strings.TrimSpace(message))
	for _, g := range greetings {
		if strings.HasPrefix(lower, g) && (len(lower) < 20 || len(strings.Fields(lower)) < 5) {
			return true
		}
	}
	return false
}

// matchFilter derives a catalog filter from message keywords.
func matchFilter(message string) schemes.ListFilter {
	lower := strings.ToLower(message)
	filter := schemes.ListFilter{Limit: fallbackLimit}

	for _, ck := range categoryKeywords {
		for _, w := range ck.words {
			if strings.Contains(lower, w) {
				filter.Category = ck.category
				break
			}
		}
		if filter.Category != "" {
			break
		}
	}

	if filter.Category == "" {
		for _, w := range womenKeywords {
			if strings.Contains(lower, w) {
				filter.TargetGroups = []string{"Women", "Girl Child"}
				break
			}
		}
	}

	for _, state := range knownStates {
		if strings.Contains(lower, state) {
			filter.State = titleCase(state)
			break
		}
	}

	return filter
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
