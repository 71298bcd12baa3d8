package schemes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// StringList is a []string persisted as a JSON array in a TEXT column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("encoding string list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported string list source %T", src)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, (*[]string)(l))
}

// Scheme is one government welfare scheme in the catalog.
type Scheme struct {
	ID                string     `json:"id"`
	SchemeName        string     `json:"schemeName"`
	Category          string     `json:"category"`
	Ministry          string     `json:"ministry"`
	State             string     `json:"state"`
	TargetGroups      StringList `json:"targetGroups"`
	Eligibility       string     `json:"eligibility"`
	Benefits          string     `json:"benefits"`
	DocumentsRequired StringList `json:"documentsRequired"`
	ApplyLink         string     `json:"applyLink"`
	Description       string     `json:"description"`
	LanguageSupport   StringList `json:"languageSupport"`
	CreatedAt         time.Time  `json:"-"`
	UpdatedAt         time.Time  `json:"-"`
}

// ListFilter narrows a catalog listing. All matches are case-insensitive
// substring tests; empty fields match everything.
type ListFilter struct {
	Category     string
	State        string
	Search       string
	TargetGroups []string
	Limit        int
}

// Matches applies the filter in memory. Used for the file-backed catalog;
// the SQL repository expresses the same predicate as LIKE clauses.
func (f ListFilter) Matches(s *Scheme) bool {
	if f.Category != "" && !containsFold(s.Category, f.Category) {
		return false
	}
	if f.State != "" && !containsFold(s.State, f.State) {
		return false
	}
	if f.Search != "" && !containsFold(s.SchemeName, f.Search) {
		return false
	}
	if len(f.TargetGroups) > 0 {
		matched := false
		for _, want := range f.TargetGroups {
			for _, have := range s.TargetGroups {
				if containsFold(have, want) {
					matched = true
					break
				}
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// CreateSchemeRequest is the POST /api/schemes payload.
type CreateSchemeRequest struct {
	ID                string   `json:"id"`
	SchemeName        string   `json:"schemeName"`
	Category          string   `json:"category"`
	Ministry          string   `json:"ministry"`
	State             string   `json:"state"`
	TargetGroups      []string `json:"targetGroups"`
	Eligibility       string   `json:"eligibility"`
	Benefits          string   `json:"benefits"`
	DocumentsRequired []string `json:"documentsRequired"`
	ApplyLink         string   `json:"applyLink"`
	Description       string   `json:"description"`
	LanguageSupport   []string `json:"languageSupport"`
}
