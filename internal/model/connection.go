package model

import "strings"

// Connection represents one contact row from a connections export.
// Columns preserves every original column verbatim; the named fields are
// canonical views over the columns the pipeline cares about.
type Connection struct {
	Row        int               `json:"row"` // 1-based data row index in the source file
	FirstName  string            `json:"first_name"`
	LastName   string            `json:"last_name"`
	FullName   string            `json:"full_name"`
	Company    string            `json:"company,omitempty"`
	Position   string            `json:"position,omitempty"`
	ProfileURL string            `json:"profile_url,omitempty"`
	Notes      string            `json:"notes,omitempty"`
	Columns    map[string]string `json:"columns"`

	// Interests is set by the pipeline for records within the processing
	// limit. Tagged distinguishes an empty result from an untouched row.
	Interests []string `json:"interests,omitempty"`
	Tagged    bool     `json:"tagged"`
}

// RoleContext returns "Position at Company" (or whichever half exists)
// for search disambiguation and prompt building.
func (c Connection) RoleContext() string {
	switch {
	case c.Position != "" && c.Company != "":
		return c.Position + " at " + c.Company
	case c.Position != "":
		return c.Position
	default:
		return c.Company
	}
}

// OutcomeStatus is the terminal state of one record's enrichment.
type OutcomeStatus string

const (
	OutcomeTagged           OutcomeStatus = "tagged"
	OutcomeLookupFailed     OutcomeStatus = "lookup_failed"
	OutcomeExtractionFailed OutcomeStatus = "extraction_failed"
	OutcomeSkipped          OutcomeStatus = "skipped"        // normalization rejected the row
	OutcomePassedThrough    OutcomeStatus = "passed_through" // beyond the processing limit
)

// Outcome is the per-record result of the enrichment pipeline. One is
// produced for every input row, including skipped and passed-through rows.
type Outcome struct {
	Row      int           `json:"row"`
	Name     string        `json:"name"`
	Status   OutcomeStatus `json:"status"`
	Tags     []string      `json:"tags,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration int64         `json:"duration_ms"`
}

// Snippet is one search-result excerpt for a record's profile lookup.
type Snippet struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// JoinSnippets flattens a snippet set into the plain text block fed to
// the extraction prompt.
func JoinSnippets(snippets []Snippet) string {
	parts := make([]string, 0, len(snippets))
	for _, s := range snippets {
		line := strings.TrimSpace(strings.TrimSpace(s.Title) + " " + strings.TrimSpace(s.Text))
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "\n")
}
