package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/connections-cli/internal/config"
	"github.com/sells-group/connections-cli/internal/model"
	"github.com/sells-group/connections-cli/pkg/serpapi"
)

// defaultMaxSnippets bounds how many search excerpts feed the extractor.
const defaultMaxSnippets = 10

// LookupPhase issues one search for the connection's public profile and
// returns up to maxSnippets result excerpts. An empty result list is a
// valid outcome, not an error; errors here are recoverable at the record
// level and the caller degrades to an empty snippet set.
func LookupPhase(ctx context.Context, conn model.Connection, client serpapi.Client, cfg config.SerpAPIConfig, maxSnippets int) ([]model.Snippet, error) {
	if maxSnippets <= 0 {
		maxSnippets = defaultMaxSnippets
	}

	query := buildSearchQuery(conn)
	zap.L().Debug("lookup: searching",
		zap.String("name", conn.FullName),
		zap.String("query", query),
	)

	resp, err := client.Search(ctx, serpapi.SearchRequest{
		Query:      query,
		NumResults: maxSnippets,
		Language:   cfg.Language,
		Country:    cfg.Country,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "lookup: search for %q", conn.FullName)
	}

	snippets := collectSnippets(resp, maxSnippets)
	if len(snippets) == 0 {
		zap.L().Warn("lookup: no profile information found", zap.String("name", conn.FullName))
	}
	return snippets, nil
}

// buildSearchQuery constructs the profile search query. A known profile
// URL pins the search to that exact profile; otherwise the quoted name
// plus role context is restricted to profile pages.
func buildSearchQuery(conn model.Connection) string {
	if slug := profileSlug(conn.ProfileURL); slug != "" {
		return "site:linkedin.com/in/" + slug
	}

	query := fmt.Sprintf("%q", conn.FullName)
	if role := conn.RoleContext(); role != "" {
		query += " " + role
	}
	return query + " site:linkedin.com/in"
}

// profileSlug extracts the profile identifier from a LinkedIn URL.
// Returns "" when the URL does not contain one.
func profileSlug(profileURL string) string {
	_, after, found := strings.Cut(profileURL, "/in/")
	if !found {
		return ""
	}
	slug, _, _ := strings.Cut(after, "/")
	slug, _, _ = strings.Cut(slug, "?")
	return strings.TrimSpace(slug)
}

// collectSnippets extracts title and snippet text from organic results,
// discarding results with no usable text.
func collectSnippets(resp *serpapi.SearchResponse, limit int) []model.Snippet {
	if resp == nil {
		return nil
	}
	var snippets []model.Snippet
	for _, r := range resp.OrganicResults {
		if strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.Snippet) == "" {
			continue
		}
		snippets = append(snippets, model.Snippet{
			Title: strings.TrimSpace(r.Title),
			Text:  strings.TrimSpace(r.Snippet),
		})
		if len(snippets) >= limit {
			break
		}
	}
	return snippets
}
