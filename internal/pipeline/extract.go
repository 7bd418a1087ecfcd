package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/sells-group/connections-cli/internal/config"
	"github.com/sells-group/connections-cli/internal/model"
	"github.com/sells-group/connections-cli/pkg/openai"
)

// Interests is the taxonomy the model is asked to pick from.
var Interests = []string{
	"Strategy", "Operations", "Entrepreneurship", "Leadership", "Management",
	"Marketing", "Sales", "Investing", "Personal Finance", "Corporate Finance",
	"Financial Planning", "Venture Capital", "Economics", "Artificial Intelligence",
	"Blockchain", "Cybersecurity", "Software Development", "Data Science",
	"Cloud Computing", "Remote Work", "Career Development", "Workplace Culture",
	"Job Hunting", "Networking", "Freelancing", "Mental Health", "Physical Fitness",
	"Nutrition", "Mindfulness", "Work-Life Balance", "Sleep", "Productivity",
	"Time Management", "Goal Setting", "Habits", "Self-Discipline", "Motivation",
	"Lifelong Learning", "Online Courses", "Reading", "Writing", "Public Speaking",
	"Critical Thinking", "Design", "Storytelling", "Content Creation", "Innovation",
	"Art", "Media", "Diversity & Inclusion", "Social Impact", "Ethics",
	"Global Trends", "Politics", "Sustainability", "Space Exploration",
	"Climate Change", "Biotech", "Futurism", "Quantum Computing",
	"Emerging Technologies",
}

const (
	defaultMaxTags     = 10
	defaultTemperature = 0.3
	maxProfileChars    = 2000
	extractMaxTokens   = 500

	// Segments longer than this are treated as explanatory prose, not tags.
	maxTagRunes = 40
)

const systemPrompt = `You are a professional career analyst. Your task is to analyze public profile information and identify relevant professional interests and expertise areas.`

const interestPromptTemplate = `Based on the following public profile information, select at least 5 of the most relevant interests from the provided list.
Only select from these interests: %s

Person's information:
Name: %s
Company: %s
Position: %s
Notes: %s

Profile content:
%s

Return the interests as a short comma-separated list of tags, not full sentences.
Example response format: Leadership, Management, Strategy, Innovation, Career Development`

// ExtractPhase asks the chat model for interest tags given a connection
// and its lookup snippets, and parses the response into a deduplicated
// tag set. An empty tag set is a valid outcome; errors here are
// recoverable at the record level.
func ExtractPhase(ctx context.Context, conn model.Connection, snippets []model.Snippet, client openai.Client, ocfg config.OpenAIConfig, pcfg config.PipelineConfig) ([]string, error) {
	temp := pcfg.Temperature
	if temp <= 0 {
		temp = defaultTemperature
	}
	maxTokens := extractMaxTokens

	resp, err := client.ChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: ocfg.Model,
		Messages: []openai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildInterestPrompt(conn, snippets)},
		},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "extract: chat completion for %q", conn.FullName)
	}
	if len(resp.Choices) == 0 {
		return nil, eris.Errorf("extract: no choices in response for %q", conn.FullName)
	}

	return ParseInterestTags(resp.Choices[0].Message.Content, pcfg.MaxTags), nil
}

// buildInterestPrompt renders the deterministic extraction prompt. The
// snippet text is truncated to keep the token count bounded.
func buildInterestPrompt(conn model.Connection, snippets []model.Snippet) string {
	profile := model.JoinSnippets(snippets)
	if len(profile) > maxProfileChars {
		profile = profile[:maxProfileChars]
	}

	return fmt.Sprintf(interestPromptTemplate,
		strings.Join(Interests, ", "),
		conn.FullName,
		conn.Company,
		conn.Position,
		conn.Notes,
		profile,
	)
}

// ParseInterestTags parses raw model output into a tag set: split on
// newlines and commas, trim list decoration, drop empty and prose-like
// segments, dedupe case-insensitively preserving first casing and
// insertion order, cap at maxTags. Deterministic for a fixed input.
func ParseInterestTags(raw string, maxTags int) []string {
	if maxTags <= 0 {
		maxTags = defaultMaxTags
	}

	raw = stripCodeFence(raw)

	segments := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == ',' || r == ';'
	})

	seen := make(map[string]bool, len(segments))
	var tags []string
	for _, seg := range segments {
		tag := cleanTag(seg)
		if tag == "" || looksLikeProse(tag) {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
		if len(tags) >= maxTags {
			break
		}
	}
	return tags
}

// cleanTag strips whitespace, bullets, numbering, and wrapping
// quotes/brackets from one list segment.
func cleanTag(seg string) string {
	tag := strings.TrimSpace(seg)
	tag = strings.TrimLeft(tag, "-*•·")
	// Numbered list prefix, e.g. "1." or "2)".
	if i := strings.IndexAny(tag, ".)"); i > 0 && i <= 2 && isDigits(tag[:i]) {
		tag = tag[i+1:]
	}
	tag = strings.Trim(tag, " \t\"'[]")
	return strings.TrimSpace(tag)
}

// looksLikeProse rejects segments that read like an explanatory sentence
// rather than a tag.
func looksLikeProse(tag string) bool {
	if utf8.RuneCountInString(tag) > maxTagRunes {
		return true
	}
	if strings.Contains(tag, ". ") || strings.HasSuffix(tag, ".") {
		return true
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// stripCodeFence removes a wrapping markdown code fence if present.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.Index(text, "\n"); i >= 0 {
		text = text[i+1:]
	}
	if i := strings.LastIndex(text, "```"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}
