package pipeline

import (
	"context"
	"fmt"

	"github.com/sells-group/connections-cli/pkg/openai"
	"github.com/sells-group/connections-cli/pkg/serpapi"
)

// Compile-time interface checks.
var (
	_ serpapi.Client = (*StubSearchClient)(nil)
	_ openai.Client  = (*StubChatClient)(nil)
)

// StubSearchClient implements serpapi.Client with canned results for
// offline runs.
type StubSearchClient struct{}

// Search implements serpapi.Client.
func (s *StubSearchClient) Search(_ context.Context, req serpapi.SearchRequest) (*serpapi.SearchResponse, error) {
	return &serpapi.SearchResponse{
		SearchMetadata: serpapi.SearchMetadata{ID: "stub-search-001", Status: "Success"},
		OrganicResults: []serpapi.OrganicResult{
			{
				Position: 1,
				Title:    fmt.Sprintf("Stub profile for query: %s", req.Query),
				Link:     "https://www.linkedin.com/in/stub-profile",
				Snippet:  "Experienced professional with a background in technology leadership and team management.",
			},
		},
	}, nil
}

// StubChatClient implements openai.Client with a canned tag list.
type StubChatClient struct{}

// ChatCompletion implements openai.Client.
func (s *StubChatClient) ChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	return &openai.ChatCompletionResponse{
		ID:    "stub-cmpl-001",
		Model: req.Model,
		Choices: []openai.Choice{
			{
				Index:        0,
				Message:      openai.Message{Role: "assistant", Content: "Leadership, Management, Career Development, Networking, Strategy"},
				FinishReason: "stop",
			},
		},
		Usage: openai.Usage{PromptTokens: 150, CompletionTokens: 20, TotalTokens: 170},
	}, nil
}
