package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/connections-cli/internal/config"
	"github.com/sells-group/connections-cli/pkg/openai"
	"github.com/sells-group/connections-cli/pkg/serpapi"
)

// --- SerpAPI Mock ---

type mockSearchClient struct {
	mock.Mock
}

func (m *mockSearchClient) Search(ctx context.Context, req serpapi.SearchRequest) (*serpapi.SearchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*serpapi.SearchResponse), args.Error(1)
}

// --- OpenAI Mock ---

type mockChatClient struct {
	mock.Mock
}

func (m *mockChatClient) ChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openai.ChatCompletionResponse), args.Error(1)
}

// testConfig returns a config with pipeline defaults and a fast limiter
// so tests never wait on pacing.
func testConfig() *config.Config {
	return &config.Config{
		Pipeline: config.PipelineConfig{
			MaxRecords:      5,
			MaxSnippets:     10,
			MaxTags:         10,
			Temperature:     0.3,
			SearchesPerSec:  1000,
			InterestsColumn: "Interests",
		},
		Output: config.OutputConfig{
			Path:      "connections_with_interests.csv",
			Delimiter: ";",
		},
	}
}

// searchResponse builds a single-result response with the given snippet.
func searchResponse(title, snippet string) *serpapi.SearchResponse {
	return &serpapi.SearchResponse{
		SearchMetadata: serpapi.SearchMetadata{ID: "test-search", Status: "Success"},
		OrganicResults: []serpapi.OrganicResult{
			{Position: 1, Title: title, Snippet: snippet},
		},
	}
}

// chatResponse builds a single-choice completion with the given content.
func chatResponse(content string) *openai.ChatCompletionResponse {
	return &openai.ChatCompletionResponse{
		ID: "test-cmpl",
		Choices: []openai.Choice{
			{Index: 0, Message: openai.Message{Role: "assistant", Content: content}, FinishReason: "stop"},
		},
	}
}
