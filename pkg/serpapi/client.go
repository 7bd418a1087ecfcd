package serpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "https://serpapi.com"
	defaultEngine  = "google"
)

// Client performs Google searches through the SerpAPI proxy.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest holds the parameters for GET /search.
type SearchRequest struct {
	Query      string
	NumResults int
	Language   string
	Country    string
}

// SearchResponse is the subset of the SerpAPI payload the pipeline consumes.
type SearchResponse struct {
	SearchMetadata SearchMetadata  `json:"search_metadata"`
	OrganicResults []OrganicResult `json:"organic_results"`
}

// SearchMetadata identifies the search on the SerpAPI side.
type SearchMetadata struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// OrganicResult is a single organic search hit.
type OrganicResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithEngine overrides the default search engine.
func WithEngine(engine string) Option {
	return func(c *httpClient) {
		c.engine = engine
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	engine  string
	http    *http.Client
}

// NewClient creates a SerpAPI client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		engine:  defaultEngine,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("engine", c.engine)
	q.Set("api_key", c.apiKey)
	q.Set("q", req.Query)
	if req.NumResults > 0 {
		q.Set("num", strconv.Itoa(req.NumResults))
	}
	if req.Language != "" {
		q.Set("hl", req.Language)
	}
	if req.Country != "" {
		q.Set("gl", req.Country)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: create request")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("serpapi: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "serpapi: unmarshal response")
	}

	return &result, nil
}
