package tags

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// Suggester proposes tags for a draft post's content.
type Suggester interface {
	Suggest(ctx context.Context, content string) ([]string, error)
}

const maxSuggestions = 5

// HTTPSuggester calls an external suggestion endpoint with the draft
// content and returns its tags, capped at maxSuggestions.
type HTTPSuggester struct {
	url    string
	client *http.Client
}

// NewHTTPSuggester builds a suggester against the given endpoint. An empty
// URL yields a disabled suggester that returns no tags.
func NewHTTPSuggester(url string) Suggester {
	if url == "" {
		return disabled{}
	}
	return &HTTPSuggester{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type suggestRequest struct {
	Content string `json:"content"`
}

type suggestResponse struct {
	Tags []string `json:"tags"`
}

func (s *HTTPSuggester) Suggest(ctx context.Context, content string) ([]string, error) {
	body, err := json.Marshal(suggestRequest{Content: content})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tag suggestion endpoint returned %d", resp.StatusCode)
	}

	var out suggestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Tags) > maxSuggestions {
		out.Tags = out.Tags[:maxSuggestions]
	}
	return out.Tags, nil
}

type disabled struct{}

func (disabled) Suggest(context.Context, string) ([]string, error) {
	return []string{}, nil
}
