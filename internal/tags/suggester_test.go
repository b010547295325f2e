package tags

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSuggesterPostsContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req suggestRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hari ini belajar Go", req.Content)
		_ = json.NewEncoder(w).Encode(suggestResponse{Tags: []string{"belajar", "golang"}})
	}))
	defer srv.Close()

	got, err := NewHTTPSuggester(srv.URL).Suggest(context.Background(), "hari ini belajar Go")
	require.NoError(t, err)
	assert.Equal(t, []string{"belajar", "golang"}, got)
}

func TestHTTPSuggesterCapsSuggestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(suggestResponse{
			Tags: []string{"a", "b", "c", "d", "e", "f", "g"},
		})
	}))
	defer srv.Close()

	got, err := NewHTTPSuggester(srv.URL).Suggest(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, got, maxSuggestions)
}

func TestHTTPSuggesterRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPSuggester(srv.URL).Suggest(context.Background(), "x")
	assert.Error(t, err)
}

func TestDisabledSuggesterReturnsNoTags(t *testing.T) {
	got, err := NewHTTPSuggester("").Suggest(context.Background(), "x")
	require.NoError(t, err)
	assert.Empty(t, got)
}
