package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRerank_Success(t *testing.T) {
	var gotReq rerankRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rerank", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		// Out of order on purpose; scores must land by index.
		_ = json.NewEncoder(w).Encode([]rerankResult{
			{Index: 1, Score: 0.9},
			{Index: 0, Score: 0.2},
			{Index: 2, Score: 0.5},
		})
	}))
	defer server.Close()

	r := NewHTTPReranker(server.URL, "", 0)
	scores, err := r.Rerank(context.Background(), "query text", []string{"a", "b", "c"})

	require.NoError(t, err)
	assert.Equal(t, []float64{0.2, 0.9, 0.5}, scores)
	assert.Equal(t, "query text", gotReq.Query)
	assert.Equal(t, []string{"a", "b", "c"}, gotReq.Texts)
}

func TestRerank_EmptyInput(t *testing.T) {
	r := NewHTTPReranker("http://localhost:1", "", 0)
	scores, err := r.Rerank(context.Background(), "q", nil)

	require.NoError(t, err)
	assert.Nil(t, scores)
}

func TestRerank_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	r := NewHTTPReranker(server.URL, "", 0)
	_, err := r.Rerank(context.Background(), "q", []string{"a"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestRerank_IncompleteResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]rerankResult{{Index: 0, Score: 0.4}})
	}))
	defer server.Close()

	r := NewHTTPReranker(server.URL, "", 0)
	_, err := r.Rerank(context.Background(), "q", []string{"a", "b"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "covered 1 of 2")
}

func TestRerank_IndexOutOfRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]rerankResult{{Index: 5, Score: 0.4}})
	}))
	defer server.Close()

	r := NewHTTPReranker(server.URL, "", 0)
	_, err := r.Rerank(context.Background(), "q", []string{"a"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestModelName_Default(t *testing.T) {
	assert.Equal(t, DefaultModel, NewHTTPReranker("http://x", "", 0).ModelName())
	assert.Equal(t, "custom/model", NewHTTPReranker("http://x", "custom/model", 0).ModelName())
}
