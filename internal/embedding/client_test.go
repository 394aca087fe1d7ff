package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embedData struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

func TestEmbed_Success(t *testing.T) {
	var gotReq embeddingRequest
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/embeddings", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		// Out of order on purpose; vectors must land by index.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []embedData{
				{Object: "embedding", Embedding: []float32{3, 4}, Index: 1},
				{Object: "embedding", Embedding: []float32{1, 2}, Index: 0},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "secret", 0)
	vecs, err := c.Embed(context.Background(), "test-model", []string{"first", "second"})

	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{1, 2}, vecs[0])
	assert.Equal(t, []float32{3, 4}, vecs[1])
	assert.Equal(t, "test-model", gotReq.Model)
	assert.Equal(t, []string{"first", "second"}, gotReq.Input)
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestEmbed_NoAuthHeaderWithoutKey(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []embedData{{Embedding: []float32{1}, Index: 0}},
		})
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "", 0).Embed(context.Background(), "m", []string{"x"})

	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestEmbed_EmptyInput(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls++
	}))
	defer server.Close()

	vecs, err := NewClient(server.URL, "", 0).Embed(context.Background(), "m", nil)

	require.NoError(t, err)
	assert.Nil(t, vecs)
	assert.Zero(t, calls)
}

func TestEmbed_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "", 0).Embed(context.Background(), "m", []string{"x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestEmbed_VectorCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []embedData{{Embedding: []float32{1}, Index: 0}},
		})
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "", 0).Embed(context.Background(), "m", []string{"a", "b"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 vectors for 2 texts")
}

func TestEmbed_EmptyVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []embedData{{Embedding: []float32{}, Index: 0}},
		})
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "", 0).Embed(context.Background(), "m", []string{"a"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty embedding")
}
