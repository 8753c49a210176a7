package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (*EmbeddingService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewEmbeddingService(Config{
		APIKey:            "test-key",
		BaseURL:           server.URL,
		Dimensions:        3,
		RequestsPerSecond: 1000, // no throttling in tests
	})
	require.NoError(t, err)
	return svc, server
}

func TestNewEmbeddingServiceRequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)
}

func TestEmbedBatch(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Input, 2)

		var resp embeddingResponse
		resp.Data = []struct {
			Embedding []float64 `json:"embedding"`
			Index     int       `json:"index"`
		}{
			{Embedding: []float64{2, 0, 0}, Index: 1},
			{Embedding: []float64{1, 0, 0}, Index: 0},
		}
		json.NewEncoder(w).Encode(resp)
	})

	embeddings, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, embeddings, 2)
	assert.Equal(t, []float32{1, 0, 0}, embeddings[0], "results reorder by index")
	assert.Equal(t, []float32{2, 0, 0}, embeddings[1])
}

func TestEmbedBatchBlankTexts(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"real text"}, req.Input, "blank entries never reach the API")

		var resp embeddingResponse
		resp.Data = []struct {
			Embedding []float64 `json:"embedding"`
			Index     int       `json:"index"`
		}{
			{Embedding: []float64{1, 2, 3}, Index: 0},
		}
		json.NewEncoder(w).Encode(resp)
	})

	embeddings, err := svc.EmbedBatch(context.Background(), []string{"", "real text", "  "})
	require.NoError(t, err)
	require.Len(t, embeddings, 3)
	assert.Equal(t, make([]float32, 3), embeddings[0])
	assert.Equal(t, []float32{1, 2, 3}, embeddings[1])
	assert.Equal(t, make([]float32, 3), embeddings[2])
}

func TestEmbedBatchAllBlank(t *testing.T) {
	called := false
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	embeddings, err := svc.EmbedBatch(context.Background(), []string{"", "   "})
	require.NoError(t, err)
	require.Len(t, embeddings, 2)
	assert.False(t, called)
}

func TestEmbedAPIError(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "invalid api key", "type": "auth"},
		})
	})

	_, err := svc.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}
