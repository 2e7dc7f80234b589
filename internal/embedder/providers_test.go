package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embeddingsRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

func fakeEmbeddingsServer(t *testing.T, dim int, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		require.Equal(t, "/embeddings", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embeddingsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		type datum struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]datum, len(req.Input))
		for i := range req.Input {
			vec := make([]float32, dim)
			vec[i%dim] = 1
			data[i] = datum{Embedding: vec, Index: i}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data":  data,
			"model": req.Model,
		})
	}))
}

func newTestRemote(t *testing.T, baseURL string, cache *Cache) *RemoteProvider {
	t.Helper()
	provider, err := NewRemoteProvider(RemoteConfig{
		APIKey:    "test-key",
		BaseURL:   baseURL,
		Model:     "test-model",
		Dimension: 4,
		Cache:     cache,
	})
	require.NoError(t, err)
	return provider
}

func TestRemoteProvider_GenerateBatch(t *testing.T) {
	server := fakeEmbeddingsServer(t, 4, nil)
	defer server.Close()

	provider := newTestRemote(t, server.URL, nil)
	defer provider.Close()

	embeddings, err := provider.GenerateBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, embeddings, 2)
	assert.Equal(t, []float32{1, 0, 0, 0}, embeddings[0].Vector)
	assert.Equal(t, []float32{0, 1, 0, 0}, embeddings[1].Vector)
	assert.Equal(t, "test-model", embeddings[0].Model)
}

func TestRemoteProvider_CacheHitSkipsAPI(t *testing.T) {
	var calls atomic.Int32
	server := fakeEmbeddingsServer(t, 4, &calls)
	defer server.Close()

	provider := newTestRemote(t, server.URL, NewCache(100))
	defer provider.Close()

	ctx := context.Background()
	first, err := provider.GenerateEmbedding(ctx, "cached text")
	require.NoError(t, err)
	second, err := provider.GenerateEmbedding(ctx, "cached text")
	require.NoError(t, err)

	assert.Equal(t, first.Vector, second.Vector)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRemoteProvider_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float32{1, 0, 0, 0}, "index": 0},
			},
			"model": "test-model",
		})
	}))
	defer server.Close()

	provider := newTestRemote(t, server.URL, nil)
	defer provider.Close()

	embeddings, err := provider.GenerateBatch(context.Background(), []string{"a"})
	require.NoError(t, err)
	require.Len(t, embeddings, 1)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestRemoteProvider_ClientErrorImmediate(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	provider := newTestRemote(t, server.URL, nil)
	defer provider.Close()

	_, err := provider.GenerateBatch(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrProviderFailed)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestRemoteProvider_BatchTooLarge(t *testing.T) {
	provider := newTestRemote(t, "http://unreachable.invalid", nil)
	defer provider.Close()

	texts := make([]string, MaxBatchSize+1)
	for i := range texts {
		texts[i] = "x"
	}
	_, err := provider.GenerateBatch(context.Background(), texts)
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestRemoteProvider_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := newTestRemote(t, server.URL, nil)
	defer provider.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.GenerateBatch(ctx, []string{"a"})
	assert.Error(t, err)
}

func TestNewRemoteProvider_Defaults(t *testing.T) {
	provider, err := NewRemoteProvider(RemoteConfig{APIKey: "k"})
	require.NoError(t, err)
	defer provider.Close()

	assert.Equal(t, DefaultOpenAIModel, provider.Model())
	assert.Equal(t, OpenAIDimension, provider.Dimension())
	assert.Equal(t, ProviderOpenAI, provider.Provider())
}

func TestNewRemoteProvider_MissingKey(t *testing.T) {
	_, err := NewRemoteProvider(RemoteConfig{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
