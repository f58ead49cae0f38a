package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaEmbedTexts(t *testing.T) {
	var gotModel string
	var gotPrompts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)

		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel = req.Model
		gotPrompts = append(gotPrompts, req.Prompt)

		json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{0.1, 0.2}})
	}))
	defer srv.Close()

	emb := NewOllamaEmbedder(srv.URL, "test-model")
	vecs, err := emb.EmbedTexts(context.Background(), []string{"первый текст", "второй текст"})
	require.NoError(t, err)

	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{0.1, 0.2}, vecs[0])
	assert.Equal(t, []float32{0.1, 0.2}, vecs[1])
	assert.Equal(t, "test-model", gotModel)
	assert.Equal(t, []string{"первый текст", "второй текст"}, gotPrompts)
}

func TestOllamaEmbedTextsBestEffort(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "model overloaded", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{1}})
	}))
	defer srv.Close()

	emb := NewOllamaEmbedder(srv.URL, "test-model")
	vecs, err := emb.EmbedTexts(context.Background(), []string{"первый", "второй"})
	require.NoError(t, err)

	require.Len(t, vecs, 2)
	assert.Nil(t, vecs[0]) // failed text keeps a nil vector
	assert.Equal(t, []float32{1}, vecs[1])
}

func TestOllamaEmbedSkipsBlankText(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{1}})
	}))
	defer srv.Close()

	emb := NewOllamaEmbedder(srv.URL, "test-model")
	vecs, err := emb.EmbedTexts(context.Background(), []string{"   ", "текст"})
	require.NoError(t, err)

	assert.Nil(t, vecs[0])
	assert.Equal(t, 1, calls)
}

func TestOllamaEmbedTruncatesLongText(t *testing.T) {
	var gotLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotLen = len([]rune(req.Prompt))
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{1}})
	}))
	defer srv.Close()

	emb := NewOllamaEmbedder(srv.URL, "test-model")
	_, err := emb.EmbedTexts(context.Background(), []string{strings.Repeat("ф", 9000)})
	require.NoError(t, err)
	assert.Equal(t, maxEmbedChars, gotLen)
}

func TestOllamaCheckConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{
				{"name": "evilfreelancer/enbeddrus:latest"},
			},
		})
	}))
	defer srv.Close()

	assert.True(t, NewOllamaEmbedder(srv.URL, "evilfreelancer/enbeddrus").CheckConnection(context.Background()))
	assert.False(t, NewOllamaEmbedder(srv.URL, "nomic-embed-text").CheckConnection(context.Background()))
}

func TestOllamaCheckConnectionDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	assert.False(t, NewOllamaEmbedder(srv.URL, "m").CheckConnection(context.Background()))
}
