package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, "hello", req.Prompt)
		assert.Equal(t, "be brief", req.System)
		assert.False(t, req.Stream)
		require.NotNil(t, req.Options)
		assert.Equal(t, 64, req.Options.NumPredict)

		json.NewEncoder(w).Encode(generateResponse{Response: " a reply ", Done: true})
	}))
	defer srv.Close()

	svc := NewLLMService(Config{BaseURL: srv.URL, Model: "test-model"})
	out, err := svc.Generate(context.Background(), "hello", driven.GenerateOptions{
		SystemPrompt: "be brief",
		MaxTokens:    64,
	})
	require.NoError(t, err)
	assert.Equal(t, "a reply", out)
}

func TestGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	svc := NewLLMService(Config{BaseURL: srv.URL})
	_, err := svc.Generate(context.Background(), "hello", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestGenerateStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		for _, tok := range []string{"one ", "two ", "three"} {
			fmt.Fprintf(w, `{"response":%q,"done":false}`+"\n", tok)
		}
		fmt.Fprintln(w, `{"response":"","done":true}`)
	}))
	defer srv.Close()

	svc := NewLLMService(Config{BaseURL: srv.URL})
	tokens, errCh := svc.GenerateStream(context.Background(), "count", driven.GenerateOptions{})

	var b strings.Builder
	for tok := range tokens {
		b.WriteString(tok)
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, "one two three", b.String())
}

func TestGenerateStreamModelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"error":"out of memory"}`)
	}))
	defer srv.Close()

	svc := NewLLMService(Config{BaseURL: srv.URL})
	tokens, errCh := svc.GenerateStream(context.Background(), "count", driven.GenerateOptions{})
	for range tokens {
	}
	err := <-errCh
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewLLMService(Config{BaseURL: srv.URL})
	assert.NoError(t, svc.Ping(context.Background()))

	srv.Close()
	assert.Error(t, svc.Ping(context.Background()))
}
