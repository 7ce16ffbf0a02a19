package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SantanaPablo/Manuales-IA/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stubFragments = []string{"Reinicie ", "el ", "router ", "desde el panel."}

// stubServer answers like /api/generate in both modes with the same text.
func stubServer(t *testing.T, seen *generateRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var req generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if seen != nil {
			*seen = req
		}

		if !req.Stream {
			_ = json.NewEncoder(w).Encode(generateResponse{Response: strings.Join(stubFragments, ""), Done: true})
			return
		}
		for _, f := range stubFragments {
			_ = json.NewEncoder(w).Encode(generateResponse{Response: f})
		}
		_ = json.NewEncoder(w).Encode(generateResponse{Done: true})
	}))
}

func TestStreamConcatenationMatchesGenerate(t *testing.T) {
	srv := stubServer(t, nil)
	defer srv.Close()
	p := NewOllamaProvider(srv.URL, "mistral", llm.DefaultOptions())

	full, err := p.Generate(context.Background(), "pregunta")
	require.NoError(t, err)

	var got []string
	err = p.Stream(context.Background(), "pregunta", func(s string) error {
		got = append(got, s)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, stubFragments, got)
	assert.Equal(t, full, strings.Join(got, ""))
}

func TestRequestCarriesDecodingOptions(t *testing.T) {
	var seen generateRequest
	srv := stubServer(t, &seen)
	defer srv.Close()
	p := NewOllamaProvider(srv.URL, "mistral", llm.DefaultOptions())

	_, err := p.Generate(context.Background(), "hola")
	require.NoError(t, err)

	assert.Equal(t, "mistral", seen.Model)
	assert.Equal(t, "hola", seen.Prompt)
	assert.False(t, seen.Stream)
	assert.Equal(t, generateOptions{Temperature: 0, NumPredict: 256, RepeatPenalty: 1.2, NumThread: 8}, seen.Options)

	_, err = p.Generate(context.Background(), "hola", llm.WithTemperature(0.1), llm.WithModel("llama3"))
	require.NoError(t, err)
	assert.Equal(t, "llama3", seen.Model)
	assert.Equal(t, 0.1, seen.Options.Temperature)
}

func TestStreamMalformedLine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"Hola"}`)
		fmt.Fprintln(w, `{"response":`)
	}))
	defer srv.Close()

	var got []string
	err := NewOllamaProvider(srv.URL, "mistral", llm.DefaultOptions()).Stream(context.Background(), "x", func(s string) error {
		got = append(got, s)
		return nil
	})

	assert.ErrorIs(t, err, llm.ErrMalformedResponse)
	assert.Equal(t, []string{"Hola"}, got)
}

func TestStreamServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"error":"model 'mistral' not found"}`)
	}))
	defer srv.Close()

	err := NewOllamaProvider(srv.URL, "mistral", llm.DefaultOptions()).Stream(context.Background(), "x", func(string) error { return nil })

	assert.ErrorContains(t, err, "not found")
}

func TestGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "mistral", llm.DefaultOptions()).Generate(context.Background(), "x")

	assert.ErrorContains(t, err, "status 500")
}

func TestStreamStopsWhenConsumerFails(t *testing.T) {
	srv := stubServer(t, nil)
	defer srv.Close()

	calls := 0
	err := NewOllamaProvider(srv.URL, "mistral", llm.DefaultOptions()).Stream(context.Background(), "x", func(string) error {
		calls++
		return context.Canceled
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
