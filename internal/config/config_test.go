package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "8000")
	cfg := Load()

	assert.Equal(t, "8000", cfg.App.Port)
	assert.Equal(t, 256, cfg.Pipeline.MaxTokens)
	assert.Equal(t, 128, cfg.Pipeline.Stride)
	assert.Equal(t, 3, cfg.Pipeline.TopK)
	assert.Equal(t, 2000, cfg.Pipeline.MaxContextLength)
	assert.Equal(t, 1000, cfg.Pipeline.EmbeddingCacheSize)
	assert.Equal(t, "wordpiece", cfg.Pipeline.Tokenizer)
	assert.Equal(t, "sentence-transformers/all-MiniLM-L6-v2", cfg.Pipeline.TokenizerModel)
	assert.Equal(t, "mistral", cfg.Ai.LLMModel)
	assert.Equal(t, 1.2, cfg.Ai.RepeatPenalty)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TOP_K", "5")
	t.Setenv("LLM_TEMPERATURE", "0.1")
	t.Setenv("STRIDE", "not-a-number")
	cfg := Load()

	assert.Equal(t, 5, cfg.Pipeline.TopK)
	assert.Equal(t, 0.1, cfg.Ai.Temperature)
	assert.Equal(t, 128, cfg.Pipeline.Stride)
}
