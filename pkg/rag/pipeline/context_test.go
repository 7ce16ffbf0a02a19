package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/SantanaPablo/Manuales-IA/internal/config"
	"github.com/SantanaPablo/Manuales-IA/pkg/llm"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/ingest"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/retrieval"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/segment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type letterEmbedder struct {
	calls atomic.Int32
}

// Embed counts a handful of letters; good enough to tell manuals apart.
func (e *letterEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	vec := make([]float32, 6)
	vec[5] = 0.01
	for _, r := range strings.ToLower(text) {
		if i := strings.IndexRune("aeiou", r); i >= 0 {
			vec[i]++
		}
	}
	return vec, nil
}

type echoLLM struct {
	lastPrompt string
	opts       llm.Options
}

func (e *echoLLM) Generate(_ context.Context, prompt string, opts ...llm.Option) (string, error) {
	e.lastPrompt = prompt
	e.opts = llm.DefaultOptions()
	for _, o := range opts {
		o(&e.opts)
	}
	return "respuesta", nil
}

func (e *echoLLM) Stream(ctx context.Context, prompt string, onFragment func(string) error, opts ...llm.Option) error {
	out, err := e.Generate(ctx, prompt, opts...)
	if err != nil {
		return err
	}
	return onFragment(out)
}

type spaceTokenizer struct{}

func (spaceTokenizer) Encode(text string) ([]int, error) {
	return make([]int, len(strings.Fields(text))), nil
}

func (spaceTokenizer) Decode(ids []int) (string, error) {
	return strings.Repeat("x ", len(ids)), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Ai: config.AIConfig{
			LLMModel:      "mistral",
			Temperature:   0,
			NumPredict:    256,
			RepeatPenalty: 1.2,
			NumThread:     8,
		},
		Index: config.IndexConfig{Backend: "chromem", CollectionName: "manuales"},
		Pipeline: config.PipelineConfig{
			MaxTokens:          50,
			Stride:             10,
			TopK:               3,
			MaxContextLength:   2000,
			EmbeddingCacheSize: 10,
			IngestWorkers:      2,
			EmbedConcurrency:   2,
		},
	}
}

func newTestPipeline(t *testing.T, emb *letterEmbedder, model *echoLLM) *PipelineContext {
	t.Helper()
	p, err := New(testConfig(), nil,
		WithEmbeddingProvider(emb),
		WithLLMProvider(model),
		WithTokenizer(spaceTokenizer{}),
		WithSentenceSplitter(segment.NewRegexSplitter()),
	)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestPipelineIngestThenRetrieve(t *testing.T) {
	emb := &letterEmbedder{}
	model := &echoLLM{}
	p := newTestPipeline(t, emb, model)
	ctx := context.Background()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "impresora.txt"),
		[]byte("IMPRESORA\n\nCargue papel en la bandeja."), 0o644))

	results, err := p.Ingestor.IngestFolder(ctx, dir)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ingest.StatusIndexed, results[0].Status)

	res, err := p.Coordinator.Retrieve(ctx, "papel bandeja", 3)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Contains(t, res.Context, "Cargue papel en la bandeja.")

	answer, err := p.Generator.Answer(ctx, "¿Dónde va el papel?", res.Context)
	require.NoError(t, err)
	assert.Equal(t, "respuesta", answer)
	assert.Contains(t, model.lastPrompt, "¿Dónde va el papel?")
	assert.Equal(t, "mistral", model.opts.Model)
	assert.Equal(t, 256, model.opts.MaxTokens)
}

func TestPipelineQueriesGoThroughCache(t *testing.T) {
	emb := &letterEmbedder{}
	p := newTestPipeline(t, emb, &echoLLM{})
	ctx := context.Background()

	require.NoError(t, p.WarmUp(ctx))
	require.NoError(t, p.WarmUp(ctx))
	assert.Equal(t, int32(1), emb.calls.Load())

	_, err := p.Coordinator.Retrieve(ctx, "hola", 3)
	require.NoError(t, err)
	_, err = p.Coordinator.Retrieve(ctx, "hola", 3)
	require.NoError(t, err)
	assert.Equal(t, int32(2), emb.calls.Load())
}

func TestPipelineEmptyIndexYieldsSentinel(t *testing.T) {
	p := newTestPipeline(t, &letterEmbedder{}, &echoLLM{})

	res, err := p.Coordinator.Retrieve(context.Background(), "algo", 3)

	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, retrieval.NoRelevantInformation, res.Context)
	assert.NoError(t, p.Reload())
}

func TestPipelineRejectsBadPromptTemplate(t *testing.T) {
	cfg := testConfig()
	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("sin marcadores"), 0o644))
	cfg.Ai.PromptTemplateFile = path

	_, err := New(cfg, nil,
		WithEmbeddingProvider(&letterEmbedder{}),
		WithLLMProvider(&echoLLM{}),
		WithTokenizer(spaceTokenizer{}),
		WithSentenceSplitter(segment.NewRegexSplitter()),
	)

	assert.Error(t, err)
}
