package response

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/SantanaPablo/Manuales-IA/pkg/llm"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu        sync.Mutex
	fragments []string
	failAfter int // -1 never
	err       error
	prompts   []string
	block     chan struct{}
}

func (f *fakeProvider) Generate(ctx context.Context, p string, _ ...llm.Option) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, p)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return strings.Join(f.fragments, ""), nil
}

func (f *fakeProvider) Stream(ctx context.Context, p string, on func(string) error, _ ...llm.Option) error {
	f.mu.Lock()
	f.prompts = append(f.prompts, p)
	f.mu.Unlock()
	for i, frag := range f.fragments {
		if i == f.failAfter {
			return f.err
		}
		if err := on(frag); err != nil {
			return err
		}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func collect(s *Stream) []Fragment {
	var out []Fragment
	for f := range s.Fragments() {
		out = append(out, f)
	}
	return out
}

func TestGenerateStreamsInOrder(t *testing.T) {
	p := &fakeProvider{fragments: []string{"Pulse ", "reset."}, failAfter: -1}
	g := NewGenerator(p, prompt.NewBuilder("{context}|{query}"), nil)

	s := g.Generate(context.Background(), "¿cómo?", "ctx")
	frags := collect(s)

	assert.Equal(t, []Fragment{{Text: "Pulse "}, {Text: "reset."}}, frags)
	assert.Equal(t, StateComplete, s.State())
	assert.NoError(t, s.Err())
	assert.Equal(t, []string{"ctx|¿cómo?"}, p.prompts)
}

func TestGenerateTerminalErrorFragment(t *testing.T) {
	cause := errors.New("connection reset")
	p := &fakeProvider{fragments: []string{"Parcial", "nunca"}, failAfter: 1, err: cause}
	g := NewGenerator(p, nil, nil)

	s := g.Generate(context.Background(), "q", "c")
	frags := collect(s)

	require.Len(t, frags, 2)
	assert.Equal(t, "Parcial", frags[0].Text)
	assert.Equal(t, "Error: connection reset", frags[1].Text)
	assert.ErrorIs(t, frags[1].Err, cause)
	assert.Equal(t, StateFailed, s.State())
	assert.ErrorIs(t, s.Err(), cause)
}

func TestCloseStopsProducer(t *testing.T) {
	p := &fakeProvider{fragments: []string{"uno", "dos", "tres"}, failAfter: -1, block: make(chan struct{})}
	g := NewGenerator(p, nil, nil)

	s := g.Generate(context.Background(), "q", "c")
	first := <-s.Fragments()
	assert.Equal(t, "uno", first.Text)

	s.Close()

	assert.Equal(t, StateFailed, s.State())
	assert.ErrorIs(t, s.Err(), context.Canceled)
	for range s.Fragments() {
		t.Fatal("no fragment expected after close")
	}
}

func TestAnswerMatchesStream(t *testing.T) {
	p := &fakeProvider{fragments: []string{"No se encontró ", "información en los manuales."}, failAfter: -1}
	g := NewGenerator(p, nil, nil)

	full, err := g.Answer(context.Background(), "q", "c")
	require.NoError(t, err)

	var sb strings.Builder
	for f := range g.Generate(context.Background(), "q", "c").Fragments() {
		sb.WriteString(f.Text)
	}
	assert.Equal(t, full, sb.String())
	assert.Equal(t, prompt.NotFoundAnswer, full)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "STREAMING", StateStreaming.String())
	assert.Equal(t, "State(9)", State(9).String())
}
