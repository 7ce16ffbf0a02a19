// Package response streams grounded answers from the language model.
package response

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/SantanaPablo/Manuales-IA/internal/pkg/logger"
	"github.com/SantanaPablo/Manuales-IA/pkg/llm"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/prompt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type State int32

const (
	StateIdle State = iota
	StateStreaming
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStreaming:
		return "STREAMING"
	case StateComplete:
		return "COMPLETE"
	case StateFailed:
		return "FAILED"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Fragment is one piece of the answer. A fragment with Err set is terminal
// and its Text is the user-facing "Error: ..." message.
type Fragment struct {
	Text string
	Err  error
}

// ErrorText renders err the way it is shown to the caller.
func ErrorText(err error) string {
	return "Error: " + err.Error()
}

type Generator struct {
	provider llm.LLMProvider
	builder  *prompt.Builder
	options  []llm.Option
	logger   logger.ILogger
}

func NewGenerator(provider llm.LLMProvider, builder *prompt.Builder, log logger.ILogger, options ...llm.Option) *Generator {
	if builder == nil {
		builder = prompt.NewBuilder("")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Generator{
		provider: provider,
		builder:  builder,
		options:  options,
		logger:   log,
	}
}

// Stream is a single-consumer sequence of fragments. It is not restartable.
type Stream struct {
	fragments chan Fragment
	cancel    context.CancelFunc
	state     atomic.Int32
	done      chan struct{}

	mu  sync.Mutex
	err error
}

// Generate starts a streamed generation. The caller must drain Fragments or call Close.
func (g *Generator) Generate(ctx context.Context, query, contextText string) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		fragments: make(chan Fragment),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go s.run(ctx, g, g.builder.Build(query, contextText))
	return s
}

func (s *Stream) run(ctx context.Context, g *Generator, promptText string) {
	defer close(s.done)
	defer close(s.fragments)
	defer s.cancel()

	ctx, span := otel.Tracer("rag/response").Start(ctx, "generate.stream")
	defer span.End()
	span.SetAttributes(attribute.Int("prompt.length", len(promptText)))

	s.state.Store(int32(StateStreaming))

	count := 0
	err := g.provider.Stream(ctx, promptText, func(text string) error {
		select {
		case s.fragments <- Fragment{Text: text}:
			count++
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}, g.options...)

	if err == nil {
		s.state.Store(int32(StateComplete))
		g.logger.Debug("GENERATION", "Stream complete", map[string]interface{}{"fragments": count})
		return
	}

	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.state.Store(int32(StateFailed))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if ctx.Err() != nil {
		g.logger.Info("GENERATION", "Stream abandoned by consumer", map[string]interface{}{"fragments": count})
		return
	}

	g.logger.Error("GENERATION", "Stream failed", map[string]interface{}{"error": err.Error(), "fragments": count})
	select {
	case s.fragments <- Fragment{Text: ErrorText(err), Err: err}:
	case <-ctx.Done():
	}
}

// Fragments yields fragments in emission order and is closed when the stream ends.
func (s *Stream) Fragments() <-chan Fragment {
	return s.fragments
}

func (s *Stream) State() State {
	return State(s.state.Load())
}

// Err is the failure cause once the stream is FAILED.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close abandons the stream and waits for the producer to stop.
func (s *Stream) Close() {
	s.cancel()
	<-s.done
}

// Answer is the non-streaming variant: the whole answer in one call.
func (g *Generator) Answer(ctx context.Context, query, contextText string) (string, error) {
	ctx, span := otel.Tracer("rag/response").Start(ctx, "generate.answer")
	defer span.End()

	out, err := g.provider.Generate(ctx, g.builder.Build(query, contextText), g.options...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return out, nil
}
