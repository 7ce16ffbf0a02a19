package llm

import (
	"context"
	"errors"
)

// ErrMalformedResponse marks a response line that could not be decoded.
var ErrMalformedResponse = errors.New("malformed response from generation service")

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature   float64
	MaxTokens     int
	RepeatPenalty float64
	NumThread     int
	Model         string // Override default model
}

// DefaultOptions are the deterministic decoding parameters used for manual answers.
func DefaultOptions() Options {
	return Options{
		Temperature:   0.0,
		MaxTokens:     256,
		RepeatPenalty: 1.2,
		NumThread:     8,
	}
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithRepeatPenalty(p float64) Option {
	return func(o *Options) {
		o.RepeatPenalty = p
	}
}

func WithNumThread(n int) Option {
	return func(o *Options) {
		o.NumThread = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Generate sends a single prompt and waits for the whole answer.
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)

	// Stream sends a single prompt and calls onFragment for every piece of
	// text in arrival order. A non-nil error from onFragment stops the stream.
	Stream(ctx context.Context, prompt string, onFragment func(string) error, options ...Option) error
}
