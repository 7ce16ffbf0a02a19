// Package tokenizer provides the token counters used to bound segments.
package tokenizer

import (
	"fmt"

	"github.com/SantanaPablo/Manuales-IA/pkg/rag/segment"
)

const (
	KindWordPiece = "wordpiece"
	KindTiktoken  = "tiktoken"
)

type Options struct {
	Kind     string // wordpiece (default) or tiktoken
	File     string // tokenizer.json for wordpiece
	Model    string // Hugging Face repository used when File is empty
	Encoding string // tiktoken encoding name
}

// Load builds the configured tokenizer. WordPiece matches the all-minilm
// embedding model; tiktoken is an offline approximation.
func Load(opts Options) (segment.Tokenizer, error) {
	switch opts.Kind {
	case "", KindWordPiece:
		return NewWordPiece(opts.File, opts.Model)
	case KindTiktoken:
		return New(opts.Encoding)
	default:
		return nil, fmt.Errorf("unknown tokenizer %q", opts.Kind)
	}
}
