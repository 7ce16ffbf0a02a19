package tokenizer

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/SantanaPablo/Manuales-IA/pkg/rag/segment"

	hftokenizer "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// DefaultWordPieceModel is the Hugging Face repository of the embedding model served as all-minilm.
const DefaultWordPieceModel = "sentence-transformers/all-MiniLM-L6-v2"

// WordPieceTokenizer counts tokens exactly as the embedding model does.
// Special tokens are neither added on Encode nor emitted on Decode.
type WordPieceTokenizer struct {
	mu sync.Mutex
	tk *hftokenizer.Tokenizer
}

var _ segment.Tokenizer = (*WordPieceTokenizer)(nil)

// NewWordPiece loads a tokenizer.json file. When path is empty the file of
// model is fetched once into the local Hugging Face cache.
func NewWordPiece(path, model string) (*WordPieceTokenizer, error) {
	if path == "" {
		if model == "" {
			model = DefaultWordPieceModel
		}
		resolved, err := hftokenizer.CachedPath(model, "tokenizer.json")
		if err != nil {
			return nil, fmt.Errorf("fetch tokenizer for %s: %w", model, err)
		}
		path = resolved
	}

	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	return &WordPieceTokenizer{tk: tk}, nil
}

func (w *WordPieceTokenizer) Encode(text string) ([]int, error) {
	if !utf8.ValidString(text) {
		return nil, segment.ErrMalformedText
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	enc, err := w.tk.EncodeSingle(text, false)
	if err != nil {
		return nil, fmt.Errorf("wordpiece encode: %w", err)
	}
	return enc.Ids, nil
}

func (w *WordPieceTokenizer) Decode(ids []int) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tk.Decode(ids, true), nil
}
