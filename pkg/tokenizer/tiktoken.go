package tokenizer

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/SantanaPablo/Manuales-IA/pkg/rag/segment"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

const DefaultEncoding = "cl100k_base"

var loaderOnce sync.Once

type BPETokenizer struct {
	encoding *tiktoken.Tiktoken
}

var _ segment.Tokenizer = (*BPETokenizer)(nil)

// New loads the named encoding without network access.
func New(encoding string) (*BPETokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &BPETokenizer{encoding: enc}, nil
}

func (t *BPETokenizer) Encode(text string) ([]int, error) {
	if !utf8.ValidString(text) {
		return nil, segment.ErrMalformedText
	}
	return t.encoding.Encode(text, nil, nil), nil
}

// Decode may cut a multi-byte character at a window edge; such bytes become U+FFFD.
func (t *BPETokenizer) Decode(ids []int) (string, error) {
	return strings.ToValidUTF8(t.encoding.Decode(ids), "�"), nil
}
