// Package segment turns manual text into ordered, token-bounded chunks with
// sentence-level overlap between neighbours.
package segment

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/SantanaPablo/Manuales-IA/pkg/rag/metadata"
)

var (
	ErrMalformedText = errors.New("malformed text")
	ErrInvalidWindow = errors.New("max tokens must be positive")
)

// BlockSeparator divides a document into independently annotated blocks.
const BlockSeparator = "\n\n"

// Tokenizer must be the tokenizer of the embedding model, or a close approximation.
type Tokenizer interface {
	Encode(text string) ([]int, error)
	Decode(ids []int) (string, error)
}

// Segment is one indexed unit of a document.
type Segment struct {
	Title            string
	Body             string
	Tags             []string
	TokenCount       int
	SourceDocumentID string
	SequenceIndex    int
}

type Segmenter struct {
	tokenizer Tokenizer
	splitter  SentenceSplitter
}

func NewSegmenter(tokenizer Tokenizer, splitter SentenceSplitter) *Segmenter {
	return &Segmenter{
		tokenizer: tokenizer,
		splitter:  splitter,
	}
}

// Split returns the chunks of text in document order.
//
// Sentences are accumulated while the joined buffer stays within maxTokens. On
// overflow the buffer is emitted and the next one is seeded with the trailing
// sentences that fit in stride tokens. A sentence longer than maxTokens is cut
// into token windows of maxTokens advancing by stride. Every bound is checked
// by encoding the exact text that is returned, since subword tokenizers do not
// add up across joins.
func (s *Segmenter) Split(text string, maxTokens, stride int) ([]string, error) {
	if maxTokens <= 0 {
		return nil, ErrInvalidWindow
	}
	if stride <= 0 || stride > maxTokens {
		stride = maxTokens
	}
	if !utf8.ValidString(text) {
		return nil, ErrMalformedText
	}

	var (
		chunks  []string
		current []string
	)

	for _, raw := range s.splitter.Split(text) {
		ids, err := s.tokenizer.Encode(raw)
		if err != nil {
			return nil, fmt.Errorf("encode sentence: %w", err)
		}

		if len(ids) > maxTokens {
			windows, err := s.windows(ids, maxTokens, stride)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, windows...)
			continue
		}

		candidate := append(current[:len(current):len(current)], raw)
		n, err := s.count(join(candidate))
		if err != nil {
			return nil, err
		}
		if n <= maxTokens {
			current = candidate
			continue
		}

		chunks = append(chunks, join(current))

		overlap, err := s.overlapTail(current, raw, maxTokens, stride)
		if err != nil {
			return nil, err
		}
		current = append(overlap, raw)
	}

	if len(current) > 0 {
		chunks = append(chunks, join(current))
	}
	return chunks, nil
}

func (s *Segmenter) count(text string) (int, error) {
	ids, err := s.tokenizer.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}
	return len(ids), nil
}

// overlapTail walks backward over emitted sentences and keeps the longest
// suffix that fits in stride tokens and still fits in maxTokens next to next.
func (s *Segmenter) overlapTail(emitted []string, next string, maxTokens, stride int) ([]string, error) {
	start := len(emitted)
	for i := len(emitted) - 1; i >= 0; i-- {
		tail := emitted[i:]
		n, err := s.count(join(tail))
		if err != nil {
			return nil, err
		}
		if n > stride {
			break
		}
		n, err = s.count(join(append(tail[:len(tail):len(tail)], next)))
		if err != nil {
			return nil, err
		}
		if n > maxTokens {
			break
		}
		start = i
	}
	overlap := make([]string, len(emitted)-start, len(emitted)-start+1)
	copy(overlap, emitted[start:])
	return overlap, nil
}

// windows slices an oversized sentence. A decoded window can encode to more
// tokens than it was cut from, so each window shrinks until its text fits.
func (s *Segmenter) windows(ids []int, maxTokens, stride int) ([]string, error) {
	var out []string
	for i := 0; i < len(ids); {
		end := min(i+maxTokens, len(ids))
		var text string
		for ; end > i; end-- {
			decoded, err := s.tokenizer.Decode(ids[i:end])
			if err != nil {
				return nil, fmt.Errorf("decode window: %w", err)
			}
			n, err := s.count(decoded)
			if err != nil {
				return nil, err
			}
			if n <= maxTokens {
				text = decoded
				break
			}
		}
		if end == i {
			// a single token that cannot be represented within maxTokens is dropped
			i++
			continue
		}
		// tokens dropped on decode (unknown pieces) can leave an empty window
		if strings.TrimSpace(text) != "" {
			out = append(out, text)
		}
		i += min(stride, end-i)
	}
	return out, nil
}

func join(sentences []string) string {
	return strings.Join(sentences, " ")
}

// SegmentDocument splits a document into blocks, extracts block metadata and
// segments each block body. SequenceIndex runs across the whole document.
func (s *Segmenter) SegmentDocument(documentID, text string, maxTokens, stride int) ([]Segment, error) {
	var segments []Segment
	for _, block := range strings.Split(text, BlockSeparator) {
		title, body, tags := metadata.Extract(block)

		chunks, err := s.Split(body, maxTokens, stride)
		if err != nil {
			return nil, fmt.Errorf("segment %s: %w", documentID, err)
		}

		for _, chunk := range chunks {
			ids, err := s.tokenizer.Encode(chunk)
			if err != nil {
				return nil, fmt.Errorf("count tokens %s: %w", documentID, err)
			}
			segments = append(segments, Segment{
				Title:            title,
				Body:             chunk,
				Tags:             tags,
				TokenCount:       len(ids),
				SourceDocumentID: documentID,
				SequenceIndex:    len(segments),
			})
		}
	}
	return segments, nil
}
