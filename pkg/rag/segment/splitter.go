package segment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// SentenceSplitter breaks text into sentences, in order, without empty items.
type SentenceSplitter interface {
	Split(text string) []string
}

// PunktSplitter uses the unsupervised Punkt boundary detector.
type PunktSplitter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

func NewPunktSplitter() (*PunktSplitter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load punkt model: %w", err)
	}
	return &PunktSplitter{tokenizer: tokenizer}, nil
}

func (p *PunktSplitter) Split(text string) []string {
	var out []string
	for _, s := range p.tokenizer.Tokenize(text) {
		if trimmed := strings.TrimSpace(s.Text); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// RegexSplitter cuts after '.', '!' or '?'. A trailing fragment without
// terminal punctuation is kept as its own sentence.
type RegexSplitter struct {
	pattern *regexp.Regexp
}

func NewRegexSplitter() *RegexSplitter {
	return &RegexSplitter{pattern: regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)}
}

func (r *RegexSplitter) Split(text string) []string {
	var out []string
	last := 0
	for _, loc := range r.pattern.FindAllStringIndex(text, -1) {
		if trimmed := strings.TrimSpace(text[loc[0]:loc[1]]); trimmed != "" {
			out = append(out, trimmed)
		}
		last = loc[1]
	}
	if tail := strings.TrimSpace(text[last:]); tail != "" {
		out = append(out, tail)
	}
	return out
}
