package tokenizer

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/SantanaPablo/Manuales-IA/pkg/rag/segment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixture = filepath.Join("testdata", "tokenizer.json")

func newFixtureWordPiece(t *testing.T) *WordPieceTokenizer {
	t.Helper()
	tok, err := NewWordPiece(fixture, "")
	require.NoError(t, err)
	return tok
}

func TestWordPieceEncodesWithoutSpecialTokens(t *testing.T) {
	tok := newFixtureWordPiece(t)

	ids, err := tok.Encode("Presione el boton.")
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6, 7, 11}, ids)

	ids, err = tok.Encode("botones")
	require.NoError(t, err)
	assert.Equal(t, []int{7, 8}, ids)

	ids, err = tok.Encode("zzz")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids)
}

func TestWordPieceDecodeSkipsSpecialTokens(t *testing.T) {
	tok := newFixtureWordPiece(t)

	text, err := tok.Decode([]int{2, 5, 6, 7, 3})
	require.NoError(t, err)
	assert.Equal(t, "presione el boton", text)
}

func TestWordPieceRejectsInvalidUTF8(t *testing.T) {
	tok := newFixtureWordPiece(t)

	_, err := tok.Encode("abc\xffdef")
	assert.ErrorIs(t, err, segment.ErrMalformedText)
}

func TestWordPieceMissingFile(t *testing.T) {
	_, err := NewWordPiece(filepath.Join(t.TempDir(), "nope.json"), "")
	assert.Error(t, err)
}

func TestSegmentDocumentWithWordPieceStaysWithinMaxTokens(t *testing.T) {
	tok := newFixtureWordPiece(t)
	s := segment.NewSegmenter(tok, segment.NewRegexSplitter())

	doc := "Presione el boton de reinicio 10 s. Version 2.4.1-rc3 x86_64. " +
		"Encienda el equipo. IP 192.168.0.1/24 puerto 8080. Presione el boton.\n\n" +
		strings.Repeat("1.2.3-4_5/6=7, ", 12)

	for _, w := range []struct{ max, stride int }{{6, 3}, {8, 4}, {12, 6}} {
		segments, err := s.SegmentDocument("manual.txt", doc, w.max, w.stride)
		require.NoError(t, err)
		require.NotEmpty(t, segments)
		for _, seg := range segments {
			assert.LessOrEqual(t, seg.TokenCount, w.max, seg.Body)
			assert.NotEmpty(t, strings.TrimSpace(seg.Body))
		}
	}
}

func TestLoadSelectsTokenizerByKind(t *testing.T) {
	wp, err := Load(Options{File: fixture})
	require.NoError(t, err)
	assert.IsType(t, &WordPieceTokenizer{}, wp)

	bpe, err := Load(Options{Kind: KindTiktoken})
	require.NoError(t, err)
	assert.IsType(t, &BPETokenizer{}, bpe)

	_, err = Load(Options{Kind: "sentencepiece"})
	assert.Error(t, err)
}
