// Package index stores segment embeddings and answers nearest-neighbour
// queries by cosine distance.
package index

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SantanaPablo/Manuales-IA/pkg/rag/segment"
)

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

const (
	MetaFilename      = "filename"
	MetaTitle         = "title"
	MetaTags          = "tags"
	MetaSequenceIndex = "sequence_index"
)

// Entry is what gets written for one segment.
type Entry struct {
	ID        string
	Embedding []float32
	Metadata  map[string]string
	Text      string
}

// Hit is a query result. Distance is cosine distance, smaller is closer.
type Hit struct {
	ID       string
	Text     string
	Metadata map[string]string
	Distance float64
}

// Index implementations must be safe for concurrent Upsert and Query calls.
type Index interface {
	// Upsert writes entries keyed by ID, replacing existing ones.
	Upsert(ctx context.Context, entries []Entry) error
	Exists(ctx context.Context, id string) (bool, error)
	// Query returns at most topK hits ordered by ascending distance.
	// An empty index yields no hits and no error.
	Query(ctx context.Context, vector []float32, topK int) ([]Hit, error)
	Count(ctx context.Context) (int, error)
}

// EntryID is the deterministic id of a document's n-th segment.
func EntryID(documentID string, sequenceIndex int) string {
	return documentID + "_" + strconv.Itoa(sequenceIndex)
}

// AlreadyIndexed looks up the first segment id of documentID.
func AlreadyIndexed(ctx context.Context, idx Index, documentID string) (bool, error) {
	return idx.Exists(ctx, EntryID(documentID, 0))
}

// NewEntry pairs a segment with its embedding.
func NewEntry(seg segment.Segment, embedding []float32) Entry {
	return Entry{
		ID:        EntryID(seg.SourceDocumentID, seg.SequenceIndex),
		Embedding: embedding,
		Text:      seg.Body,
		Metadata: map[string]string{
			MetaFilename:      seg.SourceDocumentID,
			MetaTitle:         seg.Title,
			MetaTags:          strings.Join(seg.Tags, ", "),
			MetaSequenceIndex: strconv.Itoa(seg.SequenceIndex),
		},
	}
}

func validateEntries(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	dim := len(entries[0].Embedding)
	for _, e := range entries {
		if e.ID == "" {
			return errors.New("entry without id")
		}
		if len(e.Embedding) == 0 || len(e.Embedding) != dim {
			return fmt.Errorf("%w: entry %s has %d values, want %d", ErrDimensionMismatch, e.ID, len(e.Embedding), dim)
		}
	}
	return nil
}
