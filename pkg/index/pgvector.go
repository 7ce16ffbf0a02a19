package index

import (
	"context"
	"fmt"
	"strconv"

	"github.com/SantanaPablo/Manuales-IA/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PgvectorIndex stores entries in the segment_embeddings table.
type PgvectorIndex struct {
	db *gorm.DB
}

var _ Index = (*PgvectorIndex)(nil)

// NewPgvectorIndex enables the vector extension and migrates the table.
func NewPgvectorIndex(db *gorm.DB) (*PgvectorIndex, error) {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("enable pgvector: %w", err)
	}
	if err := db.AutoMigrate(&model.SegmentEmbedding{}); err != nil {
		return nil, fmt.Errorf("migrate segment_embeddings: %w", err)
	}
	return &PgvectorIndex{db: db}, nil
}

func (p *PgvectorIndex) Upsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := validateEntries(entries); err != nil {
		return err
	}

	rows := make([]*model.SegmentEmbedding, len(entries))
	for i, e := range entries {
		meta := make(datatypes.JSONMap, len(e.Metadata))
		for k, v := range e.Metadata {
			meta[k] = v
		}
		seq, _ := strconv.Atoi(e.Metadata[MetaSequenceIndex])
		rows[i] = &model.SegmentEmbedding{
			Id:             e.ID,
			Filename:       e.Metadata[MetaFilename],
			SequenceIndex:  seq,
			Document:       e.Text,
			EmbeddingValue: pgvector.NewVector(e.Embedding),
			Metadata:       meta,
		}
	}

	err := p.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(rows).Error
	if err != nil {
		return fmt.Errorf("upsert %d entries: %w", len(entries), err)
	}
	return nil
}

func (p *PgvectorIndex) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&model.SegmentEmbedding{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (p *PgvectorIndex) Query(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	if topK <= 0 {
		return nil, nil
	}

	type result struct {
		model.SegmentEmbedding
		Distance float64
	}
	var results []result

	err := p.db.WithContext(ctx).
		Table("segment_embeddings").
		Select("segment_embeddings.*, embedding_value <=> ? AS distance", pgvector.NewVector(vector)).
		Order("distance ASC").
		Limit(topK).
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("query segment_embeddings: %w", err)
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		meta := make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			meta[k] = fmt.Sprint(v)
		}
		hits[i] = Hit{
			ID:       r.Id,
			Text:     r.Document,
			Metadata: meta,
			Distance: r.Distance,
		}
	}
	return hits, nil
}

func (p *PgvectorIndex) Count(ctx context.Context) (int, error) {
	var count int64
	if err := p.db.WithContext(ctx).Model(&model.SegmentEmbedding{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
