package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// SegmentEmbedding is one indexed chunk when the index lives in Postgres.
type SegmentEmbedding struct {
	Id             string          `gorm:"type:text;primaryKey"`
	Filename       string          `gorm:"type:text;index"`
	SequenceIndex  int             `gorm:"default:0"`
	Document       string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector"`
	Metadata       datatypes.JSONMap
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (SegmentEmbedding) TableName() string {
	return "segment_embeddings"
}
