package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SourceStatus tracks a Source Document through ingestion.
type SourceStatus string

const (
	SourceStatusPending    SourceStatus = "pending"
	SourceStatusProcessing SourceStatus = "processing"
	SourceStatusCompleted  SourceStatus = "completed"
	SourceStatusFailed     SourceStatus = "failed"
)

// SourceDocument is the ingested novel/manuscript a profile run is scoped to.
type SourceDocument struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title          string         `gorm:"column:title;not null;index" json:"title"`
	OriginalName   string         `gorm:"column:original_name;not null" json:"original_name"`
	Format         string         `gorm:"column:format;not null" json:"format"` // txt|pdf|epub
	SizeBytes      int64          `gorm:"column:size_bytes" json:"size_bytes"`
	ChunkCount     int            `gorm:"column:chunk_count" json:"chunk_count"`
	EmbeddingModel string         `gorm:"column:embedding_model" json:"embedding_model"`
	IndexPath      string         `gorm:"column:index_path" json:"index_path"`
	Status         SourceStatus   `gorm:"column:status;not null;default:'pending'" json:"status"`
	CharacterCount int            `gorm:"column:character_count" json:"character_count"`
	FailureReason  string         `gorm:"column:failure_reason" json:"failure_reason,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (SourceDocument) TableName() string { return "source_document" }

// BeforeCreate assigns an ID when the caller hasn't set one, so inserts
// work identically whether the database provides uuid_generate_v4() or not.
func (s *SourceDocument) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
