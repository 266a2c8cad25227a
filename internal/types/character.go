package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CanonicalCharacter is one deduplicated character recognized within a Source Document.
type CanonicalCharacter struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SourceID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_source_canonical_name" json:"source_id"`
	Source          *SourceDocument `gorm:"constraint:OnDelete:CASCADE;foreignKey:SourceID;references:ID" json:"source,omitempty"`
	CanonicalName   string         `gorm:"column:canonical_name;not null;uniqueIndex:idx_source_canonical_name" json:"canonical_name"`
	Aliases         datatypes.JSON `gorm:"column:aliases;type:jsonb" json:"aliases"`
	MentionCount    int            `gorm:"column:mention_count;not null;default:0" json:"mention_count"`
	Description     string         `gorm:"column:description;type:text" json:"description"`
	RelationshipsJSON datatypes.JSON `gorm:"column:relationships;type:jsonb" json:"relationships"`
	Seed            int64          `gorm:"column:seed;not null" json:"seed"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CanonicalCharacter) TableName() string { return "canonical_character" }

// BeforeCreate assigns an ID when the caller hasn't set one, so inserts
// work identically whether the database provides uuid_generate_v4() or not.
func (c *CanonicalCharacter) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Relationship is one entry of a character's flat, non-authoritative relationship list.
type Relationship struct {
	With string `json:"with"`
	Kind string `json:"kind"`
}
