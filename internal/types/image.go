package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImageOutcome records whether an image is model-generated or a deterministic placeholder.
type ImageOutcome string

const (
	ImageOutcomeReal        ImageOutcome = "real"
	ImageOutcomePlaceholder ImageOutcome = "placeholder"
)

// GeneratedImage is the deterministic seeded portrait for a CanonicalCharacter.
type GeneratedImage struct {
	ID          uuid.UUID           `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CharacterID uuid.UUID           `gorm:"type:uuid;not null;index" json:"character_id"`
	Character   *CanonicalCharacter `gorm:"constraint:OnDelete:CASCADE;foreignKey:CharacterID;references:ID" json:"character,omitempty"`
	Seed        int64               `gorm:"column:seed;not null" json:"seed"`
	Prompt      string              `gorm:"column:prompt;type:text" json:"prompt"`
	Style       string              `gorm:"column:style" json:"style"`
	AspectRatio string              `gorm:"column:aspect_ratio" json:"aspect_ratio"`
	DurationMS  int64               `gorm:"column:duration_ms" json:"duration_ms"`
	FilePath    string              `gorm:"column:file_path;not null" json:"file_path"`
	Outcome     ImageOutcome        `gorm:"column:outcome;not null" json:"outcome"`
	FailureNote string              `gorm:"column:failure_note" json:"failure_note,omitempty"`
	CreatedAt   time.Time           `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time           `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt      `gorm:"index" json:"deleted_at,omitempty"`
}

func (GeneratedImage) TableName() string { return "generated_image" }

// BeforeCreate assigns an ID when the caller hasn't set one, so inserts
// work identically whether the database provides uuid_generate_v4() or not.
func (g *GeneratedImage) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
