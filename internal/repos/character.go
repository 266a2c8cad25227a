package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/steve0joo/storymind/internal/pkg/logger"
	"github.com/steve0joo/storymind/internal/types"
)

type CharacterRepo interface {
	Create(ctx context.Context, tx *gorm.DB, characters []*types.CanonicalCharacter) ([]*types.CanonicalCharacter, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CanonicalCharacter, error)
	ListBySourceOrdered(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) ([]*types.CanonicalCharacter, error)
	Update(ctx context.Context, tx *gorm.DB, character *types.CanonicalCharacter) error
	FullDeleteBySourceID(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) error
}

type characterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCharacterRepo(db *gorm.DB, baseLog *logger.Logger) CharacterRepo {
	return &characterRepo{db: db, log: baseLog.With("repo", "CharacterRepo")}
}

func (r *characterRepo) Create(ctx context.Context, tx *gorm.DB, characters []*types.CanonicalCharacter) ([]*types.CanonicalCharacter, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(characters) == 0 {
		return []*types.CanonicalCharacter{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&characters).Error; err != nil {
		return nil, err
	}
	return characters, nil
}

func (r *characterRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CanonicalCharacter, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.CanonicalCharacter
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBySourceOrdered returns characters sorted by mention count, then name,
// matching the ranking the original service computed in application code.
func (r *characterRepo) ListBySourceOrdered(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) ([]*types.CanonicalCharacter, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.CanonicalCharacter
	if err := transaction.WithContext(ctx).
		Where("source_id = ?", sourceID).
		Order("mention_count DESC, canonical_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *characterRepo) Update(ctx context.Context, tx *gorm.DB, character *types.CanonicalCharacter) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(character).Error
}

func (r *characterRepo) FullDeleteBySourceID(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Unscoped().Where("source_id = ?", sourceID).Delete(&types.CanonicalCharacter{}).Error
}
