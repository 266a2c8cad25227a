package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/steve0joo/storymind/internal/pkg/logger"
	"github.com/steve0joo/storymind/internal/types"
)

type ImageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, image *types.GeneratedImage) (*types.GeneratedImage, error)
	GetLatestByCharacterID(ctx context.Context, tx *gorm.DB, characterID uuid.UUID) (*types.GeneratedImage, error)
	ListByCharacterIDs(ctx context.Context, tx *gorm.DB, characterIDs []uuid.UUID) ([]*types.GeneratedImage, error)
	FullDeleteByCharacterIDs(ctx context.Context, tx *gorm.DB, characterIDs []uuid.UUID) error
}

type imageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewImageRepo(db *gorm.DB, baseLog *logger.Logger) ImageRepo {
	return &imageRepo{db: db, log: baseLog.With("repo", "ImageRepo")}
}

func (r *imageRepo) Create(ctx context.Context, tx *gorm.DB, image *types.GeneratedImage) (*types.GeneratedImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(image).Error; err != nil {
		return nil, err
	}
	return image, nil
}

func (r *imageRepo) GetLatestByCharacterID(ctx context.Context, tx *gorm.DB, characterID uuid.UUID) (*types.GeneratedImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.GeneratedImage
	err := transaction.WithContext(ctx).
		Where("character_id = ?", characterID).
		Order("created_at DESC").
		First(&out).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *imageRepo) ListByCharacterIDs(ctx context.Context, tx *gorm.DB, characterIDs []uuid.UUID) ([]*types.GeneratedImage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.GeneratedImage
	if len(characterIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(ctx).Where("character_id IN ?", characterIDs).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *imageRepo) FullDeleteByCharacterIDs(ctx context.Context, tx *gorm.DB, characterIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(characterIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Unscoped().Where("character_id IN ?", characterIDs).Delete(&types.GeneratedImage{}).Error
}
