package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/steve0joo/storymind/internal/pkg/logger"
	"github.com/steve0joo/storymind/internal/types"
)

type SourceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, source *types.SourceDocument) (*types.SourceDocument, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.SourceDocument, error)
	GetByTitle(ctx context.Context, tx *gorm.DB, title string) (*types.SourceDocument, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.SourceDocument, error)
	Update(ctx context.Context, tx *gorm.DB, source *types.SourceDocument) error
	FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type sourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSourceRepo(db *gorm.DB, baseLog *logger.Logger) SourceRepo {
	return &sourceRepo{db: db, log: baseLog.With("repo", "SourceRepo")}
}

func (r *sourceRepo) Create(ctx context.Context, tx *gorm.DB, source *types.SourceDocument) (*types.SourceDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(source).Error; err != nil {
		return nil, err
	}
	return source, nil
}

func (r *sourceRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.SourceDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.SourceDocument
	if err := transaction.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *sourceRepo) GetByTitle(ctx context.Context, tx *gorm.DB, title string) (*types.SourceDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.SourceDocument
	err := transaction.WithContext(ctx).Where("LOWER(title) = LOWER(?)", title).First(&out).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *sourceRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.SourceDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.SourceDocument
	if err := transaction.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sourceRepo) Update(ctx context.Context, tx *gorm.DB, source *types.SourceDocument) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(source).Error
}

func (r *sourceRepo) FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&types.SourceDocument{}).Error
}
