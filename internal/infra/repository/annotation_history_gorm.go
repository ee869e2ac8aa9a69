package repository

import (
	"context"

	"agritrace/internal/domain/model"
	repo "agritrace/internal/repository"

	"gorm.io/gorm"
)

type annotationHistoryGormRepository struct {
	db *gorm.DB
}

func NewAnnotationHistoryGormRepository(db *gorm.DB) repo.AnnotationHistoryRepository {
	return &annotationHistoryGormRepository{db: db}
}

func (r *annotationHistoryGormRepository) Create(ctx context.Context, h model.AnnotationHistory) error {
	if err := r.db.WithContext(ctx).Create(&h).Error; err != nil {
		return err
	}
	return nil
}

func (r *annotationHistoryGormRepository) ListByProduct(ctx context.Context, productID int64, role model.AnnotationRole) ([]model.AnnotationHistory, error) {
	var out []model.AnnotationHistory
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND role = ?", productID, role).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
