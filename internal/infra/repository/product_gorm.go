package repository

import (
	"context"
	"time"

	"agritrace/internal/domain/model"
	repo "agritrace/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 次のID。空なら0
func (r *ProductGormRepository) NextID(ctx context.Context) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Select("COALESCE(MAX(id), -1) + 1").
		Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) error {
	return translateWriteError(r.db.WithContext(ctx).Create(&p).Error)
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if isNotFound(err) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 検証コードで商品を取得
func (r *ProductGormRepository) FindByVerificationCode(ctx context.Context, code string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("verification_code = ?", code).First(&p).Error
	if isNotFound(err) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 生産者/カテゴリで絞り込み、ID昇順でページングして返す。
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	if q.Farmer != "" {
		tx = tx.Where("farmer = ?", q.Farmer)
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}

	// CountとFindで条件を共有する
	tx = tx.Session(&gorm.Session{})

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Order("id asc").Offset(offset).Limit(q.Limit).Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

// updated_atだけ更新
func (r *ProductGormRepository) Touch(ctx context.Context, id int64, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Update("updated_at", updatedAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
