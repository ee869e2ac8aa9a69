package repository

import (
	"context"

	"agritrace/internal/domain/model"
	repo "agritrace/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// product_idが同じなら全列を置き換える
var upsertByProductID = clause.OnConflict{
	Columns:   []clause.Column{{Name: "product_id"}},
	UpdateAll: true,
}

type RetailerInfoGormRepository struct {
	db *gorm.DB
}

func NewRetailerInfoGormRepository(db *gorm.DB) *RetailerInfoGormRepository {
	return &RetailerInfoGormRepository{db: db}
}

func (r *RetailerInfoGormRepository) Put(ctx context.Context, info model.RetailerInfo) error {
	return r.db.WithContext(ctx).Clauses(upsertByProductID).Create(&info).Error
}

func (r *RetailerInfoGormRepository) FindByProductID(ctx context.Context, productID int64) (model.RetailerInfo, error) {
	var info model.RetailerInfo
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&info).Error
	if isNotFound(err) {
		return model.RetailerInfo{}, repo.ErrNotFound
	}
	if err != nil {
		return model.RetailerInfo{}, err
	}
	return info, nil
}

type DistributorInfoGormRepository struct {
	db *gorm.DB
}

func NewDistributorInfoGormRepository(db *gorm.DB) *DistributorInfoGormRepository {
	return &DistributorInfoGormRepository{db: db}
}

func (r *DistributorInfoGormRepository) Put(ctx context.Context, info model.DistributorInfo) error {
	return r.db.WithContext(ctx).Clauses(upsertByProductID).Create(&info).Error
}

func (r *DistributorInfoGormRepository) FindByProductID(ctx context.Context, productID int64) (model.DistributorInfo, error) {
	var info model.DistributorInfo
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&info).Error
	if isNotFound(err) {
		return model.DistributorInfo{}, repo.ErrNotFound
	}
	if err != nil {
		return model.DistributorInfo{}, err
	}
	return info, nil
}
