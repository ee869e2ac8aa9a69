package repository

import (
	"context"

	"agritrace/internal/domain/model"
	domainrepo "agritrace/internal/repository"

	"gorm.io/gorm"
)

type accountGormRepository struct {
	db *gorm.DB
}

// DI
// main.goでこれをnewしてusecaseに注入します。
func NewAccountGormRepository(db *gorm.DB) domainrepo.AccountRepository {
	return &accountGormRepository{db: db}
}

// Create はアカウントを新規作成
func (r *accountGormRepository) Create(ctx context.Context, account *model.Account) error {
	return translateWriteError(r.db.WithContext(ctx).Create(account).Error)
}

// emailでアカウントを1件取得
func (r *accountGormRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	var a model.Account

	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&a).Error
	if isNotFound(err) {
		return nil, domainrepo.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// IDでアカウントを1件取得
func (r *accountGormRepository) FindByID(ctx context.Context, id string) (*model.Account, error) {
	var a model.Account

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&a).Error
	if isNotFound(err) {
		return nil, domainrepo.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
