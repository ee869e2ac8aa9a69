package repository

import (
	"context"

	"agritrace/internal/domain/model"

	"gorm.io/gorm"
)

type LedgerTxGormRepository struct {
	db *gorm.DB
}

func NewLedgerTxGormRepository(db *gorm.DB) *LedgerTxGormRepository {
	return &LedgerTxGormRepository{db: db}
}

func (r *LedgerTxGormRepository) Append(ctx context.Context, tx model.LedgerTx) error {
	return translateWriteError(r.db.WithContext(ctx).Create(&tx).Error)
}

func (r *LedgerTxGormRepository) Last(ctx context.Context) (model.LedgerTx, bool, error) {
	var tx model.LedgerTx
	err := r.db.WithContext(ctx).Order("seq DESC").First(&tx).Error
	if isNotFound(err) {
		return model.LedgerTx{}, false, nil
	}
	if err != nil {
		return model.LedgerTx{}, false, err
	}
	return tx, true, nil
}

func (r *LedgerTxGormRepository) List(ctx context.Context, productID *int64) ([]model.LedgerTx, error) {
	q := r.db.WithContext(ctx).Model(&model.LedgerTx{})
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	}

	var out []model.LedgerTx
	if err := q.Order("seq ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
