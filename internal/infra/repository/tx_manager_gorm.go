package repository

import (
	"context"

	repo "agritrace/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	products     repo.ProductRepository
	retailers    repo.RetailerInfoRepository
	distributors repo.DistributorInfoRepository
	histories    repo.AnnotationHistoryRepository
	ledgerTxs    repo.LedgerTxRepository
}

func (r *txReposGorm) Products() repo.ProductRepository                       { return r.products }
func (r *txReposGorm) RetailerInfos() repo.RetailerInfoRepository             { return r.retailers }
func (r *txReposGorm) DistributorInfos() repo.DistributorInfoRepository       { return r.distributors }
func (r *txReposGorm) AnnotationHistories() repo.AnnotationHistoryRepository { return r.histories }
func (r *txReposGorm) LedgerTxs() repo.LedgerTxRepository                     { return r.ledgerTxs }

// txの外で読むときもこれを使う
func NewReposGorm(db *gorm.DB) repo.TxRepos {
	return &txReposGorm{
		products:     NewProductGormRepository(db),
		retailers:    NewRetailerInfoGormRepository(db),
		distributors: NewDistributorInfoGormRepository(db),
		histories:    NewAnnotationHistoryGormRepository(db),
		ledgerTxs:    NewLedgerTxGormRepository(db),
	}
}

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		return fn(NewReposGorm(tx))
	})
}
