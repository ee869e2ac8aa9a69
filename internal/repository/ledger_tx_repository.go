package repository

import (
	"context"

	"agritrace/internal/domain/model"
)

type LedgerTxRepository interface {
	Append(ctx context.Context, tx model.LedgerTx) error

	// 最後の記録。まだ1件もなければ ok=false
	Last(ctx context.Context) (tx model.LedgerTx, ok bool, err error)

	// productIDがnilなら全件。seq昇順
	List(ctx context.Context, productID *int64) ([]model.LedgerTx, error)
}
