package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Products() ProductRepository
	RetailerInfos() RetailerInfoRepository
	DistributorInfos() DistributorInfoRepository
	AnnotationHistories() AnnotationHistoryRepository
	LedgerTxs() LedgerTxRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fn がエラーを返したら何も書き込まれない。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
