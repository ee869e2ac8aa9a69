package repository

import (
	"context"

	"agritrace/internal/domain/model"
)

// 小売の注記スロット。Put は丸ごと置き換える
type RetailerInfoRepository interface {
	Put(ctx context.Context, info model.RetailerInfo) error
	FindByProductID(ctx context.Context, productID int64) (model.RetailerInfo, error)
}

type DistributorInfoRepository interface {
	Put(ctx context.Context, info model.DistributorInfo) error
	FindByProductID(ctx context.Context, productID int64) (model.DistributorInfo, error)
}

// 注記履歴の保存・一覧取得の約束。
type AnnotationHistoryRepository interface {
	Create(ctx context.Context, h model.AnnotationHistory) error

	//古い順
	ListByProduct(ctx context.Context, productID int64, role model.AnnotationRole) ([]model.AnnotationHistory, error)
}
