package repository

import (
	"agritrace/internal/domain/model"
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// 一意制約違反（同じIDやコードの二重登録）
var ErrConflict = errors.New("conflict")

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Farmer   string
	Category string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	// 次に割り当てるID（最初は0）
	NextID(ctx context.Context) (int64, error)
	Create(ctx context.Context, p model.Product) error
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindByVerificationCode(ctx context.Context, code string) (model.Product, error)
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)

	// 注記が書かれたときに updated_at だけ進める
	Touch(ctx context.Context, id int64, updatedAt time.Time) error
}
