package repository

import (
	"agritrace/internal/domain/model"
	"context"
	"errors"
)

// アカウントが見つかりませんを統一
var ErrAccountNotFound = errors.New("account not found")

// 保存・取得を約束
type AccountRepository interface {
	//新規アカウント作成
	Create(ctx context.Context, account *model.Account) error
	// IDからアカウントを1件取得する。
	FindByID(ctx context.Context, id string) (*model.Account, error)
	//メールからアカウントを一件取得する。
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
}
