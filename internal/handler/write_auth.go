package handler

import (
	"agritrace/internal/domain/model"
	"agritrace/internal/middleware"

	"github.com/labstack/echo/v4"
)

// 書き込みAPIにかけるミドルウェア
type WriteAuth struct {
	// AuthJWT, AccountGuard, 回数制限の順
	Base []echo.MiddlewareFunc
	// trueならAPIごとにロールを絞る
	Strict bool
}

func (w WriteAuth) For(role model.Role) []echo.MiddlewareFunc {
	mws := append([]echo.MiddlewareFunc(nil), w.Base...)
	if w.Strict {
		mws = append(mws, middleware.RoleGuard(role))
	}
	return mws
}
