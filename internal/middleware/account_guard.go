package middleware

import (
	"errors"
	"net/http"

	"agritrace/internal/domain/model"
	"agritrace/internal/repository"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// JWTのsubが今もアカウントとして存在し、roleがDBと一致するか確認。
func AccountGuard(accounts repository.AccountRepository, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたaccount_idを取得する
			accountID, ok := c.Get(CtxAccountIDKey).(string)
			if !ok || accountID == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			role, _ := c.Get(CtxRoleKey).(model.Role)

			//DBから最新のアカウントを取得する
			account, err := accounts.FindByID(c.Request().Context(), accountID)
			if err != nil {
				if errors.Is(err, repository.ErrAccountNotFound) {
					return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
				}
				log.Error("account lookup failed", zap.String("account_id", accountID), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			//トークン発行後にroleが変わっていたら再ログインさせる
			if account.Role != role {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			return next(c)
		}
	}
}
