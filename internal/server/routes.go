package server

import (
	"agritrace/internal/config"
	"agritrace/internal/handler"
	"agritrace/internal/metrics"
	"agritrace/internal/middleware"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, d Deps) {
	e.GET("/api/health", handler.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	handler.NewAuthHandler(d.Register, d.Login, d.Log).RegisterRoutes(e)

	write := handler.WriteAuth{
		Base: []echo.MiddlewareFunc{
			middleware.AuthJWT(cfg),
			middleware.AccountGuard(d.Accounts, d.Log),
			middleware.NewWriteLimiter(cfg.WriteRatePerMinute).Middleware(),
		},
		Strict: cfg.AccessMode == config.AccessModeStrict,
	}
	handler.NewProductHandler(d.Ledger, cfg.FEURL).RegisterRoutes(e, write)
	handler.NewLedgerHandler(d.Ledger).RegisterRoutes(e)
}
