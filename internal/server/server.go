package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"agritrace/internal/config"
	"agritrace/internal/middleware"
	"agritrace/internal/repository"
	"agritrace/internal/usecase"
	auth "agritrace/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// ルートが使う部品
type Deps struct {
	Ledger   *usecase.LedgerUsecase
	Register *auth.RegisterUsecase
	Login    *auth.LoginUsecase
	Accounts repository.AccountRepository
	Log      *zap.Logger
}

func New(cfg config.Config, d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.Recover())

	origins := []string{"*"}
	if cfg.FEURL != "" {
		origins = []string{cfg.FEURL}
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))

	RegisterRoutes(e, cfg, d)
	return e
}

// ctxが終わるまで待ち受けて、終わったら止める
func Run(ctx context.Context, e *echo.Echo, addr string, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("http server shutting down")
	return e.Shutdown(shutdownCtx)
}
