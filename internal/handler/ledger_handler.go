package handler

import (
	"net/http"
	"strconv"

	"agritrace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 消費者向けの追跡と台帳の記録
type LedgerHandler struct {
	uc *usecase.LedgerUsecase
}

func NewLedgerHandler(uc *usecase.LedgerUsecase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

func (h *LedgerHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/trace/:code", h.trace)
	e.GET("/ledger/transactions", h.transactions)
	e.GET("/ledger/verify", h.verify)
}

// QRから読んだ検証コードで来歴を返す
func (h *LedgerHandler) trace(c echo.Context) error {
	out, err := h.uc.TraceByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LedgerHandler) transactions(c echo.Context) error {
	var productID *int64
	if v := c.QueryParam("product_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
		}
		productID = &id
	}

	out, err := h.uc.ListTransactions(c.Request().Context(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LedgerHandler) verify(c echo.Context) error {
	report, err := h.uc.VerifyChain(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
