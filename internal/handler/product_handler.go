package handler

import (
	"net/http"
	"strconv"

	"agritrace/internal/domain/model"
	"agritrace/internal/middleware"
	"agritrace/internal/qrcode"
	"agritrace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ProductCreateRequest は POST /products の入力です。
type ProductCreateRequest struct {
	Name              string `json:"name"`
	Category          string `json:"category"`
	DateOfManufacture string `json:"date_of_manufacture"`
	TimeOfManufacture string `json:"time_of_manufacture"`
	Place             string `json:"place"`
	QualityRating     string `json:"quality_rating"`
	PriceForFarmer    int64  `json:"price_for_farmer"`
	Description       string `json:"description"`
}

type RetailerInfoRequest struct {
	RetailerName      string `json:"retailer_name"`
	StorageConditions string `json:"storage_conditions"`
	RetailPrice       int64  `json:"retail_price"`
	RetailerLocation  string `json:"retailer_location"`
	DateOfArrival     string `json:"date_of_arrival"`
}

type DistributorInfoRequest struct {
	DistributorName      string `json:"distributor_name"`
	WarehouseLocation    string `json:"warehouse_location"`
	StorageConditions    string `json:"storage_conditions"`
	TransportationMethod string `json:"transportation_method"`
	DistributionPrice    int64  `json:"distribution_price"`
	DateOfReceiving      string `json:"date_of_receiving"`
	BatchNumber          string `json:"batch_number"`
	QualityCheckStatus   string `json:"quality_check_status"`
}

// /products と注記のAPI
type ProductHandler struct {
	uc        *usecase.LedgerUsecase
	qrBaseURL string
}

// DI
func NewProductHandler(uc *usecase.LedgerUsecase, qrBaseURL string) *ProductHandler {
	return &ProductHandler{uc: uc, qrBaseURL: qrBaseURL}
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo, write WriteAuth) {
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)
	e.GET("/products/:id/qr", h.qr)
	e.GET("/products/:id/retailer", h.getRetailer)
	e.GET("/products/:id/retailer/history", h.retailerHistory)
	e.GET("/products/:id/distributor", h.getDistributor)
	e.GET("/products/:id/distributor/history", h.distributorHistory)

	e.POST("/products", h.create, write.For(model.RoleFarmer)...)
	e.PUT("/products/:id/retailer", h.putRetailer, write.For(model.RoleRetailer)...)
	e.PUT("/products/:id/distributor", h.putDistributor, write.For(model.RoleDistributor)...)
}

func (h *ProductHandler) create(c echo.Context) error {
	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	caller, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.CreateProduct(c.Request().Context(), caller, usecase.CreateProductInput{
		Name:              req.Name,
		Category:          req.Category,
		DateOfManufacture: req.DateOfManufacture,
		TimeOfManufacture: req.TimeOfManufacture,
		Place:             req.Place,
		QualityRating:     req.QualityRating,
		PriceForFarmer:    req.PriceForFarmer,
		Description:       req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *ProductHandler) list(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	// limit（default 20）
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		Page:     page,
		Limit:    limit,
		Farmer:   c.QueryParam("farmer"),
		Category: c.QueryParam("category"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := parseProductID(c)
	if err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

// 検証コードのQR（PNG）
func (h *ProductHandler) qr(c echo.Context) error {
	id, err := parseProductID(c)
	if err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	png, err := qrcode.PNG(qrcode.TraceURL(h.qrBaseURL, p.VerificationCode))
	if err != nil {
		return writeError(c, usecase.PlatformFailure("qr encode failed"))
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

func (h *ProductHandler) putRetailer(c echo.Context) error {
	id, err := parseProductID(c)
	if err != nil {
		return writeError(c, err)
	}

	var req RetailerInfoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	caller, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.UpdateRetailerInfo(c.Request().Context(), caller, id, usecase.RetailerInfoInput{
		RetailerName:      req.RetailerName,
		StorageConditions: req.StorageConditions,
		RetailPrice:       req.RetailPrice,
		RetailerLocation:  req.RetailerLocation,
		DateOfArrival:     req.DateOfArrival,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) getRetailer(c echo.Context) error {
	id, err := parseProductID(c)
	if err != nil {
		return writeError(c, err)
	}

	info, err := h.uc.GetRetailerInfo(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, info)
}

func (h *ProductHandler) retailerHistory(c echo.Context) error {
	return h.history(c, model.AnnotationRoleRetailer)
}

func (h *ProductHandler) putDistributor(c echo.Context) error {
	id, err := parseProductID(c)
	if err != nil {
		return writeError(c, err)
	}

	var req DistributorInfoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	caller, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.UpdateDistributorInfo(c.Request().Context(), caller, id, usecase.DistributorInfoInput{
		DistributorName:      req.DistributorName,
		WarehouseLocation:    req.WarehouseLocation,
		StorageConditions:    req.StorageConditions,
		TransportationMethod: req.TransportationMethod,
		DistributionPrice:    req.DistributionPrice,
		DateOfReceiving:      req.DateOfReceiving,
		BatchNumber:          req.BatchNumber,
		QualityCheckStatus:   req.QualityCheckStatus,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) getDistributor(c echo.Context) error {
	id, err := parseProductID(c)
	if err != nil {
		return writeError(c, err)
	}

	info, err := h.uc.GetDistributorInfo(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, info)
}

func (h *ProductHandler) distributorHistory(c echo.Context) error {
	return h.history(c, model.AnnotationRoleDistributor)
}

func (h *ProductHandler) history(c echo.Context, role model.AnnotationRole) error {
	id, err := parseProductID(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.ListAnnotationHistory(c.Request().Context(), id, role)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
