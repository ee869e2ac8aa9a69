package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"agritrace/internal/domain/model"
	"agritrace/internal/metrics"
	repo "agritrace/internal/repository"

	"go.uber.org/zap"
)

// 書き込みを行う主体。JWTから取り出したものを明示的に渡す
type Identity struct {
	ID   string
	Role model.Role
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// usecaseがValidatorInterfaceに依存する約束
type LedgerValidator interface {
	ValidateCreateProduct(in CreateProductInput) error
	ValidateRetailerInfo(in RetailerInfoInput) error
	ValidateDistributorInfo(in DistributorInfoInput) error
}

type LedgerUsecase struct {
	txm       repo.TransactionManager
	reads     repo.TxRepos
	validator LedgerValidator
	clock     Clock
	strict    bool
	log       *zap.Logger

	// 書き込みは1本ずつ（全体で順序が決まる）
	mu sync.Mutex
}

// DI
func NewLedgerUsecase(
	txm repo.TransactionManager,
	reads repo.TxRepos,
	validator LedgerValidator,
	clock Clock,
	strictAccess bool,
	log *zap.Logger,
) *LedgerUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &LedgerUsecase{
		txm:       txm,
		reads:     reads,
		validator: validator,
		clock:     clock,
		strict:    strictAccess,
		log:       log,
	}
}

// POST /products の入力
type CreateProductInput struct {
	Name              string
	Category          string
	DateOfManufacture string
	TimeOfManufacture string
	Place             string
	QualityRating     string
	PriceForFarmer    int64
	Description       string
}

type CreateProductOutput struct {
	ID               int64  `json:"id"`
	TxHash           string `json:"tx_hash"`
	VerificationCode string `json:"verification_code"`
}

type RetailerInfoInput struct {
	RetailerName      string
	StorageConditions string
	RetailPrice       int64
	RetailerLocation  string
	DateOfArrival     string
}

type DistributorInfoInput struct {
	DistributorName      string
	WarehouseLocation    string
	StorageConditions    string
	TransportationMethod string
	DistributionPrice    int64
	DateOfReceiving      string
	BatchNumber          string
	QualityCheckStatus   string
}

type WriteOutput struct {
	TxHash string `json:"tx_hash"`
}

func (u *LedgerUsecase) now() time.Time {
	// DBの精度（マイクロ秒）に合わせておかないと読み戻したときにハッシュがずれる
	return u.clock.Now().UTC().Truncate(time.Microsecond)
}

// usecaseのエラーはそのまま、それ以外は基盤の失敗として返す
func (u *LedgerUsecase) platformFailure(op string, err error) error {
	if he, ok := AsHTTPError(err); ok {
		return he
	}
	u.log.Error("ledger operation failed", zap.String("op", op), zap.Error(err))
	return PlatformFailure("platform failure")
}

// 商品を登録する。IDは0から順番に振る
func (u *LedgerUsecase) CreateProduct(ctx context.Context, caller Identity, in CreateProductInput) (CreateProductOutput, error) {
	if caller.ID == "" {
		return CreateProductOutput{}, Unauthenticated("unauthorized")
	}
	if u.strict && caller.Role != model.RoleFarmer {
		return CreateProductOutput{}, Forbidden("farmer only")
	}
	if err := u.validator.ValidateCreateProduct(in); err != nil {
		return CreateProductOutput{}, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	var out CreateProductOutput
	err := u.txm.WithinTx(ctx, func(r repo.TxRepos) error {
		id, err := r.Products().NextID(ctx)
		if err != nil {
			return err
		}

		now := u.now()
		p := model.Product{
			ID:                id,
			Name:              in.Name,
			Category:          in.Category,
			DateOfManufacture: in.DateOfManufacture,
			TimeOfManufacture: in.TimeOfManufacture,
			Place:             in.Place,
			QualityRating:     in.QualityRating,
			PriceForFarmer:    in.PriceForFarmer,
			Description:       in.Description,
			Farmer:            caller.ID,
			IsAvailable:       true,
			VerificationCode:  newVerificationCode(id, in.Name, in.Place, now),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := r.Products().Create(ctx, p); err != nil {
			return err
		}

		sum, _, err := hashPayload(toProductPayload(p))
		if err != nil {
			return err
		}
		tx, err := appendLedgerTx(ctx, r.LedgerTxs(), model.LedgerTxCreateProduct, id, caller.ID, sum, now)
		if err != nil {
			return err
		}

		out = CreateProductOutput{ID: id, TxHash: tx.TxHash, VerificationCode: p.VerificationCode}
		return nil
	})
	metrics.RecordLedgerWrite(string(model.LedgerTxCreateProduct), err)
	if err != nil {
		return CreateProductOutput{}, u.platformFailure("create product", err)
	}

	u.log.Info("product created",
		zap.Int64("product_id", out.ID),
		zap.String("farmer", caller.ID),
		zap.String("tx_hash", out.TxHash),
	)
	return out, nil
}

func (u *LedgerUsecase) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	if id < 0 {
		return model.Product{}, InvalidArgument("invalid product id")
	}

	p, err := u.reads.Products().FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NotFound("product not found")
	}
	if err != nil {
		return model.Product{}, u.platformFailure("get product", err)
	}
	return p, nil
}

// GET /products の入力
type ListProductsInput struct {
	Page     int
	Limit    int
	Farmer   string
	Category string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *LedgerUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, InvalidArgument("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, InvalidArgument("invalid limit")
	}

	items, total, err := u.reads.Products().List(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Farmer:   in.Farmer,
		Category: in.Category,
	})
	if err != nil {
		return ProductListOutput{}, u.platformFailure("list products", err)
	}
	if items == nil {
		items = []model.Product{}
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

// 注記を書く前の共通チェック。商品がなければ NotFound
func (u *LedgerUsecase) loadAnnotatable(ctx context.Context, r repo.TxRepos, caller Identity, id int64) (model.Product, error) {
	p, err := r.Products().FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NotFound("product not found")
	}
	if err != nil {
		return model.Product{}, err
	}
	// 生産者が自分の商品に注記するのは禁止
	if u.strict && p.Farmer == caller.ID {
		return model.Product{}, Forbidden("farmer cannot annotate own product")
	}
	return p, nil
}

// 注記スロットを置き換えたあとの共通処理（updated_at・履歴・台帳）
func (u *LedgerUsecase) recordAnnotation(ctx context.Context, r repo.TxRepos, kind model.LedgerTxKind, role model.AnnotationRole, caller Identity, id int64, payload any, now time.Time) (model.LedgerTx, error) {
	if err := r.Products().Touch(ctx, id, now); err != nil {
		return model.LedgerTx{}, err
	}

	sum, raw, err := hashPayload(payload)
	if err != nil {
		return model.LedgerTx{}, err
	}

	if err := r.AnnotationHistories().Create(ctx, model.AnnotationHistory{
		ProductID:   id,
		Role:        role,
		Actor:       caller.ID,
		PayloadJSON: string(raw),
		CreatedAt:   now,
	}); err != nil {
		return model.LedgerTx{}, err
	}

	return appendLedgerTx(ctx, r.LedgerTxs(), kind, id, caller.ID, sum, now)
}

// 小売の注記を丸ごと置き換える（後勝ち）
func (u *LedgerUsecase) UpdateRetailerInfo(ctx context.Context, caller Identity, id int64, in RetailerInfoInput) (WriteOutput, error) {
	if caller.ID == "" {
		return WriteOutput{}, Unauthenticated("unauthorized")
	}
	if id < 0 {
		return WriteOutput{}, InvalidArgument("invalid product id")
	}
	if u.strict && caller.Role != model.RoleRetailer {
		return WriteOutput{}, Forbidden("retailer only")
	}
	if err := u.validator.ValidateRetailerInfo(in); err != nil {
		return WriteOutput{}, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	var out WriteOutput
	err := u.txm.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := u.loadAnnotatable(ctx, r, caller, id); err != nil {
			return err
		}

		now := u.now()
		info := model.RetailerInfo{
			ProductID:         id,
			RetailerName:      in.RetailerName,
			StorageConditions: in.StorageConditions,
			RetailPrice:       in.RetailPrice,
			RetailerLocation:  in.RetailerLocation,
			DateOfArrival:     in.DateOfArrival,
			RetailerAddress:   caller.ID,
			UpdatedAt:         now,
		}
		if err := r.RetailerInfos().Put(ctx, info); err != nil {
			return err
		}

		tx, err := u.recordAnnotation(ctx, r, model.LedgerTxUpdateRetailerInfo, model.AnnotationRoleRetailer, caller, id, info, now)
		if err != nil {
			return err
		}
		out.TxHash = tx.TxHash
		return nil
	})
	metrics.RecordLedgerWrite(string(model.LedgerTxUpdateRetailerInfo), err)
	if err != nil {
		return WriteOutput{}, u.platformFailure("update retailer info", err)
	}

	u.log.Info("retailer info updated",
		zap.Int64("product_id", id),
		zap.String("retailer", caller.ID),
		zap.String("tx_hash", out.TxHash),
	)
	return out, nil
}

func (u *LedgerUsecase) GetRetailerInfo(ctx context.Context, id int64) (model.RetailerInfo, error) {
	if _, err := u.GetProduct(ctx, id); err != nil {
		return model.RetailerInfo{}, err
	}

	info, err := u.reads.RetailerInfos().FindByProductID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.RetailerInfo{}, NotFound("retailer info not found")
	}
	if err != nil {
		return model.RetailerInfo{}, u.platformFailure("get retailer info", err)
	}
	return info, nil
}

// 流通業者の注記を丸ごと置き換える（後勝ち）
func (u *LedgerUsecase) UpdateDistributorInfo(ctx context.Context, caller Identity, id int64, in DistributorInfoInput) (WriteOutput, error) {
	if caller.ID == "" {
		return WriteOutput{}, Unauthenticated("unauthorized")
	}
	if id < 0 {
		return WriteOutput{}, InvalidArgument("invalid product id")
	}
	if u.strict && caller.Role != model.RoleDistributor {
		return WriteOutput{}, Forbidden("distributor only")
	}
	if err := u.validator.ValidateDistributorInfo(in); err != nil {
		return WriteOutput{}, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	var out WriteOutput
	err := u.txm.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := u.loadAnnotatable(ctx, r, caller, id); err != nil {
			return err
		}

		now := u.now()
		info := model.DistributorInfo{
			ProductID:            id,
			DistributorName:      in.DistributorName,
			WarehouseLocation:    in.WarehouseLocation,
			StorageConditions:    in.StorageConditions,
			TransportationMethod: in.TransportationMethod,
			DistributionPrice:    in.DistributionPrice,
			DateOfReceiving:      in.DateOfReceiving,
			BatchNumber:          in.BatchNumber,
			QualityCheckStatus:   in.QualityCheckStatus,
			DistributorAddress:   caller.ID,
			UpdatedAt:            now,
		}
		if err := r.DistributorInfos().Put(ctx, info); err != nil {
			return err
		}

		tx, err := u.recordAnnotation(ctx, r, model.LedgerTxUpdateDistributorInfo, model.AnnotationRoleDistributor, caller, id, info, now)
		if err != nil {
			return err
		}
		out.TxHash = tx.TxHash
		return nil
	})
	metrics.RecordLedgerWrite(string(model.LedgerTxUpdateDistributorInfo), err)
	if err != nil {
		return WriteOutput{}, u.platformFailure("update distributor info", err)
	}

	u.log.Info("distributor info updated",
		zap.Int64("product_id", id),
		zap.String("distributor", caller.ID),
		zap.String("tx_hash", out.TxHash),
	)
	return out, nil
}

func (u *LedgerUsecase) GetDistributorInfo(ctx context.Context, id int64) (model.DistributorInfo, error) {
	if _, err := u.GetProduct(ctx, id); err != nil {
		return model.DistributorInfo{}, err
	}

	info, err := u.reads.DistributorInfos().FindByProductID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.DistributorInfo{}, NotFound("distributor info not found")
	}
	if err != nil {
		return model.DistributorInfo{}, u.platformFailure("get distributor info", err)
	}
	return info, nil
}

// 注記の履歴（古い順）
func (u *LedgerUsecase) ListAnnotationHistory(ctx context.Context, id int64, role model.AnnotationRole) ([]model.AnnotationHistory, error) {
	switch role {
	case model.AnnotationRoleRetailer, model.AnnotationRoleDistributor:
	default:
		return nil, InvalidArgument("invalid role")
	}
	if _, err := u.GetProduct(ctx, id); err != nil {
		return nil, err
	}

	out, err := u.reads.AnnotationHistories().ListByProduct(ctx, id, role)
	if err != nil {
		return nil, u.platformFailure("list annotation history", err)
	}
	if out == nil {
		out = []model.AnnotationHistory{}
	}
	return out, nil
}

// 商品と注記をまとめたもの。注記がまだなければnil
type Trace struct {
	Product     model.Product          `json:"product"`
	Retailer    *model.RetailerInfo    `json:"retailer"`
	Distributor *model.DistributorInfo `json:"distributor"`
}

// QRの検証コードから商品の来歴を引く
func (u *LedgerUsecase) TraceByCode(ctx context.Context, code string) (Trace, error) {
	if code == "" {
		return Trace{}, InvalidArgument("code required")
	}

	// 商品と注記は同じtxで読み、途中の書き込みが混ざらないようにする
	var out Trace
	err := u.txm.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByVerificationCode(ctx, code)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("product not found")
		}
		if err != nil {
			return err
		}
		out = Trace{Product: p}

		ri, err := r.RetailerInfos().FindByProductID(ctx, p.ID)
		switch {
		case err == nil:
			out.Retailer = &ri
		case !errors.Is(err, repo.ErrNotFound):
			return err
		}

		di, err := r.DistributorInfos().FindByProductID(ctx, p.ID)
		switch {
		case err == nil:
			out.Distributor = &di
		case !errors.Is(err, repo.ErrNotFound):
			return err
		}
		return nil
	})
	if err != nil {
		return Trace{}, u.platformFailure("trace", err)
	}
	return out, nil
}

// productIDがnilなら全件
func (u *LedgerUsecase) ListTransactions(ctx context.Context, productID *int64) ([]model.LedgerTx, error) {
	if productID != nil && *productID < 0 {
		return nil, InvalidArgument("invalid product id")
	}
	out, err := u.reads.LedgerTxs().List(ctx, productID)
	if err != nil {
		return nil, u.platformFailure("list transactions", err)
	}
	if out == nil {
		out = []model.LedgerTx{}
	}
	return out, nil
}
