package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"agritrace/internal/usecase"
)

// 文字列項目の上限（バイト）
const MaxFieldBytes = 1024

type ledgerValidator struct{}

// Usecaseは interface を依存注入
func NewLedgerValidator() usecase.LedgerValidator {
	return &ledgerValidator{}
}

type field struct {
	name  string
	value string
}

// 商品登録の入力を検証
func (v *ledgerValidator) ValidateCreateProduct(in usecase.CreateProductInput) error {
	// 必須チェック
	if strings.TrimSpace(in.Name) == "" {
		return usecase.InvalidArgument("name is required")
	}
	if in.PriceForFarmer < 0 {
		return usecase.InvalidArgument("price_for_farmer must not be negative")
	}
	return checkLengths(
		field{"name", in.Name},
		field{"category", in.Category},
		field{"date_of_manufacture", in.DateOfManufacture},
		field{"time_of_manufacture", in.TimeOfManufacture},
		field{"place", in.Place},
		field{"quality_rating", in.QualityRating},
		field{"description", in.Description},
	)
}

// 小売の注記を検証
func (v *ledgerValidator) ValidateRetailerInfo(in usecase.RetailerInfoInput) error {
	if in.RetailPrice < 0 {
		return usecase.InvalidArgument("retail_price must not be negative")
	}
	return checkLengths(
		field{"retailer_name", in.RetailerName},
		field{"storage_conditions", in.StorageConditions},
		field{"retailer_location", in.RetailerLocation},
		field{"date_of_arrival", in.DateOfArrival},
	)
}

// 流通業者の注記を検証
func (v *ledgerValidator) ValidateDistributorInfo(in usecase.DistributorInfoInput) error {
	if in.DistributionPrice < 0 {
		return usecase.InvalidArgument("distribution_price must not be negative")
	}
	return checkLengths(
		field{"distributor_name", in.DistributorName},
		field{"warehouse_location", in.WarehouseLocation},
		field{"storage_conditions", in.StorageConditions},
		field{"transportation_method", in.TransportationMethod},
		field{"date_of_receiving", in.DateOfReceiving},
		field{"batch_number", in.BatchNumber},
		field{"quality_check_status", in.QualityCheckStatus},
	)
}

func checkLengths(fields ...field) error {
	for _, f := range fields {
		if len(f.value) > MaxFieldBytes {
			return usecase.InvalidArgument(fmt.Sprintf("%s is too long", f.name))
		}
		// DBに入らない文字列はここで弾く
		if strings.ContainsRune(f.value, 0) || !utf8.ValidString(f.value) {
			return usecase.InvalidArgument(fmt.Sprintf("%s contains invalid characters", f.name))
		}
	}
	return nil
}
