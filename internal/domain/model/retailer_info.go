package model

import "time"

// 小売の注記。商品IDごとに1件（上書き）
type RetailerInfo struct {
	ProductID         int64     `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	RetailerName      string    `gorm:"type:varchar(1024)" json:"retailer_name"`
	StorageConditions string    `gorm:"type:varchar(1024)" json:"storage_conditions"`
	RetailPrice       int64     `gorm:"not null" json:"retail_price"`
	RetailerLocation  string    `gorm:"type:varchar(1024)" json:"retailer_location"`
	DateOfArrival     string    `gorm:"type:varchar(1024)" json:"date_of_arrival"`
	RetailerAddress   string    `gorm:"type:varchar(255);not null" json:"retailer_address"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime:false" json:"updated_at"`
}
