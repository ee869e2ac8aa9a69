package model

import "time"

// 流通業者の注記。RetailerInfo と同じく商品IDごとに1件
type DistributorInfo struct {
	ProductID            int64     `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	DistributorName      string    `gorm:"type:varchar(1024)" json:"distributor_name"`
	WarehouseLocation    string    `gorm:"type:varchar(1024)" json:"warehouse_location"`
	StorageConditions    string    `gorm:"type:varchar(1024)" json:"storage_conditions"`
	TransportationMethod string    `gorm:"type:varchar(1024)" json:"transportation_method"`
	DistributionPrice    int64     `gorm:"not null" json:"distribution_price"`
	DateOfReceiving      string    `gorm:"type:varchar(1024)" json:"date_of_receiving"`
	BatchNumber          string    `gorm:"type:varchar(1024)" json:"batch_number"`
	QualityCheckStatus   string    `gorm:"type:varchar(1024)" json:"quality_check_status"`
	DistributorAddress   string    `gorm:"type:varchar(255);not null" json:"distributor_address"`
	UpdatedAt            time.Time `gorm:"not null;autoUpdateTime:false" json:"updated_at"`
}
