package model

import "time"

// 生産者が登録する商品。作成後は UpdatedAt 以外変わらない
type Product struct {
	ID                int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name              string    `gorm:"type:varchar(1024);not null" json:"name"`
	Category          string    `gorm:"type:varchar(1024);index" json:"category"`
	DateOfManufacture string    `gorm:"type:varchar(1024)" json:"date_of_manufacture"`
	TimeOfManufacture string    `gorm:"type:varchar(1024)" json:"time_of_manufacture"`
	Place             string    `gorm:"type:varchar(1024)" json:"place"`
	QualityRating     string    `gorm:"type:varchar(1024)" json:"quality_rating"`
	PriceForFarmer    int64     `gorm:"not null" json:"price_for_farmer"`
	Description       string    `gorm:"type:text" json:"description"`
	Farmer            string    `gorm:"type:varchar(255);not null;index" json:"farmer"`
	IsAvailable       bool      `gorm:"not null;default:true" json:"is_available"`
	VerificationCode  string    `gorm:"type:varchar(2048);not null;uniqueIndex" json:"verification_code"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime:false" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime:false" json:"updated_at"`
}
