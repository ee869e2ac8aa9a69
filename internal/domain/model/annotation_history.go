package model

import "time"

// 注記の種類（どの役割が書いたか）
type AnnotationRole string

const (
	AnnotationRoleRetailer    AnnotationRole = "retailer"
	AnnotationRoleDistributor AnnotationRole = "distributor"
)

// 注記の履歴。スロットは上書きされるが、こちらは追記のみ。
// 「誰が」「どの商品に」「何を書いたか」を残す。
type AnnotationHistory struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	ProductID int64          `gorm:"not null;index" json:"product_id"`
	Role      AnnotationRole `gorm:"type:varchar(20);not null;index" json:"role"`

	//書き込んだアカウント
	Actor string `gorm:"type:varchar(255);not null;index" json:"actor"`

	//書き込んだ注記をJSON文字列で保存する。
	PayloadJSON string `gorm:"type:text;not null" json:"payload_json"`

	CreatedAt time.Time `gorm:"not null;index;autoCreateTime:false" json:"created_at"`
}
