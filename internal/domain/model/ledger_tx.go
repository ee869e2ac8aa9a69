package model

import "time"

type LedgerTxKind string

const (
	LedgerTxCreateProduct         LedgerTxKind = "CREATE_PRODUCT"
	LedgerTxUpdateRetailerInfo    LedgerTxKind = "UPDATE_RETAILER_INFO"
	LedgerTxUpdateDistributorInfo LedgerTxKind = "UPDATE_DISTRIBUTOR_INFO"
)

// 書き込み1回分の記録。PrevHash で前の記録とつながる
type LedgerTx struct {
	Seq         int64        `gorm:"primaryKey;autoIncrement:false" json:"seq"`
	Kind        LedgerTxKind `gorm:"type:varchar(50);not null;index" json:"kind"`
	ProductID   int64        `gorm:"not null;index" json:"product_id"`
	Actor       string       `gorm:"type:varchar(255);not null" json:"actor"`
	PayloadHash string       `gorm:"type:varchar(80);not null" json:"payload_hash"`
	PrevHash    string       `gorm:"type:varchar(80);not null" json:"prev_hash"`
	TxHash      string       `gorm:"type:varchar(80);not null;uniqueIndex" json:"tx_hash"`
	CreatedAt   time.Time    `gorm:"not null;autoCreateTime:false" json:"created_at"`
}

func (LedgerTx) TableName() string {
	return "ledger_transactions"
}
