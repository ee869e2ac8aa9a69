package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agritrace/internal/domain/model"
	repo "agritrace/internal/repository"
)

// 最初の記録の PrevHash
const ZeroHash = "0x0000000000000000000000000000000000000000000000000000000000000000"

// 商品のうち作成後に変わらない項目。CREATE_PRODUCT のペイロード
type productPayload struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	DateOfManufacture string `json:"date_of_manufacture"`
	TimeOfManufacture string `json:"time_of_manufacture"`
	Place             string `json:"place"`
	QualityRating     string `json:"quality_rating"`
	PriceForFarmer    int64  `json:"price_for_farmer"`
	Description       string `json:"description"`
	Farmer            string `json:"farmer"`
	VerificationCode  string `json:"verification_code"`
	CreatedAt         int64  `json:"created_at"`
}

func toProductPayload(p model.Product) productPayload {
	return productPayload{
		ID:                p.ID,
		Name:              p.Name,
		Category:          p.Category,
		DateOfManufacture: p.DateOfManufacture,
		TimeOfManufacture: p.TimeOfManufacture,
		Place:             p.Place,
		QualityRating:     p.QualityRating,
		PriceForFarmer:    p.PriceForFarmer,
		Description:       p.Description,
		Farmer:            p.Farmer,
		VerificationCode:  p.VerificationCode,
		CreatedAt:         p.CreatedAt.UnixNano(),
	}
}

func hashPayload(v any) (string, []byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), b, nil
}

// ComputeTxHash は PrevHash を含めて記録1件のハッシュを出す
func ComputeTxHash(tx model.LedgerTx) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%s|%s|%d",
		tx.PrevHash, tx.Kind, tx.ProductID, tx.Actor, tx.PayloadHash, tx.CreatedAt.UnixNano())
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// 最後の記録につなげて追記する
func appendLedgerTx(ctx context.Context, txs repo.LedgerTxRepository, kind model.LedgerTxKind, productID int64, actor, payloadHash string, now time.Time) (model.LedgerTx, error) {
	last, ok, err := txs.Last(ctx)
	if err != nil {
		return model.LedgerTx{}, err
	}

	tx := model.LedgerTx{
		Seq:         0,
		Kind:        kind,
		ProductID:   productID,
		Actor:       actor,
		PayloadHash: payloadHash,
		PrevHash:    ZeroHash,
		CreatedAt:   now,
	}
	if ok {
		tx.Seq = last.Seq + 1
		tx.PrevHash = last.TxHash
	}
	tx.TxHash = ComputeTxHash(tx)

	if err := txs.Append(ctx, tx); err != nil {
		return model.LedgerTx{}, err
	}
	return tx, nil
}

// 商品ごとの検証コード（QRに載せる）
func newVerificationCode(id int64, name, place string, now time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", name, place, now.UnixNano())))
	raw := fmt.Sprintf("%d|%s", id, hex.EncodeToString(sum[:12]))
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

type ChainReport struct {
	Length   int    `json:"length"`
	Valid    bool   `json:"valid"`
	BrokenAt *int64 `json:"broken_at,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Head     string `json:"head"`
}

// VerifyChainは記録を先頭から辿ってハッシュを計算し直す。
// 壊れていても直さずに報告だけする。
func (u *LedgerUsecase) VerifyChain(ctx context.Context) (ChainReport, error) {
	txs, err := u.reads.LedgerTxs().List(ctx, nil)
	if err != nil {
		return ChainReport{}, u.platformFailure("verify chain", err)
	}

	report := ChainReport{Length: len(txs), Valid: true, Head: ZeroHash}
	broken := func(seq int64, reason string) (ChainReport, error) {
		report.Valid = false
		report.BrokenAt = &seq
		report.Reason = reason
		return report, nil
	}

	prev := ZeroHash
	for i, tx := range txs {
		if tx.Seq != int64(i) {
			return broken(int64(i), "sequence gap")
		}
		if tx.PrevHash != prev {
			return broken(tx.Seq, "prev hash mismatch")
		}
		if ComputeTxHash(tx) != tx.TxHash {
			return broken(tx.Seq, "tx hash mismatch")
		}

		// 商品は作成後に変わらないので今の行から計算し直せる
		if tx.Kind == model.LedgerTxCreateProduct {
			p, err := u.reads.Products().FindByID(ctx, tx.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return broken(tx.Seq, "product missing")
			}
			if err != nil {
				return ChainReport{}, u.platformFailure("verify chain", err)
			}
			sum, _, err := hashPayload(toProductPayload(p))
			if err != nil {
				return ChainReport{}, u.platformFailure("verify chain", err)
			}
			if sum != tx.PayloadHash {
				return broken(tx.Seq, "product payload mismatch")
			}
		}

		prev = tx.TxHash
		report.Head = tx.TxHash
	}
	return report, nil
}
