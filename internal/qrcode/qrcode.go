package qrcode

import (
	"errors"
	"strings"

	"rsc.io/qr"
)

// QRに載せる内容の上限（Mレベルで読み取れる長さ）
const maxContentBytes = 2048

var ErrEmptyContent = errors.New("qr content is empty")

// 商品ページのURLを組み立てる
func TraceURL(baseURL, code string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		return code
	}
	return base + "/trace/" + code
}

// contentをPNGのQRコードにする
func PNG(content string) ([]byte, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > maxContentBytes {
		return nil, errors.New("qr content too long")
	}

	c, err := qr.Encode(content, qr.M)
	if err != nil {
		return nil, err
	}
	return c.PNG(), nil
}
