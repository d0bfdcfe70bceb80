// Package qr builds the per-table menu links and their QR images.
package qr

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/skip2/go-qrcode"
)

const DefaultSize = 256

// MenuURL is the customer link for a table: <origin>/menu?table=<n>.
func MenuURL(origin string, tableNumber int) string {
	return fmt.Sprintf("%s/menu?table=%d", strings.TrimRight(origin, "/"), tableNumber)
}

// FileName is the download name offered for a table's QR image.
func FileName(tableNumber int) string {
	return fmt.Sprintf("table-%d-qr-code.png", tableNumber)
}

// PNG encodes content as a size×size QR code image.
func PNG(content string, size int) ([]byte, error) {
	code, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, code.Image(size)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
