// Package qr renders the pickup code handed to the provider when the
// customer collects an order.
package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const size = 256

// ForOrder encodes the order reference as a PNG QR code.
func ForOrder(orderRef string) ([]byte, error) {
	png, err := qrcode.Encode(orderRef, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr for %s: %w", orderRef, err)
	}
	return png, nil
}
