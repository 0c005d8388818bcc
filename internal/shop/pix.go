package shop

import (
	"context"
	"strings"

	"github.com/skip2/go-qrcode"

	pkgerrors "github.com/angelmondragon/vitrine-backend/pkg/errors"
)

const (
	DefaultQRSize = 256
	maxQRSize     = 1024
	minQRSize     = 64
)

// PixQR renders the seller's PIX key as a PNG QR code.
func (s *Service) PixQR(ctx context.Context, slug string, size int) ([]byte, error) {
	seller, err := s.active(ctx, slug)
	if err != nil {
		return nil, err
	}
	if seller.PixNumber == nil || strings.TrimSpace(*seller.PixNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store has no pix key")
	}
	png, err := qrcode.Encode(strings.TrimSpace(*seller.PixNumber), qrcode.Medium, clampQRSize(size))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode pix qr code")
	}
	return png, nil
}

func clampQRSize(size int) int {
	if size <= 0 {
		return DefaultQRSize
	}
	return min(max(size, minQRSize), maxQRSize)
}
