// Package qrcode renders referral links as QR code images.
package qrcode

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"coursecraft/config"
	"coursecraft/internal/domain/service"
)

const defaultSize = 256

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// NewQRCodeService creates a new QR code service instance from qrcode.*
func NewQRCodeService(cfg *config.Config) service.QRCodeService {
	size, level := defaultSize, "M"
	if cfg != nil && cfg.QRCode != nil {
		if cfg.QRCode.Size > 0 {
			size = cfg.QRCode.Size
		}
		level = cfg.QRCode.ErrorCorrectionLevel
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: recoveryLevel(level),
	}
}

func recoveryLevel(level string) qrcode.RecoveryLevel {
	switch strings.ToUpper(level) {
	case "L":
		return qrcode.Low
	case "Q":
		return qrcode.High
	case "H":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// GenerateReferralQR encodes the referral link itself so any camera app opens it.
func (s *qrcodeService) GenerateReferralQR(link string) ([]byte, error) {
	if _, err := s.ParseReferralQR(link); err != nil {
		return nil, err
	}

	qrCode, err := qrcode.New(link, s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}

// ParseReferralQR accepts /store/{creator}[/products/{product}]?ref={affiliate}.
func (s *qrcodeService) ParseReferralQR(qrData string) (*service.ReferralTarget, error) {
	u, err := url.Parse(strings.TrimSpace(qrData))
	if err != nil {
		return nil, fmt.Errorf("failed to parse referral link: %w", err)
	}

	segments := strings.Split(strings.Trim(u.EscapedPath(), "/"), "/")
	if len(segments) != 2 && len(segments) != 4 || segments[0] != "store" {
		return nil, fmt.Errorf("invalid referral link path: %s", u.Path)
	}
	if len(segments) == 4 && segments[2] != "products" {
		return nil, fmt.Errorf("invalid referral link path: %s", u.Path)
	}

	target := &service.ReferralTarget{AffiliateID: u.Query().Get("ref")}
	if target.AffiliateID == "" {
		return nil, fmt.Errorf("referral link has no ref parameter")
	}

	if target.CreatorID, err = url.PathUnescape(segments[1]); err != nil || target.CreatorID == "" {
		return nil, fmt.Errorf("invalid creator id in referral link")
	}
	if len(segments) == 4 {
		if target.ProductID, err = url.PathUnescape(segments[3]); err != nil || target.ProductID == "" {
			return nil, fmt.Errorf("invalid product id in referral link")
		}
	}

	return target, nil
}
