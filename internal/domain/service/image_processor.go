package service

import (
	"time"

	"coursecraft/internal/domain/entity"
)

// ImageProcessor re-encodes cover images.
type ImageProcessor interface {
	// Crop centre-crops an encoded image to ratio and returns a PNG no larger
	// than the maximum cover dimension.
	Crop(data []byte, ratio entity.AspectRatio) ([]byte, error)
}

// Certificate is the content printed on a completion certificate.
type Certificate struct {
	StudentName string
	CourseName  string
	CreatorName string
	IssuedAt    time.Time
	Design      entity.CertificateDesign
}

// CertificateRenderer produces the printable certificate image.
type CertificateRenderer interface {
	RenderCertificate(c Certificate) ([]byte, error)
}
