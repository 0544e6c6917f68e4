// Package imaging crops cover images and draws completion certificates.
package imaging

import (
	"bytes"
	"image"
	_ "image/gif"  // decoder registration
	_ "image/jpeg" // decoder registration
	"image/png"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // decoder registration

	"coursecraft/internal/domain/authoring"
	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/service"
)

type cropper struct{}

// NewImageProcessor returns the cover image cropper.
func NewImageProcessor() service.ImageProcessor {
	return cropper{}
}

// Crop decodes data, cuts the centred region matching ratio and scales it
// down to the cover size cap.
func (cropper) Crop(data []byte, ratio entity.AspectRatio) ([]byte, error) {
	if !ratio.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unsupported aspect ratio " + string(ratio))
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domainerrors.ErrInvalidImage.WithDetails(err.Error())
	}

	b := src.Bounds()
	plan := authoring.PlanCrop(b.Dx(), b.Dy(), ratio)
	region := plan.Source.Add(b.Min)

	dst := image.NewRGBA(image.Rect(0, 0, plan.Width, plan.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, region, draw.Src, nil)

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, errors.Wrap(err, "encode cropped image")
	}

	return out.Bytes(), nil
}
