package authoring

import (
	"image"
	"math"

	"coursecraft/internal/domain/entity"
)

// MaxImageDimension caps the long edge of a cropped cover image.
const MaxImageDimension = 1200

// CropPlan describes a centred crop and the size it is scaled to.
type CropPlan struct {
	Source image.Rectangle
	Width  int
	Height int
}

// PlanCrop computes the largest centred region of a srcW x srcH image that
// matches ratio, then shrinks the output so neither edge exceeds
// MaxImageDimension.
func PlanCrop(srcW, srcH int, ratio entity.AspectRatio) CropPlan {
	if srcW <= 0 || srcH <= 0 {
		return CropPlan{}
	}

	w, h := ratio.Dimensions()
	target := float64(w) / float64(h)
	source := float64(srcW) / float64(srcH)

	x, y := 0.0, 0.0
	cw, ch := float64(srcW), float64(srcH)

	switch {
	case source > target:
		cw = float64(srcH) * target
		x = (float64(srcW) - cw) / 2
	case source < target:
		ch = float64(srcW) / target
		y = (float64(srcH) - ch) / 2
	}

	ow, oh := cw, ch
	if ow > MaxImageDimension || oh > MaxImageDimension {
		if ow > oh {
			oh = MaxImageDimension / ow * oh
			ow = MaxImageDimension
		} else {
			ow = MaxImageDimension / oh * ow
			oh = MaxImageDimension
		}
	}

	return CropPlan{
		Source: image.Rect(
			int(math.Round(x)),
			int(math.Round(y)),
			int(math.Round(x+cw)),
			int(math.Round(y+ch)),
		),
		Width:  max(1, int(math.Round(ow))),
		Height: max(1, int(math.Round(oh))),
	}
}
