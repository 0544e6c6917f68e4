package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/service"
)

func encodedImage(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestCrop_MatchesRatioAndCap(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		ratio        entity.AspectRatio
		wantW, wantH int
	}{
		{name: "wide to square", w: 400, h: 200, ratio: entity.AspectSquare, wantW: 200, wantH: 200},
		{name: "square to wide", w: 320, h: 320, ratio: entity.AspectWide, wantW: 320, wantH: 180},
		{name: "large source is capped", w: 2400, h: 1800, ratio: entity.AspectLandscape, wantW: 1200, wantH: 900},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewImageProcessor().Crop(encodedImage(t, tt.w, tt.h), tt.ratio)
			require.NoError(t, err)

			cfg, err := png.DecodeConfig(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, cfg.Width)
			assert.Equal(t, tt.wantH, cfg.Height)
		})
	}
}

func TestCrop_Errors(t *testing.T) {
	_, err := NewImageProcessor().Crop([]byte("not an image"), entity.AspectSquare)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidImage)

	_, err = NewImageProcessor().Crop(encodedImage(t, 10, 10), entity.AspectRatio("2:1"))
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestRenderCertificate(t *testing.T) {
	r, err := NewCertificateRenderer()
	require.NoError(t, err)

	design := entity.DefaultCertificateDesign()
	design.BackgroundColor = "#FDF6E3"
	design.BorderColor = "not-a-colour"

	out, err := r.RenderCertificate(service.Certificate{
		StudentName: "Jane Doe",
		CourseName:  "Ultimate Figma Masterclass",
		CreatorName: "Alex Designs",
		IssuedAt:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Design:      design,
	})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, certificateWidth, img.Bounds().Dx())
	assert.Equal(t, certificateHeight, img.Bounds().Dy())

	// The centre of the top band shows the background colour.
	got := color.NRGBAModel.Convert(img.At(certificateWidth/4, 60)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{R: 0xFD, G: 0xF6, B: 0xE3, A: 0xff}, got)
}

func TestParseHex(t *testing.T) {
	c, ok := parseHex("#06B6D4")
	assert.True(t, ok)
	assert.Equal(t, color.NRGBA{R: 0x06, G: 0xB6, B: 0xD4, A: 0xff}, c)

	c, ok = parseHex("fff")
	assert.True(t, ok)
	assert.Equal(t, uint8(0xff), c.G)

	_, ok = parseHex("#12345")
	assert.False(t, ok)
	_, ok = parseHex("#GGGGGG")
	assert.False(t, ok)
}
