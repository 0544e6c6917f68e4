package imaging

import (
	"bytes"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"coursecraft/internal/domain/entity"
	"coursecraft/internal/domain/service"
)

const (
	certificateWidth  = 1400
	certificateHeight = 1000
	issuingPlatform   = "CourseCraft"
	dateLayout        = "January 2, 2006"
)

type fontSet struct {
	regular *truetype.Font
	bold    *truetype.Font
	italic  *truetype.Font
}

type certificateRenderer struct {
	fonts fontSet
}

// NewCertificateRenderer parses the embedded Go fonts once.
func NewCertificateRenderer() (service.CertificateRenderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "parse regular font")
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "parse bold font")
	}
	italic, err := truetype.Parse(goitalic.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "parse italic font")
	}

	return &certificateRenderer{fonts: fontSet{regular: regular, bold: bold, italic: italic}}, nil
}

func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// RenderCertificate draws the certificate as a landscape PNG in the product's theme.
func (r *certificateRenderer) RenderCertificate(c service.Certificate) ([]byte, error) {
	design := withDefaults(c.Design)

	const w, h = float64(certificateWidth), float64(certificateHeight)
	dc := gg.NewContext(certificateWidth, certificateHeight)

	dc.SetColor(hexColor(design.BackgroundColor))
	dc.Clear()

	// Outer border, then a faded inner rule.
	dc.SetColor(hexColor(design.BorderColor))
	dc.SetLineWidth(16)
	dc.DrawRectangle(8, 8, w-16, h-16)
	dc.Stroke()
	dc.SetColor(faded(hexColor(design.BorderColor)))
	dc.SetLineWidth(4)
	dc.DrawRectangle(36, 36, w-72, h-72)
	dc.Stroke()

	drawBadge(dc, w/2, 170, hexColor(design.BadgeColor))

	text := hexColor(design.TextColor)
	dc.SetColor(text)
	dc.SetFontFace(face(r.fonts.bold, 56))
	dc.DrawStringAnchored(spaced("CERTIFICATE OF COMPLETION"), w/2, 320, 0.5, 0.5)

	dc.SetFontFace(face(r.fonts.regular, 28))
	dc.DrawStringAnchored("This certificate is proudly presented to", w/2, 420, 0.5, 0.5)

	dc.SetColor(hexColor(design.AccentColor))
	dc.SetFontFace(face(r.fonts.italic, 72))
	dc.DrawStringAnchored(c.StudentName, w/2, 520, 0.5, 0.5)

	dc.SetColor(text)
	dc.SetFontFace(face(r.fonts.regular, 28))
	dc.DrawStringAnchored("for successfully completing the course", w/2, 610, 0.5, 0.5)

	dc.SetFontFace(face(r.fonts.bold, 44))
	dc.DrawStringWrapped(c.CourseName, w/2, 690, 0.5, 0.5, w-300, 1.3, gg.AlignCenter)

	if c.CreatorName != "" {
		dc.SetFontFace(face(r.fonts.regular, 24))
		dc.DrawStringAnchored("by "+c.CreatorName, w/2, 770, 0.5, 0.5)
	}

	drawSignatureLine(dc, r.fonts, 140, h-150, c.IssuedAt.Format(dateLayout), "Date", text, 0)
	drawSignatureLine(dc, r.fonts, w-140, h-150, issuingPlatform, "Issuing Platform", text, 1)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(err, "encode certificate")
	}

	return buf.Bytes(), nil
}

// drawBadge paints a rosette: a disc with two ribbon tails.
func drawBadge(dc *gg.Context, cx, cy float64, c color.Color) {
	dc.SetColor(c)
	dc.MoveTo(cx-40, cy+30)
	dc.LineTo(cx-60, cy+110)
	dc.LineTo(cx-30, cy+95)
	dc.LineTo(cx-10, cy+120)
	dc.LineTo(cx, cy+40)
	dc.ClosePath()
	dc.MoveTo(cx+40, cy+30)
	dc.LineTo(cx+60, cy+110)
	dc.LineTo(cx+30, cy+95)
	dc.LineTo(cx+10, cy+120)
	dc.LineTo(cx, cy+40)
	dc.ClosePath()
	dc.Fill()

	dc.DrawCircle(cx, cy, 56)
	dc.Fill()
	dc.SetColor(color.White)
	dc.SetLineWidth(4)
	dc.DrawCircle(cx, cy, 40)
	dc.Stroke()
}

// drawSignatureLine draws a rule with value above a caption; align 0 anchors
// the block's left edge at x, 1 its right edge.
func drawSignatureLine(dc *gg.Context, fonts fontSet, x, y float64, value, caption string, c color.Color, align float64) {
	const width = 320.0
	left := x - width*align

	dc.SetColor(c)
	dc.SetFontFace(face(fonts.regular, 26))
	dc.DrawStringAnchored(value, left+width/2, y-24, 0.5, 0)

	dc.SetLineWidth(3)
	dc.DrawLine(left, y, left+width, y)
	dc.Stroke()

	dc.SetFontFace(face(fonts.bold, 22))
	dc.DrawStringAnchored(caption, left+width/2, y+36, 0.5, 0)
}

func spaced(s string) string {
	return strings.Join(strings.Split(s, ""), " ")
}

func withDefaults(d entity.CertificateDesign) entity.CertificateDesign {
	def := entity.DefaultCertificateDesign()
	pick := func(v, fallback string) string {
		if _, ok := parseHex(v); ok {
			return v
		}
		return fallback
	}

	d.BackgroundColor = pick(d.BackgroundColor, def.BackgroundColor)
	d.TextColor = pick(d.TextColor, def.TextColor)
	d.AccentColor = pick(d.AccentColor, def.AccentColor)
	d.BorderColor = pick(d.BorderColor, def.BorderColor)
	d.BadgeColor = pick(d.BadgeColor, def.BadgeColor)

	return d
}

func hexColor(s string) color.Color {
	c, _ := parseHex(s)
	return c
}

// parseHex accepts #RGB and #RRGGBB.
func parseHex(s string) (color.NRGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{}, false
	}

	var rgb [3]uint8
	for i := range rgb {
		hi, ok1 := hexDigit(s[2*i])
		lo, ok2 := hexDigit(s[2*i+1])
		if !ok1 || !ok2 {
			return color.NRGBA{}, false
		}
		rgb[i] = hi<<4 | lo
	}

	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}, true
}

func hexDigit(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}

func faded(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 0x80

	return n
}
