package landing

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"coursecraft/internal/domain/entity"
	"coursecraft/internal/errors"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// sectionLabels names each section type on its edit affordance. The keys of
// this table are also the template names the renderer dispatches to.
var sectionLabels = map[entity.SectionType]string{
	entity.SectionHero:         "Hero",
	entity.SectionAbout:        "About",
	entity.SectionProducts:     "Products",
	entity.SectionTestimonials: "Testimonials",
	entity.SectionFAQ:          "FAQ",
	entity.SectionCTA:          "CTA",
}

// View is everything needed to render a storefront page.
type View struct {
	StoreName string
	CreatorID string
	Branding  entity.StoreBranding
	Currency  entity.Currency
	Page      *entity.LandingPage
	Products  []*entity.Product

	// EditMode adds an edit affordance per section linking to EditURL(sectionID).
	EditMode bool
	EditURL  func(sectionID string) string
}

type sectionData struct {
	ID        string
	Content   entity.SectionContent
	Products  []*entity.Product
	Branding  entity.StoreBranding
	Currency  entity.Currency
	CreatorID string
}

type frameData struct {
	ID       string
	Label    string
	EditMode bool
	EditURL  string
	Body     template.HTML
}

type layoutData struct {
	StoreName string
	EditMode  bool
	Sections  []template.HTML
}

// Renderer turns landing pages into HTML using one template per section type.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded section templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("landing").Funcs(template.FuncMap{
		"price":      FormatPrice,
		"excerpt":    excerpt,
		"productURL": productURL,
		"stars":      stars,
	}).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, errors.Wrap(err, "parse landing templates")
	}

	for t := range sectionLabels {
		if tmpl.Lookup(string(t)) == nil {
			return nil, errors.Errorf("no template for section type %q", t)
		}
	}

	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the full page to w.
func (r *Renderer) Render(w io.Writer, v View) error {
	if v.Branding.PrimaryColor == "" {
		v.Branding.PrimaryColor = entity.DefaultPrimaryColor
	}
	if !v.Currency.IsValid() {
		v.Currency = entity.CurrencyNGN
	}

	var sections []template.HTML
	if v.Page != nil {
		sections = make([]template.HTML, 0, len(v.Page.Sections))
		for _, s := range v.Page.Sections {
			html, err := r.renderSection(s, v)
			if err != nil {
				return err
			}
			sections = append(sections, html)
		}
	}

	err := r.tmpl.ExecuteTemplate(w, "layout", layoutData{
		StoreName: v.StoreName,
		EditMode:  v.EditMode,
		Sections:  sections,
	})

	return errors.Wrap(err, "render landing page")
}

// ProductView is everything needed to render a product detail page.
type ProductView struct {
	StoreName string
	CreatorID string
	Branding  entity.StoreBranding
	Product   *entity.Product
}

type productData struct {
	ProductView
	AverageRating float64
}

// RenderProduct writes a product detail page with its reviews to w.
func (r *Renderer) RenderProduct(w io.Writer, v ProductView) error {
	if v.Product == nil {
		return errors.New("no product to render")
	}
	if v.Branding.PrimaryColor == "" {
		v.Branding.PrimaryColor = entity.DefaultPrimaryColor
	}

	var body bytes.Buffer
	data := productData{ProductView: v, AverageRating: AverageRating(v.Product.Reviews)}
	if err := r.tmpl.ExecuteTemplate(&body, "product", data); err != nil {
		return errors.Wrapf(err, "render product %s", v.Product.ID)
	}

	err := r.tmpl.ExecuteTemplate(w, "layout", layoutData{
		StoreName: v.Product.Name + " | " + v.StoreName,
		Sections:  []template.HTML{template.HTML(body.String())}, //nolint:gosec // produced by html/template above
	})

	return errors.Wrap(err, "render product page")
}

// AverageRating returns the mean rating of reviews, or zero without reviews.
func AverageRating(reviews []entity.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}

	var sum int
	for _, rv := range reviews {
		sum += rv.Rating
	}

	return float64(sum) / float64(len(reviews))
}

func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}

	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func (r *Renderer) renderSection(s entity.PageSection, v View) (template.HTML, error) {
	label, ok := sectionLabels[s.Type()]
	if !ok {
		return "", errors.Errorf("section %s has unknown type %q", s.ID, s.Type())
	}

	var body bytes.Buffer
	err := r.tmpl.ExecuteTemplate(&body, string(s.Type()), sectionData{
		ID:        s.ID,
		Content:   s.Content,
		Products:  v.Products,
		Branding:  v.Branding,
		Currency:  v.Currency,
		CreatorID: v.CreatorID,
	})
	if err != nil {
		return "", errors.Wrapf(err, "render section %s", s.ID)
	}

	frame := frameData{
		ID:       s.ID,
		Label:    label,
		EditMode: v.EditMode,
		Body:     template.HTML(body.String()), //nolint:gosec // produced by html/template above
	}
	if v.EditMode && v.EditURL != nil {
		frame.EditURL = v.EditURL(s.ID)
	}

	var out bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&out, "frame", frame); err != nil {
		return "", errors.Wrapf(err, "frame section %s", s.ID)
	}

	return template.HTML(out.String()), nil //nolint:gosec // produced by html/template above
}

var printer = message.NewPrinter(language.English)

// FormatPrice renders an amount for display; zero is shown as Free.
func FormatPrice(amount float64, currency entity.Currency) string {
	if amount == 0 {
		return "Free"
	}

	switch currency {
	case entity.CurrencyUSD:
		return printer.Sprintf("$%.2f", amount)
	case entity.CurrencyNGN:
		return printer.Sprintf("₦%.2f", amount)
	default:
		return printer.Sprintf("%s %.2f", currency, amount)
	}
}

func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n]) + "..."
}

func productURL(creatorID, productID string) string {
	return "/store/" + url.PathEscape(creatorID) + "/products/" + url.PathEscape(productID)
}
