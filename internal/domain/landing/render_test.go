package landing

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursecraft/internal/domain/entity"
)

func TestRenderer_RendersEverySectionInOrder(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	page := samplePage()
	page.Sections = append(page.Sections,
		entity.PageSection{ID: "products-1", Content: entity.ProductsContent{SectionFields: entity.SectionFields{Title: "Featured Products"}}},
		entity.PageSection{ID: "cta-1", Content: entity.CTAContent{SectionFields: entity.SectionFields{Title: "Join", CTAText: "Sign Up Now"}}},
	)

	products := []*entity.Product{
		{ID: "1", Name: "Figma <Masterclass>", Price: 50, Currency: entity.CurrencyUSD, Content: entity.CourseContent{}},
		{ID: "2", Name: "Freebie", Price: 0, Currency: entity.CurrencyUSD, Content: entity.CoachingContent{}},
	}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, View{StoreName: "Alex Designs", CreatorID: "creator-01", Currency: entity.CurrencyUSD, Page: page, Products: products}))
	html := buf.String()

	hero := strings.Index(html, "Hello")
	about := strings.Index(html, "About")
	cta := strings.Index(html, "Sign Up Now")
	require.True(t, hero >= 0 && about >= 0 && cta >= 0)
	assert.Less(t, hero, about)
	assert.Less(t, about, cta)

	assert.Contains(t, html, "Figma &lt;Masterclass&gt;")
	assert.Contains(t, html, "$50.00")
	assert.Contains(t, html, "Get for Free")
	assert.Contains(t, html, "&ldquo;Great&rdquo;")
	assert.Contains(t, html, "/store/creator-01/products/1")
	assert.NotContains(t, html, "edit-btn\"")
	assert.NotContains(t, html, "data-section-id")
}

func TestRenderer_EditModeOverlay(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, View{
		Page:     samplePage(),
		EditMode: true,
		EditURL:  func(id string) string { return "/editor/sections/" + id },
	}))
	html := buf.String()

	assert.Contains(t, html, `data-section-id="hero-1"`)
	assert.Contains(t, html, "Edit Hero")
	assert.Contains(t, html, "Edit FAQ")
	assert.Contains(t, html, `href="/editor/sections/about-1"`)
}

func TestRenderer_EmptyProductsGrid(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	page := &entity.LandingPage{Sections: []entity.PageSection{
		{ID: "products-1", Content: entity.ProductsContent{SectionFields: entity.SectionFields{Title: "Featured"}}},
	}}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, View{Page: page}))
	assert.Contains(t, buf.String(), "Your products will be displayed here once you add them.")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "Free", FormatPrice(0, entity.CurrencyUSD))
	assert.Equal(t, "$1,250.50", FormatPrice(1250.5, entity.CurrencyUSD))
	assert.Equal(t, "₦50,000.00", FormatPrice(50000, entity.CurrencyNGN))
}

func TestRenderer_RenderProduct(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	product := &entity.Product{
		ID: "1", Name: "Figma Masterclass", Price: 50, Currency: entity.CurrencyUSD,
		Description: "Learn Figma", Content: entity.CourseContent{},
		Reviews: []entity.Review{
			{ID: "r1", UserName: "Jane", Rating: 5, Comment: "Loved it"},
			{ID: "r2", UserName: "John", Rating: 4, Comment: "Solid"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, r.RenderProduct(&buf, ProductView{StoreName: "Alex Designs", CreatorID: "creator-01", Product: product}))
	html := buf.String()

	assert.Contains(t, html, "<title>Figma Masterclass | Alex Designs</title>")
	assert.Contains(t, html, "$50.00")
	assert.Contains(t, html, "Buy Now")
	assert.Contains(t, html, "(4.5 / 5)")
	assert.Contains(t, html, "★★★★☆")
	assert.Contains(t, html, `href="/store/creator-01"`)
}

func TestAverageRating(t *testing.T) {
	assert.Zero(t, AverageRating(nil))
	assert.InDelta(t, 3.0, AverageRating([]entity.Review{{Rating: 2}, {Rating: 4}}), 1e-9)
}
