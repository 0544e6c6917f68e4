package entity

import (
	"encoding/json"

	"coursecraft/internal/errors"
)

// SectionType tags a landing page section.
type SectionType string

const (
	SectionHero         SectionType = "hero"
	SectionAbout        SectionType = "about"
	SectionProducts     SectionType = "products"
	SectionTestimonials SectionType = "testimonials"
	SectionFAQ          SectionType = "faq"
	SectionCTA          SectionType = "cta"
)

// SectionTypes lists every section type in canonical order.
var SectionTypes = []SectionType{
	SectionHero, SectionAbout, SectionProducts, SectionTestimonials, SectionFAQ, SectionCTA,
}

// IsValid checks if the SectionType is known.
func (t SectionType) IsValid() bool {
	switch t {
	case SectionHero, SectionAbout, SectionProducts, SectionTestimonials, SectionFAQ, SectionCTA:
		return true
	default:
		return false
	}
}

// SectionFields are the scalar fields every section may carry.
type SectionFields struct {
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Text     string `json:"text,omitempty"`
	CTAText  string `json:"ctaText,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type Testimonial struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
	Role   string `json:"role"`
}

type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SectionContent is the tagged payload of a section. List-valued fields only
// exist on the variants that render them.
type SectionContent interface {
	SectionType() SectionType
	Fields() SectionFields
	// WithFields returns a copy with the scalar fields replaced.
	WithFields(SectionFields) SectionContent
	cloneSection() SectionContent
}

type HeroContent struct{ SectionFields }

type AboutContent struct{ SectionFields }

type ProductsContent struct{ SectionFields }

type CTAContent struct{ SectionFields }

type TestimonialsContent struct {
	SectionFields
	Testimonials []Testimonial `json:"testimonials,omitempty"`
}

type FAQContent struct {
	SectionFields
	Items []FAQItem `json:"items,omitempty"`
}

func (HeroContent) SectionType() SectionType         { return SectionHero }
func (AboutContent) SectionType() SectionType        { return SectionAbout }
func (ProductsContent) SectionType() SectionType     { return SectionProducts }
func (CTAContent) SectionType() SectionType          { return SectionCTA }
func (TestimonialsContent) SectionType() SectionType { return SectionTestimonials }
func (FAQContent) SectionType() SectionType          { return SectionFAQ }

func (c HeroContent) Fields() SectionFields         { return c.SectionFields }
func (c AboutContent) Fields() SectionFields        { return c.SectionFields }
func (c ProductsContent) Fields() SectionFields     { return c.SectionFields }
func (c CTAContent) Fields() SectionFields          { return c.SectionFields }
func (c TestimonialsContent) Fields() SectionFields { return c.SectionFields }
func (c FAQContent) Fields() SectionFields          { return c.SectionFields }

func (c HeroContent) WithFields(f SectionFields) SectionContent {
	c.SectionFields = f

	return c
}

func (c AboutContent) WithFields(f SectionFields) SectionContent {
	c.SectionFields = f

	return c
}

func (c ProductsContent) WithFields(f SectionFields) SectionContent {
	c.SectionFields = f

	return c
}

func (c CTAContent) WithFields(f SectionFields) SectionContent {
	c.SectionFields = f

	return c
}

func (c TestimonialsContent) WithFields(f SectionFields) SectionContent {
	c.SectionFields = f
	c.Testimonials = append([]Testimonial(nil), c.Testimonials...)

	return c
}

func (c FAQContent) WithFields(f SectionFields) SectionContent {
	c.SectionFields = f
	c.Items = append([]FAQItem(nil), c.Items...)

	return c
}

func (c HeroContent) cloneSection() SectionContent     { return c }
func (c AboutContent) cloneSection() SectionContent    { return c }
func (c ProductsContent) cloneSection() SectionContent { return c }
func (c CTAContent) cloneSection() SectionContent      { return c }

func (c TestimonialsContent) cloneSection() SectionContent {
	return c.WithFields(c.SectionFields)
}

func (c FAQContent) cloneSection() SectionContent {
	return c.WithFields(c.SectionFields)
}

// NewSectionContent returns an empty payload for the given type.
func NewSectionContent(t SectionType) (SectionContent, error) {
	switch t {
	case SectionHero:
		return HeroContent{}, nil
	case SectionAbout:
		return AboutContent{}, nil
	case SectionProducts:
		return ProductsContent{}, nil
	case SectionTestimonials:
		return TestimonialsContent{}, nil
	case SectionFAQ:
		return FAQContent{}, nil
	case SectionCTA:
		return CTAContent{}, nil
	default:
		return nil, errors.Errorf("unknown section type %q", t)
	}
}

// PageSection is one block of a landing page.
type PageSection struct {
	ID      string
	Content SectionContent
}

// Type returns the section's tag.
func (s PageSection) Type() SectionType {
	if s.Content == nil {
		return ""
	}

	return s.Content.SectionType()
}

// Clone returns a deep copy of the section.
func (s PageSection) Clone() PageSection {
	if s.Content != nil {
		s.Content = s.Content.cloneSection()
	}

	return s
}

type sectionWire struct {
	ID      string          `json:"id"`
	Type    SectionType     `json:"type"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON writes the {id, type, content} envelope.
func (s PageSection) MarshalJSON() ([]byte, error) {
	content, err := json.Marshal(s.Content)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return json.Marshal(sectionWire{ID: s.ID, Type: s.Type(), Content: content})
}

// UnmarshalJSON decodes content into the variant named by type.
func (s *PageSection) UnmarshalJSON(data []byte) error {
	var wire sectionWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.WithStack(err)
	}

	content, err := NewSectionContent(wire.Type)
	if err != nil {
		return err
	}

	if len(wire.Content) > 0 && string(wire.Content) != "null" {
		content, err = decodeSection(wire.Type, wire.Content)
		if err != nil {
			return err
		}
	}

	*s = PageSection{ID: wire.ID, Content: content}

	return nil
}

func decodeSection(t SectionType, raw json.RawMessage) (SectionContent, error) {
	var (
		content SectionContent
		err     error
	)

	switch t {
	case SectionHero:
		var c HeroContent
		err = json.Unmarshal(raw, &c)
		content = c
	case SectionAbout:
		var c AboutContent
		err = json.Unmarshal(raw, &c)
		content = c
	case SectionProducts:
		var c ProductsContent
		err = json.Unmarshal(raw, &c)
		content = c
	case SectionTestimonials:
		var c TestimonialsContent
		err = json.Unmarshal(raw, &c)
		content = c
	case SectionFAQ:
		var c FAQContent
		err = json.Unmarshal(raw, &c)
		content = c
	case SectionCTA:
		var c CTAContent
		err = json.Unmarshal(raw, &c)
		content = c
	default:
		return nil, errors.Errorf("unknown section type %q", t)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "decode %s section", t)
	}

	return content, nil
}

// LandingPage is a creator's ordered storefront sections.
type LandingPage struct {
	TemplateID string        `json:"templateId"`
	Sections   []PageSection `json:"sections"`
}

// Clone returns a deep copy of the page.
func (p *LandingPage) Clone() *LandingPage {
	if p == nil {
		return nil
	}

	out := &LandingPage{TemplateID: p.TemplateID, Sections: make([]PageSection, len(p.Sections))}
	for i, s := range p.Sections {
		out.Sections[i] = s.Clone()
	}

	return out
}

// IndexOf returns the position of the section with the given id, or -1.
func (p *LandingPage) IndexOf(sectionID string) int {
	for i, s := range p.Sections {
		if s.ID == sectionID {
			return i
		}
	}

	return -1
}
