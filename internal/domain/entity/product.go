package entity

import (
	"encoding/json"

	"coursecraft/internal/errors"
)

// ProductType is the discriminant that selects a product's structural content.
type ProductType string

const (
	ProductCourse     ProductType = "Course"
	ProductSchool     ProductType = "School"
	ProductMembership ProductType = "Membership"
	ProductDigital    ProductType = "Digital Product"
	ProductCoaching   ProductType = "Coaching"
)

// IsValid checks if the ProductType is known.
func (t ProductType) IsValid() bool {
	switch t {
	case ProductCourse, ProductSchool, ProductMembership, ProductDigital, ProductCoaching:
		return true
	default:
		return false
	}
}

// ProductContent is the structural payload of a product. Each product type has
// exactly one variant, so a product cannot carry lessons and resources at once.
type ProductContent interface {
	ProductType() ProductType
	cloneContent() ProductContent
}

// CourseContent is an ordered lesson list.
type CourseContent struct {
	Lessons []Lesson
}

// SchoolContent is an ordered list of days, each with lessons.
type SchoolContent struct {
	Days []SchoolDay
}

// MembershipContent is a list of member resources.
type MembershipContent struct {
	Resources []Resource
}

// DigitalContent is a list of downloadable resources.
type DigitalContent struct {
	Resources []Resource
}

// CoachingContent carries no structural content.
type CoachingContent struct{}

func (CourseContent) ProductType() ProductType     { return ProductCourse }
func (SchoolContent) ProductType() ProductType     { return ProductSchool }
func (MembershipContent) ProductType() ProductType { return ProductMembership }
func (DigitalContent) ProductType() ProductType    { return ProductDigital }
func (CoachingContent) ProductType() ProductType   { return ProductCoaching }

func (c CourseContent) cloneContent() ProductContent {
	return CourseContent{Lessons: CloneLessons(c.Lessons)}
}

func (c SchoolContent) cloneContent() ProductContent {
	return SchoolContent{Days: CloneSchoolDays(c.Days)}
}

func (c MembershipContent) cloneContent() ProductContent {
	return MembershipContent{Resources: CloneResources(c.Resources)}
}

func (c DigitalContent) cloneContent() ProductContent {
	return DigitalContent{Resources: CloneResources(c.Resources)}
}

func (CoachingContent) cloneContent() ProductContent { return CoachingContent{} }

// Product is a sellable item owned by one creator.
type Product struct {
	ID          string
	CreatorID   string
	Name        string
	Price       float64 // Zero means free.
	Currency    Currency
	Description string
	ImageURL    string
	Content     ProductContent

	CertificateEnabled bool
	CertificateDesign  *CertificateDesign // Only meaningful when CertificateEnabled.

	Reviews []Review
}

// Type returns the product type implied by its content.
func (p *Product) Type() ProductType {
	if p.Content == nil {
		return ""
	}

	return p.Content.ProductType()
}

// Lessons returns every lesson of the product in play order, flattening school days.
func (p *Product) Lessons() []Lesson {
	switch c := p.Content.(type) {
	case CourseContent:
		return c.Lessons
	case SchoolContent:
		var out []Lesson
		for _, day := range c.Days {
			out = append(out, day.Lessons...)
		}

		return out
	default:
		return nil
	}
}

// Resources returns the product's standalone resources, if its type has any.
func (p *Product) Resources() []Resource {
	switch c := p.Content.(type) {
	case MembershipContent:
		return c.Resources
	case DigitalContent:
		return c.Resources
	default:
		return nil
	}
}

// Certificate returns the design to print, falling back to the house theme.
func (p *Product) Certificate() CertificateDesign {
	if p.CertificateDesign != nil {
		return *p.CertificateDesign
	}

	return DefaultCertificateDesign()
}

// Validate checks the structural invariants of a product.
func (p *Product) Validate() error {
	if p.Content == nil {
		return errors.Errorf("product %s has no content variant", p.ID)
	}
	if p.Name == "" {
		return errors.Errorf("product %s has no name", p.ID)
	}
	if p.Price < 0 {
		return errors.Errorf("product %s has negative price", p.ID)
	}
	if !p.Currency.IsValid() {
		return errors.Errorf("product %s has unknown currency %q", p.ID, p.Currency)
	}

	return nil
}

// Clone returns a deep copy of the product.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}

	out := *p
	if p.Content != nil {
		out.Content = p.Content.cloneContent()
	}
	if p.CertificateDesign != nil {
		design := *p.CertificateDesign
		out.CertificateDesign = &design
	}
	out.Reviews = append([]Review(nil), p.Reviews...)

	return &out
}

// productWire is the flat JSON shape shared with storefront clients.
type productWire struct {
	ID                 string             `json:"id"`
	CreatorID          string             `json:"creatorId"`
	Name               string             `json:"name"`
	Type               ProductType        `json:"type"`
	Price              float64            `json:"price"`
	Currency           Currency           `json:"currency"`
	Description        string             `json:"description"`
	ImageURL           string             `json:"imageUrl"`
	Lessons            *[]Lesson          `json:"lessons,omitempty"`
	SchoolDays         *[]SchoolDay       `json:"schoolDays,omitempty"`
	Resources          *[]Resource        `json:"resources,omitempty"`
	CertificateEnabled bool               `json:"certificateEnabled"`
	CertificateDesign  *CertificateDesign `json:"certificateDesign,omitempty"`
	Reviews            []Review           `json:"reviews,omitempty"`
}

// MarshalJSON emits only the structural field that matches the product type.
func (p Product) MarshalJSON() ([]byte, error) {
	wire := productWire{
		ID:                 p.ID,
		CreatorID:          p.CreatorID,
		Name:               p.Name,
		Type:               p.Type(),
		Price:              p.Price,
		Currency:           p.Currency,
		Description:        p.Description,
		ImageURL:           p.ImageURL,
		CertificateEnabled: p.CertificateEnabled,
		Reviews:            p.Reviews,
	}
	if p.CertificateEnabled {
		wire.CertificateDesign = p.CertificateDesign
	}

	switch c := p.Content.(type) {
	case CourseContent:
		lessons := nonNil(c.Lessons)
		wire.Lessons = &lessons
	case SchoolContent:
		days := nonNil(c.Days)
		wire.SchoolDays = &days
	case MembershipContent:
		resources := nonNil(c.Resources)
		wire.Resources = &resources
	case DigitalContent:
		resources := nonNil(c.Resources)
		wire.Resources = &resources
	}

	return json.Marshal(wire)
}

// UnmarshalJSON builds the content variant selected by "type" and ignores
// structural fields that belong to other types.
func (p *Product) UnmarshalJSON(data []byte) error {
	var wire productWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.WithStack(err)
	}

	content, err := contentFor(wire)
	if err != nil {
		return err
	}

	*p = Product{
		ID:                 wire.ID,
		CreatorID:          wire.CreatorID,
		Name:               wire.Name,
		Price:              wire.Price,
		Currency:           wire.Currency,
		Description:        wire.Description,
		ImageURL:           wire.ImageURL,
		Content:            content,
		CertificateEnabled: wire.CertificateEnabled,
		Reviews:            wire.Reviews,
	}
	if wire.CertificateEnabled {
		p.CertificateDesign = wire.CertificateDesign
	}

	return nil
}

func contentFor(wire productWire) (ProductContent, error) {
	switch wire.Type {
	case ProductCourse:
		return CourseContent{Lessons: deref(wire.Lessons)}, nil
	case ProductSchool:
		return SchoolContent{Days: deref(wire.SchoolDays)}, nil
	case ProductMembership:
		return MembershipContent{Resources: deref(wire.Resources)}, nil
	case ProductDigital:
		return DigitalContent{Resources: deref(wire.Resources)}, nil
	case ProductCoaching:
		return CoachingContent{}, nil
	default:
		return nil, errors.Errorf("unknown product type %q", wire.Type)
	}
}

// EmptyContent returns the zero-valued content variant for a product type.
func EmptyContent(t ProductType) (ProductContent, error) {
	return contentFor(productWire{Type: t})
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}

	return in
}

func deref[T any](in *[]T) []T {
	if in == nil {
		return []T{}
	}

	return *in
}
