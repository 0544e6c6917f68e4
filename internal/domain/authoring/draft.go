// Package authoring implements the product editing session: a draft that
// collects the fields of one product and commits it as a single variant.
package authoring

import (
	"fmt"
	"strings"

	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/transient"
)

// State is the lifecycle stage of a draft.
type State string

const (
	StateEmpty     State = "empty"
	StateEditing   State = "editing"
	StateCommitted State = "committed"
	StateCancelled State = "cancelled"
)

// IsTerminal reports whether the draft no longer accepts operations.
func (s State) IsTerminal() bool {
	return s == StateCommitted || s == StateCancelled
}

// Draft is the working copy of a product. Lessons, school days and resources
// are kept for every branch so switching type and back loses nothing; only the
// branch matching the final type is committed.
//
// Every list operation replaces the affected slices instead of writing into
// them, so a Snapshot taken earlier never changes.
type Draft struct {
	state State

	productID string
	creatorID string
	reviews   []entity.Review

	name        string
	price       float64
	currency    entity.Currency
	description string
	imageURL    string
	productType entity.ProductType

	lessons    []entity.Lesson
	schoolDays []entity.SchoolDay
	resources  []entity.Resource

	certificateEnabled bool
	certificateDesign  entity.CertificateDesign

	objects *transient.Registry
}

// NewDraft starts an empty draft for a new product.
func NewDraft(creatorID string, defaultCurrency entity.Currency, objects *transient.Registry) *Draft {
	if !defaultCurrency.IsValid() {
		defaultCurrency = entity.CurrencyNGN
	}
	if objects == nil {
		objects = transient.NewRegistry(nil)
	}

	return &Draft{
		state:             StateEmpty,
		creatorID:         creatorID,
		currency:          defaultCurrency,
		productType:       entity.ProductCourse,
		lessons:           []entity.Lesson{},
		schoolDays:        []entity.SchoolDay{},
		resources:         []entity.Resource{},
		certificateDesign: entity.DefaultCertificateDesign(),
		objects:           objects,
	}
}

// EditDraft opens an existing product for editing. Lessons and resources saved
// before input methods existed are treated as pasted URLs.
func EditDraft(p *entity.Product, objects *transient.Registry) *Draft {
	p = p.Clone()
	d := NewDraft(p.CreatorID, p.Currency, objects)

	d.state = StateEditing
	d.productID = p.ID
	d.reviews = p.Reviews
	d.name = p.Name
	d.price = p.Price
	d.currency = p.Currency
	d.description = p.Description
	d.imageURL = p.ImageURL
	d.productType = p.Type()
	d.certificateEnabled = p.CertificateEnabled
	if p.CertificateDesign != nil {
		d.certificateDesign = *p.CertificateDesign
	}

	switch c := p.Content.(type) {
	case entity.CourseContent:
		d.lessons = withLessonDefaults(c.Lessons)
	case entity.SchoolContent:
		days := make([]entity.SchoolDay, len(c.Days))
		for i, day := range c.Days {
			day.Lessons = withLessonDefaults(day.Lessons)
			days[i] = day
		}
		d.schoolDays = days
	case entity.MembershipContent:
		d.resources = withResourceDefaults(c.Resources)
	case entity.DigitalContent:
		d.resources = withResourceDefaults(c.Resources)
	}

	return d
}

func withLessonDefaults(in []entity.Lesson) []entity.Lesson {
	out := make([]entity.Lesson, len(in))
	for i, l := range in {
		if l.InputMethod == "" {
			l.InputMethod = entity.InputURL
		}
		l.Resources = withResourceDefaults(l.Resources)
		out[i] = l
	}

	return out
}

func withResourceDefaults(in []entity.Resource) []entity.Resource {
	out := make([]entity.Resource, len(in))
	for i, r := range in {
		if r.Type == "" {
			r.Type = entity.ResourceFile
		}
		if r.InputMethod == "" {
			r.InputMethod = entity.InputURL
		}
		if r.Type == entity.ResourceFile && r.AccessType == "" {
			r.AccessType = entity.AccessDownload
		}
		out[i] = r
	}

	return out
}

// State returns the draft's lifecycle stage.
func (d *Draft) State() State {
	return d.state
}

// ProductID is the id of the product being edited, empty for a new product.
func (d *Draft) ProductID() string {
	return d.productID
}

// CreatorID returns the owner of the product.
func (d *Draft) CreatorID() string {
	return d.creatorID
}

// Name returns the current product name.
func (d *Draft) Name() string {
	return d.name
}

// Type returns the selected product type.
func (d *Draft) Type() entity.ProductType {
	return d.productType
}

// CertificatePrompt returns the prompt of the certificate design.
func (d *Draft) CertificatePrompt() string {
	return d.certificateDesign.Prompt
}

// ImageURL returns the current cover image URL.
func (d *Draft) ImageURL() string {
	return d.imageURL
}

// touch rejects operations on closed drafts and moves an empty draft to editing.
func (d *Draft) touch() error {
	if d.state.IsTerminal() {
		return domainerrors.ErrDraftClosed
	}
	d.state = StateEditing

	return nil
}

// Patch carries the scalar product fields to change. Nil fields are untouched.
type Patch struct {
	Name               *string                   `json:"name"`
	Price              *float64                  `json:"price"`
	Currency           *entity.Currency          `json:"currency"`
	Description        *string                   `json:"description"`
	ImageURL           *string                   `json:"imageUrl"`
	Type               *entity.ProductType       `json:"type"`
	CertificateEnabled *bool                     `json:"certificateEnabled"`
	CertificateDesign  *entity.CertificateDesign `json:"certificateDesign"`
}

// Apply updates the scalar fields named by p.
func (d *Draft) Apply(p Patch) error {
	if p.Type != nil && !p.Type.IsValid() {
		return domainerrors.NewValidationError(domainerrors.ErrValidationFailed,
			map[string]string{"type": fmt.Sprintf("unknown product type %q", *p.Type)})
	}
	if p.Currency != nil && !p.Currency.IsValid() {
		return domainerrors.NewValidationError(domainerrors.ErrValidationFailed,
			map[string]string{"currency": fmt.Sprintf("unknown currency %q", *p.Currency)})
	}
	if err := d.touch(); err != nil {
		return err
	}

	if p.Name != nil {
		d.name = *p.Name
	}
	if p.Price != nil {
		d.price = *p.Price
	}
	if p.Currency != nil {
		d.currency = *p.Currency
	}
	if p.Description != nil {
		d.description = *p.Description
	}
	if p.ImageURL != nil {
		d.objects.Replace(d.imageURL, *p.ImageURL)
		d.imageURL = *p.ImageURL
	}
	if p.Type != nil {
		d.productType = *p.Type
	}
	if p.CertificateEnabled != nil {
		d.certificateEnabled = *p.CertificateEnabled
	}
	if p.CertificateDesign != nil {
		d.certificateDesign = *p.CertificateDesign
	}

	return nil
}

// SetType switches the active structural branch without clearing the others.
func (d *Draft) SetType(next entity.ProductType) error {
	return d.Apply(Patch{Type: &next})
}

// SetDescription replaces the description.
func (d *Draft) SetDescription(text string) error {
	return d.Apply(Patch{Description: &text})
}

// SetCertificateDesign replaces the certificate theme.
func (d *Draft) SetCertificateDesign(design entity.CertificateDesign) error {
	return d.Apply(Patch{CertificateDesign: &design})
}

// SetImage replaces the cover image, releasing the previous upload.
func (d *Draft) SetImage(a transient.Attachment) error {
	if err := d.touch(); err != nil {
		return err
	}

	d.objects.Acquire(a)
	d.objects.Replace(d.imageURL, a.URL)
	d.imageURL = a.URL

	return nil
}

// Cancel discards the draft and releases every upload it still owns.
func (d *Draft) Cancel() error {
	if d.state.IsTerminal() {
		return domainerrors.ErrDraftClosed
	}
	d.state = StateCancelled
	d.objects.ReleaseAll()

	return nil
}

// Snapshot is a read-only view of the draft.
type Snapshot struct {
	State              State                    `json:"state"`
	ProductID          string                   `json:"productId,omitempty"`
	Name               string                   `json:"name"`
	Type               entity.ProductType       `json:"type"`
	Price              float64                  `json:"price"`
	Currency           entity.Currency          `json:"currency"`
	Description        string                   `json:"description"`
	ImageURL           string                   `json:"imageUrl"`
	Lessons            []entity.Lesson          `json:"lessons"`
	SchoolDays         []entity.SchoolDay       `json:"schoolDays"`
	Resources          []entity.Resource        `json:"resources"`
	CertificateEnabled bool                     `json:"certificateEnabled"`
	CertificateDesign  entity.CertificateDesign `json:"certificateDesign"`
	Warnings           []string                 `json:"warnings,omitempty"`
}

// Snapshot returns the current fields. The returned slices are never written
// to by later draft operations.
func (d *Draft) Snapshot() Snapshot {
	return Snapshot{
		State:              d.state,
		ProductID:          d.productID,
		Name:               d.name,
		Type:               d.productType,
		Price:              d.price,
		Currency:           d.currency,
		Description:        d.description,
		ImageURL:           d.imageURL,
		Lessons:            d.lessons,
		SchoolDays:         d.schoolDays,
		Resources:          d.resources,
		CertificateEnabled: d.certificateEnabled,
		CertificateDesign:  d.certificateDesign,
		Warnings:           d.videoWarnings(),
	}
}

// videoWarnings flags pasted video links that cannot be made embeddable.
func (d *Draft) videoWarnings() []string {
	var warnings []string
	check := func(l entity.Lesson) {
		if l.InputMethod != entity.InputURL || strings.TrimSpace(l.VideoURL) == "" {
			return
		}
		if _, ok := NormalizeVideoURL(l.VideoURL); !ok {
			warnings = append(warnings, fmt.Sprintf("lesson %q: %s is not a recognised video link and may not play", l.Title, l.VideoURL))
		}
	}

	switch d.productType {
	case entity.ProductCourse:
		for _, l := range d.lessons {
			check(l)
		}
	case entity.ProductSchool:
		for _, day := range d.schoolDays {
			for _, l := range day.Lessons {
				check(l)
			}
		}
	}

	return warnings
}
