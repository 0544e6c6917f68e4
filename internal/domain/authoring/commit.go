package authoring

import (
	"fmt"
	"net/url"
	"strings"

	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
)

// placeholderImage is used when a product is committed without a cover.
const placeholderImage = "https://picsum.photos/seed/%s/400/300"

// Commit builds the product and closes the draft in one step.
func (d *Draft) Commit() (*entity.Product, error) {
	p, err := d.Build()
	if err != nil {
		return nil, err
	}
	d.Finalize(p)

	return p, nil
}

// Build validates the draft and assembles the product without closing the
// draft. Only the structural branch matching the selected type is carried
// over. On failure the draft stays in editing and nothing is changed.
func (d *Draft) Build() (*entity.Product, error) {
	if d.state.IsTerminal() {
		return nil, domainerrors.ErrDraftClosed
	}

	if fields := d.validate(); len(fields) > 0 {
		return nil, domainerrors.NewValidationError(domainerrors.ErrProductInvalid, fields)
	}

	content, err := d.content()
	if err != nil {
		return nil, err
	}

	p := &entity.Product{
		ID:                 d.productID,
		CreatorID:          d.creatorID,
		Name:               d.name,
		Price:              d.price,
		Currency:           d.currency,
		Description:        d.description,
		ImageURL:           d.imageURL,
		Content:            content,
		CertificateEnabled: d.certificateEnabled,
		Reviews:            append([]entity.Review(nil), d.reviews...),
	}
	if p.ID == "" {
		p.ID = entity.NewID()
	}
	if p.ImageURL == "" {
		p.ImageURL = fmt.Sprintf(placeholderImage, url.PathEscape(d.name))
	}
	if d.certificateEnabled {
		design := d.certificateDesign
		if p.Type() == entity.ProductMembership {
			design = entity.DefaultCertificateDesign()
		}
		p.CertificateDesign = &design
	}

	return p, nil
}

// Finalize closes the draft once p has been stored. Uploads p references
// now belong to it; the rest are released.
func (d *Draft) Finalize(p *entity.Product) {
	if d.state.IsTerminal() {
		return
	}

	used := referencedURLs(p)
	d.objects.Retain(func(u string) bool { return used[u] })
	d.state = StateCommitted
}

func (d *Draft) validate() map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(d.name) == "" {
		fields["name"] = "required"
	}
	if d.price < 0 {
		fields["price"] = "must be zero or greater"
	}

	return fields
}

// content materialises the branch selected by the product type. Pasted video
// links are rewritten to their embeddable form on the way out.
func (d *Draft) content() (entity.ProductContent, error) {
	switch d.productType {
	case entity.ProductCourse:
		return entity.CourseContent{Lessons: normalizedLessons(d.lessons)}, nil
	case entity.ProductSchool:
		days := make([]entity.SchoolDay, len(d.schoolDays))
		for i, day := range d.schoolDays {
			day.Lessons = normalizedLessons(day.Lessons)
			days[i] = day
		}

		return entity.SchoolContent{Days: days}, nil
	case entity.ProductMembership:
		return entity.MembershipContent{Resources: entity.CloneResources(d.resources)}, nil
	case entity.ProductDigital:
		return entity.DigitalContent{Resources: entity.CloneResources(d.resources)}, nil
	case entity.ProductCoaching:
		return entity.CoachingContent{}, nil
	default:
		return nil, domainerrors.NewValidationError(domainerrors.ErrValidationFailed,
			map[string]string{"type": "unknown product type"})
	}
}

func normalizedLessons(in []entity.Lesson) []entity.Lesson {
	out := entity.CloneLessons(in)
	for i := range out {
		if out[i].InputMethod != entity.InputURL {
			continue
		}
		if embed, ok := NormalizeVideoURL(out[i].VideoURL); ok {
			out[i].VideoURL = embed
		}
	}

	return out
}

func referencedURLs(p *entity.Product) map[string]bool {
	used := map[string]bool{p.ImageURL: true}
	for _, l := range p.Lessons() {
		used[l.VideoURL] = true
		for _, r := range l.Resources {
			used[r.FileURL] = true
		}
	}
	for _, r := range p.Resources() {
		used[r.FileURL] = true
	}

	return used
}
