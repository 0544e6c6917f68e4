package landing

import (
	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/transient"
)

// Field names accepted by SectionEditor.SetField.
const (
	FieldTitle    = "title"
	FieldSubtitle = "subtitle"
	FieldText     = "text"
	FieldCTAText  = "ctaText"
	FieldImageURL = "imageUrl"
)

// SectionEditor holds a private copy of one section's content. Changes only
// reach the page on Save.
type SectionEditor struct {
	composer *Composer
	id       string
	original entity.SectionContent
	content  entity.SectionContent
	acquired []string
	closed   bool
}

// SectionID returns the id of the section being edited.
func (e *SectionEditor) SectionID() string {
	return e.id
}

// Content returns the edited content.
func (e *SectionEditor) Content() entity.SectionContent {
	return e.content
}

// SetField changes one scalar field.
func (e *SectionEditor) SetField(name, value string) error {
	if e.closed {
		return domainerrors.ErrSectionEditorClosed
	}

	f := e.content.Fields()
	switch name {
	case FieldTitle:
		f.Title = value
	case FieldSubtitle:
		f.Subtitle = value
	case FieldText:
		f.Text = value
	case FieldCTAText:
		f.CTAText = value
	case FieldImageURL:
		e.replaceImage(f.ImageURL, value)
		f.ImageURL = value
	default:
		return domainerrors.ErrSectionFieldUnsupported.WithDetails(name)
	}
	e.content = e.content.WithFields(f)

	return nil
}

// SetImage sets the section image from an upload or a direct URL.
func (e *SectionEditor) SetImage(a transient.Attachment) error {
	if e.closed {
		return domainerrors.ErrSectionEditorClosed
	}

	e.composer.objects.Acquire(a)
	if a.IsTransient() {
		e.acquired = append(e.acquired, a.URL)
	}

	return e.SetField(FieldImageURL, a.URL)
}

// SetTestimonials replaces the testimonial list of a testimonials section.
func (e *SectionEditor) SetTestimonials(items []entity.Testimonial) error {
	if e.closed {
		return domainerrors.ErrSectionEditorClosed
	}

	c, ok := e.content.(entity.TestimonialsContent)
	if !ok {
		return domainerrors.ErrSectionFieldUnsupported.WithDetails("testimonials")
	}
	c.Testimonials = append([]entity.Testimonial{}, items...)
	e.content = c

	return nil
}

// SetFAQItems replaces the question list of a FAQ section.
func (e *SectionEditor) SetFAQItems(items []entity.FAQItem) error {
	if e.closed {
		return domainerrors.ErrSectionEditorClosed
	}

	c, ok := e.content.(entity.FAQContent)
	if !ok {
		return domainerrors.ErrSectionFieldUnsupported.WithDetails("items")
	}
	c.Items = append([]entity.FAQItem{}, items...)
	e.content = c

	return nil
}

// Save writes the edited content back to the page, keeping its position.
func (e *SectionEditor) Save() error {
	if e.closed {
		return domainerrors.ErrSectionEditorClosed
	}

	if err := e.composer.replaceSection(entity.PageSection{ID: e.id, Content: e.content}); err != nil {
		return err
	}
	e.closed = true

	return nil
}

// Cancel discards the edited copy and releases images uploaded in this editor.
func (e *SectionEditor) Cancel() {
	if e.closed {
		return
	}
	e.closed = true

	keep := e.original.Fields().ImageURL
	for _, url := range e.acquired {
		if url != keep {
			e.composer.objects.Release(url)
		}
	}
}

// replaceImage releases an upload made in this editor once it is overwritten.
func (e *SectionEditor) replaceImage(old, next string) {
	if old == next || old == e.original.Fields().ImageURL {
		return
	}
	for _, url := range e.acquired {
		if url == old {
			e.composer.objects.Release(old)

			return
		}
	}
}
