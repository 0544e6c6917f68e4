// Package landing edits and renders a creator's storefront landing page.
package landing

import (
	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/transient"
)

// Composer is a site editor session over a working copy of a landing page.
// Nothing reaches the creator until Finish is called.
type Composer struct {
	page    *entity.LandingPage
	objects *transient.Registry
	editor  *SectionEditor
	closed  bool
}

// NewComposer opens a working copy of page.
func NewComposer(page *entity.LandingPage, objects *transient.Registry) *Composer {
	if page == nil {
		page = &entity.LandingPage{}
	}
	if objects == nil {
		objects = transient.NewRegistry(nil)
	}

	return &Composer{page: page.Clone(), objects: objects}
}

// Page returns a copy of the working page.
func (c *Composer) Page() *entity.LandingPage {
	return c.page.Clone()
}

// Closed reports whether the session has been finished or discarded.
func (c *Composer) Closed() bool {
	return c.closed
}

// Editor returns the open section editor, if any.
func (c *Composer) Editor() *SectionEditor {
	if c.editor == nil || c.editor.closed {
		return nil
	}

	return c.editor
}

// OpenEditor starts editing one section. A previously open editor is cancelled.
func (c *Composer) OpenEditor(sectionID string) (*SectionEditor, error) {
	if c.closed {
		return nil, domainerrors.ErrSessionClosed
	}

	i := c.page.IndexOf(sectionID)
	if i < 0 {
		return nil, domainerrors.ErrSectionNotFound
	}

	if c.editor != nil && !c.editor.closed {
		c.editor.Cancel()
	}

	section := c.page.Sections[i].Clone()
	if section.Content == nil {
		return nil, domainerrors.ErrSectionNotFound
	}
	c.editor = &SectionEditor{
		composer: c,
		id:       section.ID,
		original: section.Content,
		content:  section.Content,
	}

	return c.editor, nil
}

// ApplyTemplate replaces the working page with a copy of tpl.
func (c *Composer) ApplyTemplate(tpl *entity.LandingPage) error {
	if c.closed {
		return domainerrors.ErrSessionClosed
	}
	if tpl == nil {
		return domainerrors.ErrTemplateNotFound
	}

	c.cancelEditor()
	c.page = tpl.Clone()

	return nil
}

// ReplacePage installs a generated page, repairing missing or repeated
// section ids so replace-by-id stays unambiguous.
func (c *Composer) ReplacePage(page *entity.LandingPage) error {
	if c.closed {
		return domainerrors.ErrSessionClosed
	}
	if page == nil {
		return domainerrors.ErrValidationFailed.WithDetails("generated page is empty")
	}

	c.cancelEditor()
	c.page = page.Clone()
	EnsureUniqueIDs(c.page)

	return nil
}

// AttachImage registers an uploaded or generated image with the session.
func (c *Composer) AttachImage(a transient.Attachment) {
	c.objects.Acquire(a)
}

// Finish closes the session and returns the page to persist. Uploads the
// page no longer references are released.
func (c *Composer) Finish() (*entity.LandingPage, error) {
	if c.closed {
		return nil, domainerrors.ErrSessionClosed
	}

	c.cancelEditor()
	c.closed = true

	used := referencedImages(c.page)
	c.objects.Retain(func(url string) bool { return used[url] })

	return c.page.Clone(), nil
}

// Discard closes the session without saving and releases every upload.
func (c *Composer) Discard() error {
	if c.closed {
		return domainerrors.ErrSessionClosed
	}

	c.cancelEditor()
	c.closed = true
	c.objects.ReleaseAll()

	return nil
}

func (c *Composer) cancelEditor() {
	if c.editor != nil && !c.editor.closed {
		c.editor.Cancel()
	}
	c.editor = nil
}

// replaceSection swaps in s by id, building a new section slice.
func (c *Composer) replaceSection(s entity.PageSection) error {
	i := c.page.IndexOf(s.ID)
	if i < 0 {
		return domainerrors.ErrSectionNotFound
	}

	sections := make([]entity.PageSection, len(c.page.Sections))
	copy(sections, c.page.Sections)
	sections[i] = s
	c.page = &entity.LandingPage{TemplateID: c.page.TemplateID, Sections: sections}

	return nil
}

func referencedImages(page *entity.LandingPage) map[string]bool {
	used := make(map[string]bool, len(page.Sections))
	for _, s := range page.Sections {
		if s.Content == nil {
			continue
		}
		if img := s.Content.Fields().ImageURL; img != "" {
			used[img] = true
		}
	}

	return used
}

// EnsureUniqueIDs gives every section without an id, or with an id already
// used earlier in the page, a fresh one. Order is left untouched.
func EnsureUniqueIDs(page *entity.LandingPage) {
	seen := make(map[string]bool, len(page.Sections))
	for i := range page.Sections {
		id := page.Sections[i].ID
		if id == "" || seen[id] {
			id = string(page.Sections[i].Type()) + "-" + entity.NewID()
			page.Sections[i].ID = id
		}
		seen[id] = true
	}
}
