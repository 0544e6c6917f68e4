package usecase

import (
	"context"
	"io"

	"coursecraft/internal/domain/entity"
	"coursecraft/internal/domain/repository"
)

// SiteEditorView is the working state of a site editor session.
type SiteEditorView struct {
	ID            string                `json:"id"`
	Page          *entity.LandingPage   `json:"page"`
	OpenSectionID string                `json:"openSectionId,omitempty"`
	OpenSection   *entity.PageSection   `json:"openSection,omitempty"`
	Templates     []repository.Template `json:"templates,omitempty"`
	Warnings      []string              `json:"warnings,omitempty"`
}

// SiteEditorUsecase runs landing page editing sessions for creators.
type SiteEditorUsecase interface {
	WorkspaceCloser

	Open(ctx context.Context, creatorID string) (*SiteEditorView, error)
	Get(ctx context.Context, creatorID, editorID string) (*SiteEditorView, error)

	// Preview renders the working page with an edit affordance per section.
	Preview(ctx context.Context, w io.Writer, creatorID, editorID string, editURL func(sectionID string) string) error

	OpenSection(ctx context.Context, creatorID, editorID, sectionID string) (*SiteEditorView, error)
	SetSectionField(ctx context.Context, creatorID, editorID, field, value string) (*SiteEditorView, error)
	SetSectionImage(ctx context.Context, creatorID, editorID string, media Media) (*SiteEditorView, error)
	GenerateSectionImage(ctx context.Context, creatorID, editorID, prompt string) (*SiteEditorView, error)
	SetTestimonials(ctx context.Context, creatorID, editorID string, items []entity.Testimonial) (*SiteEditorView, error)
	SetFAQItems(ctx context.Context, creatorID, editorID string, items []entity.FAQItem) (*SiteEditorView, error)
	SaveSection(ctx context.Context, creatorID, editorID string) (*SiteEditorView, error)
	CancelSection(ctx context.Context, creatorID, editorID string) (*SiteEditorView, error)

	ApplyTemplate(ctx context.Context, creatorID, editorID, templateID string) (*SiteEditorView, error)

	// Generate drafts a whole page from a prompt. Section images that cannot
	// be produced are left empty and reported as warnings.
	Generate(ctx context.Context, creatorID, editorID, prompt string) (*SiteEditorView, error)

	// Save writes the working page to the creator and closes the session.
	Save(ctx context.Context, creatorID, editorID string) (*entity.LandingPage, error)
	Discard(ctx context.Context, creatorID, editorID string) error
}
