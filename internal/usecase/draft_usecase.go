package usecase

import (
	"context"
	"io"

	"coursecraft/internal/domain/authoring"
	"coursecraft/internal/domain/entity"
)

// Upload is a file sent by the client.
type Upload struct {
	FileName    string
	ContentType string
	Data        io.Reader
}

// Media is either an upload or a pasted URL.
type Media struct {
	URL    string
	Upload *Upload
}

// DraftView is a draft's state as shown to the creator.
type DraftView struct {
	ID string `json:"id"`
	authoring.Snapshot
}

// DraftUsecase runs product editing sessions. Every draft belongs to the
// creator who opened it.
type DraftUsecase interface {
	WorkspaceCloser

	// Open starts a draft for a new product, or for productID when set.
	Open(ctx context.Context, creatorID, productID string) (*DraftView, error)
	Get(ctx context.Context, creatorID, draftID string) (*DraftView, error)
	Update(ctx context.Context, creatorID, draftID string, patch authoring.Patch) (*DraftView, error)
	Cancel(ctx context.Context, creatorID, draftID string) error

	AddLesson(ctx context.Context, creatorID, draftID string) (*DraftView, error)
	EditLesson(ctx context.Context, creatorID, draftID, lessonID string, patch authoring.LessonPatch) (*DraftView, error)
	DeleteLesson(ctx context.Context, creatorID, draftID, lessonID string) (*DraftView, error)

	AddSchoolDay(ctx context.Context, creatorID, draftID string) (*DraftView, error)
	RenameSchoolDay(ctx context.Context, creatorID, draftID, dayID, title string) (*DraftView, error)
	DeleteSchoolDay(ctx context.Context, creatorID, draftID, dayID string) (*DraftView, error)
	AddLessonToDay(ctx context.Context, creatorID, draftID, dayID string) (*DraftView, error)
	EditDayLesson(ctx context.Context, creatorID, draftID, dayID, lessonID string, patch authoring.LessonPatch) (*DraftView, error)
	DeleteLessonFromDay(ctx context.Context, creatorID, draftID, dayID, lessonID string) (*DraftView, error)

	AddResource(ctx context.Context, creatorID, draftID string, scope authoring.ResourceScope) (*DraftView, error)
	EditResource(ctx context.Context, creatorID, draftID string, scope authoring.ResourceScope, resourceID string, patch authoring.ResourcePatch) (*DraftView, error)
	DeleteResource(ctx context.Context, creatorID, draftID string, scope authoring.ResourceScope, resourceID string) (*DraftView, error)

	// AttachLessonVideo sets a lesson video; dayID is empty for course lessons.
	AttachLessonVideo(ctx context.Context, creatorID, draftID, dayID, lessonID string, media Media) (*DraftView, error)
	AttachResourceFile(ctx context.Context, creatorID, draftID string, scope authoring.ResourceScope, resourceID string, media Media) (*DraftView, error)
	SetImage(ctx context.Context, creatorID, draftID string, media Media) (*DraftView, error)

	// CropImage replaces the uploaded cover image with a crop to ratio.
	CropImage(ctx context.Context, creatorID, draftID string, ratio entity.AspectRatio) (*DraftView, error)

	GenerateImage(ctx context.Context, creatorID, draftID, prompt string, ratio entity.AspectRatio) (*DraftView, error)
	GenerateDescription(ctx context.Context, creatorID, draftID, keywords string) (*DraftView, error)
	GenerateCertificate(ctx context.Context, creatorID, draftID, prompt string) (*DraftView, error)

	// Commit validates the draft and saves the product.
	Commit(ctx context.Context, creatorID, draftID string) (*entity.Product, error)
}
