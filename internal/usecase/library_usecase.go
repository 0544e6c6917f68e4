package usecase

import (
	"context"

	"coursecraft/internal/domain/entity"
)

// LibraryItem is a purchased product with the buyer's progress.
type LibraryItem struct {
	Product  *entity.Product `json:"product"`
	Progress int             `json:"progress"` // Percent of lessons completed.
}

// CourseView is the course player state for one product.
type CourseView struct {
	Product             *entity.Product `json:"product"`
	Lessons             []entity.Lesson `json:"lessons"`
	Completed           []string        `json:"completedLessonIds"`
	CurrentLessonID     string          `json:"currentLessonId,omitempty"`
	Progress            int             `json:"progress"`
	CertificateUnlocked bool            `json:"certificateUnlocked"`
	HasReviewed         bool            `json:"hasReviewed"`
}

// ReviewInput is a new product review.
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment" validate:"max=2000"`
}

// LibraryUsecase serves students their purchases and the course player.
type LibraryUsecase interface {
	List(ctx context.Context, userID string) ([]LibraryItem, error)
	Course(ctx context.Context, userID, productID string) (*CourseView, error)

	// CompleteLesson marks a lesson done and moves to the next one.
	CompleteLesson(ctx context.Context, userID, productID, lessonID string) (*CourseView, error)

	// Certificate renders the completion certificate once every lesson is done.
	Certificate(ctx context.Context, userID, productID string) ([]byte, error)

	AddReview(ctx context.Context, userID, productID string, input ReviewInput) (*entity.Review, error)

	// ClaimFree adds a free product to the library, crediting the referring
	// affiliate when a referral code is given.
	ClaimFree(ctx context.Context, userID, productID, referralCode string) (*entity.Sale, error)
}
