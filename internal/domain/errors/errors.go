package errors

import (
	"fmt"
	"net/http"

	"coursecraft/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// Is matches any BaseError carrying the same business code, so copies made by
// WithDetails or WithMessage still satisfy errors.Is against the predefined value.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return t.errorCode == e.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// WithMessage returns a copy of the error with a different user-facing message
func (e *BaseError) WithMessage(message string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   message,
		details:   e.details,
	}
}

// Predefined error types
var (
	// User-related errors
	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"User not found.",
		"",
	)

	ErrUserAlreadyExists = NewBaseError(
		http.StatusConflict,
		"USER_ALREADY_EXISTS",
		"An account with this email already exists.",
		"",
	)

	// Authentication-related errors
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Invalid email or password.",
		"",
	)

	ErrUnauthenticated = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHENTICATED",
		"Please sign in to continue.",
		"",
	)

	ErrPasswordHashFailed = NewBaseError(
		http.StatusInternalServerError,
		"PASSWORD_HASH_FAILED",
		"Password processing failed.",
		"",
	)

	// Shell-related errors
	ErrShellSessionNotFound = NewBaseError(
		http.StatusNotFound,
		"SHELL_SESSION_NOT_FOUND",
		"Session not found.",
		"",
	)

	ErrInvalidTransition = NewBaseError(
		http.StatusConflict,
		"INVALID_TRANSITION",
		"This action is not available right now.",
		"",
	)

	ErrUnknownView = NewBaseError(
		http.StatusBadRequest,
		"UNKNOWN_VIEW",
		"Unknown view.",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Input validation failed.",
		"",
	)

	// Product-related errors
	ErrProductNotFound = NewBaseError(
		http.StatusNotFound,
		"PRODUCT_NOT_FOUND",
		"Product not found.",
		"",
	)

	ErrProductInvalid = NewBaseError(
		http.StatusBadRequest,
		"PRODUCT_INVALID",
		"Please fill in product name and a valid price (0 is allowed for free products).",
		"",
	)

	ErrProductOwnership = NewBaseError(
		http.StatusForbidden,
		"PRODUCT_OWNERSHIP_VIOLATION",
		"You do not have permission to modify this product.",
		"",
	)

	// Authoring-related errors
	ErrDraftNotFound = NewBaseError(
		http.StatusNotFound,
		"DRAFT_NOT_FOUND",
		"Draft not found.",
		"",
	)

	ErrDraftClosed = NewBaseError(
		http.StatusConflict,
		"DRAFT_CLOSED",
		"This draft has already been saved or discarded.",
		"",
	)

	ErrLessonNotFound = NewBaseError(
		http.StatusNotFound,
		"LESSON_NOT_FOUND",
		"Lesson not found.",
		"",
	)

	ErrSchoolDayNotFound = NewBaseError(
		http.StatusNotFound,
		"SCHOOL_DAY_NOT_FOUND",
		"School day not found.",
		"",
	)

	ErrResourceNotFound = NewBaseError(
		http.StatusNotFound,
		"RESOURCE_NOT_FOUND",
		"Resource not found.",
		"",
	)

	ErrInvalidImage = NewBaseError(
		http.StatusBadRequest,
		"INVALID_IMAGE",
		"The image could not be read.",
		"",
	)

	ErrNoImage = NewBaseError(
		http.StatusBadRequest,
		"NO_IMAGE",
		"Add an image before cropping.",
		"",
	)

	// Session results that arrive after their editing scope closed
	ErrSessionClosed = NewBaseError(
		http.StatusGone,
		"SESSION_CLOSED",
		"The editing session was closed before the result arrived.",
		"",
	)

	// Landing page errors
	ErrEditorSessionNotFound = NewBaseError(
		http.StatusNotFound,
		"EDITOR_SESSION_NOT_FOUND",
		"Site editor session not found.",
		"",
	)

	ErrSectionNotFound = NewBaseError(
		http.StatusNotFound,
		"SECTION_NOT_FOUND",
		"Section not found.",
		"",
	)

	ErrSectionEditorClosed = NewBaseError(
		http.StatusConflict,
		"SECTION_EDITOR_CLOSED",
		"No section is being edited.",
		"",
	)

	ErrSectionFieldUnsupported = NewBaseError(
		http.StatusBadRequest,
		"SECTION_FIELD_UNSUPPORTED",
		"This field cannot be edited on this section.",
		"",
	)

	ErrTemplateNotFound = NewBaseError(
		http.StatusNotFound,
		"TEMPLATE_NOT_FOUND",
		"Template not found.",
		"",
	)

	// Library and review errors
	ErrNotPurchased = NewBaseError(
		http.StatusForbidden,
		"NOT_PURCHASED",
		"You have not purchased this product.",
		"",
	)

	ErrRatingRequired = NewBaseError(
		http.StatusBadRequest,
		"RATING_REQUIRED",
		"Please select a star rating.",
		"",
	)

	ErrReviewAlreadyExists = NewBaseError(
		http.StatusConflict,
		"REVIEW_ALREADY_EXISTS",
		"You have already reviewed this product.",
		"",
	)

	ErrCertificateLocked = NewBaseError(
		http.StatusForbidden,
		"CERTIFICATE_LOCKED",
		"Complete every lesson to unlock the certificate.",
		"",
	)

	// Affiliate errors
	ErrAffiliateNotFound = NewBaseError(
		http.StatusNotFound,
		"AFFILIATE_NOT_FOUND",
		"Affiliate not found.",
		"",
	)

	ErrAffiliateProgramDisabled = NewBaseError(
		http.StatusForbidden,
		"AFFILIATE_PROGRAM_DISABLED",
		"This creator does not run an affiliate program.",
		"",
	)

	ErrNotificationNotFound = NewBaseError(
		http.StatusNotFound,
		"NOTIFICATION_NOT_FOUND",
		"Notification not found.",
		"",
	)

	ErrUploadNotFound = NewBaseError(
		http.StatusNotFound,
		"UPLOAD_NOT_FOUND",
		"Upload not found.",
		"",
	)

	// Content generation gateway errors
	ErrGenerationUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"GENERATION_UNAVAILABLE",
		"AI service is unavailable. Please configure your API key.",
		"",
	)

	ErrGenerationQuotaExceeded = NewBaseError(
		http.StatusTooManyRequests,
		"GENERATION_QUOTA_EXCEEDED",
		"API quota exceeded. You've made too many requests in a short time. Please wait a few moments and try again.",
		"",
	)

	ErrGenerationFailed = NewBaseError(
		http.StatusBadGateway,
		"GENERATION_FAILED",
		"There was an error generating the content. Please try again.",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error.",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"Access denied.",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Resource not found.",
		"",
	)

	ErrConflict = NewBaseError(
		http.StatusConflict,
		"CONFLICT",
		"Resource conflict.",
		"",
	)
)

// GenerationFailed returns the generic gateway failure phrased for one feature,
// e.g. "description" or "certificate design".
func GenerationFailed(feature string) *BaseError {
	return ErrGenerationFailed.WithMessage(
		fmt.Sprintf("There was an error generating the %s. Please try again.", feature),
	)
}
