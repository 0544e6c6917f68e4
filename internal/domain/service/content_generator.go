package service

import (
	"context"

	"coursecraft/internal/domain/entity"
)

// GeneratedImage is raw image data returned by the generator.
type GeneratedImage struct {
	Data     []byte
	MIMEType string
}

// GeneratedPage is a landing page drafted by the generator. Sections that
// should carry a picture have an entry in ImagePrompts keyed by section id;
// their ImageURL is left empty until an image is produced.
type GeneratedPage struct {
	Page         *entity.LandingPage
	ImagePrompts map[string]string
}

// ChatRole names the author of a chat turn.
type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatTurn is one message of an assistant conversation.
type ChatTurn struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// ContentGenerator is the external text and image generation service.
//
// Every method fails with ErrGenerationUnavailable when no credential is
// configured, ErrGenerationQuotaExceeded when the service is rate limiting
// and ErrGenerationFailed otherwise.
type ContentGenerator interface {
	// Available reports whether a credential is configured.
	Available() bool

	GenerateDescription(ctx context.Context, title string, productType entity.ProductType, keywords string) (string, error)
	GenerateImage(ctx context.Context, prompt string, ratio entity.AspectRatio) (*GeneratedImage, error)
	GenerateCertificateTheme(ctx context.Context, prompt string) (entity.CertificateDesign, error)
	GenerateLandingPage(ctx context.Context, prompt, creatorName string, products []*entity.Product) (*GeneratedPage, error)

	// SendChatMessage continues the conversation in history with message and
	// returns the assistant's reply.
	SendChatMessage(ctx context.Context, history []ChatTurn, message string) (string, error)
}
