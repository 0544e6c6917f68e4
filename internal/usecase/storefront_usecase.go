package usecase

import (
	"context"
	"io"

	"coursecraft/internal/domain/service"
)

// StorefrontUsecase renders public creator pages and serves uploads.
type StorefrontUsecase interface {
	// RenderStore writes a creator's landing page as HTML.
	RenderStore(ctx context.Context, w io.Writer, creatorID string) error

	// RenderProduct writes a product detail page as HTML.
	RenderProduct(ctx context.Context, w io.Writer, creatorID, productID string) error

	// OpenUpload streams a stored upload. The caller closes the reader.
	OpenUpload(ctx context.Context, key string) (io.ReadCloser, *service.ObjectInfo, error)
}
