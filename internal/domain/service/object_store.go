package service

import (
	"context"
	"io"

	"coursecraft/internal/domain/transient"
)

// ObjectInfo describes a stored upload.
type ObjectInfo struct {
	Key         string
	ContentType string
	FileName    string
	Size        int64
}

// ObjectStore keeps uploaded and generated media for editing sessions.
type ObjectStore interface {
	// Put stores data and returns an attachment addressing it.
	Put(ctx context.Context, fileName, contentType string, data io.Reader) (transient.Attachment, error)

	// Open streams a stored object. The caller closes the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)

	// ReadAll loads a stored object addressed by its public URL.
	ReadAll(ctx context.Context, url string) ([]byte, *ObjectInfo, error)

	// Delete removes an object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
}
