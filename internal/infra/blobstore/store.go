// Package blobstore keeps editing-session uploads in a gocloud.dev bucket.
package blobstore

import (
	"context"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets
	"gocloud.dev/gcerrors"

	"coursecraft/config"
	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/domain/transient"
)

const fileNameMetadataKey = "filename"

// bucketStore implements service.ObjectStore. Objects are addressed publicly
// as <publicPath>/<key>.
type bucketStore struct {
	bucket     *blob.Bucket
	publicPath string
	logger     *slog.Logger
}

// Params holds dependencies for the object store, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewObjectStore opens the configured uploads bucket.
func NewObjectStore(params Params) (service.ObjectStore, error) {
	cfg := params.Config.Storage

	bucket, err := blob.OpenBucket(params.Ctx, cfg.UploadsBucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "open uploads bucket %s", cfg.UploadsBucketURL)
	}

	params.Logger.Info("Uploads bucket opened", slog.String("url", cfg.UploadsBucketURL))

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			params.Logger.Info("Closing uploads bucket")

			return errors.WithStack(bucket.Close())
		},
	})

	return New(bucket, cfg.PublicPath, params.Logger), nil
}

// New wraps an already opened bucket.
func New(bucket *blob.Bucket, publicPath string, logger *slog.Logger) service.ObjectStore {
	return &bucketStore{
		bucket:     bucket,
		publicPath: "/" + strings.Trim(publicPath, "/"),
		logger:     logger,
	}
}

// Put stores data under a fresh key that keeps the original extension.
func (s *bucketStore) Put(ctx context.Context, fileName, contentType string, data io.Reader) (transient.Attachment, error) {
	key := entity.NewID() + strings.ToLower(path.Ext(fileName))

	opts := &blob.WriterOptions{
		ContentType: contentType,
		Metadata:    map[string]string{fileNameMetadataKey: fileName},
	}

	w, err := s.bucket.NewWriter(ctx, key, opts)
	if err != nil {
		return transient.Attachment{}, errors.Wrap(err, "open upload writer")
	}
	if _, err := io.Copy(w, data); err != nil {
		_ = w.Close()

		return transient.Attachment{}, errors.Wrap(err, "write upload")
	}
	if err := w.Close(); err != nil {
		return transient.Attachment{}, errors.Wrap(err, "finish upload")
	}

	s.logger.DebugContext(ctx, "Upload stored",
		slog.String("key", key),
		slog.String("content_type", contentType),
	)

	return transient.Attachment{URL: s.publicPath + "/" + key, Ref: key, FileName: fileName}, nil
}

// Open streams a stored object.
func (s *bucketStore) Open(ctx context.Context, key string) (io.ReadCloser, *service.ObjectInfo, error) {
	if !validKey(key) {
		return nil, nil, domainerrors.ErrUploadNotFound
	}

	attrs, err := s.bucket.Attributes(ctx, key)
	if err != nil {
		return nil, nil, s.mapError(err, "read upload attributes")
	}

	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, nil, s.mapError(err, "open upload")
	}

	return r, &service.ObjectInfo{
		Key:         key,
		ContentType: attrs.ContentType,
		FileName:    attrs.Metadata[fileNameMetadataKey],
		Size:        attrs.Size,
	}, nil
}

// ReadAll loads an object addressed by its public URL.
func (s *bucketStore) ReadAll(ctx context.Context, url string) ([]byte, *service.ObjectInfo, error) {
	key, ok := s.KeyFor(url)
	if !ok {
		return nil, nil, domainerrors.ErrUploadNotFound
	}

	r, info, err := s.Open(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read upload")
	}

	return data, info, nil
}

// Delete removes an object. Missing objects are not an error.
func (s *bucketStore) Delete(ctx context.Context, key string) error {
	if !validKey(key) {
		return nil
	}

	err := s.bucket.Delete(ctx, key)
	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return errors.Wrap(err, "delete upload")
	}

	return nil
}

// KeyFor extracts the object key from a public upload URL.
func (s *bucketStore) KeyFor(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.publicPath+"/")
	if !ok || !validKey(key) {
		return "", false
	}

	return key, true
}

func (s *bucketStore) mapError(err error, msg string) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		return domainerrors.ErrUploadNotFound
	}

	return errors.Wrap(err, msg)
}

// validKey rejects keys that could escape a file:// bucket root.
func validKey(key string) bool {
	return key != "" && !strings.Contains(key, "/") && !strings.Contains(key, "..")
}
