package blobstore

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"

	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/service"
)

func newStore(t *testing.T) service.ObjectStore {
	t.Helper()

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	return New(bucket, "uploads/", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBucketStore_PutOpenDelete(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	att, err := store.Put(ctx, "Lesson One.MP4", "video/mp4", strings.NewReader("frames"))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(att.Ref, ".mp4"))
	assert.Equal(t, "/uploads/"+att.Ref, att.URL)
	assert.Equal(t, "Lesson One.MP4", att.FileName)
	assert.True(t, att.IsTransient())

	r, info, err := store.Open(ctx, att.Ref)
	require.NoError(t, err)
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "frames", string(body))
	assert.Equal(t, "video/mp4", info.ContentType)
	assert.Equal(t, "Lesson One.MP4", info.FileName)
	assert.EqualValues(t, 6, info.Size)

	data, _, err := store.ReadAll(ctx, att.URL)
	require.NoError(t, err)
	assert.Equal(t, "frames", string(data))

	require.NoError(t, store.Delete(ctx, att.Ref))
	require.NoError(t, store.Delete(ctx, att.Ref), "deleting twice is fine")

	_, _, err = store.Open(ctx, att.Ref)
	assert.ErrorIs(t, err, domainerrors.ErrUploadNotFound)
}

func TestBucketStore_ReadAllRejectsForeignURLs(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for _, url := range []string{
		"https://images.unsplash.com/photo.jpg",
		"/uploads/../config.yaml",
		"/uploads/",
		"/elsewhere/abc.png",
	} {
		_, _, err := store.ReadAll(ctx, url)
		assert.ErrorIs(t, err, domainerrors.ErrUploadNotFound, url)
	}
}
