package transient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_ReplaceReleasesOld(t *testing.T) {
	var released []string
	reg := NewRegistry(func(ref string) { released = append(released, ref) })

	reg.Acquire(Attachment{URL: "/uploads/a", Ref: "a"})
	reg.Acquire(Attachment{URL: "https://example.com/direct.mp4"})
	assert.Equal(t, 1, reg.Len())

	reg.Replace("/uploads/a", "/uploads/a")
	assert.Empty(t, released)

	reg.Replace("/uploads/a", "/uploads/b")
	assert.Equal(t, []string{"a"}, released)
	assert.False(t, reg.Owns("/uploads/a"))

	reg.Release("/uploads/unknown")
	assert.Len(t, released, 1)
}

func TestRegistry_RetainHandsOverKeptObjects(t *testing.T) {
	var released []string
	reg := NewRegistry(func(ref string) { released = append(released, ref) })

	reg.Acquire(Attachment{URL: "/uploads/keep", Ref: "keep"})
	reg.Acquire(Attachment{URL: "/uploads/drop", Ref: "drop"})

	reg.Retain(func(url string) bool { return url == "/uploads/keep" })

	assert.Equal(t, []string{"drop"}, released)
	assert.Zero(t, reg.Len())

	reg.ReleaseAll()
	assert.Equal(t, []string{"drop"}, released)
}

func TestRegistry_ReleaseAll(t *testing.T) {
	var released []string
	reg := NewRegistry(func(ref string) { released = append(released, ref) })

	reg.Acquire(Attachment{URL: "/uploads/1", Ref: "1"})
	reg.Acquire(Attachment{URL: "/uploads/2", Ref: "2"})
	reg.ReleaseAll()

	assert.ElementsMatch(t, []string{"1", "2"}, released)
	assert.Zero(t, reg.Len())
}

func TestRegistry_NilReleaser(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Acquire(Attachment{URL: "/uploads/x", Ref: "x"})

	assert.NotPanics(t, reg.ReleaseAll)
}
