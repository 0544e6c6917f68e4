// Package transient tracks objects uploaded during an editing session so they
// can be released when the session replaces, drops or abandons them.
package transient

// Releaser frees the stored object behind ref.
type Releaser func(ref string)

// Attachment is media picked for a field: either a direct URL or an uploaded
// object addressed through URL and identified by Ref.
type Attachment struct {
	URL      string `json:"url"`
	Ref      string `json:"ref,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

// IsTransient reports whether the attachment points at an uploaded object.
func (a Attachment) IsTransient() bool {
	return a.Ref != ""
}

// Registry records the uploaded objects one editing session still owns.
// It is not safe for concurrent use; the owning session serialises access.
type Registry struct {
	release Releaser
	byURL   map[string]string
}

// NewRegistry returns an empty registry. A nil releaser discards releases.
func NewRegistry(release Releaser) *Registry {
	if release == nil {
		release = func(string) {}
	}

	return &Registry{release: release, byURL: make(map[string]string)}
}

// Acquire starts tracking the attachment when it is transient.
func (r *Registry) Acquire(a Attachment) {
	if !a.IsTransient() || a.URL == "" {
		return
	}
	r.byURL[a.URL] = a.Ref
}

// Owns reports whether url belongs to a tracked object.
func (r *Registry) Owns(url string) bool {
	_, ok := r.byURL[url]

	return ok
}

// Release frees the object behind url. Untracked URLs are ignored.
func (r *Registry) Release(url string) {
	ref, ok := r.byURL[url]
	if !ok {
		return
	}
	delete(r.byURL, url)
	r.release(ref)
}

// Replace releases old unless it is the same URL as next.
func (r *Registry) Replace(old, next string) {
	if old == next {
		return
	}
	r.Release(old)
}

// ReleaseAll frees every tracked object.
func (r *Registry) ReleaseAll() {
	for url := range r.byURL {
		r.Release(url)
	}
}

// Retain frees every tracked object whose URL keep rejects and forgets the
// rest, handing their ownership to whatever now references them.
func (r *Registry) Retain(keep func(url string) bool) {
	for url := range r.byURL {
		if keep(url) {
			delete(r.byURL, url)

			continue
		}
		r.Release(url)
	}
}

// Len returns the number of tracked objects.
func (r *Registry) Len() int {
	return len(r.byURL)
}
