// Package impl contains the implementation of the application's business logic.
package impl

import (
	"sync"

	"coursecraft/internal/domain/entity"
)

// workspace is one server-side editing session. Its mutex serialises every
// operation on value; closed is set once the session is committed, saved or
// abandoned so late results can be discarded.
type workspace[T any] struct {
	mu     sync.Mutex
	id     string
	owner  string
	value  T
	closed bool
}

// workspaces is a registry of editing sessions keyed by id.
type workspaces[T any] struct {
	mu       sync.RWMutex
	items    map[string]*workspace[T]
	notFound error
}

func newWorkspaces[T any](notFound error) *workspaces[T] {
	return &workspaces[T]{items: make(map[string]*workspace[T]), notFound: notFound}
}

func (w *workspaces[T]) add(owner string, value T) *workspace[T] {
	ws := &workspace[T]{id: entity.NewID(), owner: owner, value: value}

	w.mu.Lock()
	w.items[ws.id] = ws
	w.mu.Unlock()

	return ws
}

// get returns the session when it exists and belongs to owner.
func (w *workspaces[T]) get(id, owner string) (*workspace[T], error) {
	w.mu.RLock()
	ws, ok := w.items[id]
	w.mu.RUnlock()

	if !ok || ws.owner != owner {
		return nil, w.notFound
	}

	return ws, nil
}

// close marks the session closed and forgets it. The caller holds ws.mu.
func (w *workspaces[T]) close(ws *workspace[T]) {
	ws.closed = true

	w.mu.Lock()
	delete(w.items, ws.id)
	w.mu.Unlock()
}

// closeOwner abandons every open session of owner, running release on each
// under its lock before forgetting it.
func (w *workspaces[T]) closeOwner(owner string, release func(T)) int {
	w.mu.RLock()
	var owned []*workspace[T]
	for _, ws := range w.items {
		if ws.owner == owner {
			owned = append(owned, ws)
		}
	}
	w.mu.RUnlock()

	closed := 0
	for _, ws := range owned {
		ws.mu.Lock()
		if !ws.closed {
			release(ws.value)
			w.close(ws)
			closed++
		}
		ws.mu.Unlock()
	}

	return closed
}

// keyedMutex serialises work per key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// lock acquires the lock for key and returns its release func.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
