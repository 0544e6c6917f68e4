package memory

import (
	"context"

	"coursecraft/internal/domain/entity"
	"coursecraft/internal/domain/repository"
	"coursecraft/internal/domain/shell"
)

// progressRepository implements repository.ProgressRepository.
type progressRepository struct {
	store accessor
}

// NewProgressRepository is the constructor for progressRepository.
func NewProgressRepository(db *DB) repository.ProgressRepository {
	return &progressRepository{store: db}
}

// Get returns the stored progress or an empty record.
func (repo *progressRepository) Get(_ context.Context, userID, productID string) (*entity.CourseProgress, error) {
	var out *entity.CourseProgress
	repo.store.read(func(d *dataset) {
		if p, ok := d.progress[progressKey(userID, productID)]; ok {
			out = cloneProgress(p)
		}
	})
	if out == nil {
		out = &entity.CourseProgress{UserID: userID, ProductID: productID, Completed: map[string]bool{}}
	}

	return out, nil
}

func (repo *progressRepository) Save(_ context.Context, progress *entity.CourseProgress) error {
	return repo.store.write(func(d *dataset) error {
		d.progress[progressKey(progress.UserID, progress.ProductID)] = cloneProgress(progress)

		return nil
	})
}

// sessionRepository implements repository.SessionRepository.
type sessionRepository struct {
	store accessor
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *DB) repository.SessionRepository {
	return &sessionRepository{store: db}
}

func (repo *sessionRepository) Find(_ context.Context, id string) (*shell.Session, error) {
	var out *shell.Session
	repo.store.read(func(d *dataset) {
		if s, ok := d.sessions[id]; ok {
			cp := *s
			out = &cp
		}
	})
	if out == nil {
		return nil, repository.ErrSessionNotFound
	}

	return out, nil
}

func (repo *sessionRepository) Save(_ context.Context, s *shell.Session) error {
	return repo.store.write(func(d *dataset) error {
		cp := *s
		d.sessions[s.ID] = &cp

		return nil
	})
}

func (repo *sessionRepository) Delete(_ context.Context, id string) error {
	return repo.store.write(func(d *dataset) error {
		delete(d.sessions, id)

		return nil
	})
}
