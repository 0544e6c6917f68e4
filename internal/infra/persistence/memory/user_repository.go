package memory

import (
	"context"

	"coursecraft/internal/domain/entity"
	"coursecraft/internal/domain/repository"
	"coursecraft/internal/errors"
)

// userRepository implements repository.UserRepository. Users are returned as
// copies so callers never share state with the store.
type userRepository struct {
	store accessor
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{store: db}
}

func (repo *userRepository) find(match func(u *entity.User) bool) (*entity.User, bool) {
	var found *entity.User
	repo.store.read(func(d *dataset) {
		for _, u := range d.users {
			if match(u) {
				found = u.Clone()

				return
			}
		}
	})

	return found, found != nil
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	if u, ok := repo.find(func(u *entity.User) bool { return u.ID == id }); ok {
		return u, nil
	}

	return nil, repository.ErrUserNotFound
}

// FindByEmail matches the email case-insensitively.
func (repo *userRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if u, ok := repo.find(func(u *entity.User) bool { return u.SameEmail(email) }); ok {
		return u, nil
	}

	return nil, repository.ErrUserNotFound
}

// FindByAffiliateID retrieves the affiliate owning a referral id.
func (repo *userRepository) FindByAffiliateID(_ context.Context, affiliateID string) (*entity.User, error) {
	u, ok := repo.find(func(u *entity.User) bool {
		return u.AffiliateProfile != nil && u.AffiliateID == affiliateID
	})
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return u, nil
}

// ListByRole returns users of one role in insertion order.
func (repo *userRepository) ListByRole(_ context.Context, role entity.Role) ([]*entity.User, error) {
	var out []*entity.User
	repo.store.read(func(d *dataset) {
		for _, u := range d.users {
			if u.Role == role {
				out = append(out, u.Clone())
			}
		}
	})

	return out, nil
}

// Create appends a new user after checking the one-role invariant and email uniqueness.
func (repo *userRepository) Create(_ context.Context, user *entity.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	return repo.store.write(func(d *dataset) error {
		for _, u := range d.users {
			if u.SameEmail(user.Email) {
				return repository.ErrDuplicateEmail
			}
			if u.ID == user.ID {
				return errors.Errorf("user %s already exists", user.ID)
			}
		}
		d.users = append(d.users, user.Clone())

		return nil
	})
}

// Update replaces an existing user.
func (repo *userRepository) Update(_ context.Context, user *entity.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	return repo.store.write(func(d *dataset) error {
		for i, u := range d.users {
			if u.ID != user.ID {
				continue
			}
			d.users[i] = user.Clone()

			return nil
		}

		return repository.ErrUserNotFound
	})
}
