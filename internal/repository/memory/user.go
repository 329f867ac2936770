package memory

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"ridewallet/internal/domain"
	"ridewallet/internal/repository"
)

// UserRepository implements repository.UserRepository in memory.
type UserRepository struct {
	access accessor
}

// Create adds a new user with an empty wallet.
func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	return r.access(func(st *state) error {
		email := strings.ToLower(user.Email)
		if _, ok := st.users[user.ID]; ok {
			return repository.ErrAlreadyExists
		}
		if _, ok := st.emails[email]; ok {
			return repository.ErrAlreadyExists
		}
		user.WalletBalance = decimal.Zero
		u := *user
		st.users[u.ID] = &u
		st.emails[email] = u.ID
		return nil
	})
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	var out *domain.User
	err := r.access(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		cp := *u
		out = &cp
		return nil
	})
	return out, err
}

// GetByEmail retrieves a user by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var id string
	err := r.access(func(st *state) error {
		var ok bool
		if id, ok = st.emails[strings.ToLower(email)]; !ok {
			return repository.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
