// Package memory is an in-process repository.Store used for local runs and tests.
package memory

import (
	"context"
	"sync"

	"ridewallet/internal/domain"
	"ridewallet/internal/repository"
)

// state is everything the store holds. Entities are stored by value behind
// pointers that never leave the package.
type state struct {
	users     map[string]*domain.User
	emails    map[string]string
	rides     map[string]*domain.Ride
	rideOrder []string
	txns      []*domain.Transaction
	reviews   map[string]*domain.Review // keyed by ride ID
}

func newState() *state {
	return &state{
		users:   make(map[string]*domain.User),
		emails:  make(map[string]string),
		rides:   make(map[string]*domain.Ride),
		reviews: make(map[string]*domain.Review),
	}
}

func (s *state) clone() *state {
	c := &state{
		users:     make(map[string]*domain.User, len(s.users)),
		emails:    make(map[string]string, len(s.emails)),
		rides:     make(map[string]*domain.Ride, len(s.rides)),
		rideOrder: append([]string(nil), s.rideOrder...),
		txns:      append([]*domain.Transaction(nil), s.txns...), // entries are never mutated
		reviews:   make(map[string]*domain.Review, len(s.reviews)),
	}
	for k, v := range s.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range s.emails {
		c.emails[k] = v
	}
	for k, v := range s.rides {
		r := *v
		c.rides[k] = &r
	}
	for k, v := range s.reviews {
		c.reviews[k] = v
	}
	return c
}

// accessor runs fn against the state a repository is bound to.
type accessor func(fn func(st *state) error) error

// Store is an in-memory repository.Store. Units of work run one at a time on
// a private copy of the state that replaces the live state on success.
type Store struct {
	mu sync.Mutex
	st *state
}

var _ repository.Store = (*Store)(nil)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Repositories returns repositories that apply every call directly.
func (s *Store) Repositories() repository.Repositories {
	return newRepositories(func(fn func(st *state) error) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(s.st)
	})
}

// Do runs fn against a copy of the state and publishes the copy only when fn succeeds.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	repos := newRepositories(func(f func(st *state) error) error {
		return f(work)
	})
	if err := fn(ctx, repos); err != nil {
		return err
	}
	s.st = work
	return nil
}

func newRepositories(access accessor) repository.Repositories {
	return repository.Repositories{
		Users:   &UserRepository{access: access},
		Rides:   &RideRepository{access: access},
		Ledger:  &LedgerRepository{access: access},
		Reviews: &ReviewRepository{access: access},
	}
}
