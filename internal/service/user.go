package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"ridewallet/internal/domain"
	"ridewallet/internal/repository"
)

// UserService registers and looks up riders.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// RegisterRequest contains the parameters for registering a rider.
type RegisterRequest struct {
	Name  string
	Email string
}

// Register creates a rider with an empty wallet.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil || addr.Address != strings.TrimSpace(req.Email) {
		return nil, ErrInvalidEmail
	}
	email := strings.ToLower(addr.Address)

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user := &domain.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Get returns a rider by ID.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}
	return s.userRepo.GetByID(ctx, userID)
}
