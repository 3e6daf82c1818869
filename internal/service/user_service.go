package service

import (
	"context"
	"errors"

	"tempatku/internal/database"
	"tempatku/internal/domain"
	"tempatku/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewUserService(store domain.Store, logger *zerolog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, &NotFoundError{Kind: "user", ID: id}
	}
	return user, err
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, &NotFoundError{Kind: "user", ID: email}
	}
	return user, err
}

func (s *UserService) CreateUser(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	return s.store.CreateUser(ctx, user)
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsers(ctx)
}
