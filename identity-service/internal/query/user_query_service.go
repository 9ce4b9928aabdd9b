package query

import (
	"context"
	"errors"

	"github.com/xpch/platform/identity-service/internal/repository"
	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/models"
)

var (
	ErrForbidden    = errors.New("user is not authorized to access this route")
	ErrUserNotFound = errors.New("user does not exist")
)

type UserReader interface {
	GetByID(ctx context.Context, id string) (*models.UserView, error)
	List(ctx context.Context) ([]models.UserView, error)
}

// UserQueryService reads user views from the Redis cache (with a Postgres fallback).
type UserQueryService struct {
	readRepo UserReader
}

func NewUserQueryService(readRepo UserReader) *UserQueryService {
	return &UserQueryService{readRepo: readRepo}
}

// GetUser returns a user to itself or to an administrator.
func (s *UserQueryService) GetUser(ctx context.Context, q cqrs.GetUserQuery) (*models.UserView, error) {
	if q.UserID != q.RequestingUserID && !isAdmin(q.RequesterRoles) {
		return nil, ErrForbidden
	}
	view, err := s.readRepo.GetByID(ctx, q.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	return view, err
}

func (s *UserQueryService) ListUsers(ctx context.Context) ([]models.UserView, error) {
	return s.readRepo.List(ctx)
}

func isAdmin(roles []string) bool {
	for _, r := range roles {
		if r == models.RoleSuperAdmin || r == models.RoleAdmin {
			return true
		}
	}
	return false
}
