package query

import (
	"context"
	"errors"

	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/models"
	"github.com/xpch/platform/storefront-service/internal/repository"
)

var (
	ErrShopperNotFound = errors.New("could not find user")
	ErrForbidden       = errors.New("you are not authorised to access this user")
)

type Reader interface {
	ListShoppers(ctx context.Context) ([]models.Shopper, error)
	GetShopper(ctx context.Context, id string) (*models.Shopper, error)
}

type ShopperQueryService struct {
	readRepo Reader
}

func NewShopperQueryService(readRepo Reader) *ShopperQueryService {
	return &ShopperQueryService{readRepo: readRepo}
}

func (s *ShopperQueryService) ListShoppers(ctx context.Context) ([]models.Shopper, error) {
	return s.readRepo.ListShoppers(ctx)
}

// GetShopper returns a shopper to itself or to staff. Super admin records
// are never exposed.
func (s *ShopperQueryService) GetShopper(ctx context.Context, q cqrs.GetShopperQuery, requesterID string, staff bool) (*models.Shopper, error) {
	if !staff && q.ShopperID != requesterID {
		return nil, ErrForbidden
	}
	shopper, err := s.readRepo.GetShopper(ctx, q.ShopperID)
	if errors.Is(err, repository.ErrShopperNotFound) {
		return nil, ErrShopperNotFound
	}
	if err != nil {
		return nil, err
	}
	if shopper.UserType == models.UserTypeSuperAdmin {
		return nil, nil
	}
	return shopper, nil
}
