package query

import (
	"context"
	"errors"

	"github.com/xpch/platform/resource-service/internal/repository"
	"github.com/xpch/platform/shared/countries"
	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/models"
)

var (
	ErrCountryNotFound = errors.New("country does not exist")
	ErrBankNotFound    = errors.New("bank does not exist")
)

type Reader interface {
	ListCountries(ctx context.Context) ([]models.Country, error)
	GetCountry(ctx context.Context, key string) (*models.Country, error)
	ListBanks(ctx context.Context) ([]models.Bank, error)
	GetBank(ctx context.Context, id string) (*models.Bank, error)
}

type ResourceQueryService struct {
	readRepo Reader
}

func NewResourceQueryService(readRepo Reader) *ResourceQueryService {
	return &ResourceQueryService{readRepo: readRepo}
}

func (s *ResourceQueryService) ListCountries(ctx context.Context) ([]models.Country, error) {
	return s.readRepo.ListCountries(ctx)
}

func (s *ResourceQueryService) GetCountry(ctx context.Context, q cqrs.GetCountryQuery) (*models.Country, error) {
	country, err := s.readRepo.GetCountry(ctx, q.Key)
	if errors.Is(err, countries.ErrNotFound) {
		return nil, ErrCountryNotFound
	}
	return country, err
}

// GetStates returns the states of the country identified by q.
func (s *ResourceQueryService) GetStates(ctx context.Context, q cqrs.GetCountryQuery) ([]models.State, error) {
	country, err := s.GetCountry(ctx, q)
	if err != nil {
		return nil, err
	}
	if country.States == nil {
		return []models.State{}, nil
	}
	return country.States, nil
}

func (s *ResourceQueryService) ListBanks(ctx context.Context) ([]models.Bank, error) {
	return s.readRepo.ListBanks(ctx)
}

func (s *ResourceQueryService) GetBank(ctx context.Context, q cqrs.GetBankQuery) (*models.Bank, error) {
	bank, err := s.readRepo.GetBank(ctx, q.ID)
	if errors.Is(err, repository.ErrBankNotFound) {
		return nil, ErrBankNotFound
	}
	return bank, err
}
