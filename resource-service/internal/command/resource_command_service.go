package command

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xpch/platform/resource-service/internal/repository"
	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/events"
	"github.com/xpch/platform/shared/models"
	"github.com/xpch/platform/shared/utils"
)

var (
	ErrBankNotFound   = errors.New("bank does not exist")
	ErrBankNameExists = errors.New("bank name already exists")
	ErrBankCodeExists = errors.New("bank code already exists")
	ErrBankIDExists   = errors.New("bank id already exists")
)

type BankStore interface {
	GetByID(ctx context.Context, id string) (*models.Bank, error)
	Create(ctx context.Context, bank *models.Bank) error
	SetEnabled(ctx context.Context, id string, enabled bool) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type CountryStore interface {
	Upsert(ctx context.Context, country *models.Country) (*models.Country, error)
	GetByPhoneCode(ctx context.Context, code string) (*models.Country, error)
	Count(ctx context.Context) (int, error)
}

type Cache interface {
	InvalidateBank(ctx context.Context, id string)
	InvalidateCountries(ctx context.Context)
	Warm(ctx context.Context) error
}

type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
}

// ResourceCommandService owns bank writes, the country lookup that answers
// user.created, and the catalog seed.
type ResourceCommandService struct {
	banks     BankStore
	countries CountryStore
	cache     Cache
	publisher Publisher
}

func NewResourceCommandService(banks BankStore, countries CountryStore, cache Cache, publisher Publisher) *ResourceCommandService {
	return &ResourceCommandService{
		banks:     banks,
		countries: countries,
		cache:     cache,
		publisher: publisher,
	}
}

func (s *ResourceCommandService) CreateBank(ctx context.Context, cmd cqrs.CreateBankCommand) (*models.Bank, error) {
	bank := &models.Bank{
		ID:        utils.GenerateID("bnk"),
		Name:      strings.TrimSpace(cmd.Name),
		Code:      strings.TrimSpace(cmd.Code),
		BankID:    strings.TrimSpace(cmd.BankID),
		Country:   withDefault(cmd.Country, models.DefaultBankCountry),
		Currency:  withDefault(cmd.Currency, models.DefaultBankCurrency),
		Type:      withDefault(cmd.Type, models.BankTypeNuban),
		IsEnabled: true,
	}

	if err := s.banks.Create(ctx, bank); err != nil {
		return nil, mapBankError(err)
	}

	s.cache.InvalidateBank(ctx, bank.ID)
	s.publishBank(ctx, events.BankCreated, bank)
	return bank, nil
}

func (s *ResourceCommandService) SetBankEnabled(ctx context.Context, cmd cqrs.SetBankEnabledCommand) (*models.Bank, error) {
	if err := s.banks.SetEnabled(ctx, cmd.ID, cmd.Enabled); err != nil {
		return nil, mapBankError(err)
	}
	s.cache.InvalidateBank(ctx, cmd.ID)

	bank, err := s.banks.GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, mapBankError(err)
	}
	s.publishBank(ctx, events.BankUpdated, bank)
	return bank, nil
}

func (s *ResourceCommandService) DeleteBank(ctx context.Context, cmd cqrs.DeleteBankCommand) error {
	bank, err := s.banks.GetByID(ctx, cmd.ID)
	if err != nil {
		return mapBankError(err)
	}
	if err := s.banks.Delete(ctx, cmd.ID); err != nil {
		return mapBankError(err)
	}
	s.cache.InvalidateBank(ctx, cmd.ID)
	s.publishBank(ctx, events.BankDeleted, bank)
	return nil
}

func (s *ResourceCommandService) publishBank(ctx context.Context, subject string, bank *models.Bank) {
	err := s.publisher.Publish(ctx, subject, events.BankEvent{
		ID:        bank.ID,
		Name:      bank.Name,
		Code:      bank.Code,
		IsEnabled: bank.IsEnabled,
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"subject": subject, "bank_id": bank.ID}).Error("failed to publish bank event")
	}
}

func mapBankError(err error) error {
	switch {
	case errors.Is(err, repository.ErrBankNotFound):
		return ErrBankNotFound
	case errors.Is(err, repository.ErrBankNameExists):
		return ErrBankNameExists
	case errors.Is(err, repository.ErrBankCodeExists):
		return ErrBankCodeExists
	case errors.Is(err, repository.ErrBankIDExists):
		return ErrBankIDExists
	}
	return err
}

func withDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}
