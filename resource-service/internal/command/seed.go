package command

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/xpch/platform/shared/models"
	"github.com/xpch/platform/shared/utils"
)

//go:embed data/*.json
var seedData embed.FS

// Seed loads the bundled countries and banks into empty tables and then
// warms the list caches.
func (s *ResourceCommandService) Seed(ctx context.Context) error {
	if err := s.seedCountries(ctx); err != nil {
		return err
	}
	if err := s.seedBanks(ctx); err != nil {
		return err
	}
	return s.WarmCache(ctx)
}

func (s *ResourceCommandService) seedCountries(ctx context.Context) error {
	n, err := s.countries.Count(ctx)
	if err != nil || n > 0 {
		return err
	}

	var list []models.Country
	if err := readSeed("data/countries.json", &list); err != nil {
		return err
	}
	for i := range list {
		if _, err := s.countries.Upsert(ctx, &list[i]); err != nil {
			return err
		}
	}
	s.cache.InvalidateCountries(ctx)
	log.WithField("count", len(list)).Info("countries seeded")
	return nil
}

func (s *ResourceCommandService) seedBanks(ctx context.Context) error {
	n, err := s.banks.Count(ctx)
	if err != nil || n > 0 {
		return err
	}

	var list []models.Bank
	if err := readSeed("data/banks.json", &list); err != nil {
		return err
	}
	for i := range list {
		bank := &list[i]
		bank.ID = utils.GenerateID("bnk")
		bank.Country = withDefault(bank.Country, models.DefaultBankCountry)
		bank.Currency = withDefault(bank.Currency, models.DefaultBankCurrency)
		bank.Type = withDefault(bank.Type, models.BankTypeNuban)
		bank.IsEnabled = true
		if err := s.banks.Create(ctx, bank); err != nil {
			return fmt.Errorf("failed to seed bank %s: %w", bank.Name, err)
		}
	}
	s.cache.InvalidateBank(ctx, "")
	log.WithField("count", len(list)).Info("banks seeded")
	return nil
}

// WarmCache repopulates the country and bank list keys.
func (s *ResourceCommandService) WarmCache(ctx context.Context) error {
	if err := s.cache.Warm(ctx); err != nil {
		return fmt.Errorf("failed to warm cache: %w", err)
	}
	return nil
}

func readSeed(name string, v any) error {
	raw, err := seedData.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}
