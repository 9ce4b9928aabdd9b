package repository

import (
	"context"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xpch/platform/shared/models"
	sharedredis "github.com/xpch/platform/shared/redis"
)

// Cache keys. Detail keys append ".<id>" (or ".<phone code>" for countries).
const (
	KeyCountries = "xpch.countries"
	KeyCountry   = "xpch.country"
	KeyBanks     = "xpch.banks"
	KeyBank      = "xpch.bank"
)

type CountrySource interface {
	List(ctx context.Context) ([]models.Country, error)
	GetByID(ctx context.Context, id string) (*models.Country, error)
	GetByPhoneCode(ctx context.Context, code string) (*models.Country, error)
}

type BankSource interface {
	List(ctx context.Context) ([]models.Bank, error)
	GetByID(ctx context.Context, id string) (*models.Bank, error)
}

// ReadRepository serves countries and banks cache-aside.
type ReadRepository struct {
	countries     CountrySource
	banks         BankSource
	countryCache  *sharedredis.ViewCache[models.Country]
	countriesList *sharedredis.ViewCache[[]models.Country]
	bankCache     *sharedredis.ViewCache[models.Bank]
	banksList     *sharedredis.ViewCache[[]models.Bank]
	keys          *sharedredis.Keyspace
}

func NewReadRepository(countries CountrySource, banks BankSource, redisClient goredis.Cmdable, env string, ttl time.Duration) *ReadRepository {
	return &ReadRepository{
		countries:     countries,
		banks:         banks,
		countryCache:  sharedredis.NewViewCache[models.Country](redisClient, env, ttl),
		countriesList: sharedredis.NewViewCache[[]models.Country](redisClient, env, ttl),
		bankCache:     sharedredis.NewViewCache[models.Bank](redisClient, env, ttl),
		banksList:     sharedredis.NewViewCache[[]models.Bank](redisClient, env, ttl),
		keys:          sharedredis.NewKeyspace(redisClient, env),
	}
}

func (r *ReadRepository) ListCountries(ctx context.Context) ([]models.Country, error) {
	list, err := r.countriesList.GetOrLoad(ctx, KeyCountries, func(ctx context.Context) (*[]models.Country, error) {
		list, err := r.countries.List(ctx)
		return &list, err
	})
	if err != nil {
		return nil, err
	}
	return *list, nil
}

// GetCountry resolves key as a phone code when it contains '+', otherwise as
// an id.
func (r *ReadRepository) GetCountry(ctx context.Context, key string) (*models.Country, error) {
	return r.countryCache.GetOrLoad(ctx, sharedredis.DetailKey(KeyCountry, key), func(ctx context.Context) (*models.Country, error) {
		if strings.Contains(key, "+") {
			return r.countries.GetByPhoneCode(ctx, key)
		}
		return r.countries.GetByID(ctx, key)
	})
}

func (r *ReadRepository) ListBanks(ctx context.Context) ([]models.Bank, error) {
	list, err := r.banksList.GetOrLoad(ctx, KeyBanks, func(ctx context.Context) (*[]models.Bank, error) {
		list, err := r.banks.List(ctx)
		return &list, err
	})
	if err != nil {
		return nil, err
	}
	return *list, nil
}

func (r *ReadRepository) GetBank(ctx context.Context, id string) (*models.Bank, error) {
	return r.bankCache.GetOrLoad(ctx, sharedredis.DetailKey(KeyBank, id), func(ctx context.Context) (*models.Bank, error) {
		return r.banks.GetByID(ctx, id)
	})
}

// InvalidateBank drops the bank list and the bank's detail key.
func (r *ReadRepository) InvalidateBank(ctx context.Context, id string) {
	keys := []string{KeyBanks}
	if id != "" {
		keys = append(keys, sharedredis.DetailKey(KeyBank, id))
	}
	r.keys.Delete(ctx, keys...)
}

func (r *ReadRepository) InvalidateCountries(ctx context.Context) {
	r.keys.Delete(ctx, KeyCountries)
}

// Warm reloads both list keys from the store.
func (r *ReadRepository) Warm(ctx context.Context) error {
	countries, err := r.countries.List(ctx)
	if err != nil {
		return err
	}
	r.countriesList.Set(ctx, KeyCountries, &countries)

	banks, err := r.banks.List(ctx)
	if err != nil {
		return err
	}
	r.banksList.Set(ctx, KeyBanks, &banks)
	return nil
}
