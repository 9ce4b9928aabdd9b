package repository

import (
	"context"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xpch/platform/shared/models"
	sharedredis "github.com/xpch/platform/shared/redis"
)

const (
	KeyLeagues   = "gamr.leagues"
	KeyLeague    = "gamr.league"
	KeyTeams     = "gamr.teams"
	KeyMatches   = "gamr.matches"
	KeyMatch     = "gamr.match"
	KeyFixtures  = "gamr.fixtures"
	KeyFixture   = "gamr.fixture"
	KeyCountries = "gamr.countries"
	KeyCountry   = "gamr.country"
)

// CountryTTL keeps single-country lookups around longer than the catalog
// views; the country rows only change when the resource service republishes.
const CountryTTL = 15 * 24 * time.Hour

type LeagueSource interface {
	List(ctx context.Context) ([]models.League, error)
	GetByID(ctx context.Context, id string) (*models.League, error)
}

type TeamSource interface {
	List(ctx context.Context) ([]models.Team, error)
	GetByID(ctx context.Context, id string) (*models.Team, error)
}

type MatchSource interface {
	List(ctx context.Context) ([]models.Match, error)
	GetByID(ctx context.Context, id string) (*models.Match, error)
}

type FixtureSource interface {
	List(ctx context.Context) ([]models.Fixture, error)
	GetByID(ctx context.Context, id string) (*models.Fixture, error)
}

type CountrySource interface {
	List(ctx context.Context) ([]models.Country, error)
	GetByID(ctx context.Context, id string) (*models.Country, error)
	GetByPhoneCode(ctx context.Context, code string) (*models.Country, error)
}

// ReadRepository serves the sports catalog cache-aside. Team details are
// read straight from the store; only the team list is cached.
type ReadRepository struct {
	leagues   LeagueSource
	teams     TeamSource
	matches   MatchSource
	fixtures  FixtureSource
	countries CountrySource

	leagueList   *sharedredis.ViewCache[[]models.League]
	leagueCache  *sharedredis.ViewCache[models.League]
	teamList     *sharedredis.ViewCache[[]models.Team]
	matchList    *sharedredis.ViewCache[[]models.Match]
	matchCache   *sharedredis.ViewCache[models.Match]
	fixtureList  *sharedredis.ViewCache[[]models.Fixture]
	fixtureCache *sharedredis.ViewCache[models.Fixture]
	countryList  *sharedredis.ViewCache[[]models.Country]
	countryCache *sharedredis.ViewCache[models.Country]
	keys         *sharedredis.Keyspace
}

func NewReadRepository(leagues LeagueSource, teams TeamSource, matches MatchSource, fixtures FixtureSource,
	countries CountrySource, redisClient goredis.Cmdable, env string, ttl time.Duration) *ReadRepository {
	return &ReadRepository{
		leagues:      leagues,
		teams:        teams,
		matches:      matches,
		fixtures:     fixtures,
		countries:    countries,
		leagueList:   sharedredis.NewViewCache[[]models.League](redisClient, env, ttl),
		leagueCache:  sharedredis.NewViewCache[models.League](redisClient, env, ttl),
		teamList:     sharedredis.NewViewCache[[]models.Team](redisClient, env, ttl),
		matchList:    sharedredis.NewViewCache[[]models.Match](redisClient, env, ttl),
		matchCache:   sharedredis.NewViewCache[models.Match](redisClient, env, ttl),
		fixtureList:  sharedredis.NewViewCache[[]models.Fixture](redisClient, env, ttl),
		fixtureCache: sharedredis.NewViewCache[models.Fixture](redisClient, env, ttl),
		countryList:  sharedredis.NewViewCache[[]models.Country](redisClient, env, ttl),
		countryCache: sharedredis.NewViewCache[models.Country](redisClient, env, CountryTTL),
		keys:         sharedredis.NewKeyspace(redisClient, env),
	}
}

// cachedList loads a list view through cache, dereferencing the stored pointer.
func cachedList[T any](ctx context.Context, cache *sharedredis.ViewCache[[]T], key string, load func(context.Context) ([]T, error)) ([]T, error) {
	list, err := cache.GetOrLoad(ctx, key, func(ctx context.Context) (*[]T, error) {
		list, err := load(ctx)
		return &list, err
	})
	if err != nil {
		return nil, err
	}
	return *list, nil
}

func (r *ReadRepository) ListLeagues(ctx context.Context) ([]models.League, error) {
	return cachedList(ctx, r.leagueList, KeyLeagues, r.leagues.List)
}

func (r *ReadRepository) GetLeague(ctx context.Context, id string) (*models.League, error) {
	return r.leagueCache.GetOrLoad(ctx, sharedredis.DetailKey(KeyLeague, id), func(ctx context.Context) (*models.League, error) {
		return r.leagues.GetByID(ctx, id)
	})
}

func (r *ReadRepository) ListTeams(ctx context.Context) ([]models.Team, error) {
	return cachedList(ctx, r.teamList, KeyTeams, r.teams.List)
}

func (r *ReadRepository) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	return r.teams.GetByID(ctx, id)
}

func (r *ReadRepository) ListMatches(ctx context.Context) ([]models.Match, error) {
	return cachedList(ctx, r.matchList, KeyMatches, r.matches.List)
}

func (r *ReadRepository) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	return r.matchCache.GetOrLoad(ctx, sharedredis.DetailKey(KeyMatch, id), func(ctx context.Context) (*models.Match, error) {
		return r.matches.GetByID(ctx, id)
	})
}

func (r *ReadRepository) ListFixtures(ctx context.Context) ([]models.Fixture, error) {
	return cachedList(ctx, r.fixtureList, KeyFixtures, r.fixtures.List)
}

func (r *ReadRepository) GetFixture(ctx context.Context, id string) (*models.Fixture, error) {
	return r.fixtureCache.GetOrLoad(ctx, sharedredis.DetailKey(KeyFixture, id), func(ctx context.Context) (*models.Fixture, error) {
		return r.fixtures.GetByID(ctx, id)
	})
}

func (r *ReadRepository) ListCountries(ctx context.Context) ([]models.Country, error) {
	return cachedList(ctx, r.countryList, KeyCountries, r.countries.List)
}

// GetCountry resolves key as a dialling code when it carries a "+", and as a
// country id otherwise.
func (r *ReadRepository) GetCountry(ctx context.Context, key string) (*models.Country, error) {
	return r.countryCache.GetOrLoad(ctx, sharedredis.DetailKey(KeyCountry, key), func(ctx context.Context) (*models.Country, error) {
		if strings.Contains(key, "+") {
			return r.countries.GetByPhoneCode(ctx, key)
		}
		return r.countries.GetByID(ctx, key)
	})
}

// InvalidateLeague drops the league list and, for a non-empty id, its detail.
func (r *ReadRepository) InvalidateLeague(ctx context.Context, id string) {
	r.invalidate(ctx, KeyLeagues, KeyLeague, id)
}

func (r *ReadRepository) InvalidateTeams(ctx context.Context) {
	r.keys.Delete(ctx, KeyTeams)
}

func (r *ReadRepository) InvalidateMatch(ctx context.Context, id string) {
	r.invalidate(ctx, KeyMatches, KeyMatch, id)
}

func (r *ReadRepository) InvalidateFixture(ctx context.Context, id string) {
	r.invalidate(ctx, KeyFixtures, KeyFixture, id)
}

// InvalidateCountries drops the country list and the detail entry of each
// lookup key, an id or a dialling code.
func (r *ReadRepository) InvalidateCountries(ctx context.Context, lookups ...string) {
	keys := []string{KeyCountries}
	for _, k := range lookups {
		if k != "" {
			keys = append(keys, sharedredis.DetailKey(KeyCountry, k))
		}
	}
	r.keys.Delete(ctx, keys...)
}

func (r *ReadRepository) invalidate(ctx context.Context, listKey, detailBase, id string) {
	keys := []string{listKey}
	if id != "" {
		keys = append(keys, sharedredis.DetailKey(detailBase, id))
	}
	r.keys.Delete(ctx, keys...)
}
