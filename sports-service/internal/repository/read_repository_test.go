package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpch/platform/shared/models"
)

type fakeStore[T any] struct {
	rows  []T
	id    func(T) string
	miss  error
	calls int
}

func (f *fakeStore[T]) List(context.Context) ([]T, error) {
	f.calls++
	return append([]T(nil), f.rows...), nil
}

func (f *fakeStore[T]) GetByID(_ context.Context, id string) (*T, error) {
	f.calls++
	for i := range f.rows {
		if f.id(f.rows[i]) == id {
			return &f.rows[i], nil
		}
	}
	return nil, f.miss
}

// countryStore adds the dialling-code lookup to the generic store.
type countryStore struct {
	*fakeStore[models.Country]
}

func (c countryStore) GetByPhoneCode(_ context.Context, code string) (*models.Country, error) {
	c.calls++
	for i := range c.rows {
		if c.rows[i].PhoneCode == code {
			return &c.rows[i], nil
		}
	}
	return nil, c.miss
}

type sportsFixture struct {
	repo      *ReadRepository
	leagues   *fakeStore[models.League]
	teams     *fakeStore[models.Team]
	matches   *fakeStore[models.Match]
	fixtures  *fakeStore[models.Fixture]
	countries *fakeStore[models.Country]
	mr        *miniredis.Miniredis
}

func newSportsFixture(t *testing.T, env string) *sportsFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &sportsFixture{
		leagues: &fakeStore[models.League]{
			rows: []models.League{{ID: "lea-1", Name: "Premier League", Code: "PL"}},
			id:   func(l models.League) string { return l.ID },
			miss: ErrLeagueNotFound,
		},
		teams: &fakeStore[models.Team]{
			rows: []models.Team{{ID: "tea-1", Name: "Enyimba", Code: "ENY"}},
			id:   func(t models.Team) string { return t.ID },
			miss: ErrTeamNotFound,
		},
		matches: &fakeStore[models.Match]{
			rows: []models.Match{{ID: "mat-1", Stadium: "Aba", Teams: []string{"tea-1", "tea-2"}}},
			id:   func(m models.Match) string { return m.ID },
			miss: ErrMatchNotFound,
		},
		fixtures: &fakeStore[models.Fixture]{
			rows: []models.Fixture{{ID: "fix-1", FixtureID: "FX-12345678", Matches: []string{"mat-1"}, LeagueID: "lea-1"}},
			id:   func(f models.Fixture) string { return f.ID },
			miss: ErrFixtureNotFound,
		},
		countries: &fakeStore[models.Country]{
			rows: []models.Country{{ID: "cty-ng", Name: "Nigeria", PhoneCode: "+234"}},
			id:   func(c models.Country) string { return c.ID },
			miss: errors.New("country not found"),
		},
		mr: mr,
	}
	f.repo = NewReadRepository(f.leagues, f.teams, f.matches, f.fixtures, countryStore{f.countries}, client, env, time.Hour)
	return f
}

func TestLeagueCacheAside(t *testing.T) {
	ctx := context.Background()
	f := newSportsFixture(t, "development")

	list, err := f.repo.ListLeagues(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = f.repo.ListLeagues(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.leagues.calls)

	l, err := f.repo.GetLeague(ctx, "lea-1")
	require.NoError(t, err)
	assert.Equal(t, "PL", l.Code)
	assert.True(t, f.mr.Exists("gamr.league.lea-1"))

	f.repo.InvalidateLeague(ctx, "lea-1")
	assert.False(t, f.mr.Exists(KeyLeagues))
	assert.False(t, f.mr.Exists("gamr.league.lea-1"))

	_, err = f.repo.GetLeague(ctx, "lea-9")
	assert.ErrorIs(t, err, ErrLeagueNotFound)
	assert.False(t, f.mr.Exists("gamr.league.lea-9"))
}

func TestMatchKeysAreEnvironmentQualified(t *testing.T) {
	ctx := context.Background()
	f := newSportsFixture(t, "production")

	_, err := f.repo.ListMatches(ctx)
	require.NoError(t, err)
	m, err := f.repo.GetMatch(ctx, "mat-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tea-1", "tea-2"}, m.Teams)

	assert.True(t, f.mr.Exists("gamr.matches.prod"))
	assert.True(t, f.mr.Exists("gamr.match.mat-1.prod"))
	assert.False(t, f.mr.Exists("gamr.matches"))

	f.repo.InvalidateMatch(ctx, "")
	assert.False(t, f.mr.Exists("gamr.matches.prod"))
	assert.True(t, f.mr.Exists("gamr.match.mat-1.prod"))
}

func TestTeamsAndCountries(t *testing.T) {
	ctx := context.Background()
	f := newSportsFixture(t, "development")

	_, err := f.repo.ListTeams(ctx)
	require.NoError(t, err)
	assert.True(t, f.mr.Exists(KeyTeams))

	// team details bypass the cache
	_, err = f.repo.GetTeam(ctx, "tea-1")
	require.NoError(t, err)
	_, err = f.repo.GetTeam(ctx, "tea-1")
	require.NoError(t, err)
	assert.Equal(t, 3, f.teams.calls)

	f.repo.InvalidateTeams(ctx)
	assert.False(t, f.mr.Exists(KeyTeams))

	list, err := f.repo.ListCountries(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Nigeria", list[0].Name)
	assert.True(t, f.mr.Exists(KeyCountries))
	f.repo.InvalidateCountries(ctx)
	assert.False(t, f.mr.Exists(KeyCountries))
}

func TestFixtureCacheAside(t *testing.T) {
	ctx := context.Background()
	f := newSportsFixture(t, "development")

	list, err := f.repo.ListFixtures(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "FX-12345678", list[0].FixtureID)
	assert.True(t, f.mr.Exists(KeyFixtures))

	fx, err := f.repo.GetFixture(ctx, "fix-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"mat-1"}, fx.Matches)
	_, err = f.repo.GetFixture(ctx, "fix-1")
	require.NoError(t, err)
	assert.Equal(t, 2, f.fixtures.calls)

	f.repo.InvalidateFixture(ctx, "fix-1")
	assert.False(t, f.mr.Exists(KeyFixtures))
	assert.False(t, f.mr.Exists("gamr.fixture.fix-1"))

	_, err = f.repo.GetFixture(ctx, "fix-9")
	assert.ErrorIs(t, err, ErrFixtureNotFound)
}

func TestCountryLookupByIDOrDiallingCode(t *testing.T) {
	ctx := context.Background()
	f := newSportsFixture(t, "development")

	byID, err := f.repo.GetCountry(ctx, "cty-ng")
	require.NoError(t, err)
	assert.Equal(t, "Nigeria", byID.Name)
	byCode, err := f.repo.GetCountry(ctx, "+234")
	require.NoError(t, err)
	assert.Equal(t, "cty-ng", byCode.ID)
	assert.True(t, f.mr.Exists("gamr.country.cty-ng"))
	assert.True(t, f.mr.Exists("gamr.country.+234"))

	ttl := f.mr.TTL("gamr.country.cty-ng")
	assert.Equal(t, CountryTTL, ttl)

	_, err = f.repo.GetCountry(ctx, "cty-xx")
	assert.Error(t, err)

	_, err = f.repo.ListCountries(ctx)
	require.NoError(t, err)
	f.repo.InvalidateCountries(ctx, "cty-ng", "+234")
	assert.False(t, f.mr.Exists(KeyCountries))
	assert.False(t, f.mr.Exists("gamr.country.cty-ng"))
	assert.False(t, f.mr.Exists("gamr.country.+234"))
}
