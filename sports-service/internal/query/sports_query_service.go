package query

import (
	"context"
	"errors"

	"github.com/xpch/platform/shared/countries"
	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/models"
	"github.com/xpch/platform/sports-service/internal/repository"
)

var (
	ErrLeagueNotFound  = errors.New("league does not exist")
	ErrTeamNotFound    = errors.New("team does not exist")
	ErrMatchNotFound   = errors.New("match does not exist")
	ErrFixtureNotFound = errors.New("fixture does not exist")
	ErrCountryNotFound = errors.New("cannot find country")
)

type Reader interface {
	ListLeagues(ctx context.Context) ([]models.League, error)
	GetLeague(ctx context.Context, id string) (*models.League, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	ListMatches(ctx context.Context) ([]models.Match, error)
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	ListFixtures(ctx context.Context) ([]models.Fixture, error)
	GetFixture(ctx context.Context, id string) (*models.Fixture, error)
	ListCountries(ctx context.Context) ([]models.Country, error)
	GetCountry(ctx context.Context, key string) (*models.Country, error)
}

type SportsQueryService struct {
	readRepo Reader
}

func NewSportsQueryService(readRepo Reader) *SportsQueryService {
	return &SportsQueryService{readRepo: readRepo}
}

func (s *SportsQueryService) ListLeagues(ctx context.Context) ([]models.League, error) {
	return s.readRepo.ListLeagues(ctx)
}

func (s *SportsQueryService) GetLeague(ctx context.Context, q cqrs.GetLeagueQuery) (*models.League, error) {
	league, err := s.readRepo.GetLeague(ctx, q.LeagueID)
	if errors.Is(err, repository.ErrLeagueNotFound) {
		return nil, ErrLeagueNotFound
	}
	return league, err
}

func (s *SportsQueryService) ListTeams(ctx context.Context) ([]models.Team, error) {
	return s.readRepo.ListTeams(ctx)
}

func (s *SportsQueryService) GetTeam(ctx context.Context, q cqrs.GetTeamQuery) (*models.Team, error) {
	team, err := s.readRepo.GetTeam(ctx, q.TeamID)
	if errors.Is(err, repository.ErrTeamNotFound) {
		return nil, ErrTeamNotFound
	}
	return team, err
}

func (s *SportsQueryService) ListMatches(ctx context.Context) ([]models.Match, error) {
	return s.readRepo.ListMatches(ctx)
}

func (s *SportsQueryService) GetMatch(ctx context.Context, q cqrs.GetMatchQuery) (*models.Match, error) {
	match, err := s.readRepo.GetMatch(ctx, q.MatchID)
	if errors.Is(err, repository.ErrMatchNotFound) {
		return nil, ErrMatchNotFound
	}
	return match, err
}

func (s *SportsQueryService) ListCountries(ctx context.Context) ([]models.Country, error) {
	return s.readRepo.ListCountries(ctx)
}

func (s *SportsQueryService) ListFixtures(ctx context.Context) ([]models.Fixture, error) {
	return s.readRepo.ListFixtures(ctx)
}

func (s *SportsQueryService) GetFixture(ctx context.Context, q cqrs.GetFixtureQuery) (*models.Fixture, error) {
	fixture, err := s.readRepo.GetFixture(ctx, q.FixtureID)
	if errors.Is(err, repository.ErrFixtureNotFound) {
		return nil, ErrFixtureNotFound
	}
	return fixture, err
}

// GetCountry finds a country by id, or by dialling code when q.Key has a "+".
func (s *SportsQueryService) GetCountry(ctx context.Context, q cqrs.GetCountryQuery) (*models.Country, error) {
	country, err := s.readRepo.GetCountry(ctx, q.Key)
	if errors.Is(err, countries.ErrNotFound) {
		return nil, ErrCountryNotFound
	}
	return country, err
}

// GetStates returns a country's summary with its states.
func (s *SportsQueryService) GetStates(ctx context.Context, q cqrs.GetCountryQuery) (*models.CountryStates, error) {
	country, err := s.GetCountry(ctx, q)
	if err != nil {
		return nil, err
	}
	return models.NewCountryStates(country), nil
}
