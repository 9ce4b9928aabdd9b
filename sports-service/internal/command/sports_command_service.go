package command

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/xpch/platform/shared/countries"
	"github.com/xpch/platform/shared/jobs"
	"github.com/xpch/platform/shared/mail"
	"github.com/xpch/platform/shared/models"
	"github.com/xpch/platform/shared/utils"
	"github.com/xpch/platform/sports-service/internal/repository"
)

type LeagueStore interface {
	GetByID(ctx context.Context, id string) (*models.League, error)
	GetByCode(ctx context.Context, code string) (*models.League, error)
	Create(ctx context.Context, league *models.League) error
	Update(ctx context.Context, league *models.League) error
}

type TeamStore interface {
	GetByID(ctx context.Context, id string) (*models.Team, error)
	GetByCode(ctx context.Context, code string) (*models.Team, error)
	Create(ctx context.Context, team *models.Team) error
	Update(ctx context.Context, team *models.Team) error
}

type MatchStore interface {
	GetByID(ctx context.Context, id string) (*models.Match, error)
	Create(ctx context.Context, match *models.Match) error
	Update(ctx context.Context, match *models.Match) error
}

type FixtureStore interface {
	GetByID(ctx context.Context, id string) (*models.Fixture, error)
	Create(ctx context.Context, fixture *models.Fixture) error
	Update(ctx context.Context, fixture *models.Fixture) error
}

type CountryStore interface {
	GetByID(ctx context.Context, id string) (*models.Country, error)
	Upsert(ctx context.Context, country *models.Country) (*models.Country, error)
}

type Cache interface {
	InvalidateLeague(ctx context.Context, id string)
	InvalidateTeams(ctx context.Context)
	InvalidateMatch(ctx context.Context, id string)
	InvalidateFixture(ctx context.Context, id string)
	InvalidateCountries(ctx context.Context, lookups ...string)
}

// Scheduler runs one-off jobs such as match reminders.
type Scheduler interface {
	ScheduleOnce(name string, at time.Time, task jobs.Task) (cron.EntryID, error)
	Cancel(id cron.EntryID)
}

type SportsCommandService struct {
	leagues   LeagueStore
	teams     TeamStore
	matches   MatchStore
	fixtures  FixtureStore
	countries CountryStore
	cache     Cache
	scheduler Scheduler
	mailer    mail.Mailer

	mu        sync.Mutex
	reminders map[string]reminder
}

func NewSportsCommandService(leagues LeagueStore, teams TeamStore, matches MatchStore, fixtures FixtureStore,
	countries CountryStore, cache Cache, scheduler Scheduler, mailer mail.Mailer) *SportsCommandService {
	return &SportsCommandService{
		leagues:   leagues,
		teams:     teams,
		matches:   matches,
		fixtures:  fixtures,
		countries: countries,
		cache:     cache,
		scheduler: scheduler,
		mailer:    mailer,
		reminders: make(map[string]reminder),
	}
}

// mapStoreError translates repository errors into the service's own.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, repository.ErrLeagueNotFound):
		return ErrLeagueNotFound
	case errors.Is(err, repository.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repository.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repository.ErrFixtureNotFound):
		return ErrFixtureNotFound
	case errors.Is(err, repository.ErrLeagueCodeExists):
		return ErrLeagueCodeExists
	case errors.Is(err, repository.ErrTeamCodeExists):
		return ErrTeamCodeExists
	case errors.Is(err, countries.ErrNotFound):
		return ErrCountryNotFound
	}
	return err
}

// deriveCode returns code upper-cased, or the initials of name when code is
// blank.
func deriveCode(code, name string) string {
	if code = strings.TrimSpace(code); code != "" {
		return strings.ToUpper(code)
	}
	return utils.Initials(name)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
