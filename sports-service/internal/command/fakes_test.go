package command

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"

	"github.com/xpch/platform/shared/countries"
	"github.com/xpch/platform/shared/events"
	"github.com/xpch/platform/shared/jobs"
	"github.com/xpch/platform/shared/mail"
	"github.com/xpch/platform/shared/models"
	"github.com/xpch/platform/sports-service/internal/repository"
)

type memLeagues struct {
	rows map[string]*models.League
}

func (m *memLeagues) GetByID(_ context.Context, id string) (*models.League, error) {
	if l, ok := m.rows[id]; ok {
		c := *l
		c.Teams = append([]string(nil), l.Teams...)
		c.Matches = append([]string(nil), l.Matches...)
		c.Fixtures = append([]string(nil), l.Fixtures...)
		return &c, nil
	}
	return nil, repository.ErrLeagueNotFound
}

func (m *memLeagues) GetByCode(ctx context.Context, code string) (*models.League, error) {
	for id, l := range m.rows {
		if l.Code == code {
			return m.GetByID(ctx, id)
		}
	}
	return nil, repository.ErrLeagueNotFound
}

func (m *memLeagues) Create(_ context.Context, league *models.League) error {
	for _, l := range m.rows {
		if l.Code == league.Code {
			return repository.ErrLeagueCodeExists
		}
	}
	c := *league
	m.rows[league.ID] = &c
	return nil
}

func (m *memLeagues) Update(_ context.Context, league *models.League) error {
	if _, ok := m.rows[league.ID]; !ok {
		return repository.ErrLeagueNotFound
	}
	c := *league
	m.rows[league.ID] = &c
	return nil
}

type memTeams struct {
	rows map[string]*models.Team
}

func (m *memTeams) GetByID(_ context.Context, id string) (*models.Team, error) {
	if t, ok := m.rows[id]; ok {
		c := *t
		c.Leagues = append([]string(nil), t.Leagues...)
		return &c, nil
	}
	return nil, repository.ErrTeamNotFound
}

func (m *memTeams) GetByCode(ctx context.Context, code string) (*models.Team, error) {
	for id, t := range m.rows {
		if t.Code == code {
			return m.GetByID(ctx, id)
		}
	}
	return nil, repository.ErrTeamNotFound
}

func (m *memTeams) Create(_ context.Context, team *models.Team) error {
	for _, t := range m.rows {
		if t.Code == team.Code {
			return repository.ErrTeamCodeExists
		}
	}
	c := *team
	m.rows[team.ID] = &c
	return nil
}

func (m *memTeams) Update(_ context.Context, team *models.Team) error {
	if _, ok := m.rows[team.ID]; !ok {
		return repository.ErrTeamNotFound
	}
	c := *team
	m.rows[team.ID] = &c
	return nil
}

type memMatches struct {
	rows map[string]*models.Match
}

func (m *memMatches) GetByID(_ context.Context, id string) (*models.Match, error) {
	if mt, ok := m.rows[id]; ok {
		data, _ := json.Marshal(mt)
		var c models.Match
		_ = json.Unmarshal(data, &c)
		return &c, nil
	}
	return nil, repository.ErrMatchNotFound
}

func (m *memMatches) Create(_ context.Context, match *models.Match) error {
	c := *match
	m.rows[match.ID] = &c
	return nil
}

func (m *memMatches) Update(_ context.Context, match *models.Match) error {
	if _, ok := m.rows[match.ID]; !ok {
		return repository.ErrMatchNotFound
	}
	c := *match
	m.rows[match.ID] = &c
	return nil
}

type memFixtures struct {
	rows map[string]*models.Fixture
}

func (m *memFixtures) GetByID(_ context.Context, id string) (*models.Fixture, error) {
	if fx, ok := m.rows[id]; ok {
		c := *fx
		c.Matches = append([]string(nil), fx.Matches...)
		return &c, nil
	}
	return nil, repository.ErrFixtureNotFound
}

func (m *memFixtures) Create(_ context.Context, fx *models.Fixture) error {
	c := *fx
	m.rows[fx.ID] = &c
	return nil
}

func (m *memFixtures) Update(_ context.Context, fx *models.Fixture) error {
	if _, ok := m.rows[fx.ID]; !ok {
		return repository.ErrFixtureNotFound
	}
	c := *fx
	m.rows[fx.ID] = &c
	return nil
}

type memCountries struct {
	rows map[string]*models.Country
}

func (m *memCountries) GetByID(_ context.Context, id string) (*models.Country, error) {
	if c, ok := m.rows[id]; ok {
		return c, nil
	}
	return nil, countries.ErrNotFound
}

func (m *memCountries) Upsert(_ context.Context, c *models.Country) (*models.Country, error) {
	stored := *c
	stored.ID = "cty-" + c.Name
	m.rows[stored.ID] = &stored
	return &stored, nil
}

type recordingCache struct {
	leagues     []string
	teams       int
	matches     []string
	fixtures    []string
	countries   int
	countryKeys []string
}

func (c *recordingCache) InvalidateLeague(_ context.Context, id string)  { c.leagues = append(c.leagues, id) }
func (c *recordingCache) InvalidateTeams(context.Context)                { c.teams++ }
func (c *recordingCache) InvalidateMatch(_ context.Context, id string)   { c.matches = append(c.matches, id) }
func (c *recordingCache) InvalidateFixture(_ context.Context, id string) { c.fixtures = append(c.fixtures, id) }

func (c *recordingCache) InvalidateCountries(_ context.Context, lookups ...string) {
	c.countries++
	c.countryKeys = append(c.countryKeys, lookups...)
}

type scheduledJob struct {
	name string
	at   time.Time
	task jobs.Task
}

// fakeScheduler keeps one-off jobs until the test runs them. It rejects
// times before now the way the real scheduler does.
type fakeScheduler struct {
	now    time.Time
	next   cron.EntryID
	jobs   map[cron.EntryID]scheduledJob
	failed error
}

func (s *fakeScheduler) ScheduleOnce(name string, at time.Time, task jobs.Task) (cron.EntryID, error) {
	if s.failed != nil {
		return 0, s.failed
	}
	if !at.After(s.now) {
		return 0, jobs.ErrInPast
	}
	s.next++
	s.jobs[s.next] = scheduledJob{name: name, at: at, task: task}
	return s.next, nil
}

func (s *fakeScheduler) Cancel(id cron.EntryID) {
	delete(s.jobs, id)
}

func (s *fakeScheduler) only(t *testing.T) scheduledJob {
	t.Helper()
	require.Len(t, s.jobs, 1)
	for _, j := range s.jobs {
		return j
	}
	return scheduledJob{}
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fixture struct {
	svc       *SportsCommandService
	leagues   *memLeagues
	teams     *memTeams
	matches   *memMatches
	fixtures  *memFixtures
	countries *memCountries
	cache     *recordingCache
	scheduler *fakeScheduler
	mailer    *recordingMailer
}

var fixedNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

// newFixture seeds one league, two teams in it and Nigeria.
func newFixture() *fixture {
	f := &fixture{
		leagues: &memLeagues{rows: map[string]*models.League{
			"lea-npfl": {ID: "lea-npfl", Name: "Nigeria Premier Football League", Code: "NPFL", Teams: []string{"tea-eny", "tea-kan"}},
		}},
		teams: &memTeams{rows: map[string]*models.Team{
			"tea-eny":  {ID: "tea-eny", Name: "Enyimba", Code: "ENY", Leagues: []string{"lea-npfl"}},
			"tea-kan":  {ID: "tea-kan", Name: "Kano Pillars", Code: "KP", Leagues: []string{"lea-npfl"}},
			"tea-rang": {ID: "tea-rang", Name: "Rangers International", Code: "RI"},
		}},
		matches:   &memMatches{rows: map[string]*models.Match{}},
		fixtures:  &memFixtures{rows: map[string]*models.Fixture{}},
		countries: &memCountries{rows: map[string]*models.Country{"cty-ng": {ID: "cty-ng", Name: "Nigeria"}}},
		cache:     &recordingCache{},
		scheduler: &fakeScheduler{now: fixedNow, jobs: map[cron.EntryID]scheduledJob{}},
		mailer:    &recordingMailer{},
	}
	f.svc = NewSportsCommandService(f.leagues, f.teams, f.matches, f.fixtures, f.countries, f.cache, f.scheduler, f.mailer)
	return f
}

var errBoom = errors.New("boom")

func newTestMessage(t *testing.T, subject string, payload any) (*events.Message, *int) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	acks := 0
	msg := events.NewMessage("1-0", events.Event{ID: "evt", Subject: subject, Data: data}, func(context.Context) error {
		acks++
		return nil
	})
	return msg, &acks
}
