package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/models"
	"github.com/xpch/platform/shared/utils"
)

const maxFixtureDescription = 300

func newFixtureID() (string, error) {
	code, err := utils.GenerateCode(8)
	if err != nil {
		return "", fmt.Errorf("failed to generate fixture id: %w", err)
	}
	return "FX-" + code, nil
}

// existingMatches loads the matches named by ids, skipping blanks, repeats
// and ids that do not resolve.
func (s *SportsCommandService) existingMatches(ctx context.Context, ids []string) ([]*models.Match, error) {
	seen := make(map[string]bool, len(ids))
	var found []*models.Match
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		m, err := s.matches.GetByID(ctx, id)
		if err != nil {
			if errors.Is(mapStoreError(err), ErrMatchNotFound) {
				log.WithField("match_id", id).Debug("skipping unknown match")
				continue
			}
			return nil, err
		}
		found = append(found, m)
	}
	return found, nil
}

// AddFixture creates a fixture in a league from the listed matches that
// exist. Each of them is also recorded in the league.
func (s *SportsCommandService) AddFixture(ctx context.Context, cmd cqrs.AddFixtureCommand) (*models.Fixture, error) {
	description := strings.TrimSpace(cmd.Description)
	if utf8.RuneCountInString(description) > maxFixtureDescription {
		return nil, invalid(fmt.Sprintf("description cannot be more than %d characters", maxFixtureDescription))
	}
	if strings.TrimSpace(cmd.LeagueID) == "" {
		return nil, invalid("league id is required")
	}

	league, err := s.leagues.GetByID(ctx, cmd.LeagueID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	matches, err := s.existingMatches(ctx, cmd.Matches)
	if err != nil {
		return nil, err
	}

	fixtureID, err := newFixtureID()
	if err != nil {
		return nil, err
	}
	fixture := &models.Fixture{
		ID:          utils.GenerateID("fix"),
		FixtureID:   fixtureID,
		Description: description,
		Slug:        strings.ToLower(fixtureID),
		Matches:     []string{},
		LeagueID:    league.ID,
	}
	for _, m := range matches {
		fixture.Matches = append(fixture.Matches, m.ID)
		if !contains(league.Matches, m.ID) {
			league.Matches = append(league.Matches, m.ID)
		}
	}
	if err := s.fixtures.Create(ctx, fixture); err != nil {
		return nil, mapStoreError(err)
	}
	s.cache.InvalidateFixture(ctx, "")

	league.Fixtures = append(league.Fixtures, fixture.ID)
	if err := s.leagues.Update(ctx, league); err != nil {
		return nil, mapStoreError(err)
	}
	s.cache.InvalidateLeague(ctx, league.ID)

	log.WithFields(log.Fields{"fixture_id": fixture.FixtureID, "league_id": league.ID, "matches": len(fixture.Matches)}).Info("fixture added")
	return fixture, nil
}

// AddFixtureMatches appends the listed matches that exist and are not yet in
// the fixture, and returns the fixture's matches.
func (s *SportsCommandService) AddFixtureMatches(ctx context.Context, cmd cqrs.AddFixtureMatchesCommand) ([]string, error) {
	if len(cmd.MatchIDs) == 0 {
		return nil, invalid("a list of matches is required")
	}
	fixture, err := s.fixtures.GetByID(ctx, cmd.FixtureID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	matches, err := s.existingMatches(ctx, cmd.MatchIDs)
	if err != nil {
		return nil, err
	}

	var added []string
	for _, m := range matches {
		if !contains(fixture.Matches, m.ID) {
			fixture.Matches = append(fixture.Matches, m.ID)
			added = append(added, m.ID)
		}
	}
	if len(added) == 0 {
		return fixture.Matches, nil
	}
	if err := s.fixtures.Update(ctx, fixture); err != nil {
		return nil, mapStoreError(err)
	}
	s.cache.InvalidateFixture(ctx, fixture.ID)

	league, err := s.leagues.GetByID(ctx, fixture.LeagueID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	changed := false
	for _, id := range added {
		if !contains(league.Matches, id) {
			league.Matches = append(league.Matches, id)
			changed = true
		}
	}
	if changed {
		if err := s.leagues.Update(ctx, league); err != nil {
			return nil, mapStoreError(err)
		}
		s.cache.InvalidateLeague(ctx, league.ID)
	}
	return fixture.Matches, nil
}

// UpdateFixtureLeague moves the fixture to the league with cmd.LeagueCode.
func (s *SportsCommandService) UpdateFixtureLeague(ctx context.Context, cmd cqrs.UpdateFixtureLeagueCommand) (*models.Fixture, error) {
	fixture, err := s.fixtures.GetByID(ctx, cmd.FixtureID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	league, err := s.leagues.GetByCode(ctx, strings.TrimSpace(cmd.LeagueCode))
	if err != nil {
		return nil, mapStoreError(err)
	}
	if contains(league.Fixtures, fixture.ID) {
		return nil, ErrFixtureInLeague
	}

	if err := s.moveFixture(ctx, fixture, league); err != nil {
		return nil, err
	}
	return fixture, nil
}

// moveFixture records fixture in league on both sides of the relation and
// drops it from its previous league.
func (s *SportsCommandService) moveFixture(ctx context.Context, fixture *models.Fixture, league *models.League) error {
	previous := fixture.LeagueID
	fixture.LeagueID = league.ID
	if err := s.fixtures.Update(ctx, fixture); err != nil {
		return mapStoreError(err)
	}
	s.cache.InvalidateFixture(ctx, fixture.ID)

	league.Fixtures = append(league.Fixtures, fixture.ID)
	if err := s.leagues.Update(ctx, league); err != nil {
		return mapStoreError(err)
	}
	s.cache.InvalidateLeague(ctx, league.ID)

	s.detachFromLeague(ctx, previous, league.ID, func(l *models.League) *[]string { return &l.Fixtures }, fixture.ID)
	log.WithFields(log.Fields{"fixture_id": fixture.FixtureID, "league_id": league.ID, "from": previous}).Info("fixture moved")
	return nil
}
