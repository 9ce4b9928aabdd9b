package command

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/models"
	"github.com/xpch/platform/shared/utils"
)

func (s *SportsCommandService) AddLeague(ctx context.Context, cmd cqrs.AddLeagueCommand) (*models.League, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, invalid("league name is required")
	}
	league := &models.League{
		ID:          utils.GenerateID("lea"),
		Name:        name,
		Description: strings.TrimSpace(cmd.Description),
		Code:        deriveCode(cmd.Code, name),
	}
	if err := s.leagues.Create(ctx, league); err != nil {
		return nil, mapStoreError(err)
	}

	s.cache.InvalidateLeague(ctx, "")
	log.WithFields(log.Fields{"league_id": league.ID, "code": league.Code}).Info("league added")
	return league, nil
}

// UpdateLeague applies the non-empty fields of cmd. A new name without a
// code re-derives the code from the name.
func (s *SportsCommandService) UpdateLeague(ctx context.Context, cmd cqrs.UpdateLeagueCommand) (*models.League, error) {
	league, err := s.leagues.GetByID(ctx, cmd.LeagueID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	if name := strings.TrimSpace(cmd.Name); name != "" {
		league.Name = name
	}
	if d := strings.TrimSpace(cmd.Description); d != "" {
		league.Description = d
	}
	switch {
	case strings.TrimSpace(cmd.Code) != "":
		league.Code = deriveCode(cmd.Code, "")
	case strings.TrimSpace(cmd.Name) != "":
		league.Code = deriveCode("", league.Name)
	}

	if err := s.leagues.Update(ctx, league); err != nil {
		return nil, mapStoreError(err)
	}
	s.cache.InvalidateLeague(ctx, league.ID)
	return league, nil
}

// AddLeagueTeam attaches the team with cmd.TeamCode to the league, on both
// sides of the relation.
func (s *SportsCommandService) AddLeagueTeam(ctx context.Context, cmd cqrs.AddLeagueTeamCommand) (*models.League, error) {
	league, err := s.leagues.GetByID(ctx, cmd.LeagueID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	team, err := s.teams.GetByCode(ctx, strings.TrimSpace(cmd.TeamCode))
	if err != nil {
		return nil, mapStoreError(err)
	}
	if contains(league.Teams, team.ID) {
		return nil, ErrLeagueHasTeam
	}

	if err := s.link(ctx, league, team); err != nil {
		return nil, err
	}
	return league, nil
}

func (s *SportsCommandService) AddLeagueMatch(ctx context.Context, cmd cqrs.AddLeagueMatchCommand) (*models.League, error) {
	league, err := s.leagues.GetByID(ctx, cmd.LeagueID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	match, err := s.matches.GetByID(ctx, cmd.MatchID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if contains(league.Matches, match.ID) {
		return nil, ErrLeagueHasMatch
	}

	league.Matches = append(league.Matches, match.ID)
	if err := s.leagues.Update(ctx, league); err != nil {
		return nil, mapStoreError(err)
	}
	s.cache.InvalidateLeague(ctx, league.ID)
	return league, nil
}

// link records team in league and league in team, skipping either side that
// already holds the other.
func (s *SportsCommandService) link(ctx context.Context, league *models.League, team *models.Team) error {
	if !contains(league.Teams, team.ID) {
		league.Teams = append(league.Teams, team.ID)
		if err := s.leagues.Update(ctx, league); err != nil {
			return mapStoreError(err)
		}
		s.cache.InvalidateLeague(ctx, league.ID)
	}
	if !contains(team.Leagues, league.ID) {
		team.Leagues = append(team.Leagues, league.ID)
		if err := s.teams.Update(ctx, team); err != nil {
			return mapStoreError(err)
		}
		s.cache.InvalidateTeams(ctx)
	}
	return nil
}

// AddLeagueFixture attaches a fixture to the league, taking it out of the
// league it belonged to.
func (s *SportsCommandService) AddLeagueFixture(ctx context.Context, cmd cqrs.AddLeagueFixtureCommand) (*models.League, error) {
	league, err := s.leagues.GetByID(ctx, cmd.LeagueID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	fixture, err := s.fixtures.GetByID(ctx, strings.TrimSpace(cmd.FixtureID))
	if err != nil {
		return nil, mapStoreError(err)
	}
	if contains(league.Fixtures, fixture.ID) {
		return nil, ErrLeagueHasFixture
	}

	if err := s.moveFixture(ctx, fixture, league); err != nil {
		return nil, err
	}
	return league, nil
}

// detachFromLeague removes id from the list of the league it used to belong
// to. The move has already been stored, so failures are only logged.
func (s *SportsCommandService) detachFromLeague(ctx context.Context, leagueID, newLeagueID string,
	list func(*models.League) *[]string, id string) {
	if leagueID == "" || leagueID == newLeagueID {
		return
	}
	entry := log.WithFields(log.Fields{"league_id": leagueID, "member": id})
	old, err := s.leagues.GetByID(ctx, leagueID)
	if err != nil {
		entry.WithError(err).Warn("previous league not found")
		return
	}
	ids := list(old)
	if !contains(*ids, id) {
		return
	}
	*ids = without(*ids, id)
	if err := s.leagues.Update(ctx, old); err != nil {
		entry.WithError(err).Error("failed to detach from previous league")
		return
	}
	s.cache.InvalidateLeague(ctx, old.ID)
}
