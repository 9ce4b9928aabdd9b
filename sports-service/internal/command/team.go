package command

import (
	"context"
	"strings"

	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/models"
	"github.com/xpch/platform/shared/utils"
)

// AddTeam creates a team inside an existing league. Team codes are unique.
func (s *SportsCommandService) AddTeam(ctx context.Context, cmd cqrs.AddTeamCommand) (*models.Team, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, invalid("team name is required")
	}
	league, err := s.leagues.GetByID(ctx, cmd.LeagueID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	team := &models.Team{
		ID:          utils.GenerateID("tea"),
		Name:        name,
		Description: strings.TrimSpace(cmd.Description),
		Code:        deriveCode(cmd.Code, name),
		Leagues:     []string{league.ID},
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, mapStoreError(err)
	}
	s.cache.InvalidateTeams(ctx)

	if err := s.link(ctx, league, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *SportsCommandService) UpdateTeam(ctx context.Context, cmd cqrs.UpdateTeamCommand) (*models.Team, error) {
	team, err := s.teams.GetByID(ctx, cmd.TeamID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	if name := strings.TrimSpace(cmd.Name); name != "" {
		team.Name = name
	}
	if d := strings.TrimSpace(cmd.Description); d != "" {
		team.Description = d
	}
	switch {
	case strings.TrimSpace(cmd.Code) != "":
		team.Code = deriveCode(cmd.Code, "")
	case strings.TrimSpace(cmd.Name) != "":
		team.Code = deriveCode("", team.Name)
	}

	if err := s.teams.Update(ctx, team); err != nil {
		return nil, mapStoreError(err)
	}
	s.cache.InvalidateTeams(ctx)
	return team, nil
}

// AddTeamLeague joins a team to the league with cmd.LeagueCode.
func (s *SportsCommandService) AddTeamLeague(ctx context.Context, cmd cqrs.AddTeamLeagueCommand) (*models.League, error) {
	team, err := s.teams.GetByID(ctx, cmd.TeamID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	league, err := s.leagues.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(cmd.LeagueCode)))
	if err != nil {
		return nil, mapStoreError(err)
	}
	if contains(team.Leagues, league.ID) {
		return nil, ErrTeamHasLeague
	}

	if err := s.link(ctx, league, team); err != nil {
		return nil, err
	}
	return league, nil
}
