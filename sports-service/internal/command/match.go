package command

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xpch/platform/shared/cqrs"
	"github.com/xpch/platform/shared/models"
	"github.com/xpch/platform/shared/utils"
)

// validateMatch reports the first missing field of cmd, in form order.
func validateMatch(cmd cqrs.AddMatchCommand) error {
	required := []struct {
		value   string
		message string
	}{
		{cmd.Type, "match type is required"},
		{cmd.Season, "match season is required"},
		{cmd.Stage, "match stage is required"},
		{cmd.Date, "match date of play is required"},
		{cmd.StartTime, "match start time is required"},
		{cmd.Stadium, "stadium is required"},
		{cmd.HomeTeam, "home team is required"},
		{cmd.AwayTeam, "away team is required"},
		{cmd.CountryID, "country id is required"},
		{cmd.LeagueID, "league id is required"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return invalid(f.message)
		}
	}
	if cmd.HomeTeam == cmd.AwayTeam {
		return invalid("home team and away team must differ")
	}
	return nil
}

func zeroStats(teams ...string) []models.Stats {
	stats := make([]models.Stats, 0, len(teams))
	for _, t := range teams {
		stats = append(stats, models.Stats{Team: t})
	}
	return stats
}

// AddMatch creates a match between two teams of a league, adds it to the
// league and schedules a reminder for the creator at kick-off.
func (s *SportsCommandService) AddMatch(ctx context.Context, cmd cqrs.AddMatchCommand) (*models.Match, error) {
	if err := validateMatch(cmd); err != nil {
		return nil, err
	}

	league, err := s.leagues.GetByID(ctx, cmd.LeagueID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	country, err := s.countries.GetByID(ctx, cmd.CountryID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	home, err := s.teams.GetByID(ctx, cmd.HomeTeam)
	if err != nil {
		if errors.Is(mapStoreError(err), ErrTeamNotFound) {
			return nil, ErrHomeTeamNotFound
		}
		return nil, err
	}
	away, err := s.teams.GetByID(ctx, cmd.AwayTeam)
	if err != nil {
		if errors.Is(mapStoreError(err), ErrTeamNotFound) {
			return nil, ErrAwayTeamNotFound
		}
		return nil, err
	}

	day, err := parseDate(cmd.Date)
	if err != nil {
		return nil, err
	}
	clock, err := parseClock(cmd.StartTime)
	if err != nil {
		return nil, err
	}
	start, end := kickoff(day, clock)

	match := &models.Match{
		ID:         utils.GenerateID("mat"),
		MatchType:  strings.TrimSpace(cmd.Type),
		Season:     strings.TrimSpace(cmd.Season),
		Stage:      strings.TrimSpace(cmd.Stage),
		DateOfPlay: day,
		StartTime:  start,
		EndTime:    end,
		Stadium:    strings.TrimSpace(cmd.Stadium),
		HomeTeam:   home.ID,
		AwayTeam:   away.ID,
		CountryID:  country.ID,
		LeagueID:   league.ID,
		Teams:      []string{home.ID, away.ID},
		Score: []models.Score{
			{Team: home.ID, Type: models.ScoreFullTime},
			{Team: away.ID, Type: models.ScoreFullTime},
		},
		Lineups: []models.Lineup{
			{Team: home.ID, Players: []string{}},
			{Team: away.ID, Players: []string{}},
		},
		Stats:        zeroStats(home.ID, away.ID),
		CreatedBy:    cmd.CreatedBy,
		CreatorEmail: strings.TrimSpace(cmd.CreatorEmail),
	}
	if err := s.matches.Create(ctx, match); err != nil {
		return nil, err
	}
	s.cache.InvalidateMatch(ctx, "")

	league.Matches = append(league.Matches, match.ID)
	if err := s.leagues.Update(ctx, league); err != nil {
		return nil, mapStoreError(err)
	}
	s.cache.InvalidateLeague(ctx, league.ID)

	s.scheduleReminder(match, match.CreatorEmail)
	log.WithFields(log.Fields{"match_id": match.ID, "league_id": league.ID, "start": start}).Info("match added")
	return match, nil
}

// UpdateMatch applies the non-empty fields of cmd. A new date or start time
// moves kick-off, the end time and any pending reminder.
func (s *SportsCommandService) UpdateMatch(ctx context.Context, cmd cqrs.UpdateMatchCommand) (*models.Match, error) {
	match, err := s.matches.GetByID(ctx, cmd.MatchID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	if cmd.CountryID != "" {
		country, err := s.countries.GetByID(ctx, cmd.CountryID)
		if err != nil {
			return nil, mapStoreError(err)
		}
		match.CountryID = country.ID
	}

	var league *models.League
	if cmd.LeagueID != "" {
		if league, err = s.leagues.GetByID(ctx, cmd.LeagueID); err != nil {
			return nil, mapStoreError(err)
		}
		match.LeagueID = league.ID
	}

	setIfPresent(&match.MatchType, cmd.Type)
	setIfPresent(&match.Season, cmd.Season)
	setIfPresent(&match.Stage, cmd.Stage)
	setIfPresent(&match.Stadium, cmd.Stadium)

	day := match.DateOfPlay
	clock := match.StartTime.Sub(midnight(match.StartTime))
	rescheduled := false
	if cmd.Date != "" {
		if day, err = parseDate(cmd.Date); err != nil {
			return nil, err
		}
		match.DateOfPlay = day
		rescheduled = true
	}
	if cmd.StartTime != "" {
		if clock, err = parseClock(cmd.StartTime); err != nil {
			return nil, err
		}
		rescheduled = true
	}
	if rescheduled {
		match.StartTime, match.EndTime = kickoff(day, clock)
	}

	if err := s.matches.Update(ctx, match); err != nil {
		return nil, mapStoreError(err)
	}
	s.cache.InvalidateMatch(ctx, match.ID)

	if league != nil && !contains(league.Matches, match.ID) {
		league.Matches = append(league.Matches, match.ID)
		if err := s.leagues.Update(ctx, league); err != nil {
			return nil, mapStoreError(err)
		}
		s.cache.InvalidateLeague(ctx, league.ID)
	}

	if rescheduled {
		s.rescheduleReminder(match)
	}
	return match, nil
}

// UpdateMatchLeague moves the match to the league with cmd.LeagueCode,
// dropping it from the league it was in.
func (s *SportsCommandService) UpdateMatchLeague(ctx context.Context, cmd cqrs.UpdateMatchLeagueCommand) (*models.Match, error) {
	match, err := s.matches.GetByID(ctx, cmd.MatchID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	league, err := s.leagues.GetByCode(ctx, strings.TrimSpace(cmd.LeagueCode))
	if err != nil {
		return nil, mapStoreError(err)
	}
	if contains(league.Matches, match.ID) {
		return nil, ErrMatchInLeague
	}

	previous := match.LeagueID
	match.LeagueID = league.ID
	if err := s.matches.Update(ctx, match); err != nil {
		return nil, mapStoreError(err)
	}
	s.cache.InvalidateMatch(ctx, match.ID)

	league.Matches = append(league.Matches, match.ID)
	if err := s.leagues.Update(ctx, league); err != nil {
		return nil, mapStoreError(err)
	}
	s.cache.InvalidateLeague(ctx, league.ID)

	s.detachFromLeague(ctx, previous, league.ID, func(l *models.League) *[]string { return &l.Matches }, match.ID)
	log.WithFields(log.Fields{"match_id": match.ID, "league_id": league.ID, "from": previous}).Info("match moved")
	return match, nil
}

// UpdateScore sets the score of the given type for a team in the match and
// returns the match's score sheet.
func (s *SportsCommandService) UpdateScore(ctx context.Context, cmd cqrs.UpdateScoreCommand) ([]models.Score, error) {
	switch {
	case cmd.TeamID == "":
		return nil, invalid("team id is required")
	case cmd.Score == nil:
		return nil, invalid("score is required")
	case strings.TrimSpace(cmd.Type) == "":
		return nil, invalid("score type is required")
	}

	match, err := s.matchWithTeam(ctx, cmd.MatchID, cmd.TeamID)
	if err != nil {
		return nil, err
	}

	scoreType := strings.ToLower(strings.TrimSpace(cmd.Type))
	updated := false
	for i := range match.Score {
		if match.Score[i].Team == cmd.TeamID && match.Score[i].Type == scoreType {
			match.Score[i].Count = *cmd.Score
			updated = true
		}
	}
	if !updated {
		match.Score = append(match.Score, models.Score{Team: cmd.TeamID, Type: scoreType, Count: *cmd.Score})
	}

	if err := s.matches.Update(ctx, match); err != nil {
		return nil, mapStoreError(err)
	}
	s.cache.InvalidateMatch(ctx, match.ID)
	return match.Score, nil
}

// UpdateStats patches a team's counters with the fields present in cmd and
// returns the match's stats.
func (s *SportsCommandService) UpdateStats(ctx context.Context, cmd cqrs.UpdateStatsCommand) ([]models.Stats, error) {
	if cmd.TeamID == "" {
		return nil, invalid("team id is required")
	}
	match, err := s.matchWithTeam(ctx, cmd.MatchID, cmd.TeamID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range match.Stats {
		if match.Stats[i].Team == cmd.TeamID {
			cmd.Patch.Apply(&match.Stats[i].Details)
			found = true
		}
	}
	if !found {
		st := models.Stats{Team: cmd.TeamID}
		cmd.Patch.Apply(&st.Details)
		match.Stats = append(match.Stats, st)
	}

	if err := s.matches.Update(ctx, match); err != nil {
		return nil, mapStoreError(err)
	}
	s.cache.InvalidateMatch(ctx, match.ID)
	return match.Stats, nil
}

func (s *SportsCommandService) matchWithTeam(ctx context.Context, matchID, teamID string) (*models.Match, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if !match.IncludesTeam(team.ID) {
		return nil, ErrTeamNotInMatch
	}
	return match, nil
}

func setIfPresent(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
