package command

import "errors"

var (
	ErrLeagueNotFound   = errors.New("league does not exist")
	ErrCountryNotFound  = errors.New("country does not exist")
	ErrTeamNotFound     = errors.New("team does not exist")
	ErrHomeTeamNotFound = errors.New("home team does not exist")
	ErrAwayTeamNotFound = errors.New("away team does not exist")
	ErrMatchNotFound    = errors.New("match does not exist")
	ErrFixtureNotFound  = errors.New("fixture does not exist")

	ErrLeagueCodeExists = errors.New("league code already exists")
	ErrTeamCodeExists   = errors.New("team code already exists")

	ErrLeagueHasTeam    = errors.New("league already contains team")
	ErrLeagueHasMatch   = errors.New("league already contains match")
	ErrLeagueHasFixture = errors.New("league already contains fixture")
	ErrTeamHasLeague    = errors.New("team already contains league")
	ErrTeamNotInMatch   = errors.New("match does not include team")
	ErrMatchInLeague    = errors.New("match is already attached to league")
	ErrFixtureInLeague  = errors.New("fixture is already attached to league")
)

// ValidationError reports a missing or malformed field in a command.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
