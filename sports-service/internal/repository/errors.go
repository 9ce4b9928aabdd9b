package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrLeagueNotFound   = errors.New("league does not exist")
	ErrLeagueCodeExists = errors.New("league code already exists")
	ErrTeamNotFound     = errors.New("team does not exist")
	ErrTeamCodeExists   = errors.New("team code already exists")
	ErrMatchNotFound    = errors.New("match does not exist")
	ErrFixtureNotFound  = errors.New("fixture does not exist")
	ErrFixtureIDExists  = errors.New("fixture id already exists")
)

func uniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

type rowScanner interface {
	Scan(dest ...any) error
}

// nonNil keeps empty lists from being written as SQL NULL or JSON null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
