package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrBankNotFound   = errors.New("bank does not exist")
	ErrBankNameExists = errors.New("bank name already exists")
	ErrBankCodeExists = errors.New("bank code already exists")
	ErrBankIDExists   = errors.New("bank id already exists")
)

// uniqueViolation returns the violated constraint name when err is a
// Postgres unique violation.
func uniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pqErr.Constraint, true
	}
	return "", false
}
