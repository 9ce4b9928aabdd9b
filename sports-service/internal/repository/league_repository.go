package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/xpch/platform/shared/models"
)

const leagueSelect = `
	SELECT id, name, description, code, teams, matches, fixtures, created_at, updated_at
	FROM leagues `

type LeagueRepository struct {
	db *sql.DB
}

func NewLeagueRepository(db *sql.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func scanLeague(row rowScanner) (*models.League, error) {
	var l models.League
	err := row.Scan(&l.ID, &l.Name, &l.Description, &l.Code,
		pq.Array(&l.Teams), pq.Array(&l.Matches), pq.Array(&l.Fixtures), &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.Teams = nonNil(l.Teams)
	l.Matches = nonNil(l.Matches)
	l.Fixtures = nonNil(l.Fixtures)
	return &l, nil
}

func (r *LeagueRepository) getOne(ctx context.Context, where string, arg any) (*models.League, error) {
	l, err := scanLeague(r.db.QueryRowContext(ctx, leagueSelect+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLeagueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get league: %w", err)
	}
	return l, nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, id string) (*models.League, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *LeagueRepository) GetByCode(ctx context.Context, code string) (*models.League, error) {
	return r.getOne(ctx, `WHERE code = $1`, code)
}

func (r *LeagueRepository) List(ctx context.Context) ([]models.League, error) {
	rows, err := r.db.QueryContext(ctx, leagueSelect+`ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	defer rows.Close()

	leagues := []models.League{}
	for rows.Next() {
		l, err := scanLeague(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan league: %w", err)
		}
		leagues = append(leagues, *l)
	}
	return leagues, rows.Err()
}

func (r *LeagueRepository) Create(ctx context.Context, league *models.League) error {
	league.Teams = nonNil(league.Teams)
	league.Matches = nonNil(league.Matches)
	league.Fixtures = nonNil(league.Fixtures)
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO leagues (id, name, description, code, teams, matches, fixtures)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, league.ID, league.Name, league.Description, league.Code,
		pq.Array(league.Teams), pq.Array(league.Matches), pq.Array(league.Fixtures),
	).Scan(&league.CreatedAt, &league.UpdatedAt)
	if uniqueViolation(err) {
		return ErrLeagueCodeExists
	}
	if err != nil {
		return fmt.Errorf("failed to create league: %w", err)
	}
	return nil
}

// Update writes every mutable column of league back.
func (r *LeagueRepository) Update(ctx context.Context, league *models.League) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE leagues
		SET name = $2, description = $3, code = $4, teams = $5, matches = $6, fixtures = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, league.ID, league.Name, league.Description, league.Code,
		pq.Array(nonNil(league.Teams)), pq.Array(nonNil(league.Matches)), pq.Array(nonNil(league.Fixtures)),
	).Scan(&league.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrLeagueNotFound
	case uniqueViolation(err):
		return ErrLeagueCodeExists
	case err != nil:
		return fmt.Errorf("failed to update league: %w", err)
	}
	return nil
}
