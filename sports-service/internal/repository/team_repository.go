package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/xpch/platform/shared/models"
)

const teamSelect = `
	SELECT id, name, description, code, leagues, created_at, updated_at
	FROM teams `

type TeamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func scanTeam(row rowScanner) (*models.Team, error) {
	var t models.Team
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Code, pq.Array(&t.Leagues), &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Leagues = nonNil(t.Leagues)
	return &t, nil
}

func (r *TeamRepository) getOne(ctx context.Context, where string, arg any) (*models.Team, error) {
	t, err := scanTeam(r.db.QueryRowContext(ctx, teamSelect+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return t, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *TeamRepository) GetByCode(ctx context.Context, code string) (*models.Team, error) {
	return r.getOne(ctx, `WHERE code = $1`, code)
}

func (r *TeamRepository) List(ctx context.Context) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx, teamSelect+`ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := []models.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	team.Leagues = nonNil(team.Leagues)
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO teams (id, name, description, code, leagues)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, team.ID, team.Name, team.Description, team.Code, pq.Array(team.Leagues),
	).Scan(&team.CreatedAt, &team.UpdatedAt)
	if uniqueViolation(err) {
		return ErrTeamCodeExists
	}
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *TeamRepository) Update(ctx context.Context, team *models.Team) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE teams
		SET name = $2, description = $3, code = $4, leagues = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, team.ID, team.Name, team.Description, team.Code, pq.Array(nonNil(team.Leagues)),
	).Scan(&team.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrTeamNotFound
	case uniqueViolation(err):
		return ErrTeamCodeExists
	case err != nil:
		return fmt.Errorf("failed to update team: %w", err)
	}
	return nil
}
