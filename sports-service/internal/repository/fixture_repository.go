package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/xpch/platform/shared/models"
)

const fixtureSelect = `
	SELECT id, fixture_id, description, slug, matches, league_id, created_at, updated_at
	FROM fixtures `

type FixtureRepository struct {
	db *sql.DB
}

func NewFixtureRepository(db *sql.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func scanFixture(row rowScanner) (*models.Fixture, error) {
	var f models.Fixture
	err := row.Scan(&f.ID, &f.FixtureID, &f.Description, &f.Slug,
		pq.Array(&f.Matches), &f.LeagueID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	f.Matches = nonNil(f.Matches)
	return &f, nil
}

func (r *FixtureRepository) GetByID(ctx context.Context, id string) (*models.Fixture, error) {
	f, err := scanFixture(r.db.QueryRowContext(ctx, fixtureSelect+`WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFixtureNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fixture: %w", err)
	}
	return f, nil
}

func (r *FixtureRepository) List(ctx context.Context) ([]models.Fixture, error) {
	rows, err := r.db.QueryContext(ctx, fixtureSelect+`ORDER BY fixture_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures: %w", err)
	}
	defer rows.Close()

	fixtures := []models.Fixture{}
	for rows.Next() {
		f, err := scanFixture(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fixture: %w", err)
		}
		fixtures = append(fixtures, *f)
	}
	return fixtures, rows.Err()
}

func (r *FixtureRepository) Create(ctx context.Context, f *models.Fixture) error {
	f.Matches = nonNil(f.Matches)
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO fixtures (id, fixture_id, description, slug, matches, league_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, f.ID, f.FixtureID, f.Description, f.Slug, pq.Array(f.Matches), f.LeagueID,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if uniqueViolation(err) {
		return ErrFixtureIDExists
	}
	if err != nil {
		return fmt.Errorf("failed to create fixture: %w", err)
	}
	return nil
}

// Update writes the matches, league and description of f back.
func (r *FixtureRepository) Update(ctx context.Context, f *models.Fixture) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE fixtures
		SET description = $2, matches = $3, league_id = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, f.ID, f.Description, pq.Array(nonNil(f.Matches)), f.LeagueID,
	).Scan(&f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrFixtureNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update fixture: %w", err)
	}
	return nil
}
