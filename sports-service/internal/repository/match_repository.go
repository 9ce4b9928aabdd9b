package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/xpch/platform/shared/models"
)

const matchSelect = `
	SELECT id, match_type, season, stage, date_of_play, start_time, end_time, stadium,
		home_team, away_team, country_id, league_id, teams, score, lineups, stats,
		created_by, creator_email, created_at, updated_at
	FROM matches `

type MatchRepository struct {
	db *sql.DB
}

func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func scanMatch(row rowScanner) (*models.Match, error) {
	var m models.Match
	var score, lineups, stats []byte
	err := row.Scan(
		&m.ID, &m.MatchType, &m.Season, &m.Stage, &m.DateOfPlay, &m.StartTime, &m.EndTime, &m.Stadium,
		&m.HomeTeam, &m.AwayTeam, &m.CountryID, &m.LeagueID, pq.Array(&m.Teams), &score, &lineups, &stats,
		&m.CreatedBy, &m.CreatorEmail, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(score, &m.Score); err != nil {
		return nil, fmt.Errorf("failed to decode score: %w", err)
	}
	if err := json.Unmarshal(lineups, &m.Lineups); err != nil {
		return nil, fmt.Errorf("failed to decode lineups: %w", err)
	}
	if err := json.Unmarshal(stats, &m.Stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	m.Teams = nonNil(m.Teams)
	return &m, nil
}

// matchDocuments encodes the JSONB columns of m.
func matchDocuments(m *models.Match) (score, lineups, stats []byte, err error) {
	if score, err = json.Marshal(nonNil(m.Score)); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode score: %w", err)
	}
	if lineups, err = json.Marshal(nonNil(m.Lineups)); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode lineups: %w", err)
	}
	if stats, err = json.Marshal(nonNil(m.Stats)); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode stats: %w", err)
	}
	return score, lineups, stats, nil
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	m, err := scanMatch(r.db.QueryRowContext(ctx, matchSelect+`WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

func (r *MatchRepository) List(ctx context.Context) ([]models.Match, error) {
	rows, err := r.db.QueryContext(ctx, matchSelect+`ORDER BY start_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := []models.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (r *MatchRepository) Create(ctx context.Context, m *models.Match) error {
	score, lineups, stats, err := matchDocuments(m)
	if err != nil {
		return err
	}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO matches (id, match_type, season, stage, date_of_play, start_time, end_time, stadium,
			home_team, away_team, country_id, league_id, teams, score, lineups, stats, created_by, creator_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at, updated_at
	`, m.ID, m.MatchType, m.Season, m.Stage, m.DateOfPlay, m.StartTime, m.EndTime, m.Stadium,
		m.HomeTeam, m.AwayTeam, m.CountryID, m.LeagueID, pq.Array(nonNil(m.Teams)), score, lineups, stats, m.CreatedBy, m.CreatorEmail,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

// Update writes every mutable column of m back.
func (r *MatchRepository) Update(ctx context.Context, m *models.Match) error {
	score, lineups, stats, err := matchDocuments(m)
	if err != nil {
		return err
	}
	err = r.db.QueryRowContext(ctx, `
		UPDATE matches
		SET match_type = $2, season = $3, stage = $4, date_of_play = $5, start_time = $6, end_time = $7,
			stadium = $8, country_id = $9, league_id = $10, score = $11, lineups = $12, stats = $13,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, m.ID, m.MatchType, m.Season, m.Stage, m.DateOfPlay, m.StartTime, m.EndTime,
		m.Stadium, m.CountryID, m.LeagueID, score, lineups, stats,
	).Scan(&m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMatchNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}
	return nil
}
