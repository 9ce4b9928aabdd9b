// Package countries stores a service's copy of the country catalog. Every
// service keeps its own countries table with the same shape; rows are keyed
// on the unique country name.
package countries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xpch/platform/shared/models"
	"github.com/xpch/platform/shared/utils"
)

var ErrNotFound = errors.New("country not found")

const selectColumns = `
	SELECT id, name, code2, code3, capital, region, sub_region, currency_code,
		currency_image, phone_code, flag, slug, states, created_at, updated_at
	FROM countries `

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCountry(row rowScanner) (*models.Country, error) {
	var c models.Country
	var states []byte
	err := row.Scan(
		&c.ID, &c.Name, &c.Code2, &c.Code3, &c.Capital, &c.Region, &c.SubRegion, &c.CurrencyCode,
		&c.CurrencyImage, &c.PhoneCode, &c.Flag, &c.Slug, &states, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(states, &c.States); err != nil {
		return nil, fmt.Errorf("failed to decode states: %w", err)
	}
	return &c, nil
}

// Upsert stores country keyed on its unique name and returns the stored row.
// Redelivered events land on the same row.
func (r *Repository) Upsert(ctx context.Context, country *models.Country) (*models.Country, error) {
	states := country.States
	if states == nil {
		states = []models.State{}
	}
	rawStates, err := json.Marshal(states)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal states: %w", err)
	}
	slug := country.Slug
	if slug == "" {
		slug = utils.Slugify(country.Name)
	}

	stored := *country
	stored.States = states
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO countries (id, name, code2, code3, capital, region, sub_region,
			currency_code, currency_image, phone_code, flag, slug, states)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (name) DO UPDATE
		SET code2 = EXCLUDED.code2, code3 = EXCLUDED.code3, capital = EXCLUDED.capital,
			region = EXCLUDED.region, sub_region = EXCLUDED.sub_region,
			currency_code = EXCLUDED.currency_code, currency_image = EXCLUDED.currency_image,
			phone_code = EXCLUDED.phone_code, flag = EXCLUDED.flag, states = EXCLUDED.states,
			updated_at = NOW()
		RETURNING id, slug, created_at, updated_at
	`,
		utils.GenerateID("cty"), country.Name, country.Code2, country.Code3, country.Capital,
		country.Region, country.SubRegion, country.CurrencyCode, country.CurrencyImage,
		country.PhoneCode, country.Flag, slug, rawStates,
	).Scan(&stored.ID, &stored.Slug, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert country: %w", err)
	}
	return &stored, nil
}

func (r *Repository) getOne(ctx context.Context, where string, arg any) (*models.Country, error) {
	c, err := scanCountry(r.db.QueryRowContext(ctx, selectColumns+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get country: %w", err)
	}
	return c, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.Country, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByPhoneCode finds the country dialled with code, e.g. "+234".
func (r *Repository) GetByPhoneCode(ctx context.Context, code string) (*models.Country, error) {
	return r.getOne(ctx, `WHERE phone_code = $1 ORDER BY name LIMIT 1`, code)
}

func (r *Repository) List(ctx context.Context) ([]models.Country, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+`ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	defer rows.Close()

	list := []models.Country{}
	for rows.Next() {
		c, err := scanCountry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		list = append(list, *c)
	}
	return list, rows.Err()
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM countries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count countries: %w", err)
	}
	return n, nil
}
