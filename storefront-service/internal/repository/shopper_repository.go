package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xpch/platform/shared/models"
)

var ErrShopperNotFound = errors.New("could not find user")

const shopperSelect = `
	SELECT id, email, phone_number, phone_code, user_type, created_at, updated_at
	FROM shoppers `

type ShopperRepository struct {
	db *sql.DB
}

func NewShopperRepository(db *sql.DB) *ShopperRepository {
	return &ShopperRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShopper(row rowScanner) (*models.Shopper, error) {
	var s models.Shopper
	err := row.Scan(&s.ID, &s.Email, &s.PhoneNumber, &s.PhoneCode, &s.UserType, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert stores shopper keyed on the identity user id. A redelivered
// user.created refreshes the row instead of failing.
func (r *ShopperRepository) Upsert(ctx context.Context, shopper *models.Shopper) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO shoppers (id, email, phone_number, phone_code, user_type)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
			phone_number = EXCLUDED.phone_number,
			phone_code = EXCLUDED.phone_code,
			user_type = EXCLUDED.user_type,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`, shopper.ID, shopper.Email, shopper.PhoneNumber, shopper.PhoneCode, shopper.UserType,
	).Scan(&shopper.CreatedAt, &shopper.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert shopper: %w", err)
	}
	return nil
}

func (r *ShopperRepository) GetByID(ctx context.Context, id string) (*models.Shopper, error) {
	s, err := scanShopper(r.db.QueryRowContext(ctx, shopperSelect+`WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShopperNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shopper: %w", err)
	}
	return s, nil
}

func (r *ShopperRepository) List(ctx context.Context) ([]models.Shopper, error) {
	rows, err := r.db.QueryContext(ctx, shopperSelect+`ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list shoppers: %w", err)
	}
	defer rows.Close()

	shoppers := []models.Shopper{}
	for rows.Next() {
		s, err := scanShopper(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shopper: %w", err)
		}
		shoppers = append(shoppers, *s)
	}
	return shoppers, rows.Err()
}
