package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xpch/platform/shared/models"
	"github.com/xpch/platform/shared/utils"
)

const bankSelect = `
	SELECT id, name, code, bank_id, country, currency, type, is_enabled, created_at, updated_at
	FROM banks `

type BankRepository struct {
	db *sql.DB
}

func NewBankRepository(db *sql.DB) *BankRepository {
	return &BankRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBank(row rowScanner) (*models.Bank, error) {
	var b models.Bank
	err := row.Scan(&b.ID, &b.Name, &b.Code, &b.BankID, &b.Country, &b.Currency, &b.Type,
		&b.IsEnabled, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BankRepository) GetByID(ctx context.Context, id string) (*models.Bank, error) {
	b, err := scanBank(r.db.QueryRowContext(ctx, bankSelect+`WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBankNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bank: %w", err)
	}
	return b, nil
}

func (r *BankRepository) List(ctx context.Context) ([]models.Bank, error) {
	rows, err := r.db.QueryContext(ctx, bankSelect+`ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list banks: %w", err)
	}
	defer rows.Close()

	banks := []models.Bank{}
	for rows.Next() {
		b, err := scanBank(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank: %w", err)
		}
		banks = append(banks, *b)
	}
	return banks, rows.Err()
}

// Create inserts bank, mapping unique violations to the field that clashed.
func (r *BankRepository) Create(ctx context.Context, bank *models.Bank) error {
	if bank.ID == "" {
		bank.ID = utils.GenerateID("bnk")
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO banks (id, name, code, bank_id, country, currency, type, slug, is_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, bank.ID, bank.Name, bank.Code, bank.BankID, bank.Country, bank.Currency, bank.Type,
		utils.Slugify(bank.Name), bank.IsEnabled,
	).Scan(&bank.CreatedAt, &bank.UpdatedAt)

	if constraint, ok := uniqueViolation(err); ok {
		switch constraint {
		case "banks_code_key":
			return ErrBankCodeExists
		case "banks_bank_id_key":
			return ErrBankIDExists
		default:
			return ErrBankNameExists
		}
	}
	if err != nil {
		return fmt.Errorf("failed to create bank: %w", err)
	}
	return nil
}

func (r *BankRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE banks SET is_enabled = $2, updated_at = NOW() WHERE id = $1`, id, enabled)
	if err != nil {
		return fmt.Errorf("failed to update bank: %w", err)
	}
	return expectOneRow(result)
}

func (r *BankRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM banks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bank: %w", err)
	}
	return expectOneRow(result)
}

func (r *BankRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM banks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count banks: %w", err)
	}
	return n, nil
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBankNotFound
	}
	return nil
}
