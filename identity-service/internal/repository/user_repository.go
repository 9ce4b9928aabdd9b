package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/xpch/platform/shared/models"
)

// UserRepository is the Postgres store for users, their roles and their
// verification record.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userSelect = `
	SELECT u.id, u.email, u.password_hash, u.password_type, u.first_name, u.last_name,
	       COALESCE(u.phone_number, ''), u.phone_code, u.user_type, COALESCE(u.country_id, ''),
	       u.is_super, u.is_activated, u.is_active, COALESCE(v.email, FALSE),
	       u.login_limit, u.is_locked, u.locked_at,
	       u.email_code, u.email_code_expire, u.activation_token, u.activation_expire,
	       u.reset_password_token, u.reset_password_expire,
	       ARRAY(SELECT r.name FROM user_roles ur JOIN roles r ON r.id = ur.role_id
	             WHERE ur.user_id = u.id ORDER BY r.name),
	       u.created_at, u.updated_at
	FROM users u
	LEFT JOIN verifications v ON v.user_id = u.id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var lockedAt, codeExpire, activationExpire, resetExpire sql.NullTime

	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.PasswordType, &u.FirstName, &u.LastName,
		&u.PhoneNumber, &u.PhoneCode, &u.UserType, &u.CountryID,
		&u.IsSuper, &u.IsActivated, &u.IsActive, &u.EmailCheck,
		&u.LoginLimit, &u.IsLocked, &lockedAt,
		&u.EmailCode, &codeExpire, &u.ActivationToken, &activationExpire,
		&u.ResetPasswordToken, &resetExpire,
		pq.Array(&u.Roles),
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.LockedAt = timePtr(lockedAt)
	u.EmailCodeExpire = timePtr(codeExpire)
	u.ActivationExpire = timePtr(activationExpire)
	u.ResetPasswordExpire = timePtr(resetExpire)
	return &u, nil
}

func (r *UserRepository) getOne(ctx context.Context, where string, args ...any) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, userSelect+where, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `WHERE u.id = $1 AND u.deleted_at IS NULL`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `WHERE u.email = $1 AND u.deleted_at IS NULL`, email)
}

// GetByActivationToken finds the user holding an unexpired activation token.
func (r *UserRepository) GetByActivationToken(ctx context.Context, hashed string, now time.Time) (*models.User, error) {
	return r.getOne(ctx, `WHERE u.activation_token = $1 AND u.activation_expire > $2 AND u.deleted_at IS NULL`, hashed, now)
}

// GetByResetToken finds the user holding an unexpired password reset token.
func (r *UserRepository) GetByResetToken(ctx context.Context, hashed string, now time.Time) (*models.User, error) {
	return r.getOne(ctx, `WHERE u.reset_password_token = $1 AND u.reset_password_expire > $2 AND u.deleted_at IS NULL`, hashed, now)
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, userSelect+`WHERE u.deleted_at IS NULL ORDER BY u.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *UserRepository) PhoneExists(ctx context.Context, phoneNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE phone_number = $1 AND deleted_at IS NULL)`, phoneNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check phone number: %w", err)
	}
	return exists, nil
}

// Create inserts the user with its verification record and roles in one
// transaction.
func (r *UserRepository) Create(ctx context.Context, user *models.User, verification *models.Verification, roleIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, password_type, first_name, last_name,
			phone_number, phone_code, user_type, is_super, is_activated, is_active,
			activation_token, activation_expire, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		user.ID, user.Email, user.PasswordHash, user.PasswordType, user.FirstName, user.LastName,
		user.PhoneNumber, user.PhoneCode, user.UserType, user.IsSuper, user.IsActivated, user.IsActive,
		user.ActivationToken, nullTime(user.ActivationExpire), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == "users_phone_number_key" {
				return ErrPhoneExists
			}
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO verifications (id, user_id, basic, identity, address, face, sms, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		verification.ID, user.ID, verification.Basic, verification.Identity,
		verification.Address, verification.Face, verification.SMS, verification.Email,
	)
	if err != nil {
		return fmt.Errorf("failed to create verification: %w", err)
	}

	for _, roleID := range roleIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, user.ID, roleID,
		); err != nil {
			return fmt.Errorf("failed to attach role: %w", err)
		}
	}

	return tx.Commit()
}

// Update persists every mutable column of user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = $2, password_type = $3, first_name = $4, last_name = $5,
			is_activated = $6, is_active = $7, login_limit = $8, is_locked = $9, locked_at = $10,
			email_code = $11, email_code_expire = $12,
			activation_token = $13, activation_expire = $14,
			reset_password_token = $15, reset_password_expire = $16,
			updated_at = $17
		WHERE id = $1 AND deleted_at IS NULL
	`,
		user.ID, user.PasswordHash, user.PasswordType, user.FirstName, user.LastName,
		user.IsActivated, user.IsActive, user.LoginLimit, user.IsLocked, nullTime(user.LockedAt),
		user.EmailCode, nullTime(user.EmailCodeExpire),
		user.ActivationToken, nullTime(user.ActivationExpire),
		user.ResetPasswordToken, nullTime(user.ResetPasswordExpire),
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectOneRow(result, ErrUserNotFound)
}

// SetCountry attaches a country to a user that has none. It reports whether
// the row changed so a redelivered event is a no-op.
func (r *UserRepository) SetCountry(ctx context.Context, userID, countryID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET country_id = $2, updated_at = NOW() WHERE id = $1 AND country_id IS NULL`,
		userID, countryID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to set user country: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *UserRepository) SetEmailCheck(ctx context.Context, userID string, enabled bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE verifications SET email = $2 WHERE user_id = $1`, userID, enabled,
	)
	if err != nil {
		return fmt.Errorf("failed to update verification: %w", err)
	}
	return expectOneRow(result, ErrUserNotFound)
}

// UnlockExpired clears the lock on every account locked at or before cutoff
// and returns the ids it unlocked.
func (r *UserRepository) UnlockExpired(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		UPDATE users
		SET is_locked = FALSE, login_limit = 0, locked_at = NULL, updated_at = NOW()
		WHERE is_locked AND (locked_at IS NULL OR locked_at <= $1)
		RETURNING id
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to unlock users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan unlocked user: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *UserRepository) AttachRoles(ctx context.Context, userID string, roleIDs []string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, UNNEST($2::text[])
		ON CONFLICT DO NOTHING
	`, userID, pq.Array(roleIDs))
	if err != nil {
		return fmt.Errorf("failed to attach roles: %w", err)
	}
	return nil
}

func (r *UserRepository) DetachRole(ctx context.Context, userID, roleID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID,
	)
	if err != nil {
		return fmt.Errorf("failed to detach role: %w", err)
	}
	return nil
}

func expectOneRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
