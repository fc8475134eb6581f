package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/tournament-api/models"
	"github.com/jmoiron/sqlx"
)

// UserRepository is the credential store. It writes immediately and does not
// take part in the tournament unit of work.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, userID string, token string, expiresAt time.Time) error
	RotateRefreshToken(ctx context.Context, userID, current, next string, expiresAt time.Time) error
	AddRole(ctx context.Context, userID string, role models.UserRole) error
	RemoveRole(ctx context.Context, userID string, role models.UserRole) error
}

type sqlUserRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLUserRepository(db *sqlx.DB) UserRepository {
	return &sqlUserRepository{db: db, now: time.Now}
}

const userColumns = `id, user_name, email, name, age, position, password_hash,
	refresh_token, refresh_token_expires_at, created_at`

// Create inserts the user together with user.Roles.
func (r *sqlUserRepository) Create(ctx context.Context, user *models.User) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createdAt := r.now().UTC()
	query := tx.Rebind(`
		INSERT INTO users (id, user_name, email, name, age, position, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	if _, err := tx.ExecContext(ctx, query,
		user.ID, user.UserName, user.Email, user.Name, user.Age, user.Position, user.PasswordHash, createdAt,
	); err != nil {
		return handleUserError(err)
	}

	for _, role := range user.Roles {
		if err := insertRole(ctx, tx, user.ID, role); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user: %w", err)
	}
	user.CreatedAt = createdAt
	return nil
}

func (r *sqlUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *sqlUserRepository) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	return r.getBy(ctx, "user_name", userName)
}

func (r *sqlUserRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ?`)

	user := &models.User{}
	if err := r.db.GetContext(ctx, user, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var roles []models.UserRole
	rolesQuery := r.db.Rebind(`SELECT role FROM user_roles WHERE user_id = ? ORDER BY role`)
	if err := r.db.SelectContext(ctx, &roles, rolesQuery, user.ID); err != nil {
		return nil, fmt.Errorf("failed to load roles for user %s: %w", user.ID, err)
	}
	user.Roles = roles
	return user, nil
}

// UpdateRefreshToken replaces the single active refresh token of the user.
func (r *sqlUserRepository) UpdateRefreshToken(ctx context.Context, userID string, token string, expiresAt time.Time) error {
	query := r.db.Rebind(`UPDATE users SET refresh_token = ?, refresh_token_expires_at = ? WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, token, expiresAt.UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

// RotateRefreshToken swaps current for next only while current is still the
// stored token, so a refresh token can be redeemed at most once.
func (r *sqlUserRepository) RotateRefreshToken(ctx context.Context, userID, current, next string, expiresAt time.Time) error {
	query := r.db.Rebind(`
		UPDATE users SET refresh_token = ?, refresh_token_expires_at = ?
		WHERE id = ? AND refresh_token = ?`)
	result, err := r.db.ExecContext(ctx, query, next, expiresAt.UTC(), userID, current)
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return checkAffectedRows(result, ErrRefreshTokenMismatch)
}

// AddRole is a no-op when the user already has the role.
func (r *sqlUserRepository) AddRole(ctx context.Context, userID string, role models.UserRole) error {
	var n int
	query := r.db.Rebind(`SELECT COUNT(1) FROM user_roles WHERE user_id = ? AND role = ?`)
	if err := r.db.GetContext(ctx, &n, query, userID, role); err != nil {
		return fmt.Errorf("failed to check role: %w", err)
	}
	if n > 0 {
		return nil
	}
	return insertRole(ctx, r.db, userID, role)
}

func (r *sqlUserRepository) RemoveRole(ctx context.Context, userID string, role models.UserRole) error {
	query := r.db.Rebind(`DELETE FROM user_roles WHERE user_id = ? AND role = ?`)
	if _, err := r.db.ExecContext(ctx, query, userID, role); err != nil {
		return fmt.Errorf("failed to remove role: %w", err)
	}
	return nil
}

func insertRole(ctx context.Context, exec SQLExecutor, userID string, role models.UserRole) error {
	query := exec.Rebind(`INSERT INTO user_roles (user_id, role) VALUES (?, ?)`)
	if _, err := exec.ExecContext(ctx, query, userID, role); err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to add role %s: %w", role, err)
	}
	return nil
}

func handleUserError(err error) error {
	if target, ok := uniqueViolation(err); ok {
		switch {
		case strings.Contains(target, "users_email_key"), strings.Contains(target, "users.email"):
			return ErrEmailConflict
		case strings.Contains(target, "users_user_name_key"), strings.Contains(target, "users.user_name"):
			return ErrUserNameConflict
		}
	}
	return fmt.Errorf("failed to create user: %w", err)
}
