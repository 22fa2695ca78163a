package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"profile-service/internal/core"
	"profile-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes translate handles specially.
const (
	uniqueViolation = "23505"
	// invalidTextRepresentation is raised when a user id is not a UUID.
	invalidTextRepresentation = "22P02"
)

// DBTX is the subset of the pgx pool the repository needs.
// Both *pgxpool.Pool and pgxmock pools satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresUserRepository struct {
	db      DBTX
	timeout time.Duration
	newID   func() string
}

// NewUserRepository bounds every query by timeout.
func NewUserRepository(db DBTX, timeout time.Duration) *PostgresUserRepository {
	return &PostgresUserRepository{
		db:      db,
		timeout: timeout,
		newID:   func() string { return uuid.New().String() },
	}
}

func (r *PostgresUserRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// translate maps driver errors onto the core taxonomy.
func translate(op string, err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return fmt.Errorf("%s: %w", op, core.ErrConflict)
	case errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation:
		// No row can have an id that is not a UUID.
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w: %v", op, core.ErrStoreUnavailable, err)
	}
}

const userColumns = `user_id, first_name, last_name, username, email, password, photo_url, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.UserID, &user.FirstName, &user.LastName, &user.Username, &user.Email,
		&user.PasswordHash, &user.PhotoURL, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// --- Auth & Basic ---

func (r *PostgresUserRepository) Create(ctx context.Context, firstName, lastName, username, email, passwordHash string) (string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	userID := r.newID()
	query := `
		INSERT INTO users (user_id, first_name, last_name, username, email, password)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.Exec(ctx, query, userID, firstName, lastName, username, email, passwordHash); err != nil {
		return "", translate("create user", err)
	}
	return userID, nil
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, translate("find user by email", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, translate("find user by id", err)
	}
	return user, nil
}

// --- Profile ---

func (r *PostgresUserRepository) ExistsEmailForOtherUser(ctx context.Context, email, excludingUserID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND user_id <> $2)`
	if err := r.db.QueryRow(ctx, query, email, excludingUserID).Scan(&exists); err != nil {
		return false, translate("check email", err)
	}
	return exists, nil
}

func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, userID, firstName, lastName, email, passwordHash string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, password = $4
		WHERE user_id = $5`
	tag, err := r.db.Exec(ctx, query, firstName, lastName, email, passwordHash, userID)
	if err != nil {
		return translate("update profile", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}
	return nil
}

func (r *PostgresUserRepository) DeleteByID(ctx context.Context, userID string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return translate("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}
	return nil
}

// --- Photo ---

// SetPhotoURL stores url, or NULL when url is nil.
func (r *PostgresUserRepository) SetPhotoURL(ctx context.Context, userID string, url *string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE users SET photo_url = $1 WHERE user_id = $2`, url, userID)
	if err != nil {
		return translate("set photo url", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set photo url: %w", core.ErrNotFound)
	}
	return nil
}

func (r *PostgresUserRepository) GetPhotoURL(ctx context.Context, userID string) (*string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var url *string
	if err := r.db.QueryRow(ctx, `SELECT photo_url FROM users WHERE user_id = $1`, userID).Scan(&url); err != nil {
		return nil, translate("get photo url", err)
	}
	return url, nil
}

// --- Health ---

func (r *PostgresUserRepository) Now(ctx context.Context) (time.Time, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var now time.Time
	if err := r.db.QueryRow(ctx, `SELECT NOW()`).Scan(&now); err != nil {
		return time.Time{}, translate("select now", err)
	}
	return now, nil
}
