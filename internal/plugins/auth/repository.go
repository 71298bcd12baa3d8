package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/yojanahub/yojanahub/internal/apperror"
)

// mysqlDuplicateEntry is the MariaDB error number for unique key violations.
const mysqlDuplicateEntry = 1062

// UserRepository defines the data access contract for user accounts.
// All SQL lives in the concrete implementation -- no SQL leaks out.
//
// The reset-token methods are single-statement updates: setting and clearing
// the token pair must be atomic at the store, never read-modify-write from
// the application layer.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id string) error

	// Password reset.
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	FindByResetTokenHash(ctx context.Context, tokenHash string) (*User, error)
	UpdatePasswordAndClearReset(ctx context.Context, userID, passwordHash string) error

	// Saved schemes (bookmarks stored on the user record).
	SaveScheme(ctx context.Context, userID, schemeID string) error
	UnsaveScheme(ctx context.Context, userID, schemeID string) error
	ListSavedSchemeIDs(ctx context.Context, userID string) ([]string, error)
}

// userRepository implements UserRepository with hand-written MariaDB queries.
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository backed by the given DB pool.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// userColumns is the full column list scanned into a User.
const userColumns = `id, name, email, password_hash, reset_token_hash,
	       reset_token_expires_at, created_at, last_login_at`

// scanUser scans a single user row.
func scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.ResetTokenHash,
		&user.ResetTokenExpiresAt,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// isDuplicateEntry reports whether err is a unique key violation.
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

// Create inserts a new user row. A duplicate email maps to a Conflict error;
// the unique index is the authority on uniqueness, not a prior existence
// check (two concurrent registrations cannot both win).
func (r *userRepository) Create(ctx context.Context, user *User) error {
	query := `INSERT INTO users (id, name, email, password_hash, created_at)
	          VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if isDuplicateEntry(err) {
		return apperror.NewConflict("an account with this email already exists")
	}
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// FindByID retrieves a user by their UUID.
// Returns apperror.NotFound if no user exists with this ID.
func (r *userRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}

	return user, nil
}

// FindByEmail retrieves a user by their normalized email address.
// Returns apperror.NotFound if no user exists with this email.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by email: %w", err)
	}

	return user, nil
}

// EmailExists returns true if a user with the given email already exists.
// Used during registration to avoid expensive hashing for taken emails.
func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking email existence: %w", err)
	}

	return exists, nil
}

// UpdateLastLogin sets the last_login_at timestamp to now for the given user.
func (r *userRepository) UpdateLastLogin(ctx context.Context, id string) error {
	query := `UPDATE users SET last_login_at = NOW() WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}

	return nil
}

// --- Password Reset ---

// SetResetToken stores the reset token hash and expiry in one UPDATE,
// overwriting any previous pending reset. One outstanding token per account.
func (r *userRepository) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	query := `UPDATE users
	          SET reset_token_hash = ?, reset_token_expires_at = ?
	          WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, tokenHash, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("setting reset token: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("user not found")
	}
	return nil
}

// FindByResetTokenHash looks up the account holding an outstanding reset
// token with the given hash. Returns apperror.NotFound when no account
// matches -- which covers unknown, corrupted, and already-consumed tokens
// alike, since consumption clears the hash.
func (r *userRepository) FindByResetTokenHash(ctx context.Context, tokenHash string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token_hash = ?`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, tokenHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("reset token not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by reset token: %w", err)
	}

	return user, nil
}

// UpdatePasswordAndClearReset replaces the password hash and clears both
// reset-token fields in a single UPDATE. The token is consumed exactly once:
// after this statement no query can match it again.
func (r *userRepository) UpdatePasswordAndClearReset(ctx context.Context, userID, passwordHash string) error {
	query := `UPDATE users
	          SET password_hash = ?, reset_token_hash = NULL, reset_token_expires_at = NULL
	          WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("user not found")
	}
	return nil
}

// --- Saved Schemes ---

// SaveScheme bookmarks a scheme for the user. The unique (user_id, scheme_id)
// key gives set semantics; a duplicate save maps to Conflict.
func (r *userRepository) SaveScheme(ctx context.Context, userID, schemeID string) error {
	query := `INSERT INTO user_saved_schemes (user_id, scheme_id, created_at)
	          VALUES (?, ?, NOW())`

	_, err := r.db.ExecContext(ctx, query, userID, schemeID)
	if isDuplicateEntry(err) {
		return apperror.NewConflict("scheme already saved")
	}
	if err != nil {
		return fmt.Errorf("saving scheme: %w", err)
	}
	return nil
}

// UnsaveScheme removes a bookmark. Removing an absent bookmark is not an
// error -- the end state is the same.
func (r *userRepository) UnsaveScheme(ctx context.Context, userID, schemeID string) error {
	query := `DELETE FROM user_saved_schemes WHERE user_id = ? AND scheme_id = ?`

	_, err := r.db.ExecContext(ctx, query, userID, schemeID)
	if err != nil {
		return fmt.Errorf("unsaving scheme: %w", err)
	}
	return nil
}

// ListSavedSchemeIDs returns the user's bookmarked scheme ids, most recent
// first.
func (r *userRepository) ListSavedSchemeIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT scheme_id FROM user_saved_schemes
	          WHERE user_id = ? ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing saved schemes: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning saved scheme row: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
