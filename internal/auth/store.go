package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/driftscope/driftscope/pkg/plugin"
)

// UserStore persists accounts, refresh tokens, and MFA state in the shared
// database, under the module's auth_* tables.
type UserStore struct {
	db *sql.DB
}

// NewUserStore applies the auth schema migrations and binds a store to the
// shared database handle.
func NewUserStore(ctx context.Context, st plugin.Store) (*UserStore, error) {
	if err := st.Migrate(ctx, "auth", migrations()); err != nil {
		return nil, fmt.Errorf("auth migrations: %w", err)
	}
	return &UserStore{db: st.DB()}, nil
}

// userCols lists the columns every user query selects, in the order readUser
// scans them.
const userCols = `id, username, email, password_hash, role, auth_provider, oidc_subject,
	created_at, last_login, disabled, failed_login_attempts, locked_until, totp_enabled, totp_verified`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// readUser scans a single user record, folding nullable columns onto their
// zero values.
func readUser(r rowScanner) (*User, error) {
	var (
		u        User
		role     string
		hash     sql.NullString
		subject  sql.NullString
		lastSeen sql.NullTime
		locked   sql.NullTime
	)
	err := r.Scan(&u.ID, &u.Username, &u.Email, &hash, &role,
		&u.AuthProvider, &subject, &u.CreatedAt, &lastSeen, &u.Disabled,
		&u.FailedLoginAttempts, &locked, &u.TOTPEnabled, &u.TOTPVerified)
	if err != nil {
		return nil, err
	}
	u.Role = Role(role)
	u.PasswordHash = hash.String
	u.OIDCSubject = subject.String
	if lastSeen.Valid {
		u.LastLogin = lastSeen.Time
	}
	if locked.Valid {
		u.LockedUntil = &locked.Time
	}
	return &u, nil
}

// CreateUser inserts a new account.
func (s *UserStore) CreateUser(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_users (id, username, email, password_hash, role, auth_provider, oidc_subject, created_at, disabled)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, string(u.Role),
		u.AuthProvider, u.OIDCSubject, u.CreatedAt, u.Disabled)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByID returns the account with the given ID, or sql.ErrNoRows.
func (s *UserStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM auth_users WHERE id = ?`, id)
	return readUser(row)
}

// GetUserByUsername returns the account with the given username, or sql.ErrNoRows.
func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM auth_users WHERE username = ?`, username)
	return readUser(row)
}

// ListUsers returns every account, oldest first.
func (s *UserStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userCols+` FROM auth_users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := readUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUser writes the mutable account fields: email, role, disabled.
func (s *UserStore) UpdateUser(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE auth_users SET email = ?, role = ?, disabled = ? WHERE id = ?`,
		u.Email, string(u.Role), u.Disabled, u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// DeleteUser removes an account. Returns sql.ErrNoRows when no account
// matched.
func (s *UserStore) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM auth_users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountUsers returns the number of accounts.
func (s *UserStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM auth_users`).Scan(&n)
	return n, err
}

// UpdateLastLogin stamps the account's last successful login.
func (s *UserStore) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE auth_users SET last_login = ? WHERE id = ?`,
		time.Now().UTC(), userID)
	return err
}

// RecordFailedLogin bumps the failed attempt counter and reports the total so
// the caller can decide whether to lock the account.
func (s *UserStore) RecordFailedLogin(ctx context.Context, userID string) (int, error) {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE auth_users SET failed_login_attempts = failed_login_attempts + 1 WHERE id = ?`,
		userID); err != nil {
		return 0, fmt.Errorf("record failed login: %w", err)
	}
	var attempts int
	err := s.db.QueryRowContext(ctx,
		`SELECT failed_login_attempts FROM auth_users WHERE id = ?`, userID).Scan(&attempts)
	return attempts, err
}

// LockAccount blocks logins for the account until the given time.
func (s *UserStore) LockAccount(ctx context.Context, userID string, lockedUntil time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE auth_users SET locked_until = ? WHERE id = ?`,
		lockedUntil, userID)
	return err
}

// ClearFailedLogins zeroes the attempt counter and lifts any lockout.
func (s *UserStore) ClearFailedLogins(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE auth_users SET failed_login_attempts = 0, locked_until = NULL WHERE id = ?`,
		userID)
	return err
}

// RefreshToken is a stored, hashed refresh token.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	Revoked   bool
}

// SaveRefreshToken stores a refresh token hash. The raw token never touches
// the database.
func (s *UserStore) SaveRefreshToken(ctx context.Context, id, userID, tokenHash string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, userID, tokenHash, expiresAt, time.Now().UTC())
	return err
}

// GetRefreshToken looks up a refresh token by hash.
func (s *UserStore) GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	var rt RefreshToken
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, created_at, revoked
		 FROM auth_refresh_tokens WHERE token_hash = ?`, tokenHash).
		Scan(&rt.ID, &rt.UserID, &rt.TokenHash, &rt.ExpiresAt, &rt.CreatedAt, &rt.Revoked)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// RevokeRefreshToken marks one refresh token as revoked.
func (s *UserStore) RevokeRefreshToken(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE auth_refresh_tokens SET revoked = 1 WHERE id = ?`, id)
	return err
}

// RevokeUserRefreshTokens revokes every refresh token the user holds.
func (s *UserStore) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE auth_refresh_tokens SET revoked = 1 WHERE user_id = ?`, userID)
	return err
}

// CleanExpiredTokens deletes refresh tokens that are expired or revoked.
func (s *UserStore) CleanExpiredTokens(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM auth_refresh_tokens WHERE expires_at < ? OR revoked = 1`,
		time.Now().UTC())
	return err
}

// GetTOTPSecret returns the user's encrypted TOTP secret, or empty when none
// is enrolled.
func (s *UserStore) GetTOTPSecret(ctx context.Context, userID string) (string, error) {
	var secret sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT totp_secret FROM auth_users WHERE id = ?`, userID).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("get TOTP secret: %w", err)
	}
	return secret.String, nil
}

// SetTOTPSecret stores an encrypted TOTP secret for the user.
func (s *UserStore) SetTOTPSecret(ctx context.Context, userID, encryptedSecret string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE auth_users SET totp_secret = ? WHERE id = ?`,
		encryptedSecret, userID)
	if err != nil {
		return fmt.Errorf("set TOTP secret: %w", err)
	}
	return nil
}

// EnableTOTP marks the user's TOTP enrollment as confirmed.
func (s *UserStore) EnableTOTP(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE auth_users SET totp_enabled = 1, totp_verified = 1 WHERE id = ?`,
		userID)
	if err != nil {
		return fmt.Errorf("enable TOTP: %w", err)
	}
	return nil
}

// DisableTOTP clears the user's TOTP state, secret included, and drops their
// recovery codes.
func (s *UserStore) DisableTOTP(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE auth_users SET totp_enabled = 0, totp_verified = 0, totp_secret = NULL WHERE id = ?`,
		userID)
	if err != nil {
		return fmt.Errorf("disable TOTP: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM auth_recovery_codes WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete recovery codes: %w", err)
	}
	return nil
}

// SaveRecoveryCodes replaces the user's recovery codes with the given hashes,
// atomically.
func (s *UserStore) SaveRecoveryCodes(ctx context.Context, userID string, codeHashes []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save recovery codes: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM auth_recovery_codes WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear old recovery codes: %w", err)
	}
	for _, hash := range codeHashes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO auth_recovery_codes (id, user_id, code_hash) VALUES (?, ?, ?)`,
			uuid.New().String(), userID, hash); err != nil {
			return fmt.Errorf("save recovery code: %w", err)
		}
	}
	return tx.Commit()
}

// ValidateRecoveryCode reports whether the hash matches an unused recovery
// code for the user.
func (s *UserStore) ValidateRecoveryCode(ctx context.Context, userID, codeHash string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM auth_recovery_codes WHERE user_id = ? AND code_hash = ? AND used = 0`,
		userID, codeHash).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("validate recovery code: %w", err)
	}
	return n > 0, nil
}

// MarkRecoveryCodeUsed burns a recovery code.
func (s *UserStore) MarkRecoveryCodeUsed(ctx context.Context, codeHash string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE auth_recovery_codes SET used = 1 WHERE code_hash = ?`, codeHash)
	if err != nil {
		return fmt.Errorf("mark recovery code used: %w", err)
	}
	return nil
}

// SaveMFAToken stores a pending MFA token hash with its expiry.
func (s *UserStore) SaveMFAToken(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_mfa_tokens (token_hash, user_id, expires_at) VALUES (?, ?, ?)`,
		tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("save MFA token: %w", err)
	}
	return nil
}

// GetMFAToken resolves a pending MFA token hash to its user ID. Expired
// tokens are rejected.
func (s *UserStore) GetMFAToken(ctx context.Context, tokenHash string) (string, error) {
	var (
		userID    string
		expiresAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, expires_at FROM auth_mfa_tokens WHERE token_hash = ?`,
		tokenHash).Scan(&userID, &expiresAt)
	if err != nil {
		return "", fmt.Errorf("get MFA token: %w", err)
	}
	if time.Now().After(expiresAt) {
		return "", fmt.Errorf("MFA token expired")
	}
	return userID, nil
}

// RevokeMFAToken deletes a pending MFA token.
func (s *UserStore) RevokeMFAToken(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM auth_mfa_tokens WHERE token_hash = ?`, tokenHash)
	return err
}

// migrations returns the auth module's schema history. Versions are
// append-only.
func migrations() []plugin.Migration {
	return []plugin.Migration{
		{
			Version:     1,
			Description: "create auth_users table",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`CREATE TABLE auth_users (
					id            TEXT PRIMARY KEY,
					username      TEXT NOT NULL UNIQUE,
					email         TEXT NOT NULL UNIQUE,
					password_hash TEXT,
					role          TEXT NOT NULL DEFAULT 'viewer',
					auth_provider TEXT NOT NULL DEFAULT 'local',
					oidc_subject  TEXT,
					created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
					last_login    DATETIME,
					disabled      INTEGER NOT NULL DEFAULT 0
				)`)
				return err
			},
		},
		{
			Version:     2,
			Description: "create auth_refresh_tokens table",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE auth_refresh_tokens (
						id         TEXT PRIMARY KEY,
						user_id    TEXT NOT NULL REFERENCES auth_users(id) ON DELETE CASCADE,
						token_hash TEXT NOT NULL UNIQUE,
						expires_at DATETIME NOT NULL,
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						revoked    INTEGER NOT NULL DEFAULT 0
					)`,
					`CREATE INDEX idx_refresh_tokens_user ON auth_refresh_tokens(user_id)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Version:     3,
			Description: "add login lockout columns",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`ALTER TABLE auth_users ADD COLUMN failed_login_attempts INTEGER NOT NULL DEFAULT 0`,
					`ALTER TABLE auth_users ADD COLUMN locked_until DATETIME`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Version:     4,
			Description: "add TOTP columns and MFA tables",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`ALTER TABLE auth_users ADD COLUMN totp_secret TEXT`,
					`ALTER TABLE auth_users ADD COLUMN totp_enabled INTEGER NOT NULL DEFAULT 0`,
					`ALTER TABLE auth_users ADD COLUMN totp_verified INTEGER NOT NULL DEFAULT 0`,

					`CREATE TABLE auth_recovery_codes (
						id         TEXT PRIMARY KEY,
						user_id    TEXT NOT NULL REFERENCES auth_users(id) ON DELETE CASCADE,
						code_hash  TEXT NOT NULL,
						used       INTEGER NOT NULL DEFAULT 0,
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX idx_recovery_codes_user ON auth_recovery_codes(user_id)`,

					`CREATE TABLE auth_mfa_tokens (
						token_hash TEXT PRIMARY KEY,
						user_id    TEXT NOT NULL,
						expires_at DATETIME NOT NULL,
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
