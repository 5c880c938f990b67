package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/renovapanel/renova/pkg/faults"
	"github.com/renovapanel/renova/pkg/observability"
)

// Service defines authentication operations
type Service interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (*User, error)
	Logout(ctx context.Context, token string) error
}

// PostgresService implements Service using PostgreSQL
type PostgresService struct {
	db       *sql.DB
	logger   *observability.Logger
	tokenTTL time.Duration
	now      func() time.Time
}

// NewPostgresService creates a new PostgresService
func NewPostgresService(db *sql.DB, logger *observability.Logger, tokenTTL time.Duration) *PostgresService {
	return &PostgresService{
		db:       db,
		logger:   logger,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Login verifies credentials and issues a session token
func (s *PostgresService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, faults.InvalidInput("email and password are required")
	}

	user := &User{}
	var passwordHash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password, created_at FROM users WHERE email = $1`,
		req.Email,
	).Scan(&user.ID, &user.Email, &passwordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, faults.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, faults.Storage(err, "failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		return nil, faults.Unauthorized("invalid credentials")
	}

	token, tokenHash, err := GenerateToken()
	if err != nil {
		return nil, faults.Storage(err, "failed to generate session token")
	}

	expiresAt := s.now().Add(s.tokenTTL)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (user_id, token_hash, expires_at) VALUES ($1, $2, $3)`,
		user.ID, tokenHash, expiresAt,
	)
	if err != nil {
		return nil, faults.Storage(err, "failed to create session")
	}

	s.logger.WithField("user_id", user.ID).Info("user logged in")

	return &LoginResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ValidateToken resolves a bearer token to its user. Expired sessions
// are rejected and purged opportunistically.
func (s *PostgresService) ValidateToken(ctx context.Context, token string) (*User, error) {
	if err := ValidateTokenFormat(token); err != nil {
		return nil, faults.Unauthorized("invalid token")
	}

	user := &User{}
	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.created_at, s.expires_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token_hash = $1`,
		HashToken(token),
	).Scan(&user.ID, &user.Email, &user.CreatedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, faults.Unauthorized("invalid token")
	}
	if err != nil {
		return nil, faults.Storage(err, "failed to look up session")
	}

	if !expiresAt.After(s.now()) {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = $1`, HashToken(token)); err != nil {
			s.logger.WithError(err).Warn("failed to purge expired session")
		}
		return nil, faults.Unauthorized("session expired")
	}

	return user, nil
}

// Logout revokes a session token
func (s *PostgresService) Logout(ctx context.Context, token string) error {
	if err := ValidateTokenFormat(token); err != nil {
		return faults.Unauthorized("invalid token")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = $1`, HashToken(token))
	if err != nil {
		return faults.Storage(err, "failed to revoke session")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return faults.Storage(err, "failed to get rows affected")
	}
	if affected == 0 {
		return faults.Unauthorized("invalid token")
	}
	return nil
}

// PurgeExpiredSessions deletes sessions past their expiry and returns
// how many were removed
func (s *PostgresService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, faults.Storage(err, "failed to purge expired sessions")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, faults.Storage(err, "failed to get rows affected")
	}
	return affected, nil
}

// EnsureAdmin seeds the initial admin account if no user with the given
// email exists. Runs at startup so a fresh install is usable immediately.
func EnsureAdmin(ctx context.Context, db *sql.DB, logger *observability.Logger, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return faults.Storage(err, "failed to hash admin password")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO users (email, password) VALUES ($1, $2) ON CONFLICT (email) DO NOTHING`,
		email, string(hash),
	)
	if err != nil {
		return faults.Storage(err, "failed to seed admin user")
	}

	if affected, err := result.RowsAffected(); err == nil && affected > 0 {
		logger.WithField("email", email).Info("seeded admin user")
	}
	return nil
}
