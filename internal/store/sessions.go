package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateSession issues a new admin token valid for ttl. Expired sessions are
// purged first.
func (s *Store) CreateSession(ctx context.Context, ttl time.Duration) (Session, error) {
	if ttl <= 0 {
		return Session{}, fmt.Errorf("%w: session ttl must be positive", ErrValidation)
	}
	now := s.now().UTC()
	if _, err := s.PurgeExpiredSessions(ctx); err != nil {
		return Session{}, err
	}

	session := Session{
		Token:     uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO admin_sessions (token, created_at, expires_at) VALUES (?, ?, ?)`,
		session.Token, formatTime(session.CreatedAt), formatTime(session.ExpiresAt),
	); err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

// ValidateSession reports whether token names an unexpired session.
func (s *Store) ValidateSession(ctx context.Context, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, nil
	}
	var expiresRaw string
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT expires_at FROM admin_sessions WHERE token = ?`, token).Scan(&expiresRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup session: %w", err)
	}
	expires, err := parseTimeString(expiresRaw)
	if err != nil {
		return false, nil
	}
	return s.now().Before(expires), nil
}

// DeleteSession removes token. It reports false when the token was unknown.
func (s *Store) DeleteSession(ctx context.Context, token string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM admin_sessions WHERE token = ?`, token)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// PurgeExpiredSessions deletes sessions whose expiry has passed.
func (s *Store) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM admin_sessions WHERE expires_at <= ?`, formatTime(s.now()))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}
