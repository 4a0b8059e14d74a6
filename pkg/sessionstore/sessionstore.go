// Package sessionstore caches authorization sessions on disk so repeated
// command invocations can refresh tokens instead of re-running the
// interactive login.
package sessionstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vetraconnect/vetra/pkg/auth"
)

// ErrNotFound reports that no session is cached for the account.
var ErrNotFound = errors.New("sessionstore: session not found")

// staleAge is how long an untouched session stays cached. The identity
// provider rejects refresh tokens that old anyway.
const staleAge = 90 * 24 * time.Hour

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	email      TEXT PRIMARY KEY,
	session    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// Store is a SQLite-backed session cache keyed by account email.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// One connection serves a per-account cache and keeps in-memory
	// databases on a single coherent connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	cutoff := time.Now().UTC().Add(-staleAge)
	if _, err := db.ExecContext(context.Background(),
		`DELETE FROM sessions WHERE updated_at < ?`, cutoff); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prune stale sessions: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save stores the session for email, replacing any previous one.
func (s *Store) Save(ctx context.Context, email string, session auth.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (email, session, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			session    = excluded.session,
			updated_at = excluded.updated_at`,
		email, string(raw), time.Now().UTC())
	return err
}

// Load returns the cached session for email, or ErrNotFound.
func (s *Store) Load(ctx context.Context, email string) (auth.Session, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT session FROM sessions WHERE email = ?`, email).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Session{}, ErrNotFound
	}
	if err != nil {
		return auth.Session{}, err
	}

	var session auth.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return auth.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

// Delete removes the cached session for email. Deleting a missing session
// is not an error.
func (s *Store) Delete(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE email = ?`, email)
	return err
}
