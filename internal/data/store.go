package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// ErrNotFound is returned when no profile row matches.
var ErrNotFound = errors.New("profile not found")

// Profile is the persistent player identity shown next to a match seat.
type Profile struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Level    int    `json:"level"`
}

// Store reads player profiles from Postgres. Matches themselves are never stored.
type Store struct {
	db *sql.DB
}

// NewStore accepts an existing DB handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// NewStoreFromDB builds the store from a connection string (e.g. os.Getenv("DATABASE_URL")).
func NewStoreFromDB(ctx context.Context, connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewStore(db), nil
}

func (s *Store) Close() error { return s.db.Close() }

// Profile returns a single profile by ID.
func (s *Store) Profile(ctx context.Context, id string) (Profile, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, nickname, level
        FROM users
        WHERE id = $1
    `, id)

	var p Profile
	if err := row.Scan(&p.ID, &p.Nickname, &p.Level); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("load profile %s: %w", id, err)
	}
	return p, nil
}

// MarkSeen records presence for a user joining or leaving a match.
func (s *Store) MarkSeen(ctx context.Context, id, status string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET status = $1,
		    last_seen = $2,
		    updated_at = $2
		WHERE id = $3
	`, normalizeStatus(status), time.Now().UTC(), id)
	return err
}

// normalizeStatus maps anything unknown to "online".
func normalizeStatus(status string) string {
	switch status {
	case "online", "away", "offline":
		return status
	default:
		return "online"
	}
}
