package sessions

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/microinvest/internal/database"
)

// Schema holds the session table definition, applied on startup.
const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id               TEXT PRIMARY KEY,
	mode             TEXT NOT NULL DEFAULT 'good',
	sticky           TEXT NOT NULL DEFAULT '{}',
	data_share_optin INTEGER NOT NULL DEFAULT 0,
	enrolled         INTEGER NOT NULL DEFAULT 0,
	updated_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
`

// Repository stores sessions in SQLite.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a session repository and applies the schema.
func NewRepository(db *database.DB, log zerolog.Logger) (*Repository, error) {
	if err := db.ApplySchema(Schema); err != nil {
		return nil, fmt.Errorf("failed to apply sessions schema: %w", err)
	}
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "sessions").Logger(),
	}, nil
}

// Get retrieves a session by id. Returns (nil, nil) when it does not exist.
func (r *Repository) Get(id string) (*Session, error) {
	row := r.db.QueryRow(
		`SELECT id, mode, sticky, data_share_optin, enrolled, updated_at FROM sessions WHERE id = ?`, id)

	var (
		s         Session
		stickyRaw string
		optIn     int
		enrolled  int
	)
	if err := row.Scan(&s.ID, &s.Mode, &stickyRaw, &optIn, &enrolled, &s.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	s.DataShareOptIn = optIn != 0
	s.Enrolled = enrolled != 0
	s.Sticky = map[string]string{}
	if err := json.Unmarshal([]byte(stickyRaw), &s.Sticky); err != nil {
		// Corrupt sticky blob is not fatal, the echo just resets
		r.log.Warn().Err(err).Str("session", id).Msg("Failed to decode sticky state, resetting")
		s.Sticky = map[string]string{}
	}

	return &s, nil
}

// GetOrCreate retrieves a session, creating a fresh one when absent.
func (r *Repository) GetOrCreate(id string) (*Session, error) {
	s, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if s != nil {
		return s, nil
	}

	if _, err := r.db.Exec(
		`INSERT INTO sessions (id, updated_at) VALUES (?, ?)`, id, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to create session %s: %w", id, err)
	}

	return &Session{ID: id, Mode: "good", Sticky: map[string]string{}, UpdatedAt: time.Now().UTC()}, nil
}

// SetMode updates the UX mode for a session.
func (r *Repository) SetMode(id, mode string) error {
	return r.update(id, `UPDATE sessions SET mode = ?, updated_at = ? WHERE id = ?`, mode, time.Now().UTC(), id)
}

// SetSticky replaces the sticky form echo for a session.
func (r *Repository) SetSticky(id string, sticky map[string]string) error {
	raw, err := json.Marshal(sticky)
	if err != nil {
		return fmt.Errorf("failed to encode sticky state: %w", err)
	}
	return r.update(id, `UPDATE sessions SET sticky = ?, updated_at = ? WHERE id = ?`, string(raw), time.Now().UTC(), id)
}

// SetEnrolled marks a session as enrolled in the managed plan.
func (r *Repository) SetEnrolled(id string, enrolled bool) error {
	return r.update(id, `UPDATE sessions SET enrolled = ?, updated_at = ? WHERE id = ?`, boolToInt(enrolled), time.Now().UTC(), id)
}

// SetDataShareOptIn persists the data-sharing opt-in flag. Informational
// only: nothing is transmitted externally in this design.
func (r *Repository) SetDataShareOptIn(id string, optIn bool) error {
	return r.update(id, `UPDATE sessions SET data_share_optin = ?, updated_at = ? WHERE id = ?`, boolToInt(optIn), time.Now().UTC(), id)
}

// DeleteExpired removes sessions idle for longer than ttl and returns the
// number of rows pruned.
func (r *Repository) DeleteExpired(ttl time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	res, err := r.db.Exec(`DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repository) update(id, query string, args ...interface{}) error {
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session %s not found", id)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
