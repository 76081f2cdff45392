// Package sqlite persists State snapshots and suspended sessions in SQLite.
//
// Every saved State is kept as a row keyed by its version, so earlier snapshots
// can be inspected or restored; LoadState returns the highest version.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/gambit/pkg/codec"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// ErrVersionNotFound is returned by LoadVersion for an unknown version.
var ErrVersionNotFound = errors.New("state version not found")

// Store implements ports.StateRepository and ports.SessionStore.
type Store struct {
	sqlDB *sql.DB
	codec *codec.Codec
	now   func() time.Time
}

var (
	_ ports.StateRepository = (*Store)(nil)
	_ ports.SessionStore    = (*Store)(nil)
)

// Option configures the Store.
type Option func(*Store)

// WithCodec sets the codec used for State snapshots.
func WithCodec(c *codec.Codec) Option {
	return func(s *Store) {
		s.codec = c
	}
}

// WithClock overrides time.Now for row timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens the database at path and creates the schema.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &Store{sqlDB: sqlDB, codec: codec.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// LoadState returns the snapshot with the highest version.
func (s *Store) LoadState(ctx context.Context) (domain.State, error) {
	var data []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM states ORDER BY version DESC LIMIT 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.State{}, domain.ErrStateNotFound
	}
	if err != nil {
		return domain.State{}, fmt.Errorf("load state: %w", err)
	}
	return s.codec.DecodeState(data)
}

// LoadVersion returns the snapshot saved for one version.
func (s *Store) LoadVersion(ctx context.Context, version uint64) (domain.State, error) {
	var data []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM states WHERE version = ?`, int64(version)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.State{}, fmt.Errorf("%w: %d", ErrVersionNotFound, version)
	}
	if err != nil {
		return domain.State{}, fmt.Errorf("load state version %d: %w", version, err)
	}
	return s.codec.DecodeState(data)
}

// SaveState stores a snapshot under its version, replacing an existing row.
func (s *Store) SaveState(ctx context.Context, st domain.State) error {
	data, err := s.codec.EncodeState(st)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO states (version, phase, data, saved_at) VALUES (?, ?, ?, ?)
ON CONFLICT(version) DO UPDATE SET phase = excluded.phase, data = excluded.data, saved_at = excluded.saved_at
`, int64(st.Version), st.PhaseID, data, s.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save state version %d: %w", st.Version, err)
	}
	return nil
}

// Snapshot describes one saved State row.
type Snapshot struct {
	Version uint64
	Phase   string
	SavedAt time.Time
}

// Versions lists saved snapshots, newest first.
func (s *Store) Versions(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT version, phase, saved_at FROM states ORDER BY version DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			version int64
			snap    Snapshot
			savedAt int64
		)
		if err := rows.Scan(&version, &snap.Phase, &savedAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		snap.Version = uint64(version)
		snap.SavedAt = time.UnixMilli(savedAt).UTC()
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Prune keeps the newest keep snapshots and deletes the rest.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		return 0, fmt.Errorf("keep must be at least one")
	}
	res, err := s.sqlDB.ExecContext(ctx, `
DELETE FROM states WHERE version NOT IN (
	SELECT version FROM states ORDER BY version DESC LIMIT ?
)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune states: %w", err)
	}
	return res.RowsAffected()
}

// Save stores a suspended session.
func (s *Store) Save(ctx context.Context, session *domain.SessionContext) error {
	data, err := codec.EncodeSession(session)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO sessions (id, command_type, data, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET command_type = excluded.command_type, data = excluded.data, updated_at = excluded.updated_at
`, session.SessionID, string(session.Command.Type), data, s.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save session %s: %w", session.SessionID, err)
	}
	return nil
}

// Load reads a session.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.SessionContext, error) {
	var data []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM sessions WHERE id = ?`, sessionID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return codec.DecodeSession(data)
}

// Delete removes a session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// List returns the stored session ids, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id FROM sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
