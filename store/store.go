// Package store persists named VM checkpoints in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/intcode/pkg/intcode"
)

var log = commonlog.GetLogger("intcode.store")

// ErrCheckpointNotFound indicates the requested checkpoint doesn't exist.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// Checkpoint describes a stored snapshot without decoding it.
type Checkpoint struct {
	Name      string
	PC        int64
	State     string
	Size      int
	UpdatedAt time.Time
}

// Store handles SQLite storage for VM checkpoints.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the checkpoint database at path. The special path
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// Each connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	// Set busy timeout for concurrent access
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS checkpoints (
		name       TEXT PRIMARY KEY,
		pc         INTEGER NOT NULL,
		state      TEXT NOT NULL,
		snapshot   BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	log.Debugf("opened checkpoint store %s", path)
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save snapshots vm and stores it under name, replacing any earlier
// checkpoint with that name. The VM is not modified.
func (s *Store) Save(ctx context.Context, name string, vm *intcode.VM) error {
	if name == "" {
		return errors.New("saving checkpoint: empty name")
	}

	snap, err := vm.Snapshot()
	if err != nil {
		return fmt.Errorf("saving checkpoint %q: %w", name, err)
	}
	data, err := intcode.MarshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encoding checkpoint %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO checkpoints (name, pc, state, snapshot, updated_at) VALUES (?, ?, ?, ?, ?)",
		name, snap.PC, snap.State.String(), data, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("saving checkpoint %q: %w", name, err)
	}

	log.Debugf("saved checkpoint %q at pc=%d (%d bytes)", name, snap.PC, len(data))
	return nil
}

// Snapshot retrieves the decoded snapshot stored under name.
func (s *Store) Snapshot(ctx context.Context, name string) (*intcode.Snapshot, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT snapshot FROM checkpoints WHERE name = ?", name).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("querying checkpoint %q: %w", name, err)
	}

	snap, err := intcode.UnmarshalSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("decoding checkpoint %q: %w", name, err)
	}
	return snap, nil
}

// Load restores a fresh VM from the checkpoint stored under name. Options
// are passed to intcode.Restore.
func (s *Store) Load(ctx context.Context, name string, opts ...intcode.Option) (*intcode.VM, error) {
	snap, err := s.Snapshot(ctx, name)
	if err != nil {
		return nil, err
	}
	vm, err := intcode.Restore(snap, opts...)
	if err != nil {
		return nil, fmt.Errorf("restoring checkpoint %q: %w", name, err)
	}
	return vm, nil
}

// Delete removes the checkpoint stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM checkpoints WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting checkpoint %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting checkpoint %q: %w", name, err)
	}
	if n == 0 {
		return ErrCheckpointNotFound
	}
	return nil
}

// List returns every stored checkpoint, ordered by name.
func (s *Store) List(ctx context.Context) ([]Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, pc, state, length(snapshot), updated_at FROM checkpoints ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing checkpoints: %w", err)
	}
	defer rows.Close()

	var out []Checkpoint
	for rows.Next() {
		var (
			c       Checkpoint
			updated int64
		)
		if err := rows.Scan(&c.Name, &c.PC, &c.State, &c.Size, &updated); err != nil {
			return nil, fmt.Errorf("scanning checkpoint: %w", err)
		}
		c.UpdatedAt = time.Unix(0, updated)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing checkpoints: %w", err)
	}
	return out, nil
}
