package frameinfo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"reelpress/internal/media"
)

// ErrUnavailable indicates the requested slot has never been written.
var ErrUnavailable = errors.New("frame info unavailable")

// Info describes where a frame's bytes live inside the picture asset.
type Info struct {
	Offset int64
	Size   int64
	Hash   string
}

const schema = `
CREATE TABLE IF NOT EXISTS frame_info (
    frame  INTEGER NOT NULL,
    eyes   INTEGER NOT NULL,
    offset INTEGER NOT NULL,
    size   INTEGER NOT NULL,
    hash   TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (frame, eyes)
)`

// Store manages frame metadata persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the frame-info database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open frame info db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create frame info schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Put records metadata for a written slot, replacing any earlier entry.
func (s *Store) Put(ctx context.Context, frame int64, eyes media.Eyes, info Info) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO frame_info (frame, eyes, offset, size, hash)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (frame, eyes) DO UPDATE SET offset=excluded.offset, size=excluded.size, hash=excluded.hash`,
		frame, int(eyes), info.Offset, info.Size, info.Hash,
	)
	if err != nil {
		return fmt.Errorf("record frame info (frame %d, %s): %w", frame, eyes, err)
	}
	return nil
}

// Get returns metadata for a slot, or ErrUnavailable if it was never written.
func (s *Store) Get(ctx context.Context, frame int64, eyes media.Eyes) (Info, error) {
	var info Info
	err := s.db.QueryRowContext(
		ctx,
		`SELECT offset, size, hash FROM frame_info WHERE frame = ? AND eyes = ?`,
		frame, int(eyes),
	).Scan(&info.Offset, &info.Size, &info.Hash)
	if errors.Is(err, sql.ErrNoRows) {
		return Info{}, fmt.Errorf("frame %d (%s): %w", frame, eyes, ErrUnavailable)
	}
	if err != nil {
		return Info{}, fmt.Errorf("read frame info (frame %d, %s): %w", frame, eyes, err)
	}
	return info, nil
}

// FirstNonexistentFrame returns one past the highest frame recorded, or 0
// when the store is empty.
func (s *Store) FirstNonexistentFrame(ctx context.Context) (int64, error) {
	var max sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(frame) FROM frame_info`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("read max frame: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return max.Int64 + 1, nil
}
