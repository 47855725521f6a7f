package meta

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kk-code-lab/s3etag/internal/clock"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrNotFound is returned when no cached ETag matches a key.
var ErrNotFound = errors.New("meta: not found")

// Store wraps the SQLite ETag cache database.
type Store struct {
	db  *sql.DB
	clk clock.Clock
}

// Key identifies one file state hashed with one chunk size.
type Key struct {
	Path         string
	Size         int64
	ModTimeNanos int64
	ChunkSize    int
}

// Entry is a cached ETag.
type Entry struct {
	Key
	ETag       string
	Parts      int
	ComputedAt time.Time
}

// Stats summarizes the cache.
type Stats struct {
	Entries   int64
	LastWrite time.Time
}

// Open opens or creates the cache database at the given path.
func Open(path string) (*Store, error) {
	return OpenWithClock(path, clock.RealClock{})
}

// OpenWithClock is Open with an explicit time source.
func OpenWithClock(path string, clk clock.Clock) (*Store, error) {
	if path == "" {
		return nil, errors.New("meta: db path required")
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, clk: clk}
	if err := store.applyPragmas(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Flush forces a WAL checkpoint to durably persist changes.
func (s *Store) Flush() error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

func (s *Store) applyPragmas(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA synchronous=NORMAL"); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		return err
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	applied_at TEXT NOT NULL
)`); err != nil {
		return err
	}

	var version int
	if err = tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return err
	}
	migrations := []func(context.Context, *sql.Tx) error{applyV1, applyV2}
	for i, apply := range migrations {
		v := i + 1
		if version >= v {
			continue
		}
		if err = apply(ctx, tx); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, "INSERT INTO schema_migrations(version, applied_at) VALUES(?, ?)", v, s.now()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func applyV1(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS etags (
	path TEXT NOT NULL,
	size INTEGER NOT NULL,
	mtime_ns INTEGER NOT NULL,
	chunk_size INTEGER NOT NULL,
	etag TEXT NOT NULL,
	parts INTEGER NOT NULL,
	computed_at TEXT NOT NULL,
	PRIMARY KEY(path, chunk_size)
)`)
	return err
}

func applyV2(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS etags_computed_at_idx ON etags(computed_at)`)
	return err
}

// Lookup returns the cached ETag for key. An entry recorded for a different
// size or modification time of the same path is a miss.
func (s *Store) Lookup(ctx context.Context, key Key) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT etag, parts, computed_at
FROM etags
WHERE path=? AND chunk_size=? AND size=? AND mtime_ns=?`,
		key.Path, key.ChunkSize, key.Size, key.ModTimeNanos)
	entry := Entry{Key: key}
	var computedAt string
	if err := row.Scan(&entry.ETag, &entry.Parts, &computedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if ts, err := time.Parse(timeLayout, computedAt); err == nil {
		entry.ComputedAt = ts
	}
	return &entry, nil
}

// Put records an ETag, replacing any entry for the same path and chunk size.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	if entry.Path == "" || entry.ETag == "" {
		return errors.New("meta: path and etag required")
	}
	if entry.ChunkSize <= 0 {
		return errors.New("meta: chunk size required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO etags(path, size, mtime_ns, chunk_size, etag, parts, computed_at)
VALUES(?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(path, chunk_size) DO UPDATE SET
	size=excluded.size,
	mtime_ns=excluded.mtime_ns,
	etag=excluded.etag,
	parts=excluded.parts,
	computed_at=excluded.computed_at`,
		entry.Path, entry.Size, entry.ModTimeNanos, entry.ChunkSize, entry.ETag, entry.Parts, s.now())
	return err
}

// Prune deletes entries computed before cutoff and returns how many went.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM etags WHERE computed_at < ?", cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats reports the entry count and the most recent write.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var (
		stats Stats
		last  sql.NullString
	)
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*), MAX(computed_at) FROM etags").Scan(&stats.Entries, &last); err != nil {
		return Stats{}, err
	}
	if last.Valid {
		if ts, err := time.Parse(timeLayout, last.String); err == nil {
			stats.LastWrite = ts
		}
	}
	return stats, nil
}

// Now returns the current time of the clock the store stamps entries with.
func (s *Store) Now() time.Time {
	return s.clk.Now()
}

func (s *Store) now() string {
	return s.Now().UTC().Format(timeLayout)
}
