package resolvecache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"soundmatch/internal/resolve"
)

// cacheFormat is stored in PRAGMA user_version. A database written in any
// other format is refused; deleting the cache file rebuilds it.
const cacheFormat = 1

const cacheDDL = `
CREATE TABLE resolutions (
    key TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    payload TEXT NOT NULL,
    stored_at INTEGER NOT NULL,
    expires_at INTEGER NOT NULL
);
CREATE INDEX idx_resolutions_expires_at ON resolutions(expires_at);
`

// ErrSchemaMismatch reports a cache database written in another format.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Kind labels what a cached row holds.
type Kind string

const (
	KindResolution Kind = "resolution"
	KindRanking    Kind = "ranking"
)

// TTLs sets how long each kind of entry stays fresh.
type TTLs struct {
	Accepted time.Duration
	Rejected time.Duration
	Ranking  time.Duration
}

// DefaultTTLs returns the stock expiry policy.
func DefaultTTLs() TTLs {
	return TTLs{Accepted: 6 * time.Hour, Rejected: 30 * time.Minute, Ranking: 30 * time.Minute}
}

// Entry describes one cached row for listing.
type Entry struct {
	Key       string    `json:"key"`
	Kind      Kind      `json:"kind"`
	Summary   string    `json:"summary"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Expired   bool      `json:"expired"`
}

// Store is a read-through TTL cache of resolutions and rankings backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	ttl  TTLs
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open initializes or connects to the cache database. An empty path or
// ":memory:" keeps the cache in memory.
func Open(path string, ttl TTLs, opts ...Option) (*Store, error) {
	inMemory := path == "" || path == ":memory:"
	dsn := path
	if inMemory {
		dsn = ":memory:"
	} else if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if inMemory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	defaults := DefaultTTLs()
	if ttl.Accepted <= 0 {
		ttl.Accepted = defaults.Accepted
	}
	if ttl.Rejected <= 0 {
		ttl.Rejected = defaults.Rejected
	}
	if ttl.Ranking <= 0 {
		ttl.Ranking = defaults.Ranking
	}

	store := &Store{db: db, path: dsn, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.ensureFormat(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// ensureFormat creates the table set in an empty database and refuses one
// whose user_version differs from cacheFormat. An unversioned database that
// already has tables predates versioning and is refused too.
func (s *Store) ensureFormat(ctx context.Context) error {
	var format int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&format); err != nil {
		return fmt.Errorf("read cache format: %w", err)
	}
	switch format {
	case cacheFormat:
		return nil
	case 0:
	default:
		return fmt.Errorf("%w: %s has format %d, want %d (delete the file to rebuild it)",
			ErrSchemaMismatch, s.path, format, cacheFormat)
	}

	var tables int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM sqlite_master WHERE type = 'table'").Scan(&tables); err != nil {
		return fmt.Errorf("inspect cache tables: %w", err)
	}
	if tables > 0 {
		return fmt.Errorf("%w: %s has unversioned tables (delete the file to rebuild it)",
			ErrSchemaMismatch, s.path)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache setup: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, cacheDDL); err != nil {
		return fmt.Errorf("create cache tables: %w", err)
	}
	// PRAGMA takes no bind parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", cacheFormat)); err != nil {
		return fmt.Errorf("stamp cache format: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cache setup: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location, ":memory:" for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) inMemory() bool {
	return s.path == ":memory:"
}

// GetResolution returns a fresh cached resolution for key.
func (s *Store) GetResolution(ctx context.Context, key resolve.CacheKey) (resolve.Resolution, bool, error) {
	var res resolve.Resolution
	found, err := s.get(ctx, key.String(), KindResolution, &res)
	if err != nil || !found {
		return resolve.Resolution{}, false, err
	}
	return res, true, nil
}

// PutResolution stores res under key. Accepted and rejected resolutions
// expire on different schedules.
func (s *Store) PutResolution(ctx context.Context, key resolve.CacheKey, res resolve.Resolution) error {
	ttl := s.ttl.Rejected
	if res.Accepted {
		ttl = s.ttl.Accepted
	}
	return s.put(ctx, key.String(), KindResolution, res, ttl)
}

// GetRanking returns a fresh cached ranking for key.
func (s *Store) GetRanking(ctx context.Context, key resolve.CacheKey) ([]resolve.ScoredCandidate, bool, error) {
	var ranked []resolve.ScoredCandidate
	found, err := s.get(ctx, key.String(), KindRanking, &ranked)
	if err != nil || !found {
		return nil, false, err
	}
	return ranked, true, nil
}

// PutRanking stores a ranking under key.
func (s *Store) PutRanking(ctx context.Context, key resolve.CacheKey, ranked []resolve.ScoredCandidate) error {
	if ranked == nil {
		ranked = []resolve.ScoredCandidate{}
	}
	return s.put(ctx, key.String(), KindRanking, ranked, s.ttl.Ranking)
}

func (s *Store) get(ctx context.Context, key string, kind Kind, out any) (bool, error) {
	var payload string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT payload FROM resolutions WHERE key = ? AND kind = ? AND expires_at > ?`,
		key, string(kind), s.now().UTC().UnixNano(),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get cached %s: %w", kind, err)
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", kind, err)
	}
	return true, nil
}

func (s *Store) put(ctx context.Context, key string, kind Kind, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	now := s.now().UTC()
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO resolutions (key, kind, payload, stored_at, expires_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET
             kind = excluded.kind, payload = excluded.payload,
             stored_at = excluded.stored_at, expires_at = excluded.expires_at`,
		key, string(kind), string(payload), now.UnixNano(), now.Add(ttl).UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("store %s: %w", kind, err)
	}
	return nil
}
