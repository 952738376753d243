package resolvecache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/flock"

	"soundmatch/internal/resolve"
)

// List returns every row, newest first, including expired ones.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, kind, payload, stored_at, expires_at FROM resolutions ORDER BY stored_at DESC, key`)
	if err != nil {
		return nil, fmt.Errorf("list cache: %w", err)
	}
	defer rows.Close()

	now := s.now().UTC()
	var entries []Entry
	for rows.Next() {
		var (
			entry             Entry
			kind, payload     string
			stored, expiresAt int64
		)
		if err := rows.Scan(&entry.Key, &kind, &payload, &stored, &expiresAt); err != nil {
			return nil, fmt.Errorf("scan cache row: %w", err)
		}
		entry.Kind = Kind(kind)
		entry.StoredAt = time.Unix(0, stored).UTC()
		entry.ExpiresAt = time.Unix(0, expiresAt).UTC()
		entry.Expired = !entry.ExpiresAt.After(now)
		entry.Summary = summarize(entry.Kind, payload)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func summarize(kind Kind, payload string) string {
	switch kind {
	case KindResolution:
		var res resolve.Resolution
		if err := json.Unmarshal([]byte(payload), &res); err != nil {
			return "unreadable"
		}
		if res.Accepted && res.Match != nil {
			return fmt.Sprintf("accepted %s %q", res.Entity, res.Match.Candidate.DisplayName)
		}
		return "rejected " + res.Reason.String()
	case KindRanking:
		var ranked []resolve.ScoredCandidate
		if err := json.Unmarshal([]byte(payload), &ranked); err != nil {
			return "unreadable"
		}
		return fmt.Sprintf("%d ranked", len(ranked))
	default:
		return ""
	}
}

// Remove deletes one row by its canonical key.
func (s *Store) Remove(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM resolutions WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("remove cache entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear deletes every row and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM resolutions`)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of rows, fresh or not.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM resolutions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count cache: %w", err)
	}
	return count, nil
}

// PruneResult reports what Prune did.
type PruneResult struct {
	Removed  int64 `json:"removed"`
	Vacuumed bool  `json:"vacuumed"`
}

// Prune deletes expired rows and compacts the file. The VACUUM is skipped
// when another process holds the prune lock.
func (s *Store) Prune(ctx context.Context) (PruneResult, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM resolutions WHERE expires_at <= ?`, s.now().UTC().UnixNano())
	if err != nil {
		return PruneResult{}, fmt.Errorf("prune cache: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return PruneResult{}, fmt.Errorf("rows affected: %w", err)
	}
	result := PruneResult{Removed: removed}
	if s.inMemory() {
		return result, nil
	}

	lock := flock.New(s.path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return result, fmt.Errorf("acquire prune lock: %w", err)
	}
	if !ok {
		return result, nil
	}
	defer func() { _ = lock.Unlock() }()

	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return result, fmt.Errorf("vacuum cache: %w", err)
	}
	result.Vacuumed = true
	return result, nil
}
