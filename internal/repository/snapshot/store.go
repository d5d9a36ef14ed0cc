// Package snapshot persists the metadata rows pulled from the open-data API.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/kailas-cloud/aptdex/internal/db"
	"github.com/kailas-cloud/aptdex/internal/ingest"
)

// ErrNotFound is returned by Load when no snapshot has been saved.
var ErrNotFound = errors.New("snapshot not found")

// store is the consumer interface for snapshot operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Snapshot is one persisted pull of metadata rows.
type Snapshot struct {
	Rows        []ingest.Row
	FetchedAt   time.Time
	Fingerprint uint64
}

// Store keeps the snapshot under two kinds of keys: the rows as a JSON blob
// addressed by its checksum, and a meta hash naming the current blob. The
// meta hash is written last, so a failed save leaves the previous pair
// readable.
type Store struct {
	store      store
	rowsPrefix string
	metaKey    string
}

// New creates a snapshot store under the given key prefix.
func New(s store, prefix string) *Store {
	return &Store{
		store:      s,
		rowsPrefix: prefix + ":rows:",
		metaKey:    prefix + ":meta",
	}
}

func (s *Store) rowsKey(fingerprint uint64) string {
	return s.rowsPrefix + strconv.FormatUint(fingerprint, 16)
}

// Save writes rows and returns the stored snapshot. The blob of the
// replaced snapshot is removed once the meta hash points at the new one.
func (s *Store) Save(ctx context.Context, rows []ingest.Row, fetchedAt time.Time) (*Snapshot, error) {
	payload, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot rows: %w", err)
	}
	snap := &Snapshot{Rows: rows, FetchedAt: fetchedAt.UTC(), Fingerprint: xxhash.Sum64(payload)}

	prev, prevErr := s.Info(ctx)

	key := s.rowsKey(snap.Fingerprint)
	if err := s.store.Set(ctx, key, payload); err != nil {
		return nil, fmt.Errorf("snapshot SET %s: %w", key, err)
	}
	if err := s.store.HSet(ctx, s.metaKey, metaToHash(snap)); err != nil {
		if prevErr != nil || prev.Fingerprint != snap.Fingerprint {
			_ = s.store.Del(ctx, key)
		}
		return nil, fmt.Errorf("snapshot HSET %s: %w", s.metaKey, err)
	}
	if prevErr == nil && prev.Fingerprint != snap.Fingerprint {
		// Best effort: an orphaned blob is never read.
		_ = s.store.Del(ctx, s.rowsKey(prev.Fingerprint))
	}
	return snap, nil
}

// Info returns the descriptive fields of the stored snapshot without its rows.
func (s *Store) Info(ctx context.Context) (*Snapshot, error) {
	m, err := s.store.HGetAll(ctx, s.metaKey)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("snapshot HGETALL %s: %w", s.metaKey, err)
	}
	return metaFromHash(m)
}

// Load returns the stored snapshot, or ErrNotFound.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	snap, err := s.Info(ctx)
	if err != nil {
		return nil, err
	}
	key := s.rowsKey(snap.Fingerprint)
	payload, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("snapshot GET %s: %w", key, err)
	}
	if sum := xxhash.Sum64(payload); sum != snap.Fingerprint {
		return nil, fmt.Errorf("snapshot rows checksum %x does not match %x", sum, snap.Fingerprint)
	}
	if err := json.Unmarshal(payload, &snap.Rows); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot rows: %w", err)
	}
	return snap, nil
}

func metaToHash(snap *Snapshot) map[string]string {
	return map[string]string{
		"fetched_at":  snap.FetchedAt.Format(time.RFC3339),
		"rows":        strconv.Itoa(len(snap.Rows)),
		"fingerprint": strconv.FormatUint(snap.Fingerprint, 16),
	}
}

func metaFromHash(m map[string]string) (*Snapshot, error) {
	fetchedAt, err := time.Parse(time.RFC3339, m["fetched_at"])
	if err != nil {
		return nil, fmt.Errorf("invalid fetched_at: %w", err)
	}
	fp, err := strconv.ParseUint(m["fingerprint"], 16, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid fingerprint: %w", err)
	}
	return &Snapshot{FetchedAt: fetchedAt, Fingerprint: fp}, nil
}
