// Package playcount persists how many times each video has been played.
package playcount

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"marquee/internal/fileutil"
	"marquee/internal/logging"
)

const fileVersion = 1

type fileFormat struct {
	Version     int            `json:"version"`
	LastUpdated string         `json:"last_updated"`
	Counts      map[string]int `json:"counts"`
}

// Ledger is a mutex-guarded play counter backed by a JSON file.
type Ledger struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	counts map[string]int
}

// NewLedger creates an empty ledger persisted at path. Call Load to read
// previously saved counts.
func NewLedger(path string, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Ledger{
		path:   path,
		logger: logging.NewComponentLogger(logger, "playcount"),
		now:    time.Now,
		counts: make(map[string]int),
	}
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

// Load replaces the in-memory counts with the file contents and drops ids for
// which known returns false. A missing file starts empty; an unreadable or
// corrupt file is logged and also starts empty. Load holds the ledger lock
// throughout, so increments either land before the read or after the swap.
func (l *Ledger) Load(known func(id string) bool) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	counts, err := l.read()
	if err != nil {
		l.logger.Error("failed to load play counts",
			logging.String(logging.FieldEventType, "playcount_load_failed"),
			logging.Error(err),
			logging.String("path", l.path),
			logging.String(logging.FieldErrorHint, "inspect or remove the ledger file"),
			logging.String(logging.FieldImpact, "play counts start from zero"))
		counts = make(map[string]int)
	}

	pruned := 0
	if known != nil {
		for id := range counts {
			if !known(id) {
				delete(counts, id)
				pruned++
			}
		}
	}

	l.counts = counts

	l.logger.Info("play counts loaded",
		logging.String(logging.FieldEventType, "playcount_loaded"),
		logging.Int("entry_count", len(counts)),
		logging.Int("pruned", pruned))
	return pruned, nil
}

func (l *Ledger) read() (map[string]int, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]int), nil
		}
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	var payload fileFormat
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse ledger: %w", err)
	}
	counts := make(map[string]int, len(payload.Counts))
	for id, n := range payload.Counts {
		if n > 0 {
			counts[id] = n
		}
	}
	return counts, nil
}

// Save writes the ledger atomically.
func (l *Ledger) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.saveLocked()
}

func (l *Ledger) saveLocked() error {
	payload := fileFormat{
		Version:     fileVersion,
		LastUpdated: l.now().UTC().Format(time.RFC3339),
		Counts:      l.counts,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	if err := fileutil.WriteFileAtomic(l.path, data, 0o644); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

// Increment bumps the count for id and saves synchronously. The new count is
// returned even when the save fails; the error only reports that the durable
// copy lags.
func (l *Ledger) Increment(id string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counts[id]++
	count := l.counts[id]
	if err := l.saveLocked(); err != nil {
		l.logger.Warn("play count not persisted",
			logging.String(logging.FieldEventType, "playcount_save_failed"),
			logging.String("video", id),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions on the data directory"),
			logging.String(logging.FieldImpact, "recent plays may be lost on restart"))
		return count, err
	}
	return count, nil
}

// Get returns the count for id, zero when never played.
func (l *Ledger) Get(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[id]
}

// Snapshot returns a copy of all counts.
func (l *Ledger) Snapshot() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int, len(l.counts))
	for id, n := range l.counts {
		out[id] = n
	}
	return out
}

// Total sums every count.
func (l *Ledger) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, n := range l.counts {
		total += n
	}
	return total
}
