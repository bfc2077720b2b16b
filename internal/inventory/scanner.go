package inventory

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"marquee/internal/config"
	"marquee/internal/logging"
)

// Options controls which files count as playable.
type Options struct {
	Extension     string
	MinBytes      int64
	HiddenPrefix  string
	PartialSuffix string
}

// Scanner walks the video root and publishes Inventory snapshots.
type Scanner struct {
	root    string
	opts    Options
	logger  *slog.Logger
	current atomic.Pointer[Inventory]
	now     func() time.Time
}

// NewScanner creates a scanner for root. Current returns an empty inventory
// until the first Scan completes.
func NewScanner(root string, opts Options, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	opts.Extension = strings.ToLower(opts.Extension)
	s := &Scanner{
		root:   root,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "inventory"),
		now:    time.Now,
	}
	s.current.Store(Empty())
	return s
}

// NewScannerFromConfig builds a scanner from the [paths] and [inventory] sections.
func NewScannerFromConfig(cfg *config.Config, logger *slog.Logger) *Scanner {
	return NewScanner(cfg.Paths.VideoDir, Options{
		Extension:     cfg.Inventory.Extension,
		MinBytes:      cfg.Inventory.MinBytes,
		HiddenPrefix:  cfg.Inventory.HiddenPrefix,
		PartialSuffix: cfg.Inventory.PartialSuffix,
	}, logger)
}

// Root returns the scanned directory.
func (s *Scanner) Root() string {
	return s.root
}

// Current returns the last complete inventory.
func (s *Scanner) Current() *Inventory {
	return s.current.Load()
}

// Scan rebuilds the inventory from disk and atomically replaces the current
// snapshot. A missing root produces an empty inventory, not an error.
func (s *Scanner) Scan() (*Inventory, error) {
	categories, err := s.walk()
	if err != nil {
		return nil, err
	}
	inv := newInventory(categories, s.now())
	s.current.Store(inv)

	s.logger.Info("video inventory scanned",
		logging.String(logging.FieldEventType, "inventory_scanned"),
		logging.Int("category_count", len(categories)),
		logging.Int("video_count", inv.TotalVideos()),
		logging.String("root", s.root))
	return inv, nil
}

func (s *Scanner) walk() (map[string][]string, error) {
	categories := make(map[string][]string)

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("video directory not found",
				logging.String(logging.FieldEventType, "inventory_root_missing"),
				logging.String("root", s.root),
				logging.String(logging.FieldErrorHint, "create the directory or set paths.video_dir"),
				logging.String(logging.FieldImpact, "slides will play without video"))
			return categories, nil
		}
		return nil, fmt.Errorf("read video directory: %w", err)
	}

	base := filepath.Base(s.root)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		category := entry.Name()
		videos, err := s.scanCategory(base, category)
		if err != nil {
			s.logger.Warn("skipping unreadable category",
				logging.String(logging.FieldEventType, "inventory_category_unreadable"),
				logging.String(logging.FieldCategory, category),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check directory permissions"),
				logging.String(logging.FieldImpact, "category will have no videos"))
			videos = nil
		}
		categories[category] = videos
	}
	return categories, nil
}

func (s *Scanner) scanCategory(base, category string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, category))
	if err != nil {
		return nil, err
	}
	var videos []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if reason := s.reject(filepath.Join(s.root, category, name)); reason != "" {
			s.logger.Debug("excluding file from inventory",
				logging.String(logging.FieldCategory, category),
				logging.String("file", name),
				logging.String("reason", reason))
			continue
		}
		videos = append(videos, path.Join(base, category, name))
	}
	sort.Strings(videos)
	return videos, nil
}

// reject returns a non-empty reason when the file is not a playable video.
// Symlinks are followed.
func (s *Scanner) reject(fullPath string) string {
	name := filepath.Base(fullPath)
	lower := strings.ToLower(name)
	switch {
	case s.opts.PartialSuffix != "" && strings.HasSuffix(lower, strings.ToLower(s.opts.PartialSuffix)):
		return "partial download"
	case s.opts.HiddenPrefix != "" && strings.HasPrefix(name, s.opts.HiddenPrefix):
		return "hidden"
	case s.opts.Extension != "" && strings.ToLower(filepath.Ext(name)) != s.opts.Extension:
		return "extension"
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return "stat failed"
	}
	if !info.Mode().IsRegular() {
		return "not a regular file"
	}
	if info.Size() <= s.opts.MinBytes {
		return "too small"
	}
	return ""
}
