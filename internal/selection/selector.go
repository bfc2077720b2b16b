// Package selection chooses which video plays next for a category.
package selection

import (
	"log/slog"
	"strings"

	"marquee/internal/inventory"
	"marquee/internal/logging"
)

// InventorySource exposes the latest inventory snapshot.
type InventorySource interface {
	Current() *inventory.Inventory
}

// Counter reads and increments play counts.
type Counter interface {
	Get(id string) int
	Increment(id string) (int, error)
}

// Pick describes the next video for a category. VideoPath is empty when the
// category has no videos.
type Pick struct {
	Category   string
	VideoPath  string
	VideoCount int
	PlayCount  int
}

// Play describes a recorded play. VideoPath is empty when nothing was played.
type Play struct {
	Category     string
	VideoPath    string
	NewPlayCount int
	// Fallback is set when the reported video was rejected and the
	// least-played video was counted instead.
	Fallback bool
}

// Selector implements least-played selection over an inventory and a counter.
type Selector struct {
	inventory InventorySource
	counts    Counter
	logger    *slog.Logger
}

// New constructs a Selector.
func New(inv InventorySource, counts Counter, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Selector{
		inventory: inv,
		counts:    counts,
		logger:    logging.NewComponentLogger(logger, "selection"),
	}
}

// SelectLeastPlayed returns the category's video with the lowest play count,
// breaking ties by id. It reports false when the category has no videos.
func (s *Selector) SelectLeastPlayed(category string) (string, bool) {
	return leastPlayed(s.inventory.Current().Videos(category), s.counts.Get)
}

func leastPlayed(videos []string, count func(string) int) (string, bool) {
	if len(videos) == 0 {
		return "", false
	}
	best := videos[0]
	bestCount := count(best)
	for _, id := range videos[1:] {
		n := count(id)
		if n < bestCount || (n == bestCount && id < best) {
			best, bestCount = id, n
		}
	}
	return best, true
}

// Next returns the least-played video together with category statistics.
func (s *Selector) Next(category string) Pick {
	videos := s.inventory.Current().Videos(category)
	pick := Pick{Category: category, VideoCount: len(videos)}
	if id, ok := leastPlayed(videos, s.counts.Get); ok {
		pick.VideoPath = id
		pick.PlayCount = s.counts.Get(id)
	}
	return pick
}

// RecordPlay counts a play for category. The reported id is trusted only if
// it belongs to the category; otherwise the least-played video is counted.
// A non-nil error means the count advanced but was not persisted; the
// returned Play is valid either way.
func (s *Selector) RecordPlay(category, reported string) (Play, error) {
	play := Play{Category: category}
	inv := s.inventory.Current()

	requested := strings.TrimLeft(strings.TrimSpace(reported), "/")
	videoID := ""
	switch {
	case requested != "" && inv.Contains(category, requested):
		videoID = requested
	case requested != "":
		s.logger.Warn("reported video does not belong to category",
			logging.String(logging.FieldEventType, "play_report_rejected"),
			logging.String(logging.FieldCategory, category),
			logging.String("reported", requested),
			logging.String(logging.FieldErrorHint, "client inventory may be stale"),
			logging.String(logging.FieldImpact, "least-played video counted instead"))
		play.Fallback = true
		videoID, _ = leastPlayed(inv.Videos(category), s.counts.Get)
	default:
		videoID, _ = leastPlayed(inv.Videos(category), s.counts.Get)
	}

	if videoID == "" {
		return play, nil
	}

	count, err := s.counts.Increment(videoID)
	play.VideoPath = videoID
	play.NewPlayCount = count
	s.logger.Info("play recorded",
		logging.String(logging.FieldEventType, "play_recorded"),
		logging.String(logging.FieldCategory, category),
		logging.String("video", videoID),
		logging.Int("play_count", count))
	return play, err
}
