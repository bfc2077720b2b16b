package injection

import (
	"log/slog"
	"sync"

	"marquee/internal/deck"
	"marquee/internal/logging"
	"marquee/internal/store"
)

// Injector holds the live injected-slide list.
type Injector struct {
	logger *slog.Logger

	mu     sync.Mutex
	slides []deck.Slide
}

// NewInjector returns an empty injector.
func NewInjector(logger *slog.Logger) *Injector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Injector{logger: logging.NewComponentLogger(logger, "injection")}
}

// Rebuild replaces the live list with the projection of subs.
func (i *Injector) Rebuild(subs []*store.Submission) int {
	slides := Project(subs)
	i.mu.Lock()
	i.slides = slides
	i.mu.Unlock()

	i.logger.Info("injected slides restored",
		logging.String(logging.FieldEventType, "injected_slides_rebuilt"),
		logging.Int("slide_count", len(slides)))
	return len(slides)
}

// OnApprove appends the pair derived from sub, replacing any pair already
// present for the same submission.
func (i *Injector) OnApprove(sub *store.Submission) int {
	memory, resolution := FromSubmission(sub)
	i.mu.Lock()
	i.removeLocked(sub.ID)
	i.slides = append(i.slides, memory, resolution)
	i.mu.Unlock()

	i.logger.Info("submission slides injected",
		logging.String(logging.FieldEventType, "slides_injected"),
		logging.Int64(logging.FieldSubmissionID, sub.ID),
		logging.Int64("injected_at", memory.InjectedAt))
	return 2
}

// OnUnapprove removes the slides derived from submission id and returns how
// many were removed.
func (i *Injector) OnUnapprove(id int64) int {
	i.mu.Lock()
	removed := i.removeLocked(id)
	i.mu.Unlock()

	if removed > 0 {
		i.logger.Info("submission slides removed",
			logging.String(logging.FieldEventType, "slides_removed"),
			logging.Int64(logging.FieldSubmissionID, id),
			logging.Int("removed", removed))
	}
	return removed
}

func (i *Injector) removeLocked(id int64) int {
	memoryID, resolutionID := MemorySlideID(id), ResolutionSlideID(id)
	kept := i.slides[:0]
	removed := 0
	for _, slide := range i.slides {
		if slide.ID == memoryID || slide.ID == resolutionID {
			removed++
			continue
		}
		kept = append(kept, slide)
	}
	clear(i.slides[len(kept):])
	i.slides = kept
	return removed
}

// ListSince returns live slides with InjectedAt >= since. The cutoff is
// inclusive so a slide stamped exactly at a client's last-seen time is not
// skipped.
func (i *Injector) ListSince(since int64) []deck.Slide {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]deck.Slide, 0, len(i.slides))
	for _, slide := range i.slides {
		if slide.InjectedAt >= since {
			out = append(out, slide)
		}
	}
	return out
}

// Snapshot returns a copy of the live list.
func (i *Injector) Snapshot() []deck.Slide {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]deck.Slide, len(i.slides))
	copy(out, i.slides)
	return out
}

// Len returns the number of live injected slides.
func (i *Injector) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.slides)
}
