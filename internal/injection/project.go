// Package injection derives slides from approved guest submissions and keeps
// the live list the display polls for.
package injection

import (
	"fmt"
	"sort"

	"marquee/internal/deck"
	"marquee/internal/store"
)

const (
	slideDuration        = 25000
	memoryBackground     = "/images/memories.png"
	resolutionBackground = "/images/resolutions.png"
	anonymousGuest       = "Anonymous"
)

// MemorySlideID returns the id of the memory slide derived from submission id.
func MemorySlideID(id int64) string {
	return fmt.Sprintf("submission-%d-memory", id)
}

// ResolutionSlideID returns the id of the resolution slide derived from submission id.
func ResolutionSlideID(id int64) string {
	return fmt.Sprintf("submission-%d-resolution", id)
}

// FromSubmission derives the memory and resolution slides for sub. The result
// depends only on the submission's fields. An unreviewed submission gets
// InjectedAt zero.
func FromSubmission(sub *store.Submission) (deck.Slide, deck.Slide) {
	guest := anonymousGuest
	if sub.GuestName != nil && *sub.GuestName != "" {
		guest = *sub.GuestName
	}
	var base int64
	if sub.ReviewedAt != nil {
		base = sub.ReviewedAt.UnixMilli()
	}

	memory := deck.Slide{
		ID:         MemorySlideID(sub.ID),
		Type:       deck.TypeGuestSubmission,
		Template:   "memory",
		Text:       sub.Memory,
		GuestName:  guest,
		Duration:   slideDuration,
		Background: memoryBackground,
		InjectedAt: base,
	}
	resolution := deck.Slide{
		ID:         ResolutionSlideID(sub.ID),
		Type:       deck.TypeGuestSubmission,
		Template:   "resolution",
		Text:       sub.Resolution,
		GuestName:  guest,
		Duration:   slideDuration,
		Background: resolutionBackground,
		InjectedAt: base + 1,
	}
	return memory, resolution
}

// Project rebuilds the injected list from submissions: approved entries only,
// ordered by review time with unreviewed entries last, flattened into pairs.
func Project(subs []*store.Submission) []deck.Slide {
	approved := make([]*store.Submission, 0, len(subs))
	for _, sub := range subs {
		if sub != nil && sub.Status == store.StatusApproved {
			approved = append(approved, sub)
		}
	}
	sort.SliceStable(approved, func(i, j int) bool {
		a, b := approved[i].ReviewedAt, approved[j].ReviewedAt
		switch {
		case a == nil && b == nil:
			return approved[i].ID < approved[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.Before(*b)
		default:
			return approved[i].ID < approved[j].ID
		}
	})

	slides := make([]deck.Slide, 0, 2*len(approved))
	for _, sub := range approved {
		memory, resolution := FromSubmission(sub)
		slides = append(slides, memory, resolution)
	}
	return slides
}
