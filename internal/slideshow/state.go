package slideshow

import (
	"slices"
	"time"
)

// DefaultSlideDuration is used until the display reports its own timing.
const DefaultSlideDuration = 30000

// State is the single shared playback record read by every client.
type State struct {
	IsPaused           bool      `json:"isPaused"`
	CurrentSlideID     string    `json:"currentSlideId"`
	CurrentSlideIndex  int       `json:"currentSlideIndex"`
	SlideDuration      int       `json:"slideDuration"`
	SlideStartedAt     string    `json:"slideStartedAt"`
	TotalSlides        int       `json:"totalSlides"`
	HiddenSlideIDs     []string  `json:"hiddenSlideIds"`
	IsMuted            bool      `json:"isMuted"`
	RequestVideoSwitch bool      `json:"requestVideoSwitch"`
	LastUpdated        time.Time `json:"lastUpdated"`
}

// DefaultState returns the record used when nothing has been persisted.
func DefaultState(slideDuration int) State {
	if slideDuration <= 0 {
		slideDuration = DefaultSlideDuration
	}
	return State{
		SlideDuration:  slideDuration,
		HiddenSlideIDs: []string{},
		IsMuted:        true,
	}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	out.HiddenSlideIDs = slices.Clone(s.HiddenSlideIDs)
	if out.HiddenSlideIDs == nil {
		out.HiddenSlideIDs = []string{}
	}
	return out
}

// IsHidden reports whether id is in the hidden set.
func (s State) IsHidden(id string) bool {
	return slices.Contains(s.HiddenSlideIDs, id)
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	IsPaused           *bool
	CurrentSlideID     *string
	CurrentSlideIndex  *int
	SlideDuration      *int
	SlideStartedAt     *string
	TotalSlides        *int
	IsMuted            *bool
	RequestVideoSwitch *bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.IsPaused == nil &&
		p.CurrentSlideID == nil &&
		p.CurrentSlideIndex == nil &&
		p.SlideDuration == nil &&
		p.SlideStartedAt == nil &&
		p.TotalSlides == nil &&
		p.IsMuted == nil &&
		p.RequestVideoSwitch == nil
}

func (p Patch) applyTo(s *State) {
	if p.IsPaused != nil {
		s.IsPaused = *p.IsPaused
	}
	if p.CurrentSlideID != nil {
		s.CurrentSlideID = *p.CurrentSlideID
	}
	if p.CurrentSlideIndex != nil {
		s.CurrentSlideIndex = *p.CurrentSlideIndex
	}
	if p.SlideDuration != nil {
		s.SlideDuration = *p.SlideDuration
	}
	if p.SlideStartedAt != nil {
		s.SlideStartedAt = *p.SlideStartedAt
	}
	if p.TotalSlides != nil {
		s.TotalSlides = *p.TotalSlides
	}
	if p.IsMuted != nil {
		s.IsMuted = *p.IsMuted
	}
	if p.RequestVideoSwitch != nil {
		s.RequestVideoSwitch = *p.RequestVideoSwitch
	}
}

// SyncReport is the display's periodic position report. Index is required;
// the remaining pointer fields are optional.
type SyncReport struct {
	SlideID        string
	SlideIndex     int
	SlideDuration  *int
	SlideStartedAt *string
	TotalSlides    *int
}

// Command is an admin control request.
type Command struct {
	Action     string
	SlideID    string
	SlideIndex *int
}
