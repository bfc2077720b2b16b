// Package slideshow owns the authoritative playback state shared by the
// display, the admin console, and guest pages.
package slideshow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"marquee/internal/logging"
)

var (
	// ErrUnknownAction is returned by Apply for unrecognized action names.
	ErrUnknownAction = errors.New("unknown slideshow action")
	// ErrInvalidCommand is returned by Apply when a recognized action lacks
	// a required argument.
	ErrInvalidCommand = errors.New("invalid slideshow command")
)

// Persister stores the playback record. LoadState reports false when nothing
// has been saved yet.
type Persister interface {
	LoadState(ctx context.Context) (State, bool, error)
	SaveState(ctx context.Context, state State) error
}

// Machine is the lock-guarded owner of the playback record.
type Machine struct {
	persister       Persister
	logger          *slog.Logger
	defaultDuration int
	now             func() time.Time

	mu          sync.Mutex
	initialized bool
	loaded      bool
	state       State
}

// NewMachine creates a machine. persister may be nil for a memory-only record.
func NewMachine(persister Persister, defaultDuration int, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Machine{
		persister:       persister,
		logger:          logging.NewComponentLogger(logger, "slideshow"),
		defaultDuration: defaultDuration,
		now:             time.Now,
	}
}

// ensureLoadedLocked reads the persisted record on first access. A failed
// read leaves the machine unloaded so the next access retries; until then the
// in-memory record is not written through, keeping the stored row intact.
func (m *Machine) ensureLoadedLocked(ctx context.Context) {
	if m.loaded {
		return
	}
	if !m.initialized {
		m.initialized = true
		m.state = DefaultState(m.defaultDuration)
	}
	if m.persister == nil {
		m.loaded = true
		return
	}
	state, ok, err := m.persister.LoadState(ctx)
	if err != nil {
		m.logger.Warn("failed to load slideshow state",
			logging.String(logging.FieldEventType, "slideshow_state_load_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the database file"),
			logging.String(logging.FieldImpact, "serving defaults until the stored state can be read"))
		return
	}
	m.loaded = true
	if ok {
		m.state = state.Clone()
	}
}

// State returns a copy of the current record.
func (m *Machine) State(ctx context.Context) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLoadedLocked(ctx)
	return m.state.Clone()
}

// Update applies patch, bumps LastUpdated, and persists. An empty patch
// returns the state unchanged.
func (m *Machine) Update(ctx context.Context, patch Patch) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLoadedLocked(ctx)
	if patch.Empty() {
		return m.state.Clone()
	}
	patch.applyTo(&m.state)
	m.commitLocked(ctx)
	return m.state.Clone()
}

// commitLocked bumps LastUpdated strictly forward and writes through.
func (m *Machine) commitLocked(ctx context.Context) {
	next := m.now().UTC()
	if !next.After(m.state.LastUpdated) {
		next = m.state.LastUpdated.Add(time.Millisecond)
	}
	m.state.LastUpdated = next

	if m.persister == nil || !m.loaded {
		return
	}
	if err := m.persister.SaveState(ctx, m.state.Clone()); err != nil {
		m.logger.Warn("slideshow state not persisted",
			logging.String(logging.FieldEventType, "slideshow_state_save_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions on the data directory"),
			logging.String(logging.FieldImpact, "state will revert to the last saved copy after restart"))
	}
}

// Pause sets or clears the paused flag.
func (m *Machine) Pause(ctx context.Context, paused bool) State {
	return m.Update(ctx, Patch{IsPaused: &paused})
}

// Goto moves the current position.
func (m *Machine) Goto(ctx context.Context, slideID string, index int) State {
	return m.Update(ctx, Patch{CurrentSlideID: &slideID, CurrentSlideIndex: &index})
}

// RequestVideoSwitch raises the one-shot video switch flag.
func (m *Machine) RequestVideoSwitch(ctx context.Context) State {
	on := true
	return m.Update(ctx, Patch{RequestVideoSwitch: &on})
}

// ClearVideoSwitchRequest acknowledges a video switch.
func (m *Machine) ClearVideoSwitchRequest(ctx context.Context) State {
	off := false
	return m.Update(ctx, Patch{RequestVideoSwitch: &off})
}

// SetMuted sets the audio flag.
func (m *Machine) SetMuted(ctx context.Context, muted bool) State {
	return m.Update(ctx, Patch{IsMuted: &muted})
}

// Sync records the display's reported position. It does not move other clients
// by itself; they read it on their next poll.
func (m *Machine) Sync(ctx context.Context, report SyncReport) State {
	return m.Update(ctx, Patch{
		CurrentSlideID:    &report.SlideID,
		CurrentSlideIndex: &report.SlideIndex,
		SlideDuration:     report.SlideDuration,
		SlideStartedAt:    report.SlideStartedAt,
		TotalSlides:       report.TotalSlides,
	})
}

// Hide adds id to the hidden set. Hiding an already hidden slide is a no-op.
func (m *Machine) Hide(ctx context.Context, id string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLoadedLocked(ctx)
	if m.state.IsHidden(id) {
		return m.state.Clone()
	}
	m.state.HiddenSlideIDs = append(m.state.HiddenSlideIDs, id)
	m.commitLocked(ctx)
	return m.state.Clone()
}

// Unhide removes id from the hidden set. Unhiding a visible slide is a no-op.
func (m *Machine) Unhide(ctx context.Context, id string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLoadedLocked(ctx)
	idx := slices.Index(m.state.HiddenSlideIDs, id)
	if idx < 0 {
		return m.state.Clone()
	}
	m.state.HiddenSlideIDs = slices.Delete(m.state.HiddenSlideIDs, idx, idx+1)
	m.commitLocked(ctx)
	return m.state.Clone()
}

// Apply dispatches an admin control command by action name.
func (m *Machine) Apply(ctx context.Context, cmd Command) (State, error) {
	action := strings.ToLower(strings.TrimSpace(cmd.Action))
	switch action {
	case "pause":
		return m.Pause(ctx, true), nil
	case "resume":
		return m.Pause(ctx, false), nil
	case "goto":
		if cmd.SlideIndex == nil {
			return State{}, fmt.Errorf("%w: goto requires slideIndex", ErrInvalidCommand)
		}
		return m.Goto(ctx, cmd.SlideID, *cmd.SlideIndex), nil
	case "switch_video":
		return m.RequestVideoSwitch(ctx), nil
	case "mute":
		return m.SetMuted(ctx, true), nil
	case "unmute":
		return m.SetMuted(ctx, false), nil
	case "hide", "unhide":
		id := strings.TrimSpace(cmd.SlideID)
		if id == "" {
			return State{}, fmt.Errorf("%w: %s requires slideId", ErrInvalidCommand, action)
		}
		if action == "hide" {
			return m.Hide(ctx, id), nil
		}
		return m.Unhide(ctx, id), nil
	default:
		return State{}, fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
}
