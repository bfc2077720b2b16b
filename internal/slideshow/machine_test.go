package slideshow

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type memoryPersister struct {
	mu      sync.Mutex
	state   State
	saved   bool
	saves   int
	loadErr error
	saveErr error
}

func (p *memoryPersister) LoadState(context.Context) (State, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loadErr != nil {
		return State{}, false, p.loadErr
	}
	return p.state.Clone(), p.saved, nil
}

func (p *memoryPersister) SaveState(_ context.Context, s State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	if p.saveErr != nil {
		return p.saveErr
	}
	p.state = s.Clone()
	p.saved = true
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestDefaultsOnFirstAccess(t *testing.T) {
	m := NewMachine(&memoryPersister{}, 0, nil)
	s := m.State(context.Background())
	if s.IsPaused || s.CurrentSlideID != "" || s.CurrentSlideIndex != 0 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.SlideDuration != DefaultSlideDuration || !s.IsMuted {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.HiddenSlideIDs == nil || len(s.HiddenSlideIDs) != 0 {
		t.Fatalf("expected empty hidden set, got %v", s.HiddenSlideIDs)
	}
}

func TestUpdateIsMergePatch(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(nil, 30000, nil)
	m.Goto(ctx, "intro", 2)
	m.SetMuted(ctx, false)

	paused := true
	s := m.Update(ctx, Patch{IsPaused: &paused})
	if !s.IsPaused || s.CurrentSlideID != "intro" || s.CurrentSlideIndex != 2 || s.IsMuted {
		t.Fatalf("patch clobbered untouched fields: %+v", s)
	}
}

func TestSyncThenReadReturnsIndexAndNewerTimestamp(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(nil, 30000, nil)
	before := m.State(ctx).LastUpdated

	m.Sync(ctx, SyncReport{SlideID: "x", SlideIndex: 5})
	s := m.State(ctx)
	if s.CurrentSlideIndex != 5 || s.CurrentSlideID != "x" {
		t.Fatalf("unexpected position: %+v", s)
	}
	if !s.LastUpdated.After(before) {
		t.Fatalf("lastUpdated %v not after %v", s.LastUpdated, before)
	}
	if s.SlideDuration != 30000 {
		t.Fatalf("absent duration should be untouched, got %d", s.SlideDuration)
	}
}

func TestLastUpdatedStrictlyIncreasesWhenClockStalls(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(nil, 30000, nil)
	m.now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	first := m.Pause(ctx, true).LastUpdated
	second := m.Pause(ctx, false).LastUpdated
	third := m.RequestVideoSwitch(ctx).LastUpdated
	if !second.After(first) || !third.After(second) {
		t.Fatalf("timestamps not strictly increasing: %v %v %v", first, second, third)
	}
}

func TestHideUnhideIdempotent(t *testing.T) {
	ctx := context.Background()
	p := &memoryPersister{}
	m := NewMachine(p, 30000, nil)

	s := m.Hide(ctx, "a")
	stamp := s.LastUpdated
	s = m.Hide(ctx, "a")
	if !reflect.DeepEqual(s.HiddenSlideIDs, []string{"a"}) {
		t.Fatalf("hidden = %v", s.HiddenSlideIDs)
	}
	if !s.LastUpdated.Equal(stamp) {
		t.Fatal("no-op hide must not bump lastUpdated")
	}
	m.Hide(ctx, "b")
	s = m.Unhide(ctx, "a")
	if !reflect.DeepEqual(s.HiddenSlideIDs, []string{"b"}) {
		t.Fatalf("hidden after unhide = %v", s.HiddenSlideIDs)
	}
	saves := p.saves
	m.Unhide(ctx, "missing")
	if p.saves != saves {
		t.Fatal("no-op unhide must not persist")
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	idx := 7
	tests := []struct {
		name    string
		cmd     Command
		wantErr error
		check   func(State) bool
	}{
		{name: "pause", cmd: Command{Action: "PAUSE"}, check: func(s State) bool { return s.IsPaused }},
		{name: "resume", cmd: Command{Action: "resume"}, check: func(s State) bool { return !s.IsPaused }},
		{name: "goto", cmd: Command{Action: "goto", SlideID: "s7", SlideIndex: &idx}, check: func(s State) bool { return s.CurrentSlideIndex == 7 && s.CurrentSlideID == "s7" }},
		{name: "goto without index", cmd: Command{Action: "goto"}, wantErr: ErrInvalidCommand},
		{name: "switch video", cmd: Command{Action: "switch_video"}, check: func(s State) bool { return s.RequestVideoSwitch }},
		{name: "unmute", cmd: Command{Action: "unmute"}, check: func(s State) bool { return !s.IsMuted }},
		{name: "hide", cmd: Command{Action: "hide", SlideID: "s1"}, check: func(s State) bool { return s.IsHidden("s1") }},
		{name: "hide without id", cmd: Command{Action: "hide"}, wantErr: ErrInvalidCommand},
		{name: "unknown", cmd: Command{Action: "explode"}, wantErr: ErrUnknownAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(nil, 30000, nil)
			before := m.State(ctx)
			s, err := m.Apply(ctx, tt.cmd)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if !reflect.DeepEqual(m.State(ctx), before) {
					t.Fatal("rejected command must not mutate state")
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if !tt.check(s) {
				t.Fatalf("unexpected state: %+v", s)
			}
		})
	}
}

func TestVideoSwitchRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(nil, 30000, nil)
	if !m.RequestVideoSwitch(ctx).RequestVideoSwitch {
		t.Fatal("expected flag raised")
	}
	if m.ClearVideoSwitchRequest(ctx).RequestVideoSwitch {
		t.Fatal("expected flag cleared")
	}
}

func TestPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	p := &memoryPersister{}
	m := NewMachine(p, 30000, nil)
	m.Goto(ctx, "x", 3)
	m.Hide(ctx, "y")

	reloaded := NewMachine(p, 30000, nil)
	s := reloaded.State(ctx)
	if s.CurrentSlideIndex != 3 || !s.IsHidden("y") {
		t.Fatalf("state not restored: %+v", s)
	}
}

func TestPersistFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	p := &memoryPersister{saveErr: errors.New("disk full")}
	m := NewMachine(p, 30000, nil)
	s := m.Pause(ctx, true)
	if !s.IsPaused || !m.State(ctx).IsPaused {
		t.Fatal("in-memory state must reflect the mutation")
	}
}

func TestLoadFailureFallsBackToDefaults(t *testing.T) {
	p := &memoryPersister{loadErr: errors.New("corrupt")}
	m := NewMachine(p, 15000, nil)
	if s := m.State(context.Background()); s.SlideDuration != 15000 || !s.IsMuted {
		t.Fatalf("expected defaults, got %+v", s)
	}
}

func TestLoadFailureRetriesAndKeepsStoredState(t *testing.T) {
	ctx := context.Background()
	stored := DefaultState(30000)
	stored.CurrentSlideIndex = 7
	stored.HiddenSlideIDs = []string{"keep"}
	p := &memoryPersister{state: stored, saved: true, loadErr: errors.New("database is locked")}
	m := NewMachine(p, 30000, nil)

	if s := m.Pause(ctx, true); !s.IsPaused {
		t.Fatalf("mutation should apply in memory: %+v", s)
	}
	p.mu.Lock()
	saves := p.saves
	p.loadErr = nil
	p.mu.Unlock()
	if saves != 0 {
		t.Fatalf("stored state overwritten before a successful load (%d saves)", saves)
	}

	s := m.State(ctx)
	if s.CurrentSlideIndex != 7 || !s.IsHidden("keep") {
		t.Fatalf("expected stored state after retry, got %+v", s)
	}
	m.Hide(ctx, "other")
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.saves != 1 || !p.state.IsHidden("keep") || !p.state.IsHidden("other") {
		t.Fatalf("write-through after load lost data: saves=%d state=%+v", p.saves, p.state)
	}
}
