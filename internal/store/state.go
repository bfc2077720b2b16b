package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"marquee/internal/slideshow"
)

// LoadState reads the persisted slideshow record. It reports false when the
// record has never been saved.
func (s *Store) LoadState(ctx context.Context) (slideshow.State, bool, error) {
	var (
		state      slideshow.State
		isPaused   int
		isMuted    int
		switchReq  int
		hiddenRaw  string
		updatedRaw string
	)
	err := s.db.QueryRowContext(ensureContext(ctx), `
		SELECT is_paused, current_slide_id, current_slide_index, slide_duration, slide_started_at,
		       total_slides, hidden_slide_ids, is_muted, request_video_switch, last_updated
		FROM slideshow_state WHERE id = 1`,
	).Scan(&isPaused, &state.CurrentSlideID, &state.CurrentSlideIndex, &state.SlideDuration,
		&state.SlideStartedAt, &state.TotalSlides, &hiddenRaw, &isMuted, &switchReq, &updatedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return slideshow.State{}, false, nil
	}
	if err != nil {
		return slideshow.State{}, false, fmt.Errorf("load slideshow state: %w", err)
	}

	state.IsPaused = isPaused != 0
	state.IsMuted = isMuted != 0
	state.RequestVideoSwitch = switchReq != 0
	state.HiddenSlideIDs = []string{}
	if hiddenRaw != "" {
		if err := json.Unmarshal([]byte(hiddenRaw), &state.HiddenSlideIDs); err != nil {
			return slideshow.State{}, false, fmt.Errorf("decode hidden slides: %w", err)
		}
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		state.LastUpdated = updated
	}
	return state, true, nil
}

// SaveState upserts the slideshow record.
func (s *Store) SaveState(ctx context.Context, state slideshow.State) error {
	hidden := state.HiddenSlideIDs
	if hidden == nil {
		hidden = []string{}
	}
	hiddenJSON, err := json.Marshal(hidden)
	if err != nil {
		return fmt.Errorf("encode hidden slides: %w", err)
	}
	_, err = s.execWithRetry(ctx, `
		INSERT INTO slideshow_state (id, is_paused, current_slide_id, current_slide_index, slide_duration,
		    slide_started_at, total_slides, hidden_slide_ids, is_muted, request_video_switch, last_updated)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		    is_paused = excluded.is_paused,
		    current_slide_id = excluded.current_slide_id,
		    current_slide_index = excluded.current_slide_index,
		    slide_duration = excluded.slide_duration,
		    slide_started_at = excluded.slide_started_at,
		    total_slides = excluded.total_slides,
		    hidden_slide_ids = excluded.hidden_slide_ids,
		    is_muted = excluded.is_muted,
		    request_video_switch = excluded.request_video_switch,
		    last_updated = excluded.last_updated`,
		boolToInt(state.IsPaused), state.CurrentSlideID, state.CurrentSlideIndex, state.SlideDuration,
		state.SlideStartedAt, state.TotalSlides, string(hiddenJSON), boolToInt(state.IsMuted),
		boolToInt(state.RequestVideoSwitch), formatTime(state.LastUpdated))
	if err != nil {
		return fmt.Errorf("save slideshow state: %w", err)
	}
	return nil
}

var _ slideshow.Persister = (*Store)(nil)
