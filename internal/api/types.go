package api

import (
	"marquee/internal/config"
	"marquee/internal/deck"
	"marquee/internal/slideshow"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Submission describes a guest submission in a transport-friendly format.
type Submission struct {
	ID         int64   `json:"id"`
	GuestName  *string `json:"guestName"`
	Memory     string  `json:"memory"`
	Resolution string  `json:"resolution"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"createdAt,omitempty"`
	ReviewedAt *string `json:"reviewedAt"`
}

// SubmissionRequest is the guest form payload.
type SubmissionRequest struct {
	Memory     string  `json:"memory"`
	Resolution string  `json:"resolution"`
	GuestName  *string `json:"guestName,omitempty"`
}

// SubmitResult acknowledges a new submission.
type SubmitResult struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// SubmissionList wraps submissions together with per-status counts.
type SubmissionList struct {
	Submissions []Submission   `json:"submissions"`
	Counts      map[string]int `json:"counts,omitempty"`
}

// ModerationResult reports the side effects of a moderation action.
type ModerationResult struct {
	ID            int64  `json:"id"`
	Status        string `json:"status,omitempty"`
	Message       string `json:"message"`
	SlidesCreated int    `json:"slidesCreated"`
	SlidesRemoved int    `json:"slidesRemoved"`
}

// VideoPick is the next video for a category.
type VideoPick struct {
	Category   string  `json:"category"`
	VideoPath  *string `json:"videoPath"`
	VideoCount int     `json:"videoCount"`
	PlayCount  int     `json:"playCount"`
}

// PlayedRequest reports which video the display started.
type PlayedRequest struct {
	VideoPath string `json:"videoPath,omitempty"`
}

// PlayResult acknowledges a played report.
type PlayResult struct {
	Category     string  `json:"category"`
	VideoPath    *string `json:"videoPath"`
	NewPlayCount int     `json:"newPlayCount"`
}

// InventoryVideo is one clip in the inventory listing.
type InventoryVideo struct {
	Path      string `json:"path"`
	Filename  string `json:"filename"`
	PlayCount int    `json:"playCount"`
}

// InventoryCategory groups the clips of one category.
type InventoryCategory struct {
	Name        string           `json:"name"`
	DisplayName string           `json:"displayName"`
	Videos      []InventoryVideo `json:"videos"`
}

// InventoryResponse lists every category with play counts and totals.
type InventoryResponse struct {
	Categories      []InventoryCategory `json:"categories"`
	TotalCategories int                 `json:"totalCategories"`
	TotalVideos     int                 `json:"totalVideos"`
	TotalPlays      int                 `json:"totalPlays"`
}

// ReloadResult reports the outcome of an inventory rescan.
type ReloadResult struct {
	Status          string `json:"status"`
	TotalCategories int    `json:"totalCategories"`
	TotalVideos     int    `json:"totalVideos"`
	PrunedCounts    int    `json:"prunedCounts"`
}

// HealthResponse is the public liveness payload.
type HealthResponse struct {
	Status          string `json:"status"`
	UptimeSeconds   int64  `json:"uptimeSeconds"`
	TotalCategories int    `json:"totalCategories"`
	TotalVideos     int    `json:"totalVideos"`
	TotalPlays      int    `json:"totalPlays"`
	InjectedSlides  int    `json:"injectedSlides"`
}

// SlidesResponse is the merged playback deck.
type SlidesResponse struct {
	Slides        []deck.Slide `json:"slides"`
	Total         int          `json:"total"`
	InjectedCount int          `json:"injectedCount"`
}

// InjectedSlidesResponse lists injected slides since a cutoff.
type InjectedSlidesResponse struct {
	Slides []deck.Slide `json:"slides"`
}

// SyncRequest is the display's position report.
type SyncRequest struct {
	SlideID        string  `json:"slideId"`
	SlideIndex     *int    `json:"slideIndex"`
	SlideDuration  *int    `json:"slideDuration,omitempty"`
	SlideStartedAt *string `json:"slideStartedAt,omitempty"`
	TotalSlides    *int    `json:"totalSlides,omitempty"`
}

// ControlRequest is an admin playback command.
type ControlRequest struct {
	Action     string `json:"action"`
	SlideIndex *int   `json:"slideIndex,omitempty"`
	SlideID    string `json:"slideId,omitempty"`
}

// StateResponse is the slideshow record as served to clients.
type StateResponse = slideshow.State

// LoginRequest carries the admin password.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries a fresh admin session token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	Message   string `json:"message"`
}

// VerifyResponse confirms an admin session.
type VerifyResponse struct {
	Valid bool `json:"valid"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ClientConfig is the public subset of configuration browser clients need.
type ClientConfig struct {
	Polling   config.Polling   `json:"polling"`
	Video     config.Video     `json:"video"`
	Slideshow config.Slideshow `json:"slideshow"`
}

// NewClientConfig extracts the client-facing sections of cfg.
func NewClientConfig(cfg *config.Config) ClientConfig {
	if cfg == nil {
		return ClientConfig{}
	}
	return ClientConfig{Polling: cfg.Polling, Video: cfg.Video, Slideshow: cfg.Slideshow}
}
