package store

import (
	"errors"
	"strings"
	"time"
)

// ErrValidation marks input the store refuses to persist.
var ErrValidation = errors.New("validation failed")

// Status is the moderation state of a submission.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var allStatuses = []Status{StatusPending, StatusApproved, StatusRejected}

// AllStatuses returns the moderation states in display order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus normalizes a user supplied status string.
func ParseStatus(value string) (Status, bool) {
	candidate := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == candidate {
			return status, true
		}
	}
	return "", false
}

// Submission is a guest's memory and resolution pair.
type Submission struct {
	ID         int64
	GuestName  *string
	Memory     string
	Resolution string
	Status     Status
	CreatedAt  time.Time
	ReviewedAt *time.Time
}

// Counts tallies submissions per status. Every status is always present.
type Counts map[Status]int

// Session is an admin login token.
type Session struct {
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}
