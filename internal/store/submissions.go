package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const submissionColumns = "id, guest_name, memory, resolution, status, created_at, reviewed_at"

// minReviewSpacing keeps derived slide timestamps (reviewed_at and +1 ms)
// of different submissions from colliding.
const minReviewSpacing = 2 * time.Millisecond

func scanSubmission(scanner interface{ Scan(dest ...any) error }) (*Submission, error) {
	var (
		id          int64
		guestName   sql.NullString
		memory      string
		resolution  string
		statusStr   string
		createdRaw  sql.NullString
		reviewedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &guestName, &memory, &resolution, &statusStr, &createdRaw, &reviewedRaw); err != nil {
		return nil, err
	}
	sub := &Submission{
		ID:         id,
		Memory:     memory,
		Resolution: resolution,
		Status:     Status(statusStr),
	}
	if guestName.Valid {
		name := guestName.String
		sub.GuestName = &name
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		sub.CreatedAt = created
	}
	if reviewedRaw.Valid {
		if reviewed, err := parseTimeString(reviewedRaw.String); err == nil {
			sub.ReviewedAt = &reviewed
		}
	}
	return sub, nil
}

func (s *Store) loadLastReview(ctx context.Context) error {
	var raw sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(reviewed_at) FROM submissions`).Scan(&raw); err != nil {
		return fmt.Errorf("read last review stamp: %w", err)
	}
	if raw.Valid {
		if t, err := parseTimeString(raw.String); err == nil {
			s.lastReview = t
		}
	}
	return nil
}

// nextReviewStampLocked returns a millisecond-aligned stamp at least
// minReviewSpacing after the previous one. Caller holds reviewMu.
func (s *Store) nextReviewStampLocked() time.Time {
	stamp := s.now().UTC().Truncate(time.Millisecond)
	if floor := s.lastReview.Add(minReviewSpacing); !s.lastReview.IsZero() && stamp.Before(floor) {
		stamp = floor
	}
	s.lastReview = stamp
	return stamp
}

// CreateSubmission stores a new pending submission. Memory and resolution are
// required after trimming; a blank guest name is stored as NULL.
func (s *Store) CreateSubmission(ctx context.Context, memory, resolution, guestName string) (int64, error) {
	memory = strings.TrimSpace(memory)
	resolution = strings.TrimSpace(resolution)
	if memory == "" {
		return 0, fmt.Errorf("%w: memory is required", ErrValidation)
	}
	if resolution == "" {
		return 0, fmt.Errorf("%w: resolution is required", ErrValidation)
	}
	var guest *string
	if trimmed := strings.TrimSpace(guestName); trimmed != "" {
		guest = &trimmed
	}

	res, err := s.execWithRetry(ctx,
		`INSERT INTO submissions (guest_name, memory, resolution, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		nullableString(guest), memory, resolution, StatusPending, formatTime(s.now()),
	)
	if err != nil {
		return 0, fmt.Errorf("insert submission: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// GetSubmission fetches a submission by id. It returns nil, nil when missing.
func (s *Store) GetSubmission(ctx context.Context, id int64) (*Submission, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

// ListSubmissions returns submissions newest first, optionally filtered by status.
func (s *Store) ListSubmissions(ctx context.Context, statuses ...Status) ([]*Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
		query += ` WHERE status IN (` + placeholders + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY created_at DESC, id DESC`
	return s.querySubmissions(ctx, query, args...)
}

// ApprovedSubmissions returns approved submissions in review order, never
// reviewed entries last.
func (s *Store) ApprovedSubmissions(ctx context.Context) ([]*Submission, error) {
	return s.querySubmissions(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE status = ?
		 ORDER BY reviewed_at IS NULL, reviewed_at, id`,
		StatusApproved)
}

func (s *Store) querySubmissions(ctx context.Context, query string, args ...any) ([]*Submission, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var subs []*Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// SubmissionCounts tallies submissions per status.
func (s *Store) SubmissionCounts(ctx context.Context) (Counts, error) {
	counts := Counts{}
	for _, status := range allStatuses {
		counts[status] = 0
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(*) FROM submissions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[Status(status)] = count
	}
	return counts, rows.Err()
}

// SetSubmissionStatus moves a submission to status and stamps reviewed_at.
// It reports false when the id does not exist.
func (s *Store) SetSubmissionStatus(ctx context.Context, id int64, status Status) (bool, error) {
	if _, ok := ParseStatus(string(status)); !ok {
		return false, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	s.reviewMu.Lock()
	defer s.reviewMu.Unlock()

	previous := s.lastReview
	stamp := s.nextReviewStampLocked()
	res, err := s.execWithRetry(ctx,
		`UPDATE submissions SET status = ?, reviewed_at = ? WHERE id = ?`,
		status, formatTime(stamp), id)
	if err != nil {
		s.lastReview = previous
		return false, fmt.Errorf("update submission status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		s.lastReview = previous
	}
	return affected > 0, nil
}

// DeleteSubmission removes a submission permanently regardless of status.
func (s *Store) DeleteSubmission(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM submissions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
