package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"marquee/internal/logging"
	"marquee/internal/store"
)

// ErrNotFound reports a submission id that does not exist.
var ErrNotFound = errors.New("submission not found")

// SubmissionStore abstracts the registry operations moderation needs.
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, memory, resolution, guestName string) (int64, error)
	ListSubmissions(ctx context.Context, statuses ...store.Status) ([]*store.Submission, error)
	ApprovedSubmissions(ctx context.Context) ([]*store.Submission, error)
	GetSubmission(ctx context.Context, id int64) (*store.Submission, error)
	SubmissionCounts(ctx context.Context) (store.Counts, error)
	SetSubmissionStatus(ctx context.Context, id int64, status store.Status) (bool, error)
	DeleteSubmission(ctx context.Context, id int64) (bool, error)
}

// SlideInjector receives moderation side effects.
type SlideInjector interface {
	OnApprove(sub *store.Submission) int
	OnUnapprove(id int64) int
}

// ModerationService couples submission status changes with their slide side
// effects.
type ModerationService struct {
	store    SubmissionStore
	injector SlideInjector
	logger   *slog.Logger

	mu sync.Mutex
}

// NewModerationService constructs a ModerationService.
func NewModerationService(st SubmissionStore, injector SlideInjector, logger *slog.Logger) *ModerationService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ModerationService{
		store:    st,
		injector: injector,
		logger:   logging.NewComponentLogger(logger, "moderation"),
	}
}

// Submit stores a guest submission.
func (s *ModerationService) Submit(ctx context.Context, req SubmissionRequest) (SubmitResult, error) {
	guest := ""
	if req.GuestName != nil {
		guest = *req.GuestName
	}
	id, err := s.store.CreateSubmission(ctx, req.Memory, req.Resolution, guest)
	if err != nil {
		return SubmitResult{}, err
	}
	s.logger.Info("submission received",
		logging.String(logging.FieldEventType, "submission_created"),
		logging.Int64(logging.FieldSubmissionID, id))
	return SubmitResult{ID: id, Message: "Submission received!"}, nil
}

// List returns submissions newest first with per-status counts. An empty
// status lists everything.
func (s *ModerationService) List(ctx context.Context, status string) (SubmissionList, error) {
	var filter []store.Status
	if status != "" {
		parsed, ok := store.ParseStatus(status)
		if !ok {
			return SubmissionList{}, fmt.Errorf("%w: unknown status %q", store.ErrValidation, status)
		}
		filter = append(filter, parsed)
	}
	subs, err := s.store.ListSubmissions(ctx, filter...)
	if err != nil {
		return SubmissionList{}, err
	}
	counts, err := s.store.SubmissionCounts(ctx)
	if err != nil {
		return SubmissionList{}, err
	}
	return SubmissionList{Submissions: FromSubmissions(subs), Counts: FromCounts(counts)}, nil
}

// Approved returns approved submissions in review order.
func (s *ModerationService) Approved(ctx context.Context) (SubmissionList, error) {
	subs, err := s.store.ApprovedSubmissions(ctx)
	if err != nil {
		return SubmissionList{}, err
	}
	return SubmissionList{Submissions: FromSubmissions(subs)}, nil
}

// Approve marks id approved and injects its slides.
func (s *ModerationService) Approve(ctx context.Context, id int64) (ModerationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.setStatus(ctx, id, store.StatusApproved); err != nil {
		return ModerationResult{}, err
	}
	sub, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		return ModerationResult{}, err
	}
	if sub == nil {
		return ModerationResult{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	created := s.injector.OnApprove(sub)

	s.logger.Info("submission approved",
		logging.String(logging.FieldEventType, "submission_approved"),
		logging.Int64(logging.FieldSubmissionID, id),
		logging.Int("slides_created", created))
	return ModerationResult{ID: id, Status: string(store.StatusApproved), Message: "Approved", SlidesCreated: created}, nil
}

// Reject marks id rejected and withdraws any injected slides.
func (s *ModerationService) Reject(ctx context.Context, id int64) (ModerationResult, error) {
	return s.withdraw(ctx, id, store.StatusRejected, "Rejected")
}

// ResetToPending moves id back to pending and withdraws any injected slides.
func (s *ModerationService) ResetToPending(ctx context.Context, id int64) (ModerationResult, error) {
	return s.withdraw(ctx, id, store.StatusPending, "Moved to pending")
}

func (s *ModerationService) withdraw(ctx context.Context, id int64, status store.Status, message string) (ModerationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.setStatus(ctx, id, status); err != nil {
		return ModerationResult{}, err
	}
	removed := s.injector.OnUnapprove(id)

	s.logger.Info("submission status changed",
		logging.String(logging.FieldEventType, "submission_"+string(status)),
		logging.Int64(logging.FieldSubmissionID, id),
		logging.Int("slides_removed", removed))
	return ModerationResult{ID: id, Status: string(status), Message: message, SlidesRemoved: removed}, nil
}

// Delete removes id permanently and withdraws any injected slides.
func (s *ModerationService) Delete(ctx context.Context, id int64) (ModerationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, err := s.store.DeleteSubmission(ctx, id)
	if err != nil {
		return ModerationResult{}, err
	}
	if !deleted {
		return ModerationResult{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	removed := s.injector.OnUnapprove(id)

	s.logger.Info("submission deleted",
		logging.String(logging.FieldEventType, "submission_deleted"),
		logging.Int64(logging.FieldSubmissionID, id),
		logging.Int("slides_removed", removed))
	return ModerationResult{ID: id, Message: "Deleted", SlidesRemoved: removed}, nil
}

func (s *ModerationService) setStatus(ctx context.Context, id int64, status store.Status) error {
	ok, err := s.store.SetSubmissionStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}
