package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/intervw/internal/apperror"
	"github.com/sakif/intervw/internal/model"
	"github.com/sakif/intervw/internal/repository"
	"github.com/sakif/intervw/internal/validate"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageLimits bounds the page size of the public listing.
type PageLimits struct {
	Default int // used when the caller gives no usable page size
	Max     int // larger requests are clamped to this
}

// SubmissionService enforces the submission lifecycle: any authenticated
// user may create, anyone may list, and only the owner may update or delete.
//
// Ownership is never checked here with a read followed by a write. The
// repository's *Owned methods match id and owner in one statement, and a
// miss on either is reported as not found.
type SubmissionService struct {
	repo      repository.SubmissionRepository
	validator *validate.Validator
	limits    PageLimits
	logger    *slog.Logger
}

// NewSubmissionService creates a SubmissionService. Zero or inconsistent
// limits fall back to DefaultPageSize and MaxPageSize.
func NewSubmissionService(
	repo repository.SubmissionRepository,
	validator *validate.Validator,
	limits PageLimits,
	logger *slog.Logger,
) *SubmissionService {
	if limits.Max <= 0 {
		limits.Max = MaxPageSize
	}
	if limits.Default <= 0 || limits.Default > limits.Max {
		limits.Default = min(DefaultPageSize, limits.Max)
	}
	return &SubmissionService{
		repo:      repo,
		validator: validator,
		limits:    limits,
		logger:    logger,
	}
}

// Create validates in and stores it as a new submission owned by ownerID.
func (s *SubmissionService) Create(ctx context.Context, ownerID string, in model.SubmissionInput) (*model.Submission, error) {
	if ownerID == "" {
		return nil, apperror.Unauthenticated("authentication required")
	}

	in.Normalize()
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	sub := &model.Submission{
		Name:      in.Name,
		Company:   in.Company,
		Country:   in.Country,
		Questions: in.Questions,
		UserID:    ownerID,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		s.logger.Error("failed to create submission",
			slog.String("userID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating submission: %w", err)
	}

	s.logger.Info("submission created",
		slog.String("id", sub.ID),
		slog.String("userID", ownerID),
	)
	return sub, nil
}

// ListPaged returns one page of all submissions, newest first.
//
// page < 1 becomes 1. limit < 1 becomes the default page size and a limit
// above the maximum is clamped. totalPages is ceil(count / limit), so an
// empty store reports zero pages. Asking for a page past the end is not an
// error; it simply has no submissions and the store is not queried for rows,
// so no page number can push the row offset past the int range.
func (s *SubmissionService) ListPaged(ctx context.Context, page, limit int) (*model.Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.limits.Default
	}
	if limit > s.limits.Max {
		limit = s.limits.Max
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count submissions", slog.String("error", err.Error()))
		return nil, fmt.Errorf("counting submissions: %w", err)
	}

	totalPages := (total + limit - 1) / limit
	if page > totalPages {
		return &model.Page{
			Submissions: []model.Submission{},
			TotalPages:  totalPages,
			CurrentPage: page,
		}, nil
	}

	submissions, err := s.repo.List(ctx, repository.ListOptions{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		s.logger.Error("failed to list submissions", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing submissions: %w", err)
	}

	return &model.Page{
		Submissions: submissions,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

// ListByOwner returns every submission owned by ownerID, newest first.
func (s *SubmissionService) ListByOwner(ctx context.Context, ownerID string) ([]model.Submission, error) {
	if ownerID == "" {
		return nil, apperror.Unauthenticated("authentication required")
	}

	submissions, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list submissions by owner",
			slog.String("userID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing submissions for %s: %w", ownerID, err)
	}
	return submissions, nil
}

// UpdateOwned applies patch to submission id if ownerID owns it.
//
// Blank scalar fields are left untouched; a non-empty questions list
// replaces the stored one. A question that is blank after trimming is a
// validation error, as is an id that is blank.
func (s *SubmissionService) UpdateOwned(ctx context.Context, id, ownerID string, patch model.SubmissionPatch) (*model.Submission, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "submission id is required")
	}
	if ownerID == "" {
		return nil, apperror.Unauthenticated("authentication required")
	}

	patch.Normalize()
	if err := s.validator.Struct(patch); err != nil {
		return nil, err
	}

	sub, err := s.repo.UpdateOwned(ctx, id, ownerID, patch)
	if err != nil {
		return nil, s.ownedErr("update", id, ownerID, err)
	}

	s.logger.Info("submission updated",
		slog.String("id", id),
		slog.String("userID", ownerID),
	)
	return sub, nil
}

// DeleteOwned removes submission id if ownerID owns it and returns the
// removed record.
func (s *SubmissionService) DeleteOwned(ctx context.Context, id, ownerID string) (*model.Submission, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "submission id is required")
	}
	if ownerID == "" {
		return nil, apperror.Unauthenticated("authentication required")
	}

	sub, err := s.repo.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		return nil, s.ownedErr("delete", id, ownerID, err)
	}

	s.logger.Info("submission deleted",
		slog.String("id", id),
		slog.String("userID", ownerID),
	)
	return sub, nil
}

// ownedErr passes not-found through untouched; it is an expected outcome,
// not a failure worth an error log line.
func (s *SubmissionService) ownedErr(op, id, ownerID string, err error) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return err
	}
	s.logger.Error("failed to "+op+" submission",
		slog.String("id", id),
		slog.String("userID", ownerID),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%s submission %s: %w", op, id, err)
}
