// Package repository declares the storage contracts the service layer
// depends on. Implementations live in subpackages (see sqlite/).
package repository

import (
	"context"

	"github.com/sakif/intervw/internal/model"
)

// ListOptions is a LIMIT/OFFSET window over an ordered listing.
type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository persists accounts for the credential store.
//
// CreateUser must enforce username and email uniqueness atomically in the
// store itself and report a violation as apperror.Duplicate.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// SubmissionRepository persists submissions.
//
// The *Owned methods match on id AND owner in a single statement; a record
// that exists but belongs to someone else is reported exactly like a
// missing one (apperror.ErrNotFound).
type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.Submission) error
	List(ctx context.Context, opts ListOptions) ([]model.Submission, error)
	Count(ctx context.Context) (int, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Submission, error)
	UpdateOwned(ctx context.Context, id, ownerID string, patch model.SubmissionPatch) (*model.Submission, error)
	DeleteOwned(ctx context.Context, id, ownerID string) (*model.Submission, error)
}
