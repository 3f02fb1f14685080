// Package store defines the persistence boundary. A Store instance is
// constructed explicitly at startup and handed to the services; there is
// no package-level singleton.
package store

import (
	"context"
	"errors"

	"testshare/internal/model"
)

var (
	// ErrNotFound is returned for any lookup of a nonexistent record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateShareCode is returned when a test's share code is
	// already taken.
	ErrDuplicateShareCode = errors.New("share code already in use")
	// ErrDuplicateUsername is returned when a creator username is taken.
	ErrDuplicateUsername = errors.New("username already in use")
)

type Store interface {
	CreateCreator(ctx context.Context, c model.Creator) (model.Creator, error)
	GetCreator(ctx context.Context, id int64) (model.Creator, error)
	GetCreatorByUsername(ctx context.Context, username string) (model.Creator, error)

	CreateTaker(ctx context.Context, t model.Taker) (model.Taker, error)
	GetTaker(ctx context.Context, id int64) (model.Taker, error)

	CreateTest(ctx context.Context, t model.Test) (model.Test, error)
	GetTest(ctx context.Context, id int64) (model.Test, error)
	GetTestByShareCode(ctx context.Context, shareCode string) (model.Test, error)
	ListTestsByCreator(ctx context.Context, creatorID int64) ([]model.Test, error)
	UpdateTest(ctx context.Context, t model.Test) (model.Test, error)
	DeleteTest(ctx context.Context, id int64) error
	TestHasSubmissions(ctx context.Context, testID int64) (bool, error)

	CreateSubmission(ctx context.Context, s model.Submission) (model.Submission, error)
	GetSubmission(ctx context.Context, id int64) (model.Submission, error)
	ListSubmissionsByTest(ctx context.Context, testID int64) ([]model.Submission, error)
	UpdateSubmission(ctx context.Context, s model.Submission) (model.Submission, error)

	// CreateReviewRequest persists the request and flips the owning
	// submission's HasReviewRequest flag (and the contested answer's
	// ReviewRequested marker) in the same atomic step. A request is
	// never created without the flag flip.
	CreateReviewRequest(ctx context.Context, r model.ReviewRequest) (model.ReviewRequest, error)
	GetReviewRequest(ctx context.Context, id int64) (model.ReviewRequest, error)
	ListReviewRequestsBySubmission(ctx context.Context, submissionID int64) ([]model.ReviewRequest, error)
	UpdateReviewRequest(ctx context.Context, r model.ReviewRequest) (model.ReviewRequest, error)
}
