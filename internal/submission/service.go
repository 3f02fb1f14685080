// Package submission persists scored answer sets. The recorder is the
// boundary between a finished session and the store: it stamps the end
// time, forces the review flag off, and creates exactly one record per
// successful call.
package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"testshare/internal/model"
	"testshare/internal/store"
)

var (
	ErrInvalidInput       = errors.New("invalid submission input")
	ErrTestNotFound       = errors.New("test not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)

type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// RecordInput is a scored answer set as produced by the scoring engine.
// The recorder does not re-score; it validates shape and totals.
type RecordInput struct {
	TestID      int64
	TakerID     int64
	Answers     []model.Answer
	Score       int
	TotalPoints int
	StartTime   time.Time
}

// Record persists one submission. EndTime is captured here, at record
// time; it is never taken from the input. HasReviewRequest always
// initializes to false.
func (s *Service) Record(ctx context.Context, in RecordInput) (model.Submission, error) {
	test, err := s.store.GetTest(ctx, in.TestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Submission{}, ErrTestNotFound
		}
		return model.Submission{}, fmt.Errorf("load test: %w", err)
	}

	if in.TakerID <= 0 {
		return model.Submission{}, fmt.Errorf("%w: taker_id is required", ErrInvalidInput)
	}
	if in.StartTime.IsZero() {
		return model.Submission{}, fmt.Errorf("%w: start_time is required", ErrInvalidInput)
	}
	if len(in.Answers) != len(test.Questions) {
		return model.Submission{}, fmt.Errorf("%w: expected %d answers, got %d", ErrInvalidInput, len(test.Questions), len(in.Answers))
	}
	sum := 0
	for i, a := range in.Answers {
		if a.QuestionID != test.Questions[i].ID {
			return model.Submission{}, fmt.Errorf("%w: answer %d does not match question order", ErrInvalidInput, i)
		}
		sum += a.PointsAwarded
	}
	if sum != in.Score {
		return model.Submission{}, fmt.Errorf("%w: score %d does not equal sum of awarded points %d", ErrInvalidInput, in.Score, sum)
	}
	if in.TotalPoints != test.TotalPoints() {
		return model.Submission{}, fmt.Errorf("%w: total_points %d does not match test", ErrInvalidInput, in.TotalPoints)
	}
	if in.Score < 0 || in.Score > in.TotalPoints {
		return model.Submission{}, fmt.Errorf("%w: score out of range", ErrInvalidInput)
	}

	endTime := s.now()
	if endTime.Before(in.StartTime) {
		return model.Submission{}, fmt.Errorf("%w: start_time is in the future", ErrInvalidInput)
	}

	answers := make([]model.Answer, len(in.Answers))
	copy(answers, in.Answers)
	for i := range answers {
		answers[i].ReviewRequested = false
	}

	sub, err := s.store.CreateSubmission(ctx, model.Submission{
		TestID:           in.TestID,
		TakerID:          in.TakerID,
		Answers:          answers,
		StartTime:        in.StartTime,
		EndTime:          endTime,
		Score:            in.Score,
		TotalPoints:      in.TotalPoints,
		HasReviewRequest: false,
	})
	if err != nil {
		return model.Submission{}, fmt.Errorf("create submission: %w", err)
	}
	return sub, nil
}

func (s *Service) Get(ctx context.Context, id int64) (model.Submission, error) {
	sub, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Submission{}, ErrSubmissionNotFound
		}
		return model.Submission{}, fmt.Errorf("load submission: %w", err)
	}
	return sub, nil
}

func (s *Service) ListByTest(ctx context.Context, testID int64) ([]model.Submission, error) {
	if _, err := s.store.GetTest(ctx, testID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("load test: %w", err)
	}
	subs, err := s.store.ListSubmissionsByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}
