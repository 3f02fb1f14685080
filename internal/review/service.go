// Package review handles taker disputes against essay auto-scoring.
// Essay grading is a coarse containment heuristic, so takers can contest
// individual essay answers on an already persisted submission.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"testshare/internal/model"
	"testshare/internal/store"
)

var (
	ErrInvalidInput        = errors.New("invalid review request input")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrReviewNotFound      = errors.New("review request not found")
	ErrNotEssayQuestion    = errors.New("review requests are only allowed for essay questions")
	ErrQuestionNotAnswered = errors.New("question was not answered in this submission")
	ErrAlreadyAdjudicated  = errors.New("review request already adjudicated")
)

type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// Request creates one pending review request for an essay answer. The
// owning submission's HasReviewRequest flag flips in the same store
// step; a request never exists without the flag set.
func (s *Service) Request(ctx context.Context, submissionID int64, questionID, message string) (model.ReviewRequest, error) {
	if submissionID <= 0 || strings.TrimSpace(questionID) == "" {
		return model.ReviewRequest{}, fmt.Errorf("%w: submission_id and question_id are required", ErrInvalidInput)
	}

	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.ReviewRequest{}, ErrSubmissionNotFound
		}
		return model.ReviewRequest{}, fmt.Errorf("load submission: %w", err)
	}

	test, err := s.store.GetTest(ctx, sub.TestID)
	if err != nil {
		return model.ReviewRequest{}, fmt.Errorf("load test for submission: %w", err)
	}

	q, ok := test.QuestionByID(questionID)
	if !ok {
		return model.ReviewRequest{}, fmt.Errorf("%w: question %s is not part of the test", ErrInvalidInput, questionID)
	}
	if q.Type != model.QuestionEssay {
		return model.ReviewRequest{}, ErrNotEssayQuestion
	}

	answer, ok := sub.AnswerByQuestionID(questionID)
	if !ok || !answer.Answered(model.QuestionEssay) {
		return model.ReviewRequest{}, ErrQuestionNotAnswered
	}

	req, err := s.store.CreateReviewRequest(ctx, model.ReviewRequest{
		SubmissionID:   submissionID,
		QuestionID:     questionID,
		RequestMessage: strings.TrimSpace(message),
		Status:         model.ReviewPending,
		CreatedAt:      s.now(),
	})
	if err != nil {
		return model.ReviewRequest{}, fmt.Errorf("create review request: %w", err)
	}
	return req, nil
}

func (s *Service) ListBySubmission(ctx context.Context, submissionID int64) ([]model.ReviewRequest, error) {
	if _, err := s.store.GetSubmission(ctx, submissionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("load submission: %w", err)
	}
	reqs, err := s.store.ListReviewRequestsBySubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("list review requests: %w", err)
	}
	return reqs, nil
}

// Adjudicate settles a pending request. The adjudicator may revise the
// contested answer's awarded points; the submission score absorbs the
// delta and is never re-derived from scratch.
func (s *Service) Adjudicate(ctx context.Context, id int64, status model.ReviewStatus, revisedPoints *int) (model.ReviewRequest, error) {
	if status != model.ReviewApproved && status != model.ReviewRejected {
		return model.ReviewRequest{}, fmt.Errorf("%w: status must be approved or rejected", ErrInvalidInput)
	}

	req, err := s.store.GetReviewRequest(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.ReviewRequest{}, ErrReviewNotFound
		}
		return model.ReviewRequest{}, fmt.Errorf("load review request: %w", err)
	}
	if req.Status != model.ReviewPending {
		return model.ReviewRequest{}, ErrAlreadyAdjudicated
	}

	if revisedPoints != nil {
		if err := s.applyRevisedPoints(ctx, req, *revisedPoints); err != nil {
			return model.ReviewRequest{}, err
		}
	}

	req.Status = status
	req, err = s.store.UpdateReviewRequest(ctx, req)
	if err != nil {
		return model.ReviewRequest{}, fmt.Errorf("update review request: %w", err)
	}
	return req, nil
}

func (s *Service) applyRevisedPoints(ctx context.Context, req model.ReviewRequest, points int) error {
	sub, err := s.store.GetSubmission(ctx, req.SubmissionID)
	if err != nil {
		return fmt.Errorf("load submission: %w", err)
	}
	test, err := s.store.GetTest(ctx, sub.TestID)
	if err != nil {
		return fmt.Errorf("load test for submission: %w", err)
	}
	q, ok := test.QuestionByID(req.QuestionID)
	if !ok {
		return fmt.Errorf("%w: question %s is not part of the test", ErrInvalidInput, req.QuestionID)
	}
	if points < 0 || points > q.Points {
		return fmt.Errorf("%w: revised points must be between 0 and %d", ErrInvalidInput, q.Points)
	}

	for i := range sub.Answers {
		if sub.Answers[i].QuestionID != req.QuestionID {
			continue
		}
		sub.Score += points - sub.Answers[i].PointsAwarded
		sub.Answers[i].PointsAwarded = points
		if _, err := s.store.UpdateSubmission(ctx, sub); err != nil {
			return fmt.Errorf("update submission: %w", err)
		}
		return nil
	}
	return ErrQuestionNotAnswered
}
