package review

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"testshare/internal/model"

	"github.com/go-chi/chi/v5"
)

type mockReviewService struct {
	requestFn          func(ctx context.Context, submissionID int64, questionID, message string) (model.ReviewRequest, error)
	listBySubmissionFn func(ctx context.Context, submissionID int64) ([]model.ReviewRequest, error)
	adjudicateFn       func(ctx context.Context, id int64, status model.ReviewStatus, revisedPoints *int) (model.ReviewRequest, error)
}

func (m *mockReviewService) Request(ctx context.Context, submissionID int64, questionID, message string) (model.ReviewRequest, error) {
	if m.requestFn == nil {
		return model.ReviewRequest{}, errors.New("not implemented")
	}
	return m.requestFn(ctx, submissionID, questionID, message)
}

func (m *mockReviewService) ListBySubmission(ctx context.Context, submissionID int64) ([]model.ReviewRequest, error) {
	if m.listBySubmissionFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.listBySubmissionFn(ctx, submissionID)
}

func (m *mockReviewService) Adjudicate(ctx context.Context, id int64, status model.ReviewStatus, revisedPoints *int) (model.ReviewRequest, error) {
	if m.adjudicateFn == nil {
		return model.ReviewRequest{}, errors.New("not implemented")
	}
	return m.adjudicateFn(ctx, id, status, revisedPoints)
}

func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateReviewRequest(t *testing.T) {
	h := NewHandler(&mockReviewService{
		requestFn: func(ctx context.Context, submissionID int64, questionID, message string) (model.ReviewRequest, error) {
			if submissionID != 4 || questionID != "q2" || message != "please check" {
				t.Fatalf("unexpected args: %d %s %q", submissionID, questionID, message)
			}
			return model.ReviewRequest{ID: 1, SubmissionID: submissionID, QuestionID: questionID, Status: model.ReviewPending}, nil
		},
	})

	body := []byte(`{"submission_id":4,"question_id":"q2","request_message":"please check"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/review-requests", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateReviewRequestErrors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"missing submission", ErrSubmissionNotFound, http.StatusNotFound},
		{"not essay", ErrNotEssayQuestion, http.StatusBadRequest},
		{"not answered", ErrQuestionNotAnswered, http.StatusBadRequest},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"store failure", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(&mockReviewService{
				requestFn: func(ctx context.Context, submissionID int64, questionID, message string) (model.ReviewRequest, error) {
					return model.ReviewRequest{}, tc.err
				},
			})
			body := []byte(`{"submission_id":4,"question_id":"q2"}`)
			req := httptest.NewRequest(http.MethodPost, "/api/review-requests", bytes.NewReader(body))
			w := httptest.NewRecorder()
			h.Create(w, req)

			if w.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, w.Code)
			}
		})
	}
}

func TestListBySubmissionHandler(t *testing.T) {
	h := NewHandler(&mockReviewService{
		listBySubmissionFn: func(ctx context.Context, submissionID int64) ([]model.ReviewRequest, error) {
			return []model.ReviewRequest{{ID: 1, SubmissionID: submissionID}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/submissions/4/review-requests", nil)
	req = withChiParam(req, "id", "4")
	w := httptest.NewRecorder()
	h.ListBySubmission(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAdjudicateHandler(t *testing.T) {
	h := NewHandler(&mockReviewService{
		adjudicateFn: func(ctx context.Context, id int64, status model.ReviewStatus, revisedPoints *int) (model.ReviewRequest, error) {
			if id != 3 || status != model.ReviewApproved {
				t.Fatalf("unexpected args: %d %s", id, status)
			}
			if revisedPoints == nil || *revisedPoints != 8 {
				t.Fatalf("expected revised points 8, got %v", revisedPoints)
			}
			return model.ReviewRequest{ID: id, Status: status}, nil
		},
	})

	body := []byte(`{"status":"approved","revised_points":8}`)
	req := httptest.NewRequest(http.MethodPut, "/api/review-requests/3", bytes.NewReader(body))
	req = withChiParam(req, "id", "3")
	w := httptest.NewRecorder()
	h.Adjudicate(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdjudicateHandlerAlreadySettled(t *testing.T) {
	h := NewHandler(&mockReviewService{
		adjudicateFn: func(ctx context.Context, id int64, status model.ReviewStatus, revisedPoints *int) (model.ReviewRequest, error) {
			return model.ReviewRequest{}, ErrAlreadyAdjudicated
		},
	})

	body := []byte(`{"status":"rejected"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/review-requests/3", bytes.NewReader(body))
	req = withChiParam(req, "id", "3")
	w := httptest.NewRecorder()
	h.Adjudicate(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
