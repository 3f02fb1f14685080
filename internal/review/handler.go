package review

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"testshare/internal/app/apiresp"
	"testshare/internal/model"

	"github.com/go-chi/chi/v5"
)

type reviewService interface {
	Request(ctx context.Context, submissionID int64, questionID, message string) (model.ReviewRequest, error)
	ListBySubmission(ctx context.Context, submissionID int64) ([]model.ReviewRequest, error)
	Adjudicate(ctx context.Context, id int64, status model.ReviewStatus, revisedPoints *int) (model.ReviewRequest, error)
}

type Handler struct {
	svc reviewService
}

func NewHandler(svc reviewService) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	SubmissionID   int64  `json:"submission_id"`
	QuestionID     string `json:"question_id"`
	RequestMessage string `json:"request_message"`
}

type adjudicateRequest struct {
	Status        string `json:"status"`
	RevisedPoints *int   `json:"revised_points"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.svc.Request(r.Context(), req.SubmissionID, req.QuestionID, req.RequestMessage)
	if err != nil {
		switch {
		case errors.Is(err, ErrSubmissionNotFound):
			apiresp.WriteError(w, r, http.StatusNotFound, "submission not found")
		case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNotEssayQuestion), errors.Is(err, ErrQuestionNotAnswered):
			apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
		default:
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	apiresp.WriteOK(w, r, http.StatusCreated, created)
}

func (h *Handler) ListBySubmission(w http.ResponseWriter, r *http.Request) {
	submissionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || submissionID <= 0 {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid submission id")
		return
	}

	reqs, err := h.svc.ListBySubmission(r.Context(), submissionID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSubmissionNotFound):
			apiresp.WriteError(w, r, http.StatusNotFound, "submission not found")
		default:
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	apiresp.WriteOK(w, r, http.StatusOK, reqs)
}

func (h *Handler) Adjudicate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid review request id")
		return
	}

	var req adjudicateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.svc.Adjudicate(r.Context(), id, model.ReviewStatus(strings.TrimSpace(req.Status)), req.RevisedPoints)
	if err != nil {
		switch {
		case errors.Is(err, ErrReviewNotFound):
			apiresp.WriteError(w, r, http.StatusNotFound, "review request not found")
		case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrAlreadyAdjudicated), errors.Is(err, ErrQuestionNotAnswered):
			apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
		default:
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	apiresp.WriteOK(w, r, http.StatusOK, updated)
}
