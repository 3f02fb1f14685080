package submission

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"testshare/internal/app/apiresp"
	"testshare/internal/model"

	"github.com/go-chi/chi/v5"
)

type submissionService interface {
	Record(ctx context.Context, in RecordInput) (model.Submission, error)
	Get(ctx context.Context, id int64) (model.Submission, error)
	ListByTest(ctx context.Context, testID int64) ([]model.Submission, error)
}

type Handler struct {
	svc submissionService
}

func NewHandler(svc submissionService) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	TestID      int64          `json:"test_id"`
	TakerID     int64          `json:"taker_id"`
	Answers     []model.Answer `json:"answers"`
	Score       int            `json:"score"`
	TotalPoints int            `json:"total_points"`
	StartTime   string         `json:"start_time"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TestID <= 0 {
		apiresp.WriteError(w, r, http.StatusBadRequest, "test_id is required")
		return
	}

	startTime, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartTime))
	if err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "start_time must be RFC3339")
		return
	}

	sub, err := h.svc.Record(r.Context(), RecordInput{
		TestID:      req.TestID,
		TakerID:     req.TakerID,
		Answers:     req.Answers,
		Score:       req.Score,
		TotalPoints: req.TotalPoints,
		StartTime:   startTime,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrTestNotFound):
			apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
		default:
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	apiresp.WriteOK(w, r, http.StatusCreated, sub)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid submission id")
		return
	}

	sub, err := h.svc.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrSubmissionNotFound):
			apiresp.WriteError(w, r, http.StatusNotFound, "submission not found")
		default:
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	apiresp.WriteOK(w, r, http.StatusOK, sub)
}

func (h *Handler) ListByTest(w http.ResponseWriter, r *http.Request) {
	testID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || testID <= 0 {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid test id")
		return
	}

	subs, err := h.svc.ListByTest(r.Context(), testID)
	if err != nil {
		switch {
		case errors.Is(err, ErrTestNotFound):
			apiresp.WriteError(w, r, http.StatusNotFound, "test not found")
		default:
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	apiresp.WriteOK(w, r, http.StatusOK, subs)
}
