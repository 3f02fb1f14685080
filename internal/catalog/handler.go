package catalog

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

type catalogService interface {
	CreateTest(ctx context.Context, in TestInput) (model.Test, error)
	GetTest(ctx context.Context, id int64) (model.Test, error)
	GetTestByShareCode(ctx context.Context, shareCode string) (model.Test, error)
	ListTestsByCreator(ctx context.Context, creatorID int64) ([]model.Test, error)
	UpdateTest(ctx context.Context, id int64, in TestInput) (model.Test, error)
	DeleteTest(ctx context.Context, id int64) error
}

type Handler struct {
	svc catalogService
}

func NewHandler(svc catalogService) *Handler {
	return &Handler{svc: svc}
}

type testRequest struct {
	CreatorID       int64            `json:"creator_id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	DurationMinutes int              `json:"duration_minutes"`
	Questions       []model.Question `json:"questions"`
}

func (req testRequest) input() TestInput {
	return TestInput{
		CreatorID:       req.CreatorID,
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		DurationMinutes: req.DurationMinutes,
		Questions:       req.Questions,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	test, err := h.svc.CreateTest(r.Context(), req.input())
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	apiresp.WriteOK(w, r, http.StatusCreated, test)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid test id")
		return
	}

	test, err := h.svc.GetTest(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTestNotFound) {
			apiresp.WriteError(w, r, http.StatusNotFound, "test not found")
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	apiresp.WriteOK(w, r, http.StatusOK, test)
}

func (h *Handler) GetByShareCode(w http.ResponseWriter, r *http.Request) {
	shareCode := strings.TrimSpace(chi.URLParam(r, "shareCode"))
	if shareCode == "" {
		apiresp.WriteError(w, r, http.StatusBadRequest, "share code is required")
		return
	}

	test, err := h.svc.GetTestByShareCode(r.Context(), shareCode)
	if err != nil {
		if errors.Is(err, ErrTestNotFound) {
			apiresp.WriteError(w, r, http.StatusNotFound, "test not found")
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	apiresp.WriteOK(w, r, http.StatusOK, test)
}

func (h *Handler) ListByCreator(w http.ResponseWriter, r *http.Request) {
	creatorID, err := strconv.ParseInt(chi.URLParam(r, "creator"), 10, 64)
	if err != nil || creatorID <= 0 {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid creator id")
		return
	}

	tests, err := h.svc.ListTestsByCreator(r.Context(), creatorID)
	if err != nil {
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	apiresp.WriteOK(w, r, http.StatusOK, tests)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid test id")
		return
	}

	var req testRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	test, err := h.svc.UpdateTest(r.Context(), id, req.input())
	if err != nil {
		switch {
		case errors.Is(err, ErrTestNotFound):
			apiresp.WriteError(w, r, http.StatusNotFound, "test not found")
		case errors.Is(err, ErrTestLocked):
			apiresp.WriteError(w, r, http.StatusConflict, err.Error())
		case errors.Is(err, ErrInvalidInput):
			apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
		default:
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	apiresp.WriteOK(w, r, http.StatusOK, test)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid test id")
		return
	}

	if err := h.svc.DeleteTest(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrTestNotFound):
			apiresp.WriteError(w, r, http.StatusNotFound, "test not found")
		case errors.Is(err, ErrTestLocked):
			apiresp.WriteError(w, r, http.StatusConflict, err.Error())
		default:
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
