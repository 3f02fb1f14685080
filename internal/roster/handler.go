package roster

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

type rosterService interface {
	CreateCreator(ctx context.Context, name, username string) (model.Creator, error)
	GetCreatorByUsername(ctx context.Context, username string) (model.Creator, error)
	CreateTaker(ctx context.Context, name string) (model.Taker, error)
	GetTaker(ctx context.Context, id int64) (model.Taker, error)
}

type Handler struct {
	svc rosterService
}

func NewHandler(svc rosterService) *Handler {
	return &Handler{svc: svc}
}

type createCreatorRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

type createTakerRequest struct {
	Name string `json:"name"`
}

func (h *Handler) CreateCreator(w http.ResponseWriter, r *http.Request) {
	var req createCreatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	creator, err := h.svc.CreateCreator(r.Context(), req.Name, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUsernameTaken):
			apiresp.WriteError(w, r, http.StatusConflict, "username already taken")
		default:
			apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	apiresp.WriteOK(w, r, http.StatusCreated, creator)
}

func (h *Handler) GetCreatorByUsername(w http.ResponseWriter, r *http.Request) {
	// The route shares the {creator} segment with the tests listing,
	// so the param name is neutral. Here it carries a username.
	username := strings.TrimSpace(chi.URLParam(r, "creator"))
	if username == "" {
		apiresp.WriteError(w, r, http.StatusBadRequest, "username is required")
		return
	}

	creator, err := h.svc.GetCreatorByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, ErrCreatorNotFound) {
			apiresp.WriteError(w, r, http.StatusNotFound, "creator not found")
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	apiresp.WriteOK(w, r, http.StatusOK, creator)
}

func (h *Handler) CreateTaker(w http.ResponseWriter, r *http.Request) {
	var req createTakerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	taker, err := h.svc.CreateTaker(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			apiresp.WriteError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	apiresp.WriteOK(w, r, http.StatusCreated, taker)
}

func (h *Handler) GetTaker(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		apiresp.WriteError(w, r, http.StatusBadRequest, "invalid taker id")
		return
	}

	taker, err := h.svc.GetTaker(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTakerNotFound) {
			apiresp.WriteError(w, r, http.StatusNotFound, "taker not found")
			return
		}
		apiresp.WriteError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	apiresp.WriteOK(w, r, http.StatusOK, taker)
}
