package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/crestline-labs/backoffice/internal/httputil"
	"github.com/crestline-labs/backoffice/internal/middleware"
	"github.com/crestline-labs/backoffice/internal/models"
	"github.com/crestline-labs/backoffice/internal/service"
	"github.com/crestline-labs/backoffice/pkg/dynquery"
)

type MediaHandler struct {
	service *service.MediaService
}

func NewMediaHandler(service *service.MediaService) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	pageIndex, pageSize := httputil.ParsePagination(r, defaultPageSize)
	page, err := h.service.List(r.Context(), pageIndex, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *MediaHandler) ListDynamic(w http.ResponseWriter, r *http.Request) {
	var q dynquery.DynamicQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	page, err := h.service.ListDynamic(r.Context(), q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	asset, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, asset)
}

func (h *MediaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	asset, err := h.service.Create(ctx, &req, middleware.UserID(ctx), middleware.UserEmail(ctx))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, asset)
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id"), middleware.UserEmail(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
