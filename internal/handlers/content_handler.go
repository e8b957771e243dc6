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

type ContentHandler struct {
	service *service.ContentService
}

func NewContentHandler(service *service.ContentService) *ContentHandler {
	return &ContentHandler{service: service}
}

func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	pageIndex, pageSize := httputil.ParsePagination(r, defaultPageSize)
	page, err := h.service.List(r.Context(), pageIndex, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *ContentHandler) ListDynamic(w http.ResponseWriter, r *http.Request) {
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

func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, content)
}

func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	content, err := h.service.Create(ctx, &req, middleware.UserID(ctx), middleware.UserEmail(ctx))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, content)
}

func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	content, err := h.service.Update(r.Context(), r.PathValue("id"), &req, middleware.UserEmail(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, content)
}

func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id"), middleware.UserEmail(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContentHandler) Publish(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.Publish(r.Context(), r.PathValue("id"), middleware.UserEmail(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, content)
}
