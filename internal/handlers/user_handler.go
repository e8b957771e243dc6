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

const defaultPageSize = 20

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	pageIndex, pageSize := httputil.ParsePagination(r, defaultPageSize)
	page, err := h.service.List(r.Context(), pageIndex, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

// ListDynamic serves the query-builder endpoint: a POST body carrying sort
// descriptors, a filter tree and pagination.
func (h *UserHandler) ListDynamic(w http.ResponseWriter, r *http.Request) {
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

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.Create(r.Context(), &req, middleware.UserEmail(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.Update(r.Context(), r.PathValue("id"), &req, middleware.UserEmail(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id"), middleware.UserEmail(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) PatchRoles(w http.ResponseWriter, r *http.Request) {
	var req models.PatchUserRolesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.PatchRoles(r.Context(), r.PathValue("id"), &req, middleware.UserEmail(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Roles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.Roles(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, roles)
}

func (h *UserHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.Permissions(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, perms)
}
