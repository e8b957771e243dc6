package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/crestline-labs/backoffice/internal/httputil"
	"github.com/crestline-labs/backoffice/internal/metrics"
	"github.com/crestline-labs/backoffice/internal/repository"
	"github.com/crestline-labs/backoffice/pkg/dynquery"
)

// AuditLogHandler serves the read-only audit trail. Entries are written by
// the audit logger; there is no mutation surface.
type AuditLogHandler struct {
	repo repository.Repository
}

func NewAuditLogHandler(repo repository.Repository) *AuditLogHandler {
	return &AuditLogHandler{repo: repo}
}

func (h *AuditLogHandler) List(w http.ResponseWriter, r *http.Request) {
	pageIndex, pageSize := httputil.ParsePagination(r, defaultPageSize)
	page, err := h.repo.ListAuditLogs(r.Context(), pageIndex, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *AuditLogHandler) ListDynamic(w http.ResponseWriter, r *http.Request) {
	var q dynquery.DynamicQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	metrics.DynamicQueriesTotal.WithLabelValues("auditlogs").Inc()
	page, err := h.repo.ListAuditLogsDynamic(r.Context(), q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}
