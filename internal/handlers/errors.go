package handlers

import (
	"errors"
	"net/http"

	"github.com/crestline-labs/backoffice/internal/httputil"
	"github.com/crestline-labs/backoffice/internal/repository"
	"github.com/crestline-labs/backoffice/internal/service"
)

// writeServiceError maps service and repository errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		httputil.WriteFieldErrors(w, verr.Error(), verr.Fields)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		httputil.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrRoleNotFound),
		errors.Is(err, repository.ErrContentNotFound),
		errors.Is(err, repository.ErrMediaNotFound),
		errors.Is(err, repository.ErrSessionNotFound):
		httputil.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrUnknownField),
		errors.Is(err, repository.ErrUnsupportedOperator),
		errors.Is(err, repository.ErrInvalidSortDir):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
