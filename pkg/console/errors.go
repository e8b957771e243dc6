package console

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrSessionExpired is returned when a 401 could not be recovered by a token
// refresh. The session has been cleared by the time callers see it; UI layers
// should redirect to an unauthenticated state rather than show it raw.
var ErrSessionExpired = errors.New("session expired")

// APIError is a non-2xx response from the backend. For validation failures
// (4xx with a field map) Fields carries backend-supplied per-field messages.
type APIError struct {
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// IsValidation reports whether err is a 4xx (non-auth) backend rejection that
// should be surfaced verbatim to the user.
func IsValidation(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status >= 400 && apiErr.Status < 500 && apiErr.Status != http.StatusUnauthorized
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var payload struct {
		Error  string              `json:"error"`
		Fields map[string][]string `json:"fields"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		apiErr.Message = payload.Error
		apiErr.Fields = payload.Fields
	} else {
		apiErr.Message = string(body)
	}
	return apiErr
}
