package httputil

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
)

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteFieldErrors writes a validation error response carrying per-field
// messages alongside the top-level error.
func WriteFieldErrors(w http.ResponseWriter, message string, fields map[string][]string) {
	WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"error":  message,
		"fields": fields,
	})
}

// ParsePagination reads pageIndex/pageSize query parameters, applying the
// given defaults for missing or invalid values.
func ParsePagination(r *http.Request, defaultSize int) (pageIndex, pageSize int) {
	pageSize = defaultSize
	if raw := r.URL.Query().Get("pageIndex"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			pageIndex = v
		}
	}
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			pageSize = v
		}
	}
	return pageIndex, pageSize
}
