package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"school-portal/internal/model"
)

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// writeFailure answers JSON API calls with the error envelope and page
// requests with plain text.
func writeFailure(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	if !isAPIRequest(r) {
		http.Error(w, message, status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
