package middleware

import (
	"encoding/json"
	"net/http"

	"videovoyage/internal/model"
)

// writeJSONError emits the uniform error envelope used by middleware-level
// rejections.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{Success: false, Message: message})
}
