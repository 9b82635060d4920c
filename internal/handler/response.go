package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"videovoyage/internal/model"
	"videovoyage/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps every handler-level error to the uniform
// {"success":false,"message":...} envelope. Unclassified errors become a
// generic 500 with full detail logged server-side only.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Server Error"

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		message = apiErr.Message
	case errors.Is(err, model.ErrVideoNotFound):
		status = http.StatusNotFound
		message = "Video not found"
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found"
	case errors.Is(err, model.ErrNoVideoFile):
		status = http.StatusBadRequest
		message = "No video file uploaded"
	case errors.Is(err, model.ErrUserAlreadyExists):
		status = http.StatusBadRequest
		message = "User with that email or username already exists"
	case errors.Is(err, model.ErrAdminExists):
		status = http.StatusBadRequest
		message = "Admin user already exists"
	case errors.Is(err, model.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = "Invalid email or password"
	case errors.Is(err, model.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "Not authorized to access this route"
	case errors.Is(err, model.ErrForbidden):
		status = http.StatusForbidden
		message = "Not authorized to access this video"
	case errors.Is(err, os.ErrNotExist):
		// A read racing a delete can observe a missing binary; the record
		// said the file exists, so this is a storage fault, not a 404.
		slog.Error("stored binary missing", "error", err.Error())
	default:
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	writeJSON(w, status, model.ErrorResponse{Success: false, Message: message})
}
