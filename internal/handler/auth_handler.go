package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"videovoyage/internal/middleware"
	"videovoyage/internal/model"
	"videovoyage/pkg/apierror"
)

type authService interface {
	Register(ctx context.Context, username string, email string, password string) (model.User, string, error)
	Login(ctx context.Context, email string, password string) (model.User, string, error)
	Profile(ctx context.Context, userID string) (model.User, error)
	CreateAdmin(ctx context.Context, username string, email string, password string, adminKey string) (model.User, string, error)
}

type AuthHandler struct {
	service authService
}

func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", http.StatusBadRequest))
		return
	}

	user, token, err := h.service.Register(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.AuthResponse{Success: true, User: user, Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", http.StatusBadRequest))
		return
	}

	user, token, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AuthResponse{Success: true, User: user, Token: token})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	user, err := h.service.Profile(r.Context(), identity.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ProfileResponse{Success: true, User: user})
}

func (h *AuthHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.CreateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", http.StatusBadRequest))
		return
	}

	user, token, err := h.service.CreateAdmin(r.Context(), payload.Username, payload.Email, payload.Password, payload.AdminKey)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.AuthResponse{Success: true, User: user, Token: token})
}
