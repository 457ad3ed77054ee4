package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	server "github.com/charadev96/devground/internal/server/domain"
	"github.com/charadev96/devground/internal/server/service"
)

type AdminHandler struct {
	Users  *service.UserService
	Logger *zerolog.Logger
}

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`
}

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Enabled  bool      `json:"enabled"`
}

func toUserResponse(usr server.User) userResponse {
	return userResponse{
		ID:       usr.ID,
		Username: usr.Username,
		Email:    usr.Email,
		Role:     string(usr.Role),
		Enabled:  usr.Enabled,
	}
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		h.Logger.Error().Err(err).Msg("failed to list users")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]userResponse, len(users))
	for i, usr := range users {
		out[i] = toUserResponse(usr)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	var role server.Role
	switch strings.ToUpper(req.Role) {
	case string(server.RoleUser):
		role = server.RoleUser
	case string(server.RoleAdmin):
		role = server.RoleAdmin
	default:
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	usr, err := h.Users.CreateUser(r.Context(), req.Username, req.Email, req.Password, role)
	if err != nil {
		if errors.Is(err, server.ErrUserExists) {
			writeError(w, http.StatusConflict, "username already exists")
			return
		}
		h.Logger.Error().Err(err).Str("username", req.Username).Msg("failed to create user")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(usr))
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.Users.DeleteUser(r.Context(), id); err != nil {
		h.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to delete user")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusOK)
}
