package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	server "github.com/charadev96/devground/internal/server/domain"
	"github.com/charadev96/devground/internal/server/service"
)

type AuthHandler struct {
	Users    *service.UserService
	Sessions *SessionManager
	Logger   *zerolog.Logger
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username,omitempty"`
}

type currentUserResponse struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	sess, err := h.Users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, server.ErrInvalidLogin) {
			writeJSON(w, http.StatusUnauthorized, loginResponse{Success: false})
			return
		}
		h.Logger.Error().Err(err).Str("username", req.Username).Msg("failed to log in")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.Sessions.Issue(w, sess); err != nil {
		h.Logger.Error().Err(err).Msg("failed to issue session cookie")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Username: sess.Username})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, id, err := h.Sessions.FromRequest(r); err == nil {
		if err := h.Users.Logout(r.Context(), id); err != nil {
			h.Logger.Error().Err(err).Msg("failed to delete session")
		}
	}
	h.Sessions.Clear(w)
	w.WriteHeader(http.StatusOK)
}

func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	usr, _, err := h.Sessions.FromRequest(r)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, currentUserResponse{
		Username: usr.Username,
		Roles:    []string{string(usr.Role)},
	})
}
