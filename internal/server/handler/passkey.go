package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	server "github.com/charadev96/devground/internal/server/domain"
	"github.com/charadev96/devground/internal/server/service"
)

type PasskeyHandler struct {
	Service  *service.PasskeyService
	Sessions *SessionManager
	Logger   *zerolog.Logger
}

type registrationFinishRequest struct {
	Username             string                       `json:"username" validate:"required"`
	RegistrationResponse service.RegistrationResponse `json:"registrationResponse" validate:"required"`
}

type authenticationFinishRequest struct {
	Username               string                         `json:"username" validate:"required"`
	AuthenticationResponse service.AuthenticationResponse `json:"authenticationResponse" validate:"required"`
}

func (h *PasskeyHandler) RegisterStart(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	opts, err := h.Service.StartRegistration(r.Context(), username)
	if err != nil {
		if errors.Is(err, server.ErrUserNotFound) {
			writeError(w, http.StatusBadRequest, "unknown user")
			return
		}
		h.Logger.Error().Err(err).Str("username", username).Msg("failed to start registration")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (h *PasskeyHandler) RegisterFinish(w http.ResponseWriter, r *http.Request) {
	var req registrationFinishRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	result, err := h.Service.FinishRegistration(r.Context(), req.Username, req.RegistrationResponse)
	if err != nil {
		h.Logger.Error().Err(err).Str("username", req.Username).Msg("failed to finish registration")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *PasskeyHandler) LoginStart(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	opts, err := h.Service.StartLogin(r.Context(), username)
	if err != nil {
		switch {
		case errors.Is(err, server.ErrUserNotFound):
			writeError(w, http.StatusBadRequest, "unknown user")
		case errors.Is(err, server.ErrNoCredentials):
			writeError(w, http.StatusBadRequest, "no passkeys registered for user")
		default:
			h.Logger.Error().Err(err).Str("username", username).Msg("failed to start login")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (h *PasskeyHandler) LoginFinish(w http.ResponseWriter, r *http.Request) {
	var req authenticationFinishRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	result, err := h.Service.FinishLogin(r.Context(), req.Username, req.AuthenticationResponse)
	if err != nil {
		h.Logger.Error().Err(err).Str("username", req.Username).Msg("failed to finish login")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// A successful protocol result becomes a session here; the
	// protocol layer itself never issues one.
	if result.Success {
		sess, err := h.Sessions.Service.EstablishSession(r.Context(), result.Username)
		if err != nil {
			h.Logger.Error().Err(err).Str("username", result.Username).Msg("failed to establish session")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := h.Sessions.Issue(w, sess); err != nil {
			h.Logger.Error().Err(err).Msg("failed to issue session cookie")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}
	writeJSON(w, http.StatusOK, result)
}
