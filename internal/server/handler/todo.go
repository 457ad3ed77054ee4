package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	server "github.com/charadev96/devground/internal/server/domain"
	"github.com/charadev96/devground/internal/server/service"
)

type TodoHandler struct {
	Service *service.TodoService
	Logger  *zerolog.Logger
}

type todoRequest struct {
	Username    string `json:"userName" validate:"required"`
	Title       string `json:"title" validate:"required,max=30"`
	Description string `json:"description" validate:"required"`
	Status      string `json:"status" validate:"required"`
	DueDate     string `json:"dueDate"`
}

type todoResponse struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"userName"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toTodoResponse(td server.Todo) todoResponse {
	return todoResponse{
		ID:          td.ID,
		Username:    td.Username,
		Title:       td.Title,
		Description: td.Description,
		Status:      td.Status,
		DueDate:     td.DueDate,
		CreatedAt:   td.CreatedAt,
		UpdatedAt:   td.UpdatedAt,
	}
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req todoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	todo, err := h.Service.CreateTodo(r.Context(), req.Username, req.Title, req.Description, req.Status, req.DueDate)
	if err != nil {
		h.Logger.Error().Err(err).Str("username", req.Username).Msg("failed to create todo")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toTodoResponse(todo))
}

func (h *TodoHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "userName")
	todos, err := h.Service.ListByUsername(r.Context(), username)
	if err != nil {
		h.Logger.Error().Err(err).Str("username", username).Msg("failed to list todos")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]todoResponse, len(todos))
	for i, td := range todos {
		out[i] = toTodoResponse(td)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "todoID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid todo id")
		return
	}
	if err := h.Service.DeleteTodo(r.Context(), id); err != nil {
		h.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to delete todo")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
