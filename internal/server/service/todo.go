package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	server "github.com/charadev96/devground/internal/server/domain"
)

const dueDateLayout = "2006-01-02T15:04"

type TodoService struct {
	Todos server.TodoRepository
}

func (s *TodoService) CreateTodo(ctx context.Context, username, title, description, status, dueDate string) (server.Todo, error) {
	now := time.Now()
	todo := server.Todo{
		ID:          uuid.New(),
		Username:    username,
		Title:       title,
		Description: description,
		Status:      status,
		DueDate:     parseDueDate(dueDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Todos.Save(ctx, todo); err != nil {
		return server.Todo{}, err
	}
	return todo, nil
}

func (s *TodoService) ListByUsername(ctx context.Context, username string) ([]server.Todo, error) {
	return s.Todos.FindByUsername(ctx, username)
}

func (s *TodoService) DeleteTodo(ctx context.Context, id uuid.UUID) error {
	return s.Todos.Delete(ctx, id)
}

// parseDueDate accepts the datetime-local format the UI sends, falls
// back to RFC3339, and treats anything else as no due date.
func parseDueDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(dueDateLayout, s); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	return nil
}
