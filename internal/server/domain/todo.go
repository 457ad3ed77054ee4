package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Todo struct {
	ID          uuid.UUID
	Username    string
	Title       string
	Description string
	Status      string
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TodoRepository interface {
	Save(ctx context.Context, todo Todo) error
	GetByID(ctx context.Context, id uuid.UUID) (Todo, error)
	FindByUsername(ctx context.Context, username string) ([]Todo, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
