package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/uptrace/bun"

	server "github.com/charadev96/devground/internal/server/domain"
	shared "github.com/charadev96/devground/internal/shared/domain"
	"github.com/charadev96/devground/internal/shared/infra"
)

type BunTodoRepository struct {
	db *bun.DB
}

func NewBunTodoRepository(ctx context.Context, db *bun.DB) (*BunTodoRepository, error) {
	r := &BunTodoRepository{
		db: db,
	}
	tx := infra.ExtractTx(ctx, r.db)
	_, err := tx.NewCreateTable().
		Model((*todo)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return r, fmt.Errorf("failed to create repository: %w", err)
	}
	return r, nil
}

func (r *BunTodoRepository) Save(ctx context.Context, td server.Todo) error {
	tx := infra.ExtractTx(ctx, r.db)
	t := new(todo)
	copier.Copy(t, &td)
	_, err := tx.NewInsert().
		Model(t).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save todo: %w", err)
	}
	return nil
}

func (r *BunTodoRepository) GetByID(ctx context.Context, id uuid.UUID) (server.Todo, error) {
	tx := infra.ExtractTx(ctx, r.db)
	t := new(todo)
	td := server.Todo{}
	err := tx.NewSelect().
		Model(t).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = shared.ErrNotExist
		}
		return td, fmt.Errorf("failed to get todo: %w", err)
	}
	copier.Copy(&td, t)
	return td, nil
}

func (r *BunTodoRepository) FindByUsername(ctx context.Context, username string) ([]server.Todo, error) {
	tx := infra.ExtractTx(ctx, r.db)
	var rows []todo
	err := tx.NewSelect().
		Model(&rows).
		Where("username = ?", username).
		Order("due_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	todos := make([]server.Todo, len(rows))
	for i := range rows {
		copier.Copy(&todos[i], &rows[i])
	}
	return todos, nil
}

func (r *BunTodoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := infra.ExtractTx(ctx, r.db)
	t := &todo{ID: id}
	_, err := tx.NewDelete().
		Model(t).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}

type todo struct {
	bun.BaseModel `bun:"table:todos"`

	ID          uuid.UUID `bun:",pk"`
	Username    string    `bun:",notnull"`
	Title       string    `bun:",notnull"`
	Description string    `bun:",notnull"`
	Status      string    `bun:",notnull"`
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
