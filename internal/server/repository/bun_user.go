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

type BunUserRepository struct {
	db *bun.DB
}

func NewBunUserRepository(ctx context.Context, db *bun.DB) (*BunUserRepository, error) {
	r := &BunUserRepository{
		db: db,
	}
	tx := infra.ExtractTx(ctx, r.db)
	_, err := tx.NewCreateTable().
		Model((*user)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return r, fmt.Errorf("failed to create repository: %w", err)
	}
	return r, nil
}

func (r *BunUserRepository) Save(ctx context.Context, usr server.User) error {
	tx := infra.ExtractTx(ctx, r.db)
	u := new(user)
	copier.Copy(u, &usr)
	_, err := tx.NewInsert().
		Model(u).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			err = shared.ErrConflict
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *BunUserRepository) GetByID(ctx context.Context, id uuid.UUID) (server.User, error) {
	tx := infra.ExtractTx(ctx, r.db)
	u := new(user)
	usr := server.User{}
	err := tx.NewSelect().
		Model(u).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = shared.ErrNotExist
		}
		return usr, fmt.Errorf("failed to get user: %w", err)
	}
	copier.Copy(&usr, u)
	return usr, nil
}

func (r *BunUserRepository) GetByUsername(ctx context.Context, username string) (server.User, error) {
	tx := infra.ExtractTx(ctx, r.db)
	u := new(user)
	usr := server.User{}
	err := tx.NewSelect().
		Model(u).
		Where("username = ?", username).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = shared.ErrNotExist
		}
		return usr, fmt.Errorf("failed to get user: %w", err)
	}
	copier.Copy(&usr, u)
	return usr, nil
}

func (r *BunUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	tx := infra.ExtractTx(ctx, r.db)
	exists, err := tx.NewSelect().
		Model((*user)(nil)).
		Where("username = ?", username).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}

func (r *BunUserRepository) List(ctx context.Context) ([]server.User, error) {
	tx := infra.ExtractTx(ctx, r.db)
	var rows []user
	err := tx.NewSelect().
		Model(&rows).
		Order("username ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]server.User, len(rows))
	for i := range rows {
		copier.Copy(&users[i], &rows[i])
	}
	return users, nil
}

func (r *BunUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := infra.ExtractTx(ctx, r.db)
	u := &user{ID: id}
	_, err := tx.NewDelete().
		Model(u).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

type user struct {
	bun.BaseModel `bun:"table:users"`

	ID           uuid.UUID   `bun:",pk"`
	Username     string      `bun:",unique,notnull"`
	Email        string      `bun:",nullzero"`
	PasswordHash []byte      `bun:",notnull"`
	Role         server.Role `bun:",notnull"`
	Enabled      bool        `bun:",notnull"`
	CreatedAt    time.Time
}
