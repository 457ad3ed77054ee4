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

type BunChallengeRepository struct {
	db *bun.DB
}

func NewBunChallengeRepository(ctx context.Context, db *bun.DB) (*BunChallengeRepository, error) {
	r := &BunChallengeRepository{
		db: db,
	}
	tx := infra.ExtractTx(ctx, r.db)
	_, err := tx.NewCreateTable().
		Model((*passkeyChallenge)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return r, fmt.Errorf("failed to create repository: %w", err)
	}
	return r, nil
}

func (r *BunChallengeRepository) Save(ctx context.Context, chal server.Challenge) error {
	tx := infra.ExtractTx(ctx, r.db)
	c := new(passkeyChallenge)
	copier.Copy(c, &chal)
	_, err := tx.NewInsert().
		Model(c).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save challenge: %w", err)
	}
	return nil
}

func (r *BunChallengeRepository) GetByUsernameAndValue(ctx context.Context, username, value string) (server.Challenge, error) {
	tx := infra.ExtractTx(ctx, r.db)
	c := new(passkeyChallenge)
	chal := server.Challenge{}
	err := tx.NewSelect().
		Model(c).
		Where("username = ?", username).
		Where("value = ?", value).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = shared.ErrNotExist
		}
		return chal, fmt.Errorf("failed to get challenge: %w", err)
	}
	copier.Copy(&chal, c)
	return chal, nil
}

func (r *BunChallengeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := infra.ExtractTx(ctx, r.db)
	c := &passkeyChallenge{ID: id}
	_, err := tx.NewDelete().
		Model(c).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}
	return nil
}

func (r *BunChallengeRepository) DeleteByUsername(ctx context.Context, username string) error {
	tx := infra.ExtractTx(ctx, r.db)
	_, err := tx.NewDelete().
		Model((*passkeyChallenge)(nil)).
		Where("username = ?", username).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete challenges: %w", err)
	}
	return nil
}

func (r *BunChallengeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := infra.ExtractTx(ctx, r.db)
	res, err := tx.NewDelete().
		Model((*passkeyChallenge)(nil)).
		Where("expires_at < ?", now).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired challenges: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted challenges: %w", err)
	}
	return n, nil
}

type passkeyChallenge struct {
	bun.BaseModel `bun:"table:passkey_challenges"`

	ID        uuid.UUID `bun:",pk"`
	Username  string    `bun:",notnull"`
	Value     string    `bun:",notnull"`
	CreatedAt time.Time
	ExpiresAt time.Time
}
