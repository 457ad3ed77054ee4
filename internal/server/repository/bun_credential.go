package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/uptrace/bun"

	server "github.com/charadev96/devground/internal/server/domain"
	shared "github.com/charadev96/devground/internal/shared/domain"
	"github.com/charadev96/devground/internal/shared/infra"
)

type BunCredentialRepository struct {
	db *bun.DB
}

func NewBunCredentialRepository(ctx context.Context, db *bun.DB) (*BunCredentialRepository, error) {
	r := &BunCredentialRepository{
		db: db,
	}
	tx := infra.ExtractTx(ctx, r.db)
	_, err := tx.NewCreateTable().
		Model((*passkeyCredential)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return r, fmt.Errorf("failed to create repository: %w", err)
	}
	return r, nil
}

func (r *BunCredentialRepository) Save(ctx context.Context, cred server.Credential) error {
	tx := infra.ExtractTx(ctx, r.db)
	c := new(passkeyCredential)
	copier.Copy(c, &cred)
	_, err := tx.NewInsert().
		Model(c).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			err = shared.ErrConflict
		}
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (r *BunCredentialRepository) GetByCredentialIDAndUsername(ctx context.Context, credentialID, username string) (server.Credential, error) {
	tx := infra.ExtractTx(ctx, r.db)
	c := new(passkeyCredential)
	cred := server.Credential{}
	err := tx.NewSelect().
		Model(c).
		Where("credential_id = ?", credentialID).
		Where("username = ?", username).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = shared.ErrNotExist
		}
		return cred, fmt.Errorf("failed to get credential: %w", err)
	}
	copier.Copy(&cred, c)
	return cred, nil
}

func (r *BunCredentialRepository) FindByUsername(ctx context.Context, username string) ([]server.Credential, error) {
	tx := infra.ExtractTx(ctx, r.db)
	var rows []passkeyCredential
	err := tx.NewSelect().
		Model(&rows).
		Where("username = ?", username).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	creds := make([]server.Credential, len(rows))
	for i := range rows {
		copier.Copy(&creds[i], &rows[i])
	}
	return creds, nil
}

func (r *BunCredentialRepository) ExistsByCredentialID(ctx context.Context, credentialID string) (bool, error) {
	tx := infra.ExtractTx(ctx, r.db)
	exists, err := tx.NewSelect().
		Model((*passkeyCredential)(nil)).
		Where("credential_id = ?", credentialID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check credential: %w", err)
	}
	return exists, nil
}

func (r *BunCredentialRepository) UpdateSignatureCount(ctx context.Context, id uuid.UUID, count uint32) error {
	tx := infra.ExtractTx(ctx, r.db)
	c := &passkeyCredential{ID: id, SignatureCount: count, UpdatedAt: time.Now()}
	_, err := tx.NewUpdate().
		Model(c).
		Column("signature_count", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update signature count: %w", err)
	}
	return nil
}

func (r *BunCredentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := infra.ExtractTx(ctx, r.db)
	c := &passkeyCredential{ID: id}
	_, err := tx.NewDelete().
		Model(c).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

// isUniqueViolation matches the sqlite unique-constraint error text;
// sqliteshim may back onto either mattn or modernc, both use it.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type passkeyCredential struct {
	bun.BaseModel `bun:"table:passkeys"`

	ID                uuid.UUID `bun:",pk"`
	CredentialID      string    `bun:",unique,notnull"`
	Username          string    `bun:",notnull"`
	PublicKey         string    `bun:",notnull"`
	SignatureCount    uint32    `bun:",notnull,default:0"`
	AttestationObject string    `bun:",notnull"`
	ClientDataJSON    string    `bun:",notnull"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
