package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Credential is a registered public-key credential bound to a user. A
// user may own several; CredentialID is the client-supplied external
// reference and is unique across the whole store.
type Credential struct {
	ID                uuid.UUID
	CredentialID      string
	Username          string
	PublicKey         string
	SignatureCount    uint32
	AttestationObject string
	ClientDataJSON    string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type CredentialRepository interface {
	Save(ctx context.Context, cred Credential) error
	GetByCredentialIDAndUsername(ctx context.Context, credentialID, username string) (Credential, error)
	FindByUsername(ctx context.Context, username string) ([]Credential, error)
	ExistsByCredentialID(ctx context.Context, credentialID string) (bool, error)
	UpdateSignatureCount(ctx context.Context, id uuid.UUID, count uint32) error
	Delete(ctx context.Context, id uuid.UUID) error
}
