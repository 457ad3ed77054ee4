package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	server "github.com/charadev96/devground/internal/server/domain"
	shared "github.com/charadev96/devground/internal/shared/domain"
)

func testCredential(username, credentialID string) server.Credential {
	now := time.Now()
	return server.Credential{
		ID:                uuid.New(),
		CredentialID:      credentialID,
		Username:          username,
		PublicKey:         "attestation-blob",
		AttestationObject: "attestation-blob",
		ClientDataJSON:    "client-data-blob",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestCredentialRepositoryUniqueCredentialID(t *testing.T) {
	ctx := testContext(t)
	repo, err := NewBunCredentialRepository(ctx, newTestDB(t))
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, testCredential("alice", "cred-1")))

	err = repo.Save(ctx, testCredential("bob", "cred-1"))
	assert.ErrorIs(t, err, shared.ErrConflict)

	// the original row is untouched
	got, err := repo.GetByCredentialIDAndUsername(ctx, "cred-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}

func TestCredentialRepositoryLookups(t *testing.T) {
	ctx := testContext(t)
	repo, err := NewBunCredentialRepository(ctx, newTestDB(t))
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, testCredential("alice", "cred-1")))
	require.NoError(t, repo.Save(ctx, testCredential("alice", "cred-2")))
	require.NoError(t, repo.Save(ctx, testCredential("bob", "cred-3")))

	creds, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, creds, 2)

	_, err = repo.GetByCredentialIDAndUsername(ctx, "cred-3", "alice")
	assert.ErrorIs(t, err, shared.ErrNotExist)

	exists, err := repo.ExistsByCredentialID(ctx, "cred-3")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByCredentialID(ctx, "cred-4")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCredentialRepositoryUpdateSignatureCount(t *testing.T) {
	ctx := testContext(t)
	repo, err := NewBunCredentialRepository(ctx, newTestDB(t))
	require.NoError(t, err)

	cred := testCredential("alice", "cred-1")
	require.NoError(t, repo.Save(ctx, cred))

	require.NoError(t, repo.UpdateSignatureCount(ctx, cred.ID, 42))

	got, err := repo.GetByCredentialIDAndUsername(ctx, "cred-1", "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 42, got.SignatureCount)
	assert.True(t, got.UpdatedAt.After(cred.UpdatedAt) || got.UpdatedAt.Equal(cred.UpdatedAt))
}
