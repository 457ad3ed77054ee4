package service

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	server "github.com/charadev96/devground/internal/server/domain"
	"github.com/charadev96/devground/internal/server/repository"
	"github.com/charadev96/devground/internal/shared/infra"
)

// seqReader yields a deterministic byte sequence so issued challenges
// and tokens are reproducible in tests.
type seqReader struct {
	next byte
}

func (r *seqReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.next
		r.next++
	}
	return len(p), nil
}

type fixture struct {
	db          *bun.DB
	users       *repository.BunUserRepository
	challenges  *repository.BunChallengeRepository
	credentials *repository.BunCredentialRepository
	sessions    *repository.BunSessionRepository
	todos       *repository.BunTodoRepository

	passkeys *PasskeyService
	accounts *UserService
}

func newFixture(t *testing.T) (context.Context, *fixture) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	f := &fixture{db: db}
	f.users, err = repository.NewBunUserRepository(ctx, db)
	require.NoError(t, err)
	f.challenges, err = repository.NewBunChallengeRepository(ctx, db)
	require.NoError(t, err)
	f.credentials, err = repository.NewBunCredentialRepository(ctx, db)
	require.NoError(t, err)
	f.sessions, err = repository.NewBunSessionRepository(ctx, db)
	require.NoError(t, err)
	f.todos, err = repository.NewBunTodoRepository(ctx, db)
	require.NoError(t, err)

	runner := infra.NewBunTransactionRunner(db)
	f.passkeys = &PasskeyService{
		RelyingPartyID:   "localhost",
		RelyingPartyName: "DevGround",
		Users:            f.users,
		Challenges:       f.challenges,
		Credentials:      f.credentials,
		TXRunner:         runner,
		Rand:             &seqReader{},
	}
	f.accounts = &UserService{
		Users:    f.users,
		Sessions: f.sessions,
		TXRunner: runner,
		Rand:     &seqReader{next: 128},
	}
	return ctx, f
}

func (f *fixture) createUser(t *testing.T, ctx context.Context, username string, role server.Role) server.User {
	t.Helper()
	usr, err := f.accounts.CreateUser(ctx, username, username+"@example.com", "password123", role)
	require.NoError(t, err)
	return usr
}

func (f *fixture) countChallenges(t *testing.T, ctx context.Context, username string) int {
	t.Helper()
	n, err := f.db.NewSelect().
		Table("passkey_challenges").
		Where("username = ?", username).
		Count(ctx)
	require.NoError(t, err)
	return n
}

func clientDataFor(challenge string) string {
	raw, _ := json.Marshal(map[string]string{
		"type":      "webauthn.create",
		"challenge": challenge,
		"origin":    "http://localhost",
	})
	return base64.RawURLEncoding.EncodeToString(raw)
}

func attestationObjectB64(t *testing.T) string {
	t.Helper()
	raw, err := cbor.Marshal(map[string]any{
		"fmt":      "none",
		"attStmt":  map[string]any{},
		"authData": make([]byte, authDataMinLen),
	})
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func authenticatorDataB64(count uint32) string {
	raw := make([]byte, authDataMinLen)
	raw[33] = byte(count >> 24)
	raw[34] = byte(count >> 16)
	raw[35] = byte(count >> 8)
	raw[36] = byte(count)
	return base64.RawURLEncoding.EncodeToString(raw)
}
