package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	server "github.com/charadev96/devground/internal/server/domain"
	shared "github.com/charadev96/devground/internal/shared/domain"
)

const DefaultSessionTTL = 12 * time.Hour

type UserService struct {
	Users      server.UserRepository
	Sessions   server.SessionRepository
	TXRunner   shared.TransactionRunner
	Rand       io.Reader
	SessionTTL time.Duration
}

type SeedUser struct {
	Username string
	Email    string
	Password string
	Role     server.Role
}

func (s *UserService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return DefaultSessionTTL
}

func (s *UserService) CreateUser(ctx context.Context, username, email, password string, role server.Role) (server.User, error) {
	usr := server.User{}
	exists, err := s.Users.ExistsByUsername(ctx, username)
	if err != nil {
		return usr, err
	}
	if exists {
		return usr, server.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return usr, fmt.Errorf("failed to hash password: %w", err)
	}

	usr = server.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Enabled:      true,
		CreatedAt:    time.Now(),
	}
	if err := s.Users.Save(ctx, usr); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return server.User{}, server.ErrUserExists
		}
		return server.User{}, err
	}
	return usr, nil
}

// Login checks the password and establishes a session. Lookup and
// compare failures collapse into one error shape so callers cannot
// probe for usernames.
func (s *UserService) Login(ctx context.Context, username, password string) (server.Session, error) {
	sess := server.Session{}
	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotExist) {
			return sess, server.ErrInvalidLogin
		}
		return sess, err
	}
	if !user.Enabled {
		return sess, server.ErrInvalidLogin
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return sess, server.ErrInvalidLogin
	}
	return s.EstablishSession(ctx, username)
}

// EstablishSession creates a fresh session for an already
// authenticated principal; the passkey login-finish path calls this
// after a successful protocol result.
func (s *UserService) EstablishSession(ctx context.Context, username string) (server.Session, error) {
	rnd := s.Rand
	if rnd == nil {
		rnd = rand.Reader
	}
	tok := make([]byte, 32)
	if _, err := io.ReadFull(rnd, tok); err != nil {
		return server.Session{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	sess := server.Session{
		ID:        uuid.New(),
		Username:  username,
		Token:     tok,
		CreatedAt: time.Now(),
	}
	if err := s.Sessions.Save(ctx, sess); err != nil {
		return server.Session{}, err
	}
	return sess, nil
}

func (s *UserService) VerifySession(ctx context.Context, id uuid.UUID, token []byte) (server.User, error) {
	usr := server.User{}
	sess, err := s.Sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotExist) {
			return usr, server.ErrSessionInvalid
		}
		return usr, err
	}
	if subtle.ConstantTimeCompare(sess.Token, token) == 0 {
		return usr, server.ErrSessionInvalid
	}
	if time.Now().After(sess.CreatedAt.Add(s.sessionTTL())) {
		return usr, server.ErrSessionInvalid
	}
	usr, err = s.Users.GetByUsername(ctx, sess.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotExist) {
			return server.User{}, server.ErrSessionInvalid
		}
		return server.User{}, err
	}
	return usr, nil
}

func (s *UserService) Logout(ctx context.Context, id uuid.UUID) error {
	return s.Sessions.Delete(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]server.User, error) {
	return s.Users.List(ctx)
}

func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.Users.Delete(ctx, id)
}

// Seed creates the configured bootstrap users once, on an empty table.
func (s *UserService) Seed(ctx context.Context, seeds []SeedUser) error {
	users, err := s.Users.List(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}
	for _, seed := range seeds {
		if _, err := s.CreateUser(ctx, seed.Username, seed.Email, seed.Password, seed.Role); err != nil {
			return fmt.Errorf("failed to seed user %q: %w", seed.Username, err)
		}
	}
	return nil
}

// CleanupExpiredSessions drops sessions older than the validity
// window; scheduled alongside the challenge sweep.
func (s *UserService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.Sessions.DeleteExpired(ctx, time.Now().Add(-s.sessionTTL()))
}
