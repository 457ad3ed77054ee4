package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	server "github.com/charadev96/devground/internal/server/domain"
	shared "github.com/charadev96/devground/internal/shared/domain"
)

const (
	DefaultChallengeTTL = 5 * time.Minute

	challengeSize  = 32
	credentialType = "public-key"
)

// COSE algorithm identifiers accepted at registration.
const (
	algES256 = -7
	algRS256 = -257
)

type PasskeyService struct {
	RelyingPartyID   string
	RelyingPartyName string
	ChallengeTTL     time.Duration

	Users       server.UserRepository
	Challenges  server.ChallengeRepository
	Credentials server.CredentialRepository
	TXRunner    shared.TransactionRunner
	Rand        io.Reader
}

type RelyingParty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserIdentity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

type CredentialParameters struct {
	Type string `json:"type"`
	Alg  int    `json:"alg"`
}

type RegistrationOptions struct {
	Challenge        string                 `json:"challenge"`
	RelyingParty     RelyingParty           `json:"rp"`
	User             UserIdentity           `json:"user"`
	PubKeyCredParams []CredentialParameters `json:"pubKeyCredParams"`
}

type AllowedCredential struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type LoginOptions struct {
	Challenge        string              `json:"challenge"`
	AllowCredentials []AllowedCredential `json:"allowCredentials"`
}

type RegistrationResponse struct {
	ID                string `json:"id"`
	RawID             string `json:"rawId"`
	Type              string `json:"type"`
	ClientDataJSON    string `json:"clientDataJSON"`
	AttestationObject string `json:"attestationObject"`
}

type AuthenticationResponse struct {
	ID                string `json:"id"`
	RawID             string `json:"rawId"`
	Type              string `json:"type"`
	ClientDataJSON    string `json:"clientDataJSON"`
	AuthenticatorData string `json:"authenticatorData"`
	Signature         string `json:"signature"`
}

type RegistrationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type LoginResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Username string `json:"username,omitempty"`
}

func (s *PasskeyService) ttl() time.Duration {
	if s.ChallengeTTL > 0 {
		return s.ChallengeTTL
	}
	return DefaultChallengeTTL
}

// IssueChallenge replaces any outstanding challenge for username with
// a fresh one. The delete-then-insert pair runs in one transaction so
// concurrent starts for the same user cannot leave two active rows.
func (s *PasskeyService) IssueChallenge(ctx context.Context, username string) (server.Challenge, error) {
	rnd := s.Rand
	if rnd == nil {
		rnd = rand.Reader
	}
	buf := make([]byte, challengeSize)
	if _, err := io.ReadFull(rnd, buf); err != nil {
		return server.Challenge{}, fmt.Errorf("failed to generate challenge: %w", err)
	}

	now := time.Now()
	chal := server.Challenge{
		ID:        uuid.New(),
		Username:  username,
		Value:     base64.RawURLEncoding.EncodeToString(buf),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl()),
	}

	err := s.TXRunner.Exec(ctx, func(ctx context.Context) error {
		if err := s.Challenges.DeleteByUsername(ctx, username); err != nil {
			return err
		}
		return s.Challenges.Save(ctx, chal)
	})
	if err != nil {
		return server.Challenge{}, err
	}

	return chal, nil
}

func (s *PasskeyService) StartRegistration(ctx context.Context, username string) (RegistrationOptions, error) {
	opts := RegistrationOptions{}
	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotExist) {
			return opts, server.ErrUserNotFound
		}
		return opts, err
	}

	chal, err := s.IssueChallenge(ctx, username)
	if err != nil {
		return opts, err
	}

	opts = RegistrationOptions{
		Challenge: chal.Value,
		RelyingParty: RelyingParty{
			ID:   s.RelyingPartyID,
			Name: s.RelyingPartyName,
		},
		User: UserIdentity{
			ID:          user.ID.String(),
			Name:        user.Username,
			DisplayName: user.Username,
		},
		PubKeyCredParams: []CredentialParameters{
			{Type: credentialType, Alg: algES256},
			{Type: credentialType, Alg: algRS256},
		},
	}
	return opts, nil
}

func (s *PasskeyService) FinishRegistration(ctx context.Context, username string, resp RegistrationResponse) (RegistrationResult, error) {
	value, err := extractClientChallenge(resp.ClientDataJSON)
	if err != nil {
		return RegistrationResult{Success: false, Message: "Invalid client data"}, nil
	}
	if _, err := parseAttestationObject(resp.AttestationObject); err != nil {
		return RegistrationResult{Success: false, Message: "Invalid attestation object"}, nil
	}

	var result RegistrationResult
	err = s.TXRunner.Exec(ctx, func(ctx context.Context) error {
		chal, err := s.Challenges.GetByUsernameAndValue(ctx, username, value)
		if err != nil {
			if errors.Is(err, shared.ErrNotExist) {
				result = RegistrationResult{Success: false, Message: "Invalid challenge"}
				return nil
			}
			return err
		}

		if chal.Expired(time.Now()) {
			if err := s.Challenges.Delete(ctx, chal.ID); err != nil {
				return err
			}
			result = RegistrationResult{Success: false, Message: "Challenge expired"}
			return nil
		}

		// The user existed at start; disappearing mid-flow is fatal,
		// not a soft rejection.
		if _, err := s.Users.GetByUsername(ctx, username); err != nil {
			if errors.Is(err, shared.ErrNotExist) {
				return server.ErrUserNotFound
			}
			return err
		}

		exists, err := s.Credentials.ExistsByCredentialID(ctx, resp.ID)
		if err != nil {
			return err
		}
		if exists {
			result = RegistrationResult{Success: false, Message: "Credential already registered"}
			return nil
		}

		now := time.Now()
		cred := server.Credential{
			ID:                uuid.New(),
			CredentialID:      resp.ID,
			Username:          username,
			PublicKey:         resp.AttestationObject,
			SignatureCount:    0,
			AttestationObject: resp.AttestationObject,
			ClientDataJSON:    resp.ClientDataJSON,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := s.Credentials.Save(ctx, cred); err != nil {
			return err
		}
		if err := s.Challenges.Delete(ctx, chal.ID); err != nil {
			return err
		}

		result = RegistrationResult{Success: true, Message: "Passkey registered successfully"}
		return nil
	})
	if err != nil {
		return RegistrationResult{}, err
	}
	return result, nil
}

func (s *PasskeyService) StartLogin(ctx context.Context, username string) (LoginOptions, error) {
	opts := LoginOptions{}
	if _, err := s.Users.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, shared.ErrNotExist) {
			return opts, server.ErrUserNotFound
		}
		return opts, err
	}

	creds, err := s.Credentials.FindByUsername(ctx, username)
	if err != nil {
		return opts, err
	}
	if len(creds) == 0 {
		return opts, server.ErrNoCredentials
	}

	chal, err := s.IssueChallenge(ctx, username)
	if err != nil {
		return opts, err
	}

	allowed := make([]AllowedCredential, len(creds))
	for i, cred := range creds {
		allowed[i] = AllowedCredential{Type: credentialType, ID: cred.CredentialID}
	}

	opts = LoginOptions{
		Challenge:        chal.Value,
		AllowCredentials: allowed,
	}
	return opts, nil
}

// FinishLogin verifies the presented challenge and credential
// ownership. Cryptographic assertion verification over
// authenticatorData||sha256(clientDataJSON) is the seam a production
// deployment must fill in here before trusting the result.
func (s *PasskeyService) FinishLogin(ctx context.Context, username string, resp AuthenticationResponse) (LoginResult, error) {
	value, err := extractClientChallenge(resp.ClientDataJSON)
	if err != nil {
		return LoginResult{Success: false, Message: "Invalid client data"}, nil
	}

	var result LoginResult
	err = s.TXRunner.Exec(ctx, func(ctx context.Context) error {
		chal, err := s.Challenges.GetByUsernameAndValue(ctx, username, value)
		if err != nil {
			if errors.Is(err, shared.ErrNotExist) {
				result = LoginResult{Success: false, Message: "Invalid challenge"}
				return nil
			}
			return err
		}

		if chal.Expired(time.Now()) {
			if err := s.Challenges.Delete(ctx, chal.ID); err != nil {
				return err
			}
			result = LoginResult{Success: false, Message: "Challenge expired"}
			return nil
		}

		cred, err := s.Credentials.GetByCredentialIDAndUsername(ctx, resp.ID, username)
		if err != nil {
			if errors.Is(err, shared.ErrNotExist) {
				result = LoginResult{Success: false, Message: "Invalid credential"}
				return nil
			}
			return err
		}

		if err := s.Challenges.Delete(ctx, chal.ID); err != nil {
			return err
		}

		// Best-effort counter advance; monotonicity is not enforced.
		if count := authDataSignCount(resp.AuthenticatorData); count > cred.SignatureCount {
			if err := s.Credentials.UpdateSignatureCount(ctx, cred.ID, count); err != nil {
				return err
			}
		}

		result = LoginResult{Success: true, Message: "Login successful", Username: username}
		return nil
	})
	if err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

// CleanupExpiredChallenges removes every challenge past its deadline.
// Safe to run on any schedule; finish calls also delete expired rows
// lazily as they meet them.
func (s *PasskeyService) CleanupExpiredChallenges(ctx context.Context) (int64, error) {
	return s.Challenges.DeleteExpired(ctx, time.Now())
}
