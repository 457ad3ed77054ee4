package service

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	server "github.com/charadev96/devground/internal/server/domain"
)

// authDataMinLen is rpIdHash(32) + flags(1) + signCount(4).
const authDataMinLen = 37

type clientData struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Origin    string `json:"origin"`
}

type attestationObject struct {
	AuthData []byte          `cbor:"authData"`
	Format   string          `cbor:"fmt"`
	AttStmt  cbor.RawMessage `cbor:"attStmt"`
}

// decodeSegment accepts URL-safe base64 with or without padding;
// authenticators are inconsistent about it.
func decodeSegment(s string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(s)
}

// extractClientChallenge decodes a base64url clientDataJSON blob and
// returns its challenge field. Every failure is a protocol error, not
// a crash: the payload is attacker-controlled.
func extractClientChallenge(encoded string) (string, error) {
	raw, err := decodeSegment(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: failed to decode client data: %w", server.ErrProtocol, err)
	}
	var data clientData
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("%w: failed to parse client data: %w", server.ErrProtocol, err)
	}
	if data.Challenge == "" {
		return "", fmt.Errorf("%w: client data has no challenge field", server.ErrProtocol)
	}
	return data.Challenge, nil
}

// parseAttestationObject checks that the attestation blob is
// structurally sound CBOR before it gets persisted. Signature
// verification over the attestation statement is deliberately not
// performed here; a verifier would consume the same parsed object.
func parseAttestationObject(encoded string) (attestationObject, error) {
	var att attestationObject
	raw, err := decodeSegment(encoded)
	if err != nil {
		return att, fmt.Errorf("%w: failed to decode attestation object: %w", server.ErrProtocol, err)
	}
	if err := cbor.Unmarshal(raw, &att); err != nil {
		return att, fmt.Errorf("%w: failed to parse attestation object: %w", server.ErrProtocol, err)
	}
	if len(att.AuthData) < authDataMinLen {
		return att, fmt.Errorf("%w: authenticator data too short", server.ErrProtocol)
	}
	return att, nil
}

// authDataSignCount reads the big-endian signature counter at offset
// 33 of the authenticator data. Returns 0 when the blob is absent or
// too short; the counter is a best-effort clone-detection hint, not a
// gate.
func authDataSignCount(encoded string) uint32 {
	raw, err := decodeSegment(encoded)
	if err != nil || len(raw) < authDataMinLen {
		return 0
	}
	return uint32(raw[33])<<24 | uint32(raw[34])<<16 | uint32(raw[35])<<8 | uint32(raw[36])
}
