package service

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	server "github.com/charadev96/devground/internal/server/domain"
)

func TestExtractClientChallenge(t *testing.T) {
	got, err := extractClientChallenge(clientDataFor("expected-value"))
	require.NoError(t, err)
	assert.Equal(t, "expected-value", got)
}

func TestExtractClientChallengeAcceptsPaddedBase64(t *testing.T) {
	raw, err := json.Marshal(clientData{Type: "webauthn.get", Challenge: "abc", Origin: "http://localhost"})
	require.NoError(t, err)

	got, err := extractClientChallenge(base64.URLEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestExtractClientChallengeErrors(t *testing.T) {
	cases := map[string]string{
		"not base64":        "%%%",
		"not json":          base64.RawURLEncoding.EncodeToString([]byte("hello")),
		"missing challenge": base64.RawURLEncoding.EncodeToString([]byte(`{"type":"webauthn.get","origin":"http://localhost"}`)),
	}
	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := extractClientChallenge(encoded)
			assert.ErrorIs(t, err, server.ErrProtocol)
		})
	}
}

func TestParseAttestationObject(t *testing.T) {
	att, err := parseAttestationObject(attestationObjectB64(t))
	require.NoError(t, err)
	assert.Equal(t, "none", att.Format)
	assert.Len(t, att.AuthData, authDataMinLen)
}

func TestParseAttestationObjectShortAuthData(t *testing.T) {
	raw, err := cbor.Marshal(map[string]any{
		"fmt":      "none",
		"attStmt":  map[string]any{},
		"authData": make([]byte, authDataMinLen-1),
	})
	require.NoError(t, err)

	_, err = parseAttestationObject(base64.RawURLEncoding.EncodeToString(raw))
	assert.ErrorIs(t, err, server.ErrProtocol)
}

func TestParseAttestationObjectNotCBOR(t *testing.T) {
	_, err := parseAttestationObject(base64.RawURLEncoding.EncodeToString([]byte("plain text")))
	assert.ErrorIs(t, err, server.ErrProtocol)
}

func TestAuthDataSignCount(t *testing.T) {
	assert.EqualValues(t, 0, authDataSignCount(""))
	assert.EqualValues(t, 0, authDataSignCount("%%%"))
	assert.EqualValues(t, 0, authDataSignCount(base64.RawURLEncoding.EncodeToString(make([]byte, 10))))
	assert.EqualValues(t, 1, authDataSignCount(authenticatorDataB64(1)))
	assert.EqualValues(t, 0x01020304, authDataSignCount(authenticatorDataB64(0x01020304)))
}
