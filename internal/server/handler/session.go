package handler

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	server "github.com/charadev96/devground/internal/server/domain"
	"github.com/charadev96/devground/internal/server/service"
)

const SessionCookie = "devground_session"

// SessionManager moves DB-backed sessions in and out of a signed
// cookie. The JWT carries only the session id and token; authority
// always comes from the session row, so revocation is immediate.
type SessionManager struct {
	Service *service.UserService
	Secret  []byte
	TTL     time.Duration
	Logger  *zerolog.Logger
}

type sessionClaims struct {
	Token string `json:"tok"`
	jwt.RegisteredClaims
}

func (m *SessionManager) ttl() time.Duration {
	if m.TTL > 0 {
		return m.TTL
	}
	return service.DefaultSessionTTL
}

func (m *SessionManager) Issue(w http.ResponseWriter, sess server.Session) error {
	claims := sessionClaims{
		Token: base64.RawURLEncoding.EncodeToString(sess.Token),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID.String(),
			Subject:   sess.Username,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.CreatedAt.Add(m.ttl())),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	if err != nil {
		return fmt.Errorf("failed to sign session cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.ttl().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest resolves the cookie to its user. Any failure collapses
// to ErrSessionInvalid; the cookie is client input.
func (m *SessionManager) FromRequest(r *http.Request) (server.User, uuid.UUID, error) {
	usr := server.User{}
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return usr, uuid.Nil, server.ErrSessionInvalid
	}

	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
		return m.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return usr, uuid.Nil, server.ErrSessionInvalid
	}

	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return usr, uuid.Nil, server.ErrSessionInvalid
	}
	token, err := base64.RawURLEncoding.DecodeString(claims.Token)
	if err != nil {
		return usr, uuid.Nil, server.ErrSessionInvalid
	}

	usr, err = m.Service.VerifySession(r.Context(), id, token)
	if err != nil {
		return server.User{}, uuid.Nil, err
	}
	return usr, id, nil
}

// RequireAdmin guards the user-directory surface.
func (m *SessionManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		usr, _, err := m.FromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if usr.Role != server.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
