package domain

import "errors"

var (
	// ErrUserNotFound aborts a flow before any state is written.
	ErrUserNotFound = errors.New("user not found")

	// ErrNoCredentials is returned by login-start when the user has no
	// enrolled credential; distinct from ErrUserNotFound so callers can
	// suggest enrolling a passkey first.
	ErrNoCredentials = errors.New("user has no registered credentials")

	// ErrUserExists is returned when creating a user whose username is
	// already taken.
	ErrUserExists = errors.New("username already exists")

	// ErrProtocol marks a malformed client payload (un-decodable
	// base64, missing JSON field, bad CBOR).
	ErrProtocol = errors.New("malformed client payload")

	// ErrInvalidLogin deliberately does not say whether the username
	// or the password was wrong.
	ErrInvalidLogin = errors.New("invalid username or password")

	// ErrSessionInvalid covers unknown, mismatched and expired
	// sessions.
	ErrSessionInvalid = errors.New("invalid session")
)
