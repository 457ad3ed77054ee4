package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Challenge is a single outstanding proof-of-freshness token. At most
// one non-expired challenge exists per username; issuing a new one
// removes the old one first.
type Challenge struct {
	ID        uuid.UUID
	Username  string
	Value     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (c Challenge) Expired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}

type ChallengeRepository interface {
	Save(ctx context.Context, chal Challenge) error
	GetByUsernameAndValue(ctx context.Context, username, value string) (Challenge, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUsername(ctx context.Context, username string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
