package user

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"jobboard/internal/pkg/apifilter"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	// GetByEmail includes the password hash.
	GetByEmail(ctx context.Context, email string) (User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) (User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	Delete(ctx context.Context, id uuid.UUID) error

	SetResetToken(ctx context.Context, id uuid.UUID, hash string, expires time.Time) error
	ClearResetToken(ctx context.Context, id uuid.UUID) error
	// GetByResetToken only matches tokens that expire after now.
	GetByResetToken(ctx context.Context, hash string, now time.Time) (User, error)
	// ConsumeResetToken sets the password and clears the token in one statement. It returns
	// ErrNotFound when no unexpired token matches.
	ConsumeResetToken(ctx context.Context, hash string, now time.Time, passwordHash string) (User, error)
	SweepExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)

	JobsPublished(ctx context.Context, id uuid.UUID) ([]PublishedJob, error)

	Query() apifilter.Query
	Find(ctx context.Context, q apifilter.Query) ([]json.RawMessage, error)
}
