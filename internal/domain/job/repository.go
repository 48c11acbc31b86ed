package job

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"jobboard/internal/pkg/apifilter"
)

var (
	ErrNotFound       = errors.New("job not found")
	ErrAlreadyApplied = errors.New("already applied")
)

type Repository interface {
	Create(ctx context.Context, j Job) (Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (Job, error)
	Update(ctx context.Context, j Job) (Job, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Query is the base filter-builder query over jobs; Find executes a refined one.
	Query() apifilter.Query
	Find(ctx context.Context, q apifilter.Query) ([]json.RawMessage, error)

	InRadius(ctx context.Context, longitude, latitude, radius float64) ([]json.RawMessage, error)
	Stats(ctx context.Context, topic string) ([]Stat, error)
	PublishedBy(ctx context.Context, userID uuid.UUID) ([]json.RawMessage, error)
	AppliedBy(ctx context.Context, userID uuid.UUID) ([]json.RawMessage, error)

	// AddApplication inserts only if the applicant has no entry for the job yet and
	// returns ErrAlreadyApplied otherwise.
	AddApplication(ctx context.Context, a Application) error
	HasApplied(ctx context.Context, jobID, userID uuid.UUID) (bool, error)
	ResumesByJob(ctx context.Context, jobID uuid.UUID) ([]string, error)
	// RemoveApplicationsByUser deletes every application of the user and returns the resume names.
	RemoveApplicationsByUser(ctx context.Context, userID uuid.UUID) ([]string, error)
	// DeleteByOwner deletes the user's postings and returns the resume names of their applications.
	DeleteByOwner(ctx context.Context, userID uuid.UUID) ([]string, error)
}
