package job

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobboard/internal/apperror"
	"jobboard/internal/domain/job"
	"jobboard/internal/infrastructure/geocoder"
	"jobboard/internal/infrastructure/storage"
	"jobboard/internal/logging"
	"jobboard/internal/pkg/apifilter"
	"jobboard/internal/pkg/slug"
)

// EarthRadiusMiles converts a distance in miles to radians on the sphere.
const EarthRadiusMiles = 3963.2

const statsKeyPrefix = "jobs:stats:"

var ErrGeocoderDisabled = errors.New("geocoder disabled")

type Geocoder interface {
	Geocode(ctx context.Context, address string) (job.Location, error)
}

type Publisher interface {
	JobPublished(id uuid.UUID, title, slug string)
}

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type Options struct {
	MaxResumeSize int64
	StatsTTL      time.Duration
}

type Service struct {
	jobs      job.Repository
	geocoder  Geocoder
	store     storage.Store
	cache     Cache
	publisher Publisher
	logger    logging.Logger

	maxResumeSize int64
	statsTTL      time.Duration
	now           func() time.Time
}

// NewService wires the job service. geo, cache and publisher may be nil.
func NewService(jobs job.Repository, geo Geocoder, store storage.Store, cache Cache, publisher Publisher, logger logging.Logger, opts Options) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	if opts.MaxResumeSize <= 0 {
		opts.MaxResumeSize = DefaultMaxResumeSize
	}
	if opts.StatsTTL <= 0 {
		opts.StatsTTL = 10 * time.Minute
	}
	return &Service{
		jobs:          jobs,
		geocoder:      geo,
		store:         store,
		cache:         cache,
		publisher:     publisher,
		logger:        logger.With("component", "jobs"),
		maxResumeSize: opts.MaxResumeSize,
		statsTTL:      opts.StatsTTL,
		now:           time.Now,
	}
}

func (s *Service) List(ctx context.Context, params url.Values) ([]json.RawMessage, error) {
	q, err := apifilter.Apply(s.jobs.Query(), params)
	if err != nil {
		return nil, err
	}
	return s.jobs.Find(ctx, q)
}

// Create publishes a posting for owner. Slug and location are derived here, never taken from input.
func (s *Service) Create(ctx context.Context, owner uuid.UUID, in job.Job) (job.Job, error) {
	in.ID = uuid.Nil
	in.UserID = owner
	in.ApplicantsApplied = nil
	in.ApplyDefaults(s.now())
	in.Slug = slug.Make(in.Title)

	if err := in.Validate(); err != nil {
		return job.Job{}, err
	}

	loc, err := s.locate(ctx, in.Address)
	if err != nil {
		return job.Job{}, err
	}
	in.Location = loc

	created, err := s.jobs.Create(ctx, in)
	if err != nil {
		return job.Job{}, err
	}

	s.invalidateStats(ctx)
	if s.publisher != nil {
		s.publisher.JobPublished(created.ID, created.Title, created.Slug)
	}
	return created, nil
}

// Get requires id and slug to name the same posting.
func (s *Service) Get(ctx context.Context, id uuid.UUID, jobSlug string) (job.Job, error) {
	j, err := s.find(ctx, id)
	if err != nil {
		return job.Job{}, err
	}
	if j.Slug != jobSlug {
		return job.Job{}, apperror.NotFound("Job not found")
	}
	return j, nil
}

type UpdateInput struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Email        *string    `json:"email"`
	Address      *string    `json:"address"`
	Company      *string    `json:"company"`
	Industry     []string   `json:"industry"`
	JobType      *string    `json:"jobType"`
	MinEducation *string    `json:"minEducation"`
	Positions    *int       `json:"positions"`
	Experience   *string    `json:"experience"`
	Salary       *int64     `json:"salary"`
	LastDate     *time.Time `json:"lastDate"`
}

func (in UpdateInput) apply(j *job.Job) (addressChanged bool) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&j.Title, in.Title)
	set(&j.Description, in.Description)
	set(&j.Email, in.Email)
	set(&j.Company, in.Company)
	set(&j.JobType, in.JobType)
	set(&j.MinEducation, in.MinEducation)
	set(&j.Experience, in.Experience)
	if in.Address != nil && strings.TrimSpace(*in.Address) != strings.TrimSpace(j.Address) {
		j.Address = *in.Address
		addressChanged = true
	}
	if in.Industry != nil {
		j.Industry = in.Industry
	}
	if in.Positions != nil {
		j.Positions = *in.Positions
	}
	if in.Salary != nil {
		j.Salary = *in.Salary
	}
	if in.LastDate != nil {
		j.LastDate = *in.LastDate
	}
	return addressChanged
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (job.Job, error) {
	j, err := s.find(ctx, id)
	if err != nil {
		return job.Job{}, err
	}

	addressChanged := in.apply(&j)
	j.Slug = slug.Make(j.Title)
	if err := j.Validate(); err != nil {
		return job.Job{}, err
	}
	if addressChanged {
		loc, err := s.locate(ctx, j.Address)
		if err != nil {
			return job.Job{}, err
		}
		j.Location = loc
	}

	updated, err := s.jobs.Update(ctx, j)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return job.Job{}, apperror.NotFound("Job not found")
		}
		return job.Job{}, err
	}
	s.invalidateStats(ctx)
	return updated, nil
}

// Delete removes the posting with its applications, then the applicants' resumes.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	resumes, err := s.jobs.ResumesByJob(ctx, id)
	if err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, id); err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return apperror.NotFound("Job not found")
		}
		return err
	}

	s.removeResumes(ctx, resumes)
	s.invalidateStats(ctx)
	return nil
}

func (s *Service) InRadius(ctx context.Context, zipcode string, miles float64) ([]json.RawMessage, error) {
	if s.geocoder == nil {
		return nil, apperror.Upstream("Geocoding is not available", ErrGeocoderDisabled)
	}
	loc, err := s.geocoder.Geocode(ctx, zipcode)
	if err != nil {
		return nil, geocodeError(err)
	}
	return s.jobs.InRadius(ctx, loc.Longitude(), loc.Latitude(), miles/EarthRadiusMiles)
}

// Stats groups postings matching topic by experience band. An empty result is not an error.
func (s *Service) Stats(ctx context.Context, topic string) ([]job.Stat, error) {
	topic = strings.TrimSpace(topic)
	key := statsKeyPrefix + strings.ToLower(topic)

	var cached []job.Stat
	if s.cache != nil {
		if found, err := s.cache.GetJSON(ctx, key, &cached); err == nil && found {
			return cached, nil
		}
	}

	stats, err := s.jobs.Stats(ctx, topic)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && len(stats) > 0 {
		if err := s.cache.SetJSON(ctx, key, stats, s.statsTTL); err != nil {
			s.logger.Warn(ctx, "stats cache write failed", "error", err)
		}
	}
	return stats, nil
}

func (s *Service) PublishedBy(ctx context.Context, userID uuid.UUID) ([]json.RawMessage, error) {
	return s.jobs.PublishedBy(ctx, userID)
}

func (s *Service) AppliedBy(ctx context.Context, userID uuid.UUID) ([]json.RawMessage, error) {
	return s.jobs.AppliedBy(ctx, userID)
}

func (s *Service) find(ctx context.Context, id uuid.UUID) (job.Job, error) {
	j, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return job.Job{}, apperror.NotFound("Job not found")
		}
		return job.Job{}, err
	}
	return j, nil
}

// locate geocodes address. Without a geocoder the posting is stored without coordinates.
func (s *Service) locate(ctx context.Context, address string) (*job.Location, error) {
	if s.geocoder == nil {
		s.logger.Warn(ctx, "geocoder disabled, storing job without location")
		return nil, nil
	}
	loc, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, geocodeError(err)
	}
	return &loc, nil
}

func geocodeError(err error) error {
	if errors.Is(err, geocoder.ErrNoResult) {
		return apperror.Validation("Please enter a valid address")
	}
	return apperror.Upstream("Geocoding failed", err)
}

func (s *Service) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, statsKeyPrefix+"*"); err != nil {
		s.logger.Warn(ctx, "stats cache invalidation failed", "error", err)
	}
}

func (s *Service) removeResumes(ctx context.Context, names []string) {
	if s.store == nil {
		return
	}
	for _, name := range names {
		if err := s.store.Delete(ctx, name); err != nil {
			s.logger.Warn(ctx, "resume delete failed", "resume", name, "error", err)
		}
	}
}
