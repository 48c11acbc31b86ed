package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jobboard/internal/database"
	"jobboard/internal/domain/job"
	"jobboard/internal/pkg/apifilter"
)

const jobColumns = `id, title, slug, description, email, address,
	longitude, latitude, formatted_address, city, state, zipcode, country,
	company, industry, job_type, min_education, positions, experience, salary,
	posting_date, last_date, user_id`

// greatCircle is the angular distance (radians) between a job and the point ($lat, $lng).
const greatCircle = `jobs.latitude IS NOT NULL AND jobs.longitude IS NOT NULL AND acos(least(1.0, greatest(-1.0,
	sin(radians(?::float8)) * sin(radians(jobs.latitude)) +
	cos(radians(?::float8)) * cos(radians(jobs.latitude)) * cos(radians(jobs.longitude) - radians(?::float8))))) <= ?::float8`

type PostgresJobRepository struct {
	db database.Querier
}

func NewPostgresJobRepository(db database.Querier) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

var _ job.Repository = (*PostgresJobRepository)(nil)

func (r *PostgresJobRepository) Create(ctx context.Context, j job.Job) (job.Job, error) {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	lng, lat, loc := locationColumns(j.Location)

	row := r.db.QueryRow(ctx,
		`INSERT INTO jobs (id, title, slug, description, email, address,
			longitude, latitude, formatted_address, city, state, zipcode, country,
			company, industry, job_type, min_education, positions, experience, salary,
			posting_date, last_date, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		 RETURNING `+jobColumns,
		j.ID, j.Title, j.Slug, j.Description, j.Email, j.Address,
		lng, lat, loc.FormattedAddress, loc.City, loc.State, loc.Zipcode, loc.Country,
		j.Company, j.Industry, j.JobType, j.MinEducation, j.Positions, j.Experience, j.Salary,
		j.PostingDate, j.LastDate, j.UserID,
	)
	return scanJob(row)
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Job, error) {
	return scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
}

func (r *PostgresJobRepository) Update(ctx context.Context, j job.Job) (job.Job, error) {
	lng, lat, loc := locationColumns(j.Location)

	row := r.db.QueryRow(ctx,
		`UPDATE jobs SET
			title = $2, slug = $3, description = $4, email = $5, address = $6,
			longitude = $7, latitude = $8, formatted_address = $9, city = $10, state = $11, zipcode = $12, country = $13,
			company = $14, industry = $15, job_type = $16, min_education = $17, positions = $18, experience = $19, salary = $20,
			posting_date = $21, last_date = $22
		 WHERE id = $1
		 RETURNING `+jobColumns,
		j.ID, j.Title, j.Slug, j.Description, j.Email, j.Address,
		lng, lat, loc.FormattedAddress, loc.City, loc.State, loc.Zipcode, loc.Country,
		j.Company, j.Industry, j.JobType, j.MinEducation, j.Positions, j.Experience, j.Salary,
		j.PostingDate, j.LastDate,
	)
	return scanJob(row)
}

// Delete removes the job; its applications go with it through the foreign key.
func (r *PostgresJobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return job.ErrNotFound
	}
	return nil
}

func (r *PostgresJobRepository) Query() apifilter.Query {
	return apifilter.New(JobSchema)
}

func (r *PostgresJobRepository) Find(ctx context.Context, q apifilter.Query) ([]json.RawMessage, error) {
	return find(ctx, r.db, q)
}

func (r *PostgresJobRepository) InRadius(ctx context.Context, longitude, latitude, radius float64) ([]json.RawMessage, error) {
	q, err := apifilter.Sort(r.Query().Where(greatCircle, latitude, latitude, longitude, radius), nil)
	if err != nil {
		return nil, err
	}
	return r.Find(ctx, q)
}

func (r *PostgresJobRepository) Stats(ctx context.Context, topic string) ([]job.Stat, error) {
	rows, err := r.db.Query(ctx,
		`SELECT upper(experience), count(*), avg(positions)::float8, avg(salary)::float8, min(salary), max(salary)
		 FROM jobs
		 WHERE search @@ phraseto_tsquery('english', $1)
		 GROUP BY upper(experience)
		 ORDER BY upper(experience)`,
		topic,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Stat, 0)
	for rows.Next() {
		var s job.Stat
		if err := rows.Scan(&s.Experience, &s.TotalJobs, &s.AvgPosition, &s.AvgSalary, &s.MinSalary, &s.MaxSalary); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresJobRepository) PublishedBy(ctx context.Context, userID uuid.UUID) ([]json.RawMessage, error) {
	q, err := apifilter.Sort(r.Query().Where("jobs.user_id = ?", userID), nil)
	if err != nil {
		return nil, err
	}
	return r.Find(ctx, q)
}

func (r *PostgresJobRepository) AppliedBy(ctx context.Context, userID uuid.UUID) ([]json.RawMessage, error) {
	q := r.Query().
		Where("EXISTS (SELECT 1 FROM job_applications a WHERE a.job_id = jobs.id AND a.user_id = ?)", userID).
		Include("applicantsApplied")
	q, err := apifilter.Sort(q, nil)
	if err != nil {
		return nil, err
	}
	return r.Find(ctx, q)
}

func (r *PostgresJobRepository) AddApplication(ctx context.Context, a job.Application) error {
	if a.AppliedAt.IsZero() {
		a.AppliedAt = time.Now()
	}
	n, err := r.db.Exec(ctx,
		`INSERT INTO job_applications (job_id, user_id, resume, applied_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (job_id, user_id) DO NOTHING`,
		a.JobID, a.UserID, a.Resume, a.AppliedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return job.ErrNotFound
		}
		return err
	}
	if n == 0 {
		return job.ErrAlreadyApplied
	}
	return nil
}

func (r *PostgresJobRepository) HasApplied(ctx context.Context, jobID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM job_applications WHERE job_id = $1 AND user_id = $2)`,
		jobID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *PostgresJobRepository) ResumesByJob(ctx context.Context, jobID uuid.UUID) ([]string, error) {
	return r.strings(ctx, `SELECT resume FROM job_applications WHERE job_id = $1`, jobID)
}

func (r *PostgresJobRepository) RemoveApplicationsByUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return r.strings(ctx, `DELETE FROM job_applications WHERE user_id = $1 RETURNING resume`, userID)
}

// DeleteByOwner reads the resumes in the same statement that deletes the jobs, so the
// applications removed by the foreign-key cascade are still visible to the join.
func (r *PostgresJobRepository) DeleteByOwner(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return r.strings(ctx,
		`WITH gone AS (DELETE FROM jobs WHERE user_id = $1 RETURNING id)
		 SELECT a.resume FROM job_applications a JOIN gone ON gone.id = a.job_id`,
		userID,
	)
}

func (r *PostgresJobRepository) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func locationColumns(l *job.Location) (*float64, *float64, job.Location) {
	if l == nil {
		return nil, nil, job.Location{}
	}
	if len(l.Coordinates) < 2 {
		return nil, nil, *l
	}
	lng, lat := l.Longitude(), l.Latitude()
	return &lng, &lat, *l
}

func scanJob(row database.Row) (job.Job, error) {
	var (
		j        job.Job
		lng, lat *float64
		loc      job.Location
	)
	err := row.Scan(
		&j.ID, &j.Title, &j.Slug, &j.Description, &j.Email, &j.Address,
		&lng, &lat, &loc.FormattedAddress, &loc.City, &loc.State, &loc.Zipcode, &loc.Country,
		&j.Company, &j.Industry, &j.JobType, &j.MinEducation, &j.Positions, &j.Experience, &j.Salary,
		&j.PostingDate, &j.LastDate, &j.UserID,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return job.Job{}, job.ErrNotFound
		}
		return job.Job{}, fmt.Errorf("scan job: %w", err)
	}
	if lng != nil && lat != nil {
		loc.Type = "Point"
		loc.Coordinates = []float64{*lng, *lat}
		j.Location = &loc
	}
	return j, nil
}
