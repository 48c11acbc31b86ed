package job

import (
	"context"
	"errors"
	"mime/multipart"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/apperror"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
	"jobboard/internal/infrastructure/geocoder"
	"jobboard/internal/infrastructure/storage"
)

var fixedNow = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type harness struct {
	svc   *Service
	jobs  *fakeJobs
	geo   *fakeGeocoder
	store *memStore
	cache *memCache
	pub   *recordingPublisher
}

func newHarness() *harness {
	h := &harness{
		jobs:  newFakeJobs(),
		geo:   &fakeGeocoder{},
		store: newMemStore(),
		cache: newMemCache(),
		pub:   &recordingPublisher{},
	}
	h.svc = NewService(h.jobs, h.geo, h.store, h.cache, h.pub, nil, Options{MaxResumeSize: 1024})
	h.svc.now = func() time.Time { return fixedNow }
	return h
}

func validJob() job.Job {
	return job.Job{
		Title:        "Backend Engineer",
		Description:  "Build APIs",
		Email:        "jobs@acme.io",
		Address:      "1 Main St, Boston MA",
		Company:      "Acme",
		Industry:     []string{job.IndustryInformationTech},
		JobType:      job.TypePermanent,
		MinEducation: job.EducationBachelors,
		Experience:   job.ExperienceTwoToFive,
		Salary:       90000,
	}
}

func TestCreate_DerivesSlugAndLocation(t *testing.T) {
	h := newHarness()
	owner := uuid.New()

	in := validJob()
	in.Slug = "ignored"
	created, err := h.svc.Create(context.Background(), owner, in)
	require.NoError(t, err)

	assert.Equal(t, "backend-engineer", created.Slug)
	require.NotNil(t, created.Location)
	assert.Equal(t, "US", created.Location.Country)
	assert.Equal(t, owner, created.UserID)
	assert.Equal(t, 1, created.Positions)
	assert.Equal(t, fixedNow, created.PostingDate)
	assert.Equal(t, fixedNow.Add(job.DefaultApplicationWindow), created.LastDate)
	assert.Equal(t, []string{"backend-engineer"}, h.pub.slugs)
	assert.Equal(t, []string{statsKeyPrefix + "*"}, h.cache.deleted)
}

func TestCreate_ValidationStopsBeforeGeocoding(t *testing.T) {
	h := newHarness()
	in := validJob()
	in.JobType = "Freelance"
	in.Industry = nil

	_, err := h.svc.Create(context.Background(), uuid.New(), in)
	var ve *apperror.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Messages, 2)
	assert.Equal(t, 0, h.geo.calls)
	assert.Empty(t, h.jobs.jobs)
}

func TestCreate_GeocodeFailures(t *testing.T) {
	h := newHarness()
	h.geo.err = geocoder.ErrNoResult
	_, err := h.svc.Create(context.Background(), uuid.New(), validJob())
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	h.geo.err = errors.New("timeout")
	_, err = h.svc.Create(context.Background(), uuid.New(), validJob())
	assert.True(t, apperror.Is(err, apperror.KindUpstream))
}

func TestGet_RequiresMatchingSlug(t *testing.T) {
	h := newHarness()
	created, err := h.svc.Create(context.Background(), uuid.New(), validJob())
	require.NoError(t, err)

	got, err := h.svc.Get(context.Background(), created.ID, "backend-engineer")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = h.svc.Get(context.Background(), created.ID, "frontend-engineer")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = h.svc.Get(context.Background(), uuid.New(), "backend-engineer")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestUpdate_RederivesSlugAndRevalidates(t *testing.T) {
	h := newHarness()
	created, err := h.svc.Create(context.Background(), uuid.New(), validJob())
	require.NoError(t, err)
	calls := h.geo.calls

	title := "Senior Go Developer"
	updated, err := h.svc.Update(context.Background(), created.ID, UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "senior-go-developer", updated.Slug)
	assert.Equal(t, calls, h.geo.calls)

	addr := "500 Elm St, Austin TX"
	_, err = h.svc.Update(context.Background(), created.ID, UpdateInput{Address: &addr})
	require.NoError(t, err)
	assert.Equal(t, calls+1, h.geo.calls)

	bad := "Gig"
	_, err = h.svc.Update(context.Background(), created.ID, UpdateInput{JobType: &bad})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = h.svc.Update(context.Background(), uuid.New(), UpdateInput{Title: &title})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestApply_TwiceIsConflict(t *testing.T) {
	h := newHarness()
	created, err := h.svc.Create(context.Background(), uuid.New(), validJob())
	require.NoError(t, err)

	seeker := user.User{ID: uuid.New(), Name: "Jane Doe", Role: user.RoleUser}
	name, err := h.svc.Apply(context.Background(), created.ID, seeker, fileHeader(t, "cv.PDF", []byte("%PDF")))
	require.NoError(t, err)
	assert.Equal(t, "Jane_Doe_"+created.ID.String()+".pdf", name)
	assert.Equal(t, []byte("%PDF"), h.store.files[name])

	_, err = h.svc.Apply(context.Background(), created.ID, seeker, fileHeader(t, "cv.pdf", []byte("%PDF")))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	var ae *apperror.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "You have already applied to this job", ae.Message)
}

func TestApply_NameWithPathSeparators(t *testing.T) {
	h := newHarness()
	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	h.svc.store = local
	created, err := h.svc.Create(context.Background(), uuid.New(), validJob())
	require.NoError(t, err)

	seeker := user.User{ID: uuid.New(), Name: `AC/DC Fan\Two`, Role: user.RoleUser}
	name, err := h.svc.Apply(context.Background(), created.ID, seeker, fileHeader(t, "cv.pdf", []byte("%PDF")))
	require.NoError(t, err)
	assert.Equal(t, "AC_DC_Fan_Two_"+created.ID.String()+".pdf", name)
	assert.FileExists(t, filepath.Join(local.Dir(), name))
}

func TestApply_ExpiredRegardlessOfHistory(t *testing.T) {
	h := newHarness()
	in := validJob()
	in.LastDate = fixedNow.Add(-time.Hour)
	created, err := h.svc.Create(context.Background(), uuid.New(), in)
	require.NoError(t, err)

	_, err = h.svc.Apply(context.Background(), created.ID, user.User{ID: uuid.New(), Name: "A"}, fileHeader(t, "a.pdf", []byte("x")))
	var ae *apperror.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "Job application date is expired", ae.Message)
	assert.Empty(t, h.store.files)
}

func TestApply_ResumeRules(t *testing.T) {
	h := newHarness()
	created, err := h.svc.Create(context.Background(), uuid.New(), validJob())
	require.NoError(t, err)
	seeker := user.User{ID: uuid.New(), Name: "Jo"}

	tests := []struct {
		name string
		file func() *multipart.FileHeader
		want string
	}{
		{"missing", func() *multipart.FileHeader { return nil }, "Please upload your resume"},
		{"wrong type", func() *multipart.FileHeader { return fileHeader(t, "cv.exe", []byte("MZ")) }, "Please upload a valid resume"},
		{"too large", func() *multipart.FileHeader { return fileHeader(t, "cv.docx", make([]byte, 2048)) }, "Please upload a resume less than 0.0009765625MB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Apply(context.Background(), created.ID, seeker, tt.file())
			var ae *apperror.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, 400, ae.StatusCode())
			assert.Equal(t, tt.want, ae.Message)
		})
	}
	assert.Empty(t, h.store.files)
}

func TestApply_StorageFailureLeavesJobUntouched(t *testing.T) {
	h := newHarness()
	created, err := h.svc.Create(context.Background(), uuid.New(), validJob())
	require.NoError(t, err)
	h.store.saveErr = errors.New("disk full")

	_, err = h.svc.Apply(context.Background(), created.ID, user.User{ID: uuid.New(), Name: "Jo"}, fileHeader(t, "a.pdf", []byte("x")))
	var ae *apperror.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 500, ae.StatusCode())
	assert.Equal(t, "Resume upload failed", ae.Message)
	assert.Empty(t, h.jobs.apps)
}

func TestDelete_RemovesApplicationsAndResumes(t *testing.T) {
	h := newHarness()
	created, err := h.svc.Create(context.Background(), uuid.New(), validJob())
	require.NoError(t, err)
	name, err := h.svc.Apply(context.Background(), created.ID, user.User{ID: uuid.New(), Name: "Jo"}, fileHeader(t, "a.pdf", []byte("x")))
	require.NoError(t, err)

	require.NoError(t, h.svc.Delete(context.Background(), created.ID))
	assert.Empty(t, h.jobs.jobs)
	assert.Empty(t, h.jobs.apps)
	assert.NotContains(t, h.store.files, name)

	err = h.svc.Delete(context.Background(), created.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestInRadius_ConvertsMilesToRadians(t *testing.T) {
	h := newHarness()
	_, err := h.svc.InRadius(context.Background(), "02108", EarthRadiusMiles)
	require.NoError(t, err)
	assert.Equal(t, []float64{-71.06, 42.36, 1}, h.jobs.radius)

	h.svc.geocoder = nil
	_, err = h.svc.InRadius(context.Background(), "02108", 10)
	assert.True(t, apperror.Is(err, apperror.KindUpstream))
}

func TestStats_CachedAndEmptyIsNotAnError(t *testing.T) {
	h := newHarness()

	stats, err := h.svc.Stats(context.Background(), "python")
	require.NoError(t, err)
	assert.Empty(t, stats)

	h.jobs.stats = []job.Stat{{Experience: "5 YEARS+", TotalJobs: 2, AvgSalary: 100}}
	for i := 0; i < 2; i++ {
		stats, err = h.svc.Stats(context.Background(), "Python")
		require.NoError(t, err)
		assert.Len(t, stats, 1)
	}
	assert.Equal(t, 2, h.jobs.statsCalls)
}

func TestList_RejectsUnknownFilter(t *testing.T) {
	h := newHarness()
	_, err := h.svc.List(context.Background(), url.Values{"nope": {"1"}})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = h.svc.List(context.Background(), url.Values{"salary": {"[gte]50000"}})
	assert.NoError(t, err)
}
