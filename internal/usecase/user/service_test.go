package user

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"maps"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/apperror"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
	"jobboard/internal/pkg/apifilter"
	"jobboard/internal/pkg/credential"
	"jobboard/internal/repository"
)

type fakeUsers struct {
	user.Repository
	byID      map[uuid.UUID]user.User
	published []user.PublishedJob
	deleted   []uuid.UUID
	hashes    map[uuid.UUID]string
	deleteErr error
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id uuid.UUID, name, email string) (user.User, error) {
	u := f.byID[id]
	u.Name, u.Email = name, email
	f.byID[id] = u
	return u, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.hashes[id] = hash
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return user.ErrNotFound
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeUsers) JobsPublished(context.Context, uuid.UUID) ([]user.PublishedJob, error) {
	return f.published, nil
}

func (f *fakeUsers) Query() apifilter.Query { return apifilter.New(repository.UserSchema) }

func (f *fakeUsers) Find(context.Context, apifilter.Query) ([]json.RawMessage, error) {
	return []json.RawMessage{json.RawMessage(`{"id":"x"}`)}, nil
}

type fakeJobs struct {
	job.Repository
	ownerDeletes []uuid.UUID
	resumes      map[uuid.UUID][]string
}

func (f *fakeJobs) DeleteByOwner(_ context.Context, id uuid.UUID) ([]string, error) {
	f.ownerDeletes = append(f.ownerDeletes, id)
	out := f.resumes[id]
	delete(f.resumes, id)
	return out, nil
}

func (f *fakeJobs) RemoveApplicationsByUser(_ context.Context, id uuid.UUID) ([]string, error) {
	out := f.resumes[id]
	delete(f.resumes, id)
	return out, nil
}

// fakeTx keeps a copy of the job fake and restores it when fn fails.
type fakeTx struct {
	users   *fakeUsers
	jobs    *fakeJobs
	commits int
}

func (f *fakeTx) InTx(_ context.Context, fn func(user.Repository, job.Repository) error) error {
	saved := maps.Clone(f.jobs.resumes)
	if err := fn(f.users, f.jobs); err != nil {
		f.jobs.resumes = saved
		return err
	}
	f.commits++
	return nil
}

type flakyStore struct {
	deleted []string
}

func (s *flakyStore) Save(context.Context, string, io.Reader, int64) error { return nil }

func (s *flakyStore) Delete(_ context.Context, name string) error {
	s.deleted = append(s.deleted, name)
	if name == "broken.pdf" {
		return errors.New("permission denied")
	}
	return nil
}

func seed(roles ...string) (*fakeUsers, []uuid.UUID) {
	f := &fakeUsers{byID: map[uuid.UUID]user.User{}, hashes: map[uuid.UUID]string{}}
	hash, _ := credential.HashPassword("password1")
	ids := make([]uuid.UUID, 0, len(roles))
	for _, r := range roles {
		id := uuid.New()
		f.byID[id] = user.User{ID: id, Name: "N " + r, Email: r + "@x.io", Role: r, PasswordHash: hash, CreatedAt: time.Now()}
		ids = append(ids, id)
	}
	return f, ids
}

func newService(users *fakeUsers, jobs *fakeJobs, store *flakyStore) (*Service, *fakeTx) {
	tx := &fakeTx{users: users, jobs: jobs}
	if store == nil {
		return NewService(users, tx, nil, nil), tx
	}
	return NewService(users, tx, store, nil), tx
}

func TestDelete_EmployerCascadesJobsAndResumes(t *testing.T) {
	users, ids := seed(user.RoleEmployer)
	jobs := &fakeJobs{resumes: map[uuid.UUID][]string{ids[0]: {"Jane_Doe_1.pdf", "Joe_Roe_1.pdf"}}}
	store := &flakyStore{}
	s, tx := newService(users, jobs, store)

	require.NoError(t, s.Delete(context.Background(), ids[0]))
	assert.Equal(t, ids, jobs.ownerDeletes)
	assert.Equal(t, ids, users.deleted)
	assert.Equal(t, []string{"Jane_Doe_1.pdf", "Joe_Roe_1.pdf"}, store.deleted)
	assert.Equal(t, 1, tx.commits)
}

func TestDelete_SeekerRemovesApplicationsAndFiles(t *testing.T) {
	users, ids := seed(user.RoleUser)
	jobs := &fakeJobs{resumes: map[uuid.UUID][]string{ids[0]: {"broken.pdf", "ok.pdf"}}}
	store := &flakyStore{}
	s, _ := newService(users, jobs, store)

	require.NoError(t, s.Delete(context.Background(), ids[0]))
	assert.Equal(t, []string{"broken.pdf", "ok.pdf"}, store.deleted)
	assert.Empty(t, jobs.resumes)
	assert.Empty(t, jobs.ownerDeletes)
	assert.Equal(t, ids, users.deleted)
}

func TestDelete_FailureKeepsApplicationsAndFiles(t *testing.T) {
	users, ids := seed(user.RoleUser)
	users.deleteErr = errors.New("connection reset")
	jobs := &fakeJobs{resumes: map[uuid.UUID][]string{ids[0]: {"cv.pdf"}}}
	store := &flakyStore{}
	s, tx := newService(users, jobs, store)

	err := s.Delete(context.Background(), ids[0])
	require.ErrorIs(t, err, users.deleteErr)
	assert.Equal(t, []string{"cv.pdf"}, jobs.resumes[ids[0]])
	assert.Empty(t, store.deleted)
	assert.Zero(t, tx.commits)
}

func TestDelete_UnknownUser(t *testing.T) {
	users, _ := seed()
	s, _ := newService(users, &fakeJobs{}, nil)

	err := s.Delete(context.Background(), uuid.New())
	var ae *apperror.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 404, ae.StatusCode())
	assert.Equal(t, "User not found.", ae.Message)
}

func TestUpdatePassword(t *testing.T) {
	users, ids := seed(user.RoleUser)
	s, _ := newService(users, &fakeJobs{}, nil)

	_, err := s.UpdatePassword(context.Background(), ids[0], "nope", "password2")
	var ae *apperror.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 401, ae.StatusCode())
	assert.Equal(t, "Old password is incorrect.", ae.Message)

	_, err = s.UpdatePassword(context.Background(), ids[0], "password1", "short")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = s.UpdatePassword(context.Background(), ids[0], "password1", strings.Repeat("x", 80))
	var ve *apperror.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"Your password cannot exceed 72 characters"}, ve.Messages)
	assert.Empty(t, users.hashes)

	u, err := s.UpdatePassword(context.Background(), ids[0], "password1", "password2")
	require.NoError(t, err)
	assert.Empty(t, u.PasswordHash)
	assert.True(t, credential.VerifyPassword("password2", users.hashes[ids[0]]))
}

func TestUpdateProfile_Validates(t *testing.T) {
	users, ids := seed(user.RoleEmployer)
	s, _ := newService(users, &fakeJobs{}, nil)

	_, err := s.UpdateProfile(context.Background(), ids[0], "", "not-an-email")
	var ve *apperror.ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Messages, 2)

	u, err := s.UpdateProfile(context.Background(), ids[0], "Acme HR", "HR@Acme.io")
	require.NoError(t, err)
	assert.Equal(t, "hr@acme.io", u.Email)
}

func TestProfile_IncludesPublishedJobs(t *testing.T) {
	users, ids := seed(user.RoleEmployer)
	users.published = []user.PublishedJob{{ID: uuid.New(), Title: "Ops"}}
	s, _ := newService(users, &fakeJobs{}, nil)

	p, err := s.Profile(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Len(t, p.JobsPublished, 1)
	assert.Empty(t, p.PasswordHash)
}

func TestList_UsesFilterPipeline(t *testing.T) {
	users, _ := seed()
	s, _ := newService(users, &fakeJobs{}, nil)

	_, err := s.List(context.Background(), map[string][]string{"password": {"x"}})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	out, err := s.List(context.Background(), map[string][]string{"role": {"employer"}, "sort": {"name"}})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
