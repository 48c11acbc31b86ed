package job

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"jobboard/internal/domain/job"
	"jobboard/internal/pkg/apifilter"
	"jobboard/internal/repository"
)

type fakeJobs struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]job.Job
	apps map[[2]uuid.UUID]job.Application

	stats      []job.Stat
	statsCalls int
	radius     []float64
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: map[uuid.UUID]job.Job{}, apps: map[[2]uuid.UUID]job.Application{}}
}

func (f *fakeJobs) Create(_ context.Context, j job.Job) (job.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j.ID = uuid.New()
	f.jobs[j.ID] = j
	return j, nil
}

func (f *fakeJobs) GetByID(_ context.Context, id uuid.UUID) (job.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return job.Job{}, job.ErrNotFound
	}
	return j, nil
}

func (f *fakeJobs) Update(_ context.Context, j job.Job) (job.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[j.ID]; !ok {
		return job.Job{}, job.ErrNotFound
	}
	f.jobs[j.ID] = j
	return j, nil
}

func (f *fakeJobs) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[id]; !ok {
		return job.ErrNotFound
	}
	delete(f.jobs, id)
	for k := range f.apps {
		if k[0] == id {
			delete(f.apps, k)
		}
	}
	return nil
}

func (f *fakeJobs) Query() apifilter.Query { return apifilter.New(repository.JobSchema) }

func (f *fakeJobs) Find(context.Context, apifilter.Query) ([]json.RawMessage, error) {
	return []json.RawMessage{}, nil
}

func (f *fakeJobs) InRadius(_ context.Context, lng, lat, radius float64) ([]json.RawMessage, error) {
	f.radius = []float64{lng, lat, radius}
	return []json.RawMessage{}, nil
}

func (f *fakeJobs) Stats(context.Context, string) ([]job.Stat, error) {
	f.statsCalls++
	return f.stats, nil
}

func (f *fakeJobs) PublishedBy(context.Context, uuid.UUID) ([]json.RawMessage, error) { return nil, nil }
func (f *fakeJobs) AppliedBy(context.Context, uuid.UUID) ([]json.RawMessage, error)   { return nil, nil }

func (f *fakeJobs) AddApplication(_ context.Context, a job.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[a.JobID]; !ok {
		return job.ErrNotFound
	}
	k := [2]uuid.UUID{a.JobID, a.UserID}
	if _, ok := f.apps[k]; ok {
		return job.ErrAlreadyApplied
	}
	f.apps[k] = a
	return nil
}

func (f *fakeJobs) HasApplied(_ context.Context, jobID, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.apps[[2]uuid.UUID{jobID, userID}]
	return ok, nil
}

func (f *fakeJobs) ResumesByJob(_ context.Context, jobID uuid.UUID) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k, a := range f.apps {
		if k[0] == jobID {
			out = append(out, a.Resume)
		}
	}
	return out, nil
}

func (f *fakeJobs) RemoveApplicationsByUser(_ context.Context, userID uuid.UUID) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k, a := range f.apps {
		if k[1] == userID {
			out = append(out, a.Resume)
			delete(f.apps, k)
		}
	}
	return out, nil
}

func (f *fakeJobs) DeleteByOwner(_ context.Context, userID uuid.UUID) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for id, j := range f.jobs {
		if j.UserID != userID {
			continue
		}
		for k, a := range f.apps {
			if k[0] == id {
				out = append(out, a.Resume)
				delete(f.apps, k)
			}
		}
		delete(f.jobs, id)
	}
	return out, nil
}

type fakeGeocoder struct {
	calls int
	err   error
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) (job.Location, error) {
	g.calls++
	if g.err != nil {
		return job.Location{}, g.err
	}
	return job.Location{
		Type:             "Point",
		Coordinates:      []float64{-71.06, 42.36},
		FormattedAddress: address,
		City:             "Boston",
		Country:          "US",
	}, nil
}

type memStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error
}

func newMemStore() *memStore { return &memStore{files: map[string][]byte{}} }

func (m *memStore) Save(_ context.Context, name string, r io.Reader, _ int64) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = b
	return nil
}

func (m *memStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, name)
	return nil
}

type memCache struct {
	data    map[string][]byte
	deleted []string
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *memCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	c.data[key] = b
	return err
}

func (c *memCache) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	c.deleted = append(c.deleted, pattern)
	return nil
}

type recordingPublisher struct {
	slugs []string
}

func (p *recordingPublisher) JobPublished(_ uuid.UUID, _, slug string) {
	p.slugs = append(p.slugs, slug)
}

// fileHeader builds a real multipart file header the way an HTTP server would parse it.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}
