package recommend

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"
)

// ==========================
// Test Logger Implementation
// ==========================

// TestLogger implements the Logger interface for testing
type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{
		t:      t,
		fields: make(map[string]interface{}),
	}
}

func (l *TestLogger) Debug(msg string, fields map[string]interface{}) {
	l.t.Logf("DEBUG: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	return &TestLogger{t: l.t, fields: l.mergeFields(fields)}
}

func (l *TestLogger) mergeFields(fields map[string]interface{}) map[string]interface{} {
	allFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		allFields[k] = v
	}
	for k, v := range fields {
		allFields[k] = v
	}
	return allFields
}

// ==========================
// Fake catalog
// ==========================

const (
	genresBody = `{"genres":[{"id":28,"name":"Action"},{"id":12,"name":"Adventure"},{"id":99,"name":"Documentary"},{"id":878,"name":"Science Fiction"}]}`
	personBody = `{"page":1,"results":[{"adult":false,"gender":2,"id":500,"known_for_department":"Acting","name":"Tom Cruise","known_for":[{"id":954,"title":"Mission: Impossible"}]}]}`
	moviesBody = `{"page":1,"results":[{"id":82682,"original_title":"Jack Reacher","title":"Jack Reacher"}]}`
	emptyBody  = `{"page":1,"results":[],"total_pages":0,"total_results":0}`
)

type fakeCatalog struct {
	mu sync.Mutex

	genres func() (string, error)
	person func(name string) (string, error)
	movies func(filter string) (string, error)

	genreCalls  int
	personCalls int
	filters     []string
	sortKeys    []string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		genres: func() (string, error) { return genresBody, nil },
		person: func(string) (string, error) { return personBody, nil },
		movies: func(string) (string, error) { return moviesBody, nil },
	}
}

func (f *fakeCatalog) Genres(ctx context.Context) (string, error) {
	f.mu.Lock()
	f.genreCalls++
	f.mu.Unlock()
	return f.genres()
}

func (f *fakeCatalog) Person(ctx context.Context, name string) (string, error) {
	f.mu.Lock()
	f.personCalls++
	f.mu.Unlock()
	return f.person(name)
}

func (f *fakeCatalog) Movies(ctx context.Context, filter string) (string, error) {
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	f.mu.Unlock()
	return f.movies(filter)
}

func (f *fakeCatalog) SortedMovies(ctx context.Context, filter, sortBy string) (string, error) {
	f.mu.Lock()
	f.sortKeys = append(f.sortKeys, sortBy)
	f.mu.Unlock()
	return f.Movies(ctx, filter+"&sort_by="+sortBy)
}

// ==========================
// Recorder
// ==========================

type recordedRequest struct {
	duration time.Duration
	outcome  string
}

type fakeRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *fakeRecorder) RecordRequest(ctx context.Context, duration time.Duration, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, recordedRequest{duration: duration, outcome: outcome})
}

func (r *fakeRecorder) outcomes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.requests))
	for i, req := range r.requests {
		out[i] = req.outcome
	}
	return out
}

func seededRenderer() *Renderer {
	return NewRenderer(rand.New(rand.NewSource(1)))
}
