// internal/catalog/catalog_test.go
package catalog

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cinema-sage/internal/common/config"
	"cinema-sage/internal/common/database"
	"cinema-sage/internal/common/errors"
	"cinema-sage/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGateway_InjectsAPIKey(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL+"/3/", "secret", time.Second, logger.NewNoOpLogger())
	body, err := gw.Fetch(context.Background(), "/discover/movie?with_genres=28&with_people=&primary_release_year=2001")

	require.NoError(t, err)
	assert.Equal(t, `{"results":[]}`, body)
	assert.Equal(t, "/3/discover/movie", gotPath)
	assert.Equal(t, []string{"secret"}, gotQuery["api_key"])
	assert.Equal(t, []string{"28"}, gotQuery["with_genres"])
	assert.Equal(t, []string{""}, gotQuery["with_people"])
	assert.Equal(t, []string{"2001"}, gotQuery["primary_release_year"])
}

func TestHTTPGateway_PathWithoutQuery(t *testing.T) {
	var gotRawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRawQuery = r.URL.RawQuery
		w.Write([]byte(`{"genres":[]}`))
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "k", time.Second, logger.NewNoOpLogger())
	_, err := gw.Fetch(context.Background(), "/genre/movie/list")
	require.NoError(t, err)
	assert.Equal(t, "api_key=k", gotRawQuery)
}

func TestHTTPGateway_PreservesParameterOrder(t *testing.T) {
	tests := []struct {
		name   string
		fetch  func(*Repository) (string, error)
		apiKey string
		want   string
	}{
		{
			name: "sorted discover",
			fetch: func(r *Repository) (string, error) {
				return r.SortedMovies(context.Background(), "?with_genres=28&with_people=500&primary_release_year=2012", "popularity.desc")
			},
			apiKey: "k",
			want:   "with_genres=28&with_people=500&primary_release_year=2012&sort_by=popularity.desc&api_key=k",
		},
		{
			name: "empty identifiers",
			fetch: func(r *Repository) (string, error) {
				return r.Movies(context.Background(), "?with_genres=&with_people=&primary_release_year=")
			},
			apiKey: "k",
			want:   "with_genres=&with_people=&primary_release_year=&api_key=k",
		},
		{
			name: "person search with escaped key",
			fetch: func(r *Repository) (string, error) {
				return r.Person(context.Background(), "Tom Cruise")
			},
			apiKey: "a&b",
			want:   "query=Tom+Cruise&api_key=a%26b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRawQuery string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotRawQuery = r.URL.RawQuery
				w.Write([]byte(`{"results":[]}`))
			}))
			defer srv.Close()

			repo := NewRepository(NewHTTPGateway(srv.URL, tt.apiKey, time.Second, logger.NewNoOpLogger()))
			_, err := tt.fetch(repo)
			require.NoError(t, err)
			assert.Equal(t, tt.want, gotRawQuery)
		})
	}
}

func TestHTTPGateway_NonSuccessStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"unauthorized", http.StatusUnauthorized, false},
		{"not found", http.StatusNotFound, false},
		{"rate limited", http.StatusTooManyRequests, true},
		{"server error", http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"status_message":"nope"}`))
			}))
			defer srv.Close()

			gw := NewHTTPGateway(srv.URL, "k", time.Second, logger.NewNoOpLogger())
			body, err := gw.Fetch(context.Background(), "/genre/movie/list")

			require.Error(t, err)
			assert.Empty(t, body)
			assert.Equal(t, errors.ErrCodeCatalogStatus, errors.CodeOf(err))
			assert.Equal(t, tt.retryable, errors.IsRetryable(err))
		})
	}
}

func TestHTTPGateway_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "k", 20*time.Millisecond, logger.NewNoOpLogger())
	_, err := gw.Fetch(context.Background(), "/genre/movie/list")

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCatalogTimeout, errors.CodeOf(err))
}

func TestHTTPGateway_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	gw := NewHTTPGateway(url, "k", time.Second, logger.NewNoOpLogger())
	_, err := gw.Fetch(context.Background(), "/genre/movie/list")

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCatalogUnavailable, errors.CodeOf(err))
	assert.True(t, errors.IsRetryable(err))
}

func TestEndpointOf(t *testing.T) {
	assert.Equal(t, "/discover/movie", endpointOf("/discover/movie?with_genres=1"))
	assert.Equal(t, "/genre/movie/list", endpointOf("/genre/movie/list"))
	assert.Equal(t, "/", endpointOf(""))
}

func TestBreakerGateway_OpensAfterConsecutiveFailures(t *testing.T) {
	var calls int32
	failing := GatewayFunc(func(ctx context.Context, query string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", errors.NewCatalogUnavailableError(query, stderrors.New("refused"))
	})

	b := NewBreakerGateway(failing, BreakerSettings{
		Name:                "test-open",
		ConsecutiveFailures: 3,
		OpenTimeout:         time.Minute,
	}, logger.NewNoOpLogger())

	for i := 0; i < 3; i++ {
		_, err := b.Fetch(context.Background(), "/genre/movie/list")
		assert.Equal(t, errors.ErrCodeCatalogUnavailable, errors.CodeOf(err))
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Fetch(context.Background(), "/genre/movie/list")
	assert.Equal(t, errors.ErrCodeCatalogCircuitOpen, errors.CodeOf(err))
	assert.True(t, errors.IsRetryable(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestBreakerGateway_ClientErrorsDoNotTrip(t *testing.T) {
	rejected := GatewayFunc(func(ctx context.Context, query string) (string, error) {
		return "", errors.NewCatalogStatusError(query, http.StatusUnauthorized)
	})

	b := NewBreakerGateway(rejected, BreakerSettings{
		Name:                "test-4xx",
		ConsecutiveFailures: 2,
		OpenTimeout:         time.Minute,
	}, logger.NewNoOpLogger())

	for i := 0; i < 5; i++ {
		_, err := b.Fetch(context.Background(), "/genre/movie/list")
		assert.Equal(t, errors.ErrCodeCatalogStatus, errors.CodeOf(err))
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerGateway_HalfOpenRecovers(t *testing.T) {
	var healthy atomic.Bool
	gw := GatewayFunc(func(ctx context.Context, query string) (string, error) {
		if healthy.Load() {
			return "ok", nil
		}
		return "", errors.NewCatalogTimeoutError(query)
	})

	b := NewBreakerGateway(gw, BreakerSettings{
		Name:                "test-recover",
		ConsecutiveFailures: 1,
		OpenTimeout:         20 * time.Millisecond,
	}, logger.NewNoOpLogger())

	_, err := b.Fetch(context.Background(), "/x")
	require.Error(t, err)
	assert.Equal(t, gobreaker.StateOpen, b.State())

	healthy.Store(true)
	time.Sleep(40 * time.Millisecond)

	body, err := b.Fetch(context.Background(), "/x")
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func newTestStore(t *testing.T) (*miniredis.Miniredis, *database.RedisClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCachingGateway_HitAvoidsUpstream(t *testing.T) {
	mr, store := newTestStore(t)
	var calls int32
	upstream := GatewayFunc(func(ctx context.Context, query string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return `{"genres":[{"id":28,"name":"Action"}]}`, nil
	})

	c := NewCachingGateway(upstream, store, time.Hour, logger.NewNoOpLogger())

	first, err := c.Fetch(context.Background(), "/genre/movie/list")
	require.NoError(t, err)
	second, err := c.Fetch(context.Background(), "/genre/movie/list")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, mr.Exists("catalog:/genre/movie/list"))
	assert.Equal(t, time.Hour, mr.TTL("catalog:/genre/movie/list"))
}

func TestCachingGateway_FailuresAreNotCached(t *testing.T) {
	mr, store := newTestStore(t)
	var calls int32
	upstream := GatewayFunc(func(ctx context.Context, query string) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return "", errors.NewCatalogTimeoutError(query)
		}
		return `{"results":[]}`, nil
	})

	c := NewCachingGateway(upstream, store, time.Hour, logger.NewNoOpLogger())

	_, err := c.Fetch(context.Background(), "/discover/movie?with_genres=1")
	require.Error(t, err)
	assert.False(t, mr.Exists("catalog:/discover/movie?with_genres=1"))

	body, err := c.Fetch(context.Background(), "/discover/movie?with_genres=1")
	require.NoError(t, err)
	assert.Equal(t, `{"results":[]}`, body)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCachingGateway_StoreOutageBypasses(t *testing.T) {
	mr, store := newTestStore(t)
	mr.SetError("simulated outage")

	upstream := GatewayFunc(func(ctx context.Context, query string) (string, error) {
		return "fresh", nil
	})

	c := NewCachingGateway(upstream, store, time.Hour, logger.NewNoOpLogger())
	body, err := c.Fetch(context.Background(), "/genre/movie/list")

	require.NoError(t, err)
	assert.Equal(t, "fresh", body)
}

func TestRepository_Paths(t *testing.T) {
	var queries []string
	gw := GatewayFunc(func(ctx context.Context, query string) (string, error) {
		queries = append(queries, query)
		return "", nil
	})
	repo := NewRepository(gw)
	ctx := context.Background()

	_, _ = repo.Genres(ctx)
	_, _ = repo.Person(ctx, "Tom Cruise")
	_, _ = repo.Movies(ctx, "?with_genres=28&with_people=500&primary_release_year=")
	_, _ = repo.SortedMovies(ctx, "?with_genres=&with_people=&primary_release_year=2001", "vote_average.desc")

	assert.Equal(t, []string{
		"/genre/movie/list",
		"/search/person?query=Tom+Cruise",
		"/discover/movie?with_genres=28&with_people=500&primary_release_year=",
		"/discover/movie?with_genres=&with_people=&primary_release_year=2001&sort_by=vote_average.desc",
	}, queries)
}
