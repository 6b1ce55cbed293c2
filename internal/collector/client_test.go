package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/qepting91/feedcards/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const testFeed = `<rss version="2.0"><channel><item><title>t</title></item></channel></rss>`

func feedServer(delay time.Duration, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(delay):
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}))
}

func statusServer(status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
}

func hangingServer() *httptest.Server {
	return feedServer(5*time.Second, testFeed)
}

func newTestRaceClient(timeout time.Duration) *RaceClient {
	return NewRaceClient(NewEndpointClient("feedcards-test"), timeout, nil, nil)
}

func source(urls ...string) domain.FeedSource {
	src := domain.FeedSource{FeedURL: "https://example.com/feed"}
	for i, u := range urls {
		src.Endpoints = append(src.Endpoints, domain.Endpoint{Name: fmt.Sprintf("ep%d", i+1), URL: u})
	}
	return src
}

func TestRaceClientFirstSuccessWins(t *testing.T) {
	failing := statusServer(http.StatusBadGateway)
	defer failing.Close()
	slow := hangingServer()
	defer slow.Close()
	fast := feedServer(20*time.Millisecond, testFeed)
	defer fast.Close()

	rc := newTestRaceClient(2 * time.Second)

	start := time.Now()
	body, err := rc.Fetch(context.Background(), source(failing.URL, slow.URL, fast.URL))
	require.NoError(t, err)
	assert.Equal(t, testFeed, body)
	assert.Less(t, time.Since(start), time.Second, "race should not wait for the hanging endpoint")
}

func TestRaceClientAllEndpointsFail(t *testing.T) {
	slow1 := hangingServer()
	defer slow1.Close()
	slow2 := hangingServer()
	defer slow2.Close()
	broken := statusServer(http.StatusInternalServerError)
	defer broken.Close()

	rc := newTestRaceClient(100 * time.Millisecond)

	body, err := rc.Fetch(context.Background(), source(slow1.URL, slow2.URL, broken.URL))
	require.Error(t, err)
	assert.Empty(t, body)
	assert.ErrorIs(t, err, domain.ErrFetchFailure)
	assert.ErrorIs(t, err, domain.ErrTimeout)

	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Len(t, fetchErr.Attempts, 3)

	var httpErr *domain.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)

	timeouts := 0
	for _, a := range fetchErr.Attempts {
		if errors.Is(a, domain.ErrTimeout) {
			timeouts++
		}
	}
	assert.Equal(t, 2, timeouts)
}

func TestRaceClientNoEndpoints(t *testing.T) {
	rc := newTestRaceClient(time.Second)

	_, err := rc.Fetch(context.Background(), domain.FeedSource{FeedURL: "https://example.com/feed"})
	assert.ErrorIs(t, err, domain.ErrFetchFailure)
}

func TestRaceClientParentCancelled(t *testing.T) {
	slow := hangingServer()
	defer slow.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestRaceClient(time.Second).Fetch(ctx, source(slow.URL))
	assert.ErrorIs(t, err, domain.ErrFetchFailure)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRaceClientSuccessfulStatuses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "200", status: http.StatusOK},
		{name: "203", status: http.StatusNonAuthoritativeInfo},
		{name: "304", status: http.StatusNotModified, wantErr: true},
		{name: "404", status: http.StatusNotFound, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, testFeed)
			}))
			defer srv.Close()

			body, err := newTestRaceClient(time.Second).Fetch(context.Background(), source(srv.URL))
			if tt.wantErr {
				var httpErr *domain.HTTPError
				require.True(t, errors.As(err, &httpErr))
				assert.Equal(t, tt.status, httpErr.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testFeed, body)
		})
	}
}

func TestEndpointClientSendsUserAgent(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("User-Agent"))
		fmt.Fprint(w, testFeed)
	}))
	defer srv.Close()

	ec := NewEndpointClient("feedcards/1.0")
	_, err := ec.Get(context.Background(), domain.Endpoint{Name: "direct", URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "feedcards/1.0", got.Load())
}

func countingServer(hits *atomic.Int32, status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
}

func TestRaceClientLimiterTriesEveryEndpoint(t *testing.T) {
	var hits [3]atomic.Int32
	ep1 := countingServer(&hits[0], http.StatusBadGateway, "")
	defer ep1.Close()
	ep2 := countingServer(&hits[1], http.StatusServiceUnavailable, "")
	defer ep2.Close()
	ep3 := countingServer(&hits[2], http.StatusNotFound, "")
	defer ep3.Close()

	limiter := rate.NewLimiter(rate.Every(time.Second), 1)
	rc := NewRaceClient(NewEndpointClient("feedcards-test"), 100*time.Millisecond, limiter, nil)

	_, err := rc.Fetch(context.Background(), source(ep1.URL, ep2.URL, ep3.URL))
	require.ErrorIs(t, err, domain.ErrFetchFailure)

	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Len(t, fetchErr.Attempts, 3)
	for _, attempt := range fetchErr.Attempts {
		var httpErr *domain.HTTPError
		assert.True(t, errors.As(attempt, &httpErr), "attempt %v", attempt)
		assert.NotContains(t, attempt.Error(), "rate limiter")
	}
	for i := range hits {
		assert.Equal(t, int32(1), hits[i].Load(), "endpoint %d", i+1)
	}
}

func TestRaceClientLimiterWithWinner(t *testing.T) {
	var bad1, bad2, good atomic.Int32
	ep1 := countingServer(&bad1, http.StatusBadGateway, "")
	defer ep1.Close()
	ep2 := countingServer(&bad2, http.StatusBadGateway, "")
	defer ep2.Close()
	ep3 := countingServer(&good, http.StatusOK, testFeed)
	defer ep3.Close()

	limiter := rate.NewLimiter(rate.Every(time.Second), 1)
	rc := NewRaceClient(NewEndpointClient("feedcards-test"), 100*time.Millisecond, limiter, nil)

	body, err := rc.Fetch(context.Background(), source(ep1.URL, ep2.URL, ep3.URL))
	require.NoError(t, err)
	assert.Equal(t, testFeed, body)
	assert.Equal(t, int32(1), good.Load())
}

func TestRaceClientLimiterRejects(t *testing.T) {
	var hits atomic.Int32
	srv := countingServer(&hits, http.StatusOK, testFeed)
	defer srv.Close()

	// A zero burst never hands out a token.
	limiter := rate.NewLimiter(rate.Every(time.Hour), 0)
	rc := NewRaceClient(NewEndpointClient(""), time.Second, limiter, nil)

	_, err := rc.Fetch(context.Background(), source(srv.URL))
	require.ErrorIs(t, err, domain.ErrFetchFailure)
	assert.Contains(t, err.Error(), "rate limiter")
	assert.Equal(t, int32(0), hits.Load())
}

func TestAttemptOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{domain.ErrTimeout, "timeout"},
		{fmt.Errorf("x: %w", &domain.HTTPError{Status: 500}), "http_error"},
		{context.Canceled, "cancelled"},
		{errors.New("dial tcp: refused"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, attemptOutcome(tt.err))
	}
}
