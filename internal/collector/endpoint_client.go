package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/qepting91/feedcards/internal/domain"
)

// Feeds are small; anything bigger than this is not a feed we want.
const maxFeedBytes = 10 << 20

// EndpointClient performs a single GET against one endpoint.
type EndpointClient struct {
	httpClient *http.Client
	userAgent  string
}

func NewEndpointClient(userAgent string) *EndpointClient {
	return &EndpointClient{
		httpClient: &http.Client{},
		userAgent:  userAgent,
	}
}

// Get returns the response body of ep as text. The caller bounds the
// attempt through ctx; an expired deadline is reported as domain.ErrTimeout.
func (ec *EndpointClient) Get(ctx context.Context, ep domain.Endpoint) (string, error) {
	body, err := ec.get(ctx, ep)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return "", domain.ErrTimeout
	}
	return body, err
}

func (ec *EndpointClient) get(ctx context.Context, ep domain.Endpoint) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if ec.userAgent != "" {
		req.Header.Set("User-Agent", ec.userAgent)
	}

	resp, err := ec.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &domain.HTTPError{Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}

// attemptOutcome classifies an attempt error for metrics labels.
func attemptOutcome(err error) string {
	var httpErr *domain.HTTPError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrTimeout):
		return "timeout"
	case errors.As(err, &httpErr):
		return "http_error"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "error"
	}
}
