package collector

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/qepting91/feedcards/internal/domain"
	"golang.org/x/time/rate"
)

const (
	ModeRace = "race"
	ModeMock = "mock"
)

// Options configures NewCollector.
type Options struct {
	Mode      string
	UserAgent string
	Timeout   time.Duration
	// RatePerSecond limits fetches, one token per race; zero disables the limiter.
	RatePerSecond float64
	Burst         int
	Logger        *slog.Logger
}

// NewCollector selects the correct implementation based on the mode
func NewCollector(opts Options) (domain.Fetcher, error) {
	switch opts.Mode {
	case ModeRace, "":
		var limiter *rate.Limiter
		if opts.RatePerSecond > 0 {
			burst := opts.Burst
			if burst <= 0 {
				burst = 1
			}
			limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
		}
		return NewRaceClient(NewEndpointClient(opts.UserAgent), opts.Timeout, limiter, opts.Logger), nil
	case ModeMock:
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown collector mode: %s (use '%s' or '%s')", opts.Mode, ModeRace, ModeMock)
	}
}
