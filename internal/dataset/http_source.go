// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/listingscope/internal/logging"
	"github.com/tomtom215/listingscope/internal/metrics"
)

const breakerName = "dataset-source"

// HTTPSource downloads a listings export over HTTP.
//
// Downloads run through a circuit breaker so a flapping upstream is not
// hammered by the refresh loop, and through a token bucket so manual
// reloads cannot exceed the configured fetch spacing.
type HTTPSource struct {
	url     string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[*http.Response]
	limiter *rate.Limiter

	mu        sync.Mutex
	committed validators
	pending   validators
}

type validators struct {
	etag         string
	lastModified string
}

// NewHTTPSource creates an HTTPSource. A zero minInterval disables the fetch limiter.
func NewHTTPSource(url string, timeout, minInterval time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	var limiter *rate.Limiter
	if minInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(minInterval), 1)
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return &HTTPSource{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		cb:      newBreaker(breakerName),
		limiter: limiter,
	}
}

// newBreaker opens after 60% failures over at least 5 requests in a
// 5 minute window and probes again after 2 minutes.
func newBreaker(name string) *gobreaker.CircuitBreaker[*http.Response] {
	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		// 304 is a healthy upstream.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotModified)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})
}

// Open implements Source.
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.limiter != nil && !s.limiter.Allow() {
		return nil, ErrThrottled
	}

	s.mu.Lock()
	prev := s.committed
	s.mu.Unlock()

	resp, err := s.cb.Execute(func() (*http.Response, error) {
		return s.fetch(ctx, prev)
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			logging.Warn().Err(err).Str("url", s.url).Msg("[CIRCUIT BREAKER] Request rejected")
		case errors.Is(err, ErrNotModified):
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
		default:
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()

	s.mu.Lock()
	s.pending = validators{
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}
	s.mu.Unlock()

	return decompress(resp.Body)
}

func (s *HTTPSource) fetch(ctx context.Context, prev validators) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build dataset request: %w", err)
	}
	req.Header.Set("User-Agent", "listingscope")
	if prev.etag != "" {
		req.Header.Set("If-None-Match", prev.etag)
	}
	if prev.lastModified != "" {
		req.Header.Set("If-Modified-Since", prev.lastModified)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset %s: %w", s.url, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotModified:
		_ = resp.Body.Close()
		return nil, ErrNotModified
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrUpstreamStatus, resp.Status)
	}
	return resp, nil
}

func (s *HTTPSource) commit() {
	s.mu.Lock()
	s.committed = s.pending
	s.mu.Unlock()
}

// BreakerState returns the circuit breaker state name.
func (s *HTTPSource) BreakerState() string {
	return stateToString(s.cb.State())
}

// String implements Source.
func (s *HTTPSource) String() string {
	return s.url
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
