// Package health confirms backend liveness after a spawn by polling the
// backend's root endpoint a bounded number of times.
package health

import (
	"context"
	"net/http"
	"time"
)

// Outcome classifies a completed probe run.
type Outcome int

const (
	// Healthy means some attempt returned a 2xx status.
	Healthy Outcome = iota
	// TimedOut means all attempts completed without a 2xx, but at least
	// one reached the server (non-2xx response).
	TimedOut
	// Unreachable means every attempt failed at the connection level.
	Unreachable
)

func (o Outcome) String() string {
	switch o {
	case Healthy:
		return "healthy"
	case TimedOut:
		return "timed_out"
	case Unreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Default probe schedule matching the packaged product.
const (
	DefaultAttempts = 5
	DefaultInterval = time.Second
)

// Prober issues GET probes against a health endpoint. The zero value uses a
// dedicated client with a short per-request timeout.
type Prober struct {
	Client *http.Client
}

// New returns a Prober with a 2s per-request timeout.
func New() *Prober {
	return &Prober{Client: &http.Client{Timeout: 2 * time.Second}}
}

// Probe performs attempts sequential GETs against url, sleeping interval
// before each one. It returns Healthy on the first 2xx, Unreachable only if
// every attempt failed to connect, and TimedOut otherwise. The distinction
// between the two failures is diagnostic; callers treat them identically.
// Cancellation of ctx between attempts returns the failure classification of
// the attempts made so far.
func (p *Prober) Probe(ctx context.Context, url string, attempts int, interval time.Duration) Outcome {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if interval < 0 {
		interval = DefaultInterval
	}
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Second}
	}

	reached := false
	for i := 0; i < attempts; i++ {
		select {
		case <-ctx.Done():
			return verdict(reached)
		case <-time.After(interval):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return verdict(reached)
		}
		resp, err := client.Do(req)
		if err != nil {
			continue
		}
		code := resp.StatusCode
		_ = resp.Body.Close()
		reached = true
		if code >= 200 && code < 300 {
			return Healthy
		}
	}
	return verdict(reached)
}

func verdict(reached bool) Outcome {
	if reached {
		return TimedOut
	}
	return Unreachable
}
