// Package gateway wraps the raw LinkdAPI client with retry, backoff, and
// failure classification. Failures are split into retryable ones (empty
// responses, transport errors, rate limits) and terminal ones (not-found
// style responses, malformed payloads), so the discovery engine can record
// per-item failures without aborting a run.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/linkdapi/leads-cli/internal/model"
	"github.com/linkdapi/leads-cli/pkg/linkd"
)

// terminalMarkers are response-message substrings that make a failure
// non-retryable regardless of remaining attempts.
var terminalMarkers = []string{
	"not found",
	"doesn't exist",
	"cannot be displayed",
}

// TerminalError marks a failure that must not be retried.
type TerminalError struct {
	Reason string
}

func (e *TerminalError) Error() string {
	return e.Reason
}

// IsTerminal reports whether err (or anything in its chain) is a
// TerminalError.
func IsTerminal(err error) bool {
	var te *TerminalError
	return eris.As(err, &te)
}

// Config controls gateway retry behavior.
type Config struct {
	// MaxRetries is the total number of attempts per call (including the
	// first). Default: 3.
	MaxRetries int
	// RetryDelay is the base delay between attempts. Default: 2s.
	RetryDelay time.Duration
	// LogFunc receives human-readable activity lines. May be nil.
	LogFunc func(line string)
}

// Gateway performs profile lookups with retry and classification on top of a
// linkd.Client.
type Gateway struct {
	client     linkd.Client
	maxRetries int
	retryDelay time.Duration
	logf       func(string)

	// sleep is swapped out in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Gateway. Zero config fields fall back to defaults.
func New(client linkd.Client, cfg Config) *Gateway {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	logf := cfg.LogFunc
	if logf == nil {
		logf = func(string) {}
	}
	return &Gateway{
		client:     client,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logf:       logf,
		sleep:      sleepCtx,
	}
}

// SetLogFunc replaces the activity log callback. A nil fn silences logging.
func (g *Gateway) SetLogFunc(fn func(string)) {
	if fn == nil {
		fn = func(string) {}
	}
	g.logf = fn
}

// FetchProfile fetches and validates the full profile for a username.
func (g *Gateway) FetchProfile(ctx context.Context, username string) (*model.Profile, error) {
	env, err := g.callWithRetry(ctx, username, func(ctx context.Context) (*linkd.Envelope, error) {
		return g.client.ProfileOverview(ctx, username)
	})
	if err != nil {
		return nil, err
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, &TerminalError{Reason: "no data in response"}
	}

	var p model.Profile
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return nil, &TerminalError{Reason: "invalid profile data structure"}
	}
	if p.URN == "" || p.Username == "" {
		return nil, &TerminalError{Reason: "invalid profile data structure"}
	}
	return &p, nil
}

// FetchSimilar fetches similar-profile candidates for a URN. Entries missing
// either a URN or an ID are dropped silently.
func (g *Gateway) FetchSimilar(ctx context.Context, urn string) ([]model.Candidate, error) {
	env, err := g.callWithRetry(ctx, shortID(urn), func(ctx context.Context) (*linkd.Envelope, error) {
		return g.client.SimilarProfiles(ctx, urn)
	})
	if err != nil {
		return nil, err
	}

	var all []model.Candidate
	if err := json.Unmarshal(env.Data, &all); err != nil {
		return nil, &TerminalError{Reason: "invalid data format"}
	}

	valid := make([]model.Candidate, 0, len(all))
	for _, c := range all {
		if c.URN != "" && c.ID.String() != "" {
			valid = append(valid, c)
		}
	}
	return valid, nil
}

// callWithRetry runs one remote call under the retry contract. Per attempt:
// an empty envelope or a generic transport error is retried after the base
// delay; a rate-limit error is retried after baseDelay*(attempt+1); an
// explicit failure flag is terminal when the message carries a terminal
// marker, otherwise retried after a fixed 1s; an envelope with neither flag
// is terminal. Only the first retry of a call logs, to keep the activity log
// readable under fan-out.
func (g *Gateway) callWithRetry(ctx context.Context, identifier string, call func(ctx context.Context) (*linkd.Envelope, error)) (*linkd.Envelope, error) {
	var lastErr error

	for attempt := 0; attempt < g.maxRetries; attempt++ {
		env, err := call(ctx)

		if ctx.Err() != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, eris.Wrap(ctx.Err(), "gateway: call cancelled")
		}

		if err != nil {
			lastErr = err
			msg := strings.ToLower(err.Error())

			if strings.Contains(msg, "429") || strings.Contains(msg, "too many requests") {
				if attempt >= g.maxRetries-1 {
					return nil, eris.New("rate limit exceeded")
				}
				wait := g.retryDelay * time.Duration(attempt+1)
				if attempt == 0 {
					g.logf(fmt.Sprintf("⏳ (%s) rate limit hit - waiting %s", identifier, wait))
				}
				if serr := g.sleep(ctx, wait); serr != nil {
					return nil, lastErr
				}
				continue
			}

			if attempt >= g.maxRetries-1 {
				break
			}
			if attempt == 0 {
				g.logf(fmt.Sprintf("⚠ (%s) error: %s... retrying", identifier, shorten(err.Error(), 60)))
			}
			if serr := g.sleep(ctx, g.retryDelay); serr != nil {
				return nil, lastErr
			}
			continue
		}

		if env == nil {
			lastErr = eris.New("empty response")
			if attempt >= g.maxRetries-1 {
				break
			}
			if serr := g.sleep(ctx, g.retryDelay); serr != nil {
				return nil, lastErr
			}
			continue
		}

		if env.Success != nil && !*env.Success {
			message := env.Message
			if message == "" {
				message = "unknown error"
			}
			lastErr = eris.New(message)

			if hasTerminalMarker(message) {
				return nil, &TerminalError{Reason: message}
			}

			if attempt >= g.maxRetries-1 {
				break
			}
			if attempt == 0 {
				g.logf(fmt.Sprintf("⚠ (%s) %s... retrying", identifier, shorten(message, 60)))
			}
			if serr := g.sleep(ctx, time.Second); serr != nil {
				return nil, lastErr
			}
			continue
		}

		if env.Success != nil && *env.Success {
			return env, nil
		}

		return nil, &TerminalError{Reason: "invalid response format"}
	}

	if lastErr == nil {
		lastErr = eris.New("max retries exceeded")
	}
	zap.L().Debug("gateway: retries exhausted",
		zap.String("identifier", identifier),
		zap.Int("attempts", g.maxRetries),
		zap.Error(lastErr),
	)
	return nil, lastErr
}

func hasTerminalMarker(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range terminalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// shortID trims long URNs for log lines.
func shortID(urn string) string {
	if len(urn) <= 20 {
		return urn
	}
	return urn[:20] + "..."
}
