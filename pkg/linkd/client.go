package linkd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.linkdapi.com/v1"

// Client performs profile lookups against the LinkdAPI service. Responses
// are returned as raw envelopes; retry and failure classification happen one
// layer up in the gateway.
type Client interface {
	// ProfileOverview fetches the full profile for a username.
	ProfileOverview(ctx context.Context, username string) (*Envelope, error)
	// SimilarProfiles fetches similar-profile candidates for a URN.
	SimilarProfiles(ctx context.Context, urn string) (*Envelope, error)
}

// Envelope is the LinkdAPI response wrapper. Success is a pointer so a
// response carrying neither a success nor a failure flag is distinguishable
// from an explicit false.
type Envelope struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outgoing requests per second. Zero or negative disables
// client-side limiting.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a LinkdAPI client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) ProfileOverview(ctx context.Context, username string) (*Envelope, error) {
	return c.get(ctx, "/profile/overview", url.Values{"username": {username}})
}

func (c *httpClient) SimilarProfiles(ctx context.Context, urn string) (*Envelope, error) {
	return c.get(ctx, "/profile/similar", url.Values{"urn": {urn}})
}

func (c *httpClient) get(ctx context.Context, path string, query url.Values) (*Envelope, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "linkd: rate limiter wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "linkd: create request")
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "linkd: do request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, eris.Wrap(err, "linkd: read response body")
	}

	// Status text is kept in the error so callers can recognize 429s.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("linkd: unexpected status %s: %s", resp.Status, truncate(string(body), 200))
	}

	if len(body) == 0 {
		return nil, nil
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "linkd: decode response")
	}
	return &env, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
