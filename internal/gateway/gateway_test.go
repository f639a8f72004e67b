package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkdapi/leads-cli/pkg/linkd"
)

type mockClient struct {
	mu           sync.Mutex
	profileCalls int
	similarCalls int
	profileFn    func(attempt int) (*linkd.Envelope, error)
	similarFn    func(attempt int) (*linkd.Envelope, error)
}

func (m *mockClient) ProfileOverview(_ context.Context, _ string) (*linkd.Envelope, error) {
	m.mu.Lock()
	attempt := m.profileCalls
	m.profileCalls++
	m.mu.Unlock()
	return m.profileFn(attempt)
}

func (m *mockClient) SimilarProfiles(_ context.Context, _ string) (*linkd.Envelope, error) {
	m.mu.Lock()
	attempt := m.similarCalls
	m.similarCalls++
	m.mu.Unlock()
	return m.similarFn(attempt)
}

func envOK(data string) *linkd.Envelope {
	ok := true
	return &linkd.Envelope{Success: &ok, Data: json.RawMessage(data)}
}

func envFail(message string) *linkd.Envelope {
	ok := false
	return &linkd.Envelope{Success: &ok, Message: message}
}

type harness struct {
	gw     *Gateway
	sleeps []time.Duration
	logs   []string
}

func newHarness(client linkd.Client) *harness {
	h := &harness{}
	h.gw = New(client, Config{
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
		LogFunc:    func(line string) { h.logs = append(h.logs, line) },
	})
	h.gw.sleep = func(_ context.Context, d time.Duration) error {
		h.sleeps = append(h.sleeps, d)
		return nil
	}
	return h
}

const aliceProfile = `{"urn":"urn:li:alice","username":"alice","firstName":"Alice","lastName":"Ng","headline":"Engineer"}`

func TestFetchProfile_Success(t *testing.T) {
	client := &mockClient{profileFn: func(int) (*linkd.Envelope, error) {
		return envOK(aliceProfile), nil
	}}
	h := newHarness(client)

	p, err := h.gw.FetchProfile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "urn:li:alice", p.URN)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "Alice Ng", p.DisplayName())
	assert.Equal(t, 1, client.profileCalls)
	assert.Empty(t, h.sleeps)
}

func TestFetchProfile_TerminalMarker_NoRetry(t *testing.T) {
	client := &mockClient{profileFn: func(int) (*linkd.Envelope, error) {
		return envFail("Profile not found"), nil
	}}
	h := newHarness(client)

	_, err := h.gw.FetchProfile(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, IsTerminal(err))
	assert.Contains(t, err.Error(), "not found")
	assert.Equal(t, 1, client.profileCalls)
	assert.Empty(t, h.sleeps)
}

func TestFetchProfile_RetryableFailureFlag_FixedDelay(t *testing.T) {
	client := &mockClient{profileFn: func(attempt int) (*linkd.Envelope, error) {
		if attempt == 0 {
			return envFail("server busy"), nil
		}
		return envOK(aliceProfile), nil
	}}
	h := newHarness(client)

	_, err := h.gw.FetchProfile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, client.profileCalls)
	// Failure-flag retries use a fixed 1s delay, not the base delay.
	assert.Equal(t, []time.Duration{time.Second}, h.sleeps)
}

func TestFetchProfile_RateLimit_LinearBackoff(t *testing.T) {
	client := &mockClient{profileFn: func(attempt int) (*linkd.Envelope, error) {
		if attempt < 2 {
			return nil, eris.New("linkd: unexpected status 429 Too Many Requests")
		}
		return envOK(aliceProfile), nil
	}}
	h := newHarness(client)

	_, err := h.gw.FetchProfile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, client.profileCalls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, h.sleeps)
}

func TestFetchProfile_RateLimit_Exhausted(t *testing.T) {
	client := &mockClient{profileFn: func(int) (*linkd.Envelope, error) {
		return nil, eris.New("too many requests")
	}}
	h := newHarness(client)

	_, err := h.gw.FetchProfile(context.Background(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")
	assert.Equal(t, 3, client.profileCalls)
}

func TestFetchProfile_TransportError_FlatDelay(t *testing.T) {
	client := &mockClient{profileFn: func(attempt int) (*linkd.Envelope, error) {
		if attempt == 0 {
			return nil, eris.New("connection reset by peer")
		}
		return envOK(aliceProfile), nil
	}}
	h := newHarness(client)

	_, err := h.gw.FetchProfile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2 * time.Second}, h.sleeps)
}

func TestFetchProfile_EmptyResponse_RetriesThenFails(t *testing.T) {
	client := &mockClient{profileFn: func(int) (*linkd.Envelope, error) {
		return nil, nil
	}}
	h := newHarness(client)

	_, err := h.gw.FetchProfile(context.Background(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
	assert.Equal(t, 3, client.profileCalls)
	assert.Len(t, h.sleeps, 2)
}

func TestFetchProfile_NoSuccessFlag_Terminal(t *testing.T) {
	client := &mockClient{profileFn: func(int) (*linkd.Envelope, error) {
		return &linkd.Envelope{Data: json.RawMessage(`{}`)}, nil
	}}
	h := newHarness(client)

	_, err := h.gw.FetchProfile(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, IsTerminal(err))
	assert.Contains(t, err.Error(), "invalid response format")
	assert.Equal(t, 1, client.profileCalls)
}

func TestFetchProfile_MissingIdentityFields_Terminal(t *testing.T) {
	client := &mockClient{profileFn: func(int) (*linkd.Envelope, error) {
		return envOK(`{"urn":"urn:li:alice"}`), nil
	}}
	h := newHarness(client)

	_, err := h.gw.FetchProfile(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, IsTerminal(err))
	assert.Contains(t, err.Error(), "invalid profile data structure")
}

func TestFetchProfile_NullData_Terminal(t *testing.T) {
	client := &mockClient{profileFn: func(int) (*linkd.Envelope, error) {
		return envOK(`null`), nil
	}}
	h := newHarness(client)

	_, err := h.gw.FetchProfile(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, IsTerminal(err))
	assert.Contains(t, err.Error(), "no data in response")
}

func TestFetchProfile_ExhaustsRetries_ReturnsLastError(t *testing.T) {
	client := &mockClient{profileFn: func(int) (*linkd.Envelope, error) {
		return envFail("server busy"), nil
	}}
	h := newHarness(client)

	_, err := h.gw.FetchProfile(context.Background(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server busy")
	assert.Equal(t, 3, client.profileCalls)
}

func TestFetchProfile_LogsOnlyOnFirstRetry(t *testing.T) {
	client := &mockClient{profileFn: func(int) (*linkd.Envelope, error) {
		return envFail("server busy"), nil
	}}
	h := newHarness(client)

	_, _ = h.gw.FetchProfile(context.Background(), "alice")
	assert.Len(t, h.logs, 1)
	assert.Contains(t, h.logs[0], "retrying")
}

func TestFetchProfile_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &mockClient{profileFn: func(int) (*linkd.Envelope, error) {
		return nil, ctx.Err()
	}}
	h := newHarness(client)

	_, err := h.gw.FetchProfile(ctx, "alice")
	require.Error(t, err)
	assert.Equal(t, 1, client.profileCalls)
}

func TestFetchSimilar_DropsMalformedEntries(t *testing.T) {
	client := &mockClient{similarFn: func(int) (*linkd.Envelope, error) {
		return envOK(`[
			{"urn":"urn:li:bob","id":101,"username":"bob"},
			{"urn":"urn:li:noid","username":"noid"},
			{"id":102,"username":"nourn"},
			{"urn":"urn:li:carol","id":"103","publicIdentifier":"carol"}
		]`), nil
	}}
	h := newHarness(client)

	candidates, err := h.gw.FetchSimilar(context.Background(), "urn:li:alice")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "urn:li:bob", candidates[0].URN)
	assert.Equal(t, "bob", candidates[0].Handle())
	assert.Equal(t, "urn:li:carol", candidates[1].URN)
	assert.Equal(t, "carol", candidates[1].Handle())
}

func TestFetchSimilar_NonArrayData_Terminal(t *testing.T) {
	client := &mockClient{similarFn: func(int) (*linkd.Envelope, error) {
		return envOK(`{"urn":"urn:li:bob"}`), nil
	}}
	h := newHarness(client)

	_, err := h.gw.FetchSimilar(context.Background(), "urn:li:alice")
	require.Error(t, err)
	assert.True(t, IsTerminal(err))
	assert.Contains(t, err.Error(), "invalid data format")
}

func TestFetchSimilar_TerminalMarker(t *testing.T) {
	client := &mockClient{similarFn: func(int) (*linkd.Envelope, error) {
		return envFail("This profile cannot be displayed"), nil
	}}
	h := newHarness(client)

	_, err := h.gw.FetchSimilar(context.Background(), "urn:li:alice")
	require.Error(t, err)
	assert.True(t, IsTerminal(err))
	assert.Equal(t, 1, client.similarCalls)
}
