package gateway

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/linkdapi/leads-cli/internal/model"
)

// BatchResult is the outcome of one full-profile fetch within a batch.
type BatchResult struct {
	Username string
	Profile  *model.Profile
	Err      error
}

// FetchProfileBatch fetches full profiles for all usernames concurrently.
// Output order matches input order and one failed fetch never aborts its
// siblings; the fan-out here is unbounded because the caller already limits
// how many batches run at once.
func (g *Gateway) FetchProfileBatch(ctx context.Context, usernames []string) []BatchResult {
	results := make([]BatchResult, len(usernames))

	var eg errgroup.Group
	for i, username := range usernames {
		eg.Go(func() error {
			p, err := g.FetchProfile(ctx, username)
			results[i] = BatchResult{Username: username, Profile: p, Err: err}
			return nil
		})
	}
	_ = eg.Wait()

	return results
}
