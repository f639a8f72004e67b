// Package discovery implements breadth-first expansion of similar profiles
// from a set of seed usernames. Concurrency exists only within a depth
// level: all frontier nodes of a level are expanded (bounded by a
// semaphore-style limit) and joined before the next level begins.
package discovery

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/linkdapi/leads-cli/internal/gateway"
	"github.com/linkdapi/leads-cli/internal/model"
)

// Fetcher is the gateway surface the engine depends on.
type Fetcher interface {
	FetchProfile(ctx context.Context, username string) (*model.Profile, error)
	FetchSimilar(ctx context.Context, urn string) ([]model.Candidate, error)
	FetchProfileBatch(ctx context.Context, usernames []string) []gateway.BatchResult
}

// Engine performs a single discovery run. Create a fresh Engine per run; all
// run state (records, seen set, failure lists) lives on it and Snapshot may
// be called at any time, including while a run is in flight.
type Engine struct {
	fetcher       Fetcher
	maxConcurrent int
	sink          ProgressSink
	runID         string

	mu              sync.Mutex
	profiles        []model.Profile
	seen            map[string]struct{}
	failedUsernames []string
	failedURNs      []string
}

// New creates an Engine. maxConcurrent bounds how many frontier nodes expand
// at once within a level (default 10); sink may be nil.
func New(fetcher Fetcher, maxConcurrent int, sink ProgressSink) *Engine {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Engine{
		fetcher:       fetcher,
		maxConcurrent: maxConcurrent,
		sink:          sink,
		runID:         uuid.NewString(),
		seen:          make(map[string]struct{}),
	}
}

// Discover resolves the seed usernames and expands similar profiles
// level-by-level up to maxDepth. On cancellation it returns the partial
// report along with the context error; per-item failures never abort the
// run and are reported in the failure lists instead.
func (e *Engine) Discover(ctx context.Context, usernames []string, maxDepth int) (*model.Report, error) {
	log := zap.L().With(zap.String("run_id", e.runID))
	log.Info("discovery starting",
		zap.Int("seeds", len(usernames)),
		zap.Int("max_depth", maxDepth),
		zap.Int("max_concurrent", e.maxConcurrent),
	)
	e.sink.Log(fmt.Sprintf("→ starting discovery with %d usernames at depth %d", len(usernames), maxDepth))

	frontier := e.resolveSeeds(ctx, usernames)
	if ctx.Err() != nil {
		return e.Snapshot(), ctx.Err()
	}
	if len(frontier) == 0 {
		e.sink.Log("no valid profiles resolved from provided usernames")
		return e.Snapshot(), nil
	}
	e.sink.Log(fmt.Sprintf("found %d starting profiles", len(frontier)))

	for level := 0; level < maxDepth && len(frontier) > 0; level++ {
		e.sink.LevelStart(level, maxDepth)
		e.sink.Log(fmt.Sprintf("→ processing depth level %d/%d", level+1, maxDepth))

		next := e.expandLevel(ctx, frontier)
		if ctx.Err() != nil {
			e.sink.Log("⚠ discovery interrupted during level processing")
			return e.Snapshot(), ctx.Err()
		}

		e.sink.Log(fmt.Sprintf("✓ depth %d complete: found %d new profiles", level+1, len(next)))
		e.sink.Log(fmt.Sprintf("  total discovered: %d", e.DiscoveredCount()))
		frontier = next
	}

	report := e.Snapshot()
	log.Info("discovery complete",
		zap.Int("discovered", report.TotalDiscovered),
		zap.Int("unique_urns", report.UniqueURNs),
		zap.Int("failed_usernames", len(report.FailedUsernames)),
		zap.Int("failed_urns", len(report.FailedURNs)),
	)
	return report, nil
}

// resolveSeeds fetches each seed sequentially and returns the level-0
// frontier. Duplicate seeds are skipped without counting as failures.
func (e *Engine) resolveSeeds(ctx context.Context, usernames []string) []model.Profile {
	var frontier []model.Profile
	for _, username := range usernames {
		if ctx.Err() != nil {
			return frontier
		}

		p, err := e.fetcher.FetchProfile(ctx, username)
		if err != nil {
			e.recordFailedUsername(username)
			e.sink.Log(fmt.Sprintf("✗ %s -> %s", username, err.Error()))
			continue
		}

		if !e.markSeen(p.URN) {
			e.sink.Log(fmt.Sprintf("⊘ %s -> already discovered", username))
			continue
		}

		p.DepthLevel = 0
		p.SourceURN = ""
		e.recordProfile(*p)
		frontier = append(frontier, *p)
		e.sink.Log(fmt.Sprintf("✓ %s -> full profile fetched", username))
	}
	return frontier
}

// expandLevel expands every frontier node concurrently, at most
// maxConcurrent at a time, and joins before returning the next frontier.
func (e *Engine) expandLevel(ctx context.Context, frontier []model.Profile) []model.Profile {
	var (
		nextMu sync.Mutex
		next   []model.Profile
	)

	// Worker errors stay nil so one node can never cancel its siblings;
	// only context cancellation ends the level early.
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.maxConcurrent)

	for _, parent := range frontier {
		eg.Go(func() error {
			if egCtx.Err() != nil {
				return nil
			}
			children := e.expandNode(egCtx, parent)
			if len(children) > 0 {
				nextMu.Lock()
				next = append(next, children...)
				nextMu.Unlock()
			}
			return nil
		})
	}
	_ = eg.Wait()

	return next
}

// expandNode runs one similar-profiles lookup and full-fetches the unseen
// candidates. Candidate URNs are marked seen before their fetch starts so
// two parents discovering the same profile in one level cannot both queue it.
func (e *Engine) expandNode(ctx context.Context, parent model.Profile) []model.Profile {
	candidates, err := e.fetcher.FetchSimilar(ctx, parent.URN)
	if err != nil {
		e.recordFailedURN(parent.URN)
		e.sink.Log(fmt.Sprintf("✗ %s -> %s", shortURN(parent.URN), err.Error()))
		return nil
	}

	var handles []string
	for _, c := range candidates {
		handle := c.Handle()
		if c.URN == "" || handle == "" {
			continue
		}
		if !e.markSeen(c.URN) {
			continue
		}
		handles = append(handles, handle)
	}

	if len(handles) == 0 {
		e.sink.Log(fmt.Sprintf("⊘ %s -> no new profiles (all seen before)", shortURN(parent.URN)))
		return nil
	}

	results := e.fetcher.FetchProfileBatch(ctx, handles)

	var children []model.Profile
	for _, r := range results {
		if r.Err != nil || r.Profile == nil {
			e.sink.Log(fmt.Sprintf("⚠ %s -> failed to fetch full profile: %v", r.Username, r.Err))
			continue
		}

		child := *r.Profile
		child.DepthLevel = parent.DepthLevel + 1
		child.SourceURN = parent.URN
		e.recordProfile(child)
		children = append(children, child)
	}

	if len(children) > 0 {
		e.sink.Log(fmt.Sprintf("✓ %s -> fetched %d full profiles", shortURN(parent.URN), len(children)))
	} else {
		e.sink.Log(fmt.Sprintf("⊘ %s -> no profiles fetched", shortURN(parent.URN)))
	}
	return children
}

// markSeen marks a URN as seen and reports whether it was new.
func (e *Engine) markSeen(urn string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.seen[urn]; ok {
		return false
	}
	e.seen[urn] = struct{}{}
	return true
}

// recordProfile appends a record and notifies the sink under the same lock,
// so observers always see a count consistent with the record list.
func (e *Engine) recordProfile(p model.Profile) {
	e.mu.Lock()
	e.profiles = append(e.profiles, p)
	total := len(e.profiles)
	e.sink.ProfileAdded(total)
	e.mu.Unlock()
}

func (e *Engine) recordFailedUsername(username string) {
	e.mu.Lock()
	e.failedUsernames = append(e.failedUsernames, username)
	e.mu.Unlock()
}

func (e *Engine) recordFailedURN(urn string) {
	e.mu.Lock()
	e.failedURNs = append(e.failedURNs, urn)
	e.mu.Unlock()
}

// DiscoveredCount returns the current number of discovered records.
func (e *Engine) DiscoveredCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.profiles)
}

// Snapshot builds a report from the current state. It copies under the lock,
// so it is safe to call from a cancellation handler while level workers are
// still appending, and it never fails.
func (e *Engine) Snapshot() *model.Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	profiles := make([]model.Profile, len(e.profiles))
	copy(profiles, e.profiles)

	failedUsernames := make([]string, len(e.failedUsernames))
	copy(failedUsernames, e.failedUsernames)

	failedURNs := make([]string, len(e.failedURNs))
	copy(failedURNs, e.failedURNs)

	return &model.Report{
		RunID:           e.runID,
		Profiles:        profiles,
		TotalDiscovered: len(profiles),
		UniqueURNs:      len(e.seen),
		FailedUsernames: failedUsernames,
		FailedURNs:      failedURNs,
	}
}

func shortURN(urn string) string {
	if len(urn) <= 20 {
		return urn
	}
	return urn[:20] + "..."
}
