// Package store owns all dashboard state. Mutation goes through the pure
// reducer only; subscribers are notified with a copy after every
// transition. Fetches run concurrently but commit in generation order, so a
// stale response can never overwrite newer state.
package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkarlsen/ganttdash/internal/database"
	"github.com/mkarlsen/ganttdash/internal/gitlab"
	"github.com/mkarlsen/ganttdash/internal/models"
	"github.com/mkarlsen/ganttdash/internal/services/normalize"
	"github.com/mkarlsen/ganttdash/internal/services/tree"
	"github.com/mkarlsen/ganttdash/internal/services/view"
)

// Store is the coordinator-owned state container.
type Store struct {
	remote  gitlab.Source
	prefs   database.PrefRepository
	builder tree.Builder
	now     func() time.Time

	gen atomic.Int64

	mu      sync.RWMutex
	state   Snapshot
	subs    map[int]func(Snapshot)
	nextSub int
}

// New creates a store with the persisted filter selection restored. The now
// function is the injected clock; nil means the wall clock.
func New(ctx context.Context, remote gitlab.Source, prefs database.PrefRepository, spanDays int, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	s := &Store{
		remote:  remote,
		prefs:   prefs,
		builder: tree.Builder{SpanDays: spanDays},
		now:     now,
		subs:    make(map[int]func(Snapshot)),
	}
	s.state.Filter = prefs.LoadFilter(ctx, now())
	return s
}

// State returns the current snapshot.
func (s *Store) State() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// VisibleNodes returns the filtered node list for rendering.
func (s *Store) VisibleNodes() []models.TaskNode {
	state := s.State()
	return view.Apply(state.Nodes, state.Filter)
}

// Subscribe registers a callback invoked with a snapshot copy after every
// state transition. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Refresh runs one fetch cycle: milestones, issues, and labels in parallel,
// then normalize and build. A failed fetch degrades to the demonstration
// dataset and surfaces the error message in the snapshot; the error is also
// returned so the caller can log and count it.
//
// The applied result reports whether the cycle committed; a cycle
// superseded by a newer one while in flight is discarded.
func (s *Store) Refresh(ctx context.Context) (applied bool, err error) {
	gen := s.gen.Add(1)
	filter := s.State().Filter

	var (
		milestones []models.RemoteMilestone
		issues     []models.RemoteIssue
		labels     []models.RemoteLabel
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var e error
		milestones, e = s.remote.ListMilestones(gctx, false)
		return e
	})
	g.Go(func() error {
		var e error
		issues, e = s.remote.ListIssues(gctx, gitlab.IssueListOptions{State: filter.IssueState})
		return e
	})
	g.Go(func() error {
		var e error
		labels, e = s.remote.ListLabels(gctx)
		return e
	})

	fetchErr := g.Wait()

	demo := false
	errMsg := ""
	if fetchErr != nil {
		milestones, issues, labels = gitlab.DemoSnapshot(s.now())
		demo = true
		errMsg = fetchErr.Error()
	}

	// The remote listing already filters by state, but the demo fallback
	// serves every state
	issues = filterIssueState(issues, filter.IssueState)

	parsed := normalize.Normalize(issues, labels)
	nodes := s.builder.Build(milestones, parsed, s.now())

	// A newer refresh started while this one was in flight; its result
	// wins regardless of arrival order
	if gen != s.gen.Load() {
		return false, fetchErr
	}

	s.dispatch(SnapshotLoaded{
		Generation: gen,
		Milestones: milestones,
		Labels:     labels,
		Issues:     parsed,
		Nodes:      nodes,
		FetchError: errMsg,
		Demo:       demo,
	})
	return true, fetchErr
}

// SetFilter installs and persists a new filter selection. The caller
// triggers the follow-up refresh; persistence failures are returned but the
// in-memory state is already updated.
func (s *Store) SetFilter(ctx context.Context, fs models.FilterState) error {
	s.dispatch(FilterChanged{Filter: fs})
	return s.prefs.SaveFilter(ctx, fs)
}

// PatchNodeDates applies the post-edit patch for a single node.
func (s *Store) PatchNodeDates(nodeID string, start, end time.Time) {
	s.dispatch(DatesPatched{NodeID: nodeID, Start: start, End: end})
}

// IssueIID resolves an issue's display number from its id within the
// current build.
func (s *Store) IssueIID(issueID int) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, issue := range s.state.Issues {
		if issue.ID == issueID {
			return issue.IID, true
		}
	}
	return 0, false
}

// MilestoneRefs returns the milestones of the current build for filter UIs.
func (s *Store) MilestoneRefs() []models.RemoteMilestone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Milestones
}

// dispatch reduces the event and notifies subscribers outside the lock.
func (s *Store) dispatch(ev Event) {
	s.mu.Lock()
	s.state = Reduce(s.state, ev)
	snapshot := s.state
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func filterIssueState(issues []models.RemoteIssue, state models.IssueState) []models.RemoteIssue {
	if state == "" || state == models.StateAll {
		return issues
	}
	out := make([]models.RemoteIssue, 0, len(issues))
	for _, issue := range issues {
		if issue.State == string(state) {
			out = append(out, issue)
		}
	}
	return out
}
