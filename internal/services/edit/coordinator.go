// Package edit applies date edits coming back from the chart widget:
// classify the dragged node, write the change to GitLab, and patch local
// state only after confirmed success.
package edit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mkarlsen/ganttdash/internal/models"
	"github.com/mkarlsen/ganttdash/internal/types"
)

// RemoteWriter is the slice of the remote collaborator the coordinator
// needs.
type RemoteWriter interface {
	UpdateMilestoneDates(ctx context.Context, milestoneID int, start, end time.Time) error
	UpdateIssueDates(ctx context.Context, issueIID int, start, end time.Time) error
}

// StatePatcher is the slice of the state store the coordinator needs: the
// display-number lookup for issues and the narrow optimistic patch applied
// after a confirmed write.
type StatePatcher interface {
	IssueIID(issueID int) (int, bool)
	PatchNodeDates(nodeID string, start, end time.Time)
}

// Coordinator serializes edits per node id. The UI fires one update per
// completed drag gesture, so there is no coalescing; the sequence tokens
// only guard against a stale success landing after a newer edit for the
// same id has started.
type Coordinator struct {
	remote RemoteWriter
	state  StatePatcher

	mu  sync.Mutex
	seq map[string]uint64
}

// NewCoordinator creates an edit coordinator.
func NewCoordinator(remote RemoteWriter, state StatePatcher) *Coordinator {
	return &Coordinator{
		remote: remote,
		state:  state,
		seq:    make(map[string]uint64),
	}
}

// ApplyEdit writes the new date range for the dragged node. Dates are
// truncated to calendar dates before anything else; time of day never
// reaches the remote. On failure local state is untouched, so the bar
// reverts on the next render.
func (c *Coordinator) ApplyEdit(ctx context.Context, taskID string, newStart, newEnd time.Time) error {
	ref, ok := types.ParseNodeID(taskID)
	if !ok || ref.Kind == types.KindChecklist {
		return ErrNotEditable
	}

	start := models.DateOnly(newStart)
	end := models.DateOnly(newEnd)
	if !end.After(start) {
		return ErrInvalidRange
	}

	token := c.nextToken(taskID)

	var err error
	switch ref.Kind {
	case types.KindMilestone:
		err = c.remote.UpdateMilestoneDates(ctx, ref.MilestoneID, start, end)
	case types.KindIssue:
		iid, found := c.state.IssueIID(ref.IssueID)
		if !found {
			return ErrUnknownIssue
		}
		err = c.remote.UpdateIssueDates(ctx, iid, start, end)
	}
	if err != nil {
		return fmt.Errorf("failed to update dates for %s: %w", taskID, err)
	}

	// A newer edit for this id started while ours was in flight; its
	// outcome wins and our patch is discarded.
	if !c.isLatest(taskID, token) {
		return nil
	}

	c.state.PatchNodeDates(taskID, start, end)
	return nil
}

func (c *Coordinator) nextToken(taskID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq[taskID]++
	return c.seq[taskID]
}

func (c *Coordinator) isLatest(taskID string, token uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq[taskID] == token
}
