package store

import (
	"time"

	"github.com/mkarlsen/ganttdash/internal/models"
)

// Snapshot is the full dashboard state at one point in time. Slices are
// treated as immutable once installed; the reducer copies before mutating.
type Snapshot struct {
	Milestones []models.RemoteMilestone
	Labels     []models.RemoteLabel
	Issues     []models.ParsedIssue
	Nodes      []models.TaskNode
	Filter     models.FilterState

	// FetchError is the surfaced message of the last failed fetch, empty
	// after a successful one. Demo marks that the built-in fallback dataset
	// is being served.
	FetchError string
	Demo       bool
	Generation int64
}

// Event is a state transition input for Reduce.
type Event interface {
	isEvent()
}

// SnapshotLoaded installs the result of a completed fetch cycle.
type SnapshotLoaded struct {
	Generation int64
	Milestones []models.RemoteMilestone
	Labels     []models.RemoteLabel
	Issues     []models.ParsedIssue
	Nodes      []models.TaskNode
	FetchError string
	Demo       bool
}

// FilterChanged installs a new filter selection.
type FilterChanged struct {
	Filter models.FilterState
}

// DatesPatched is the narrow optimistic update applied after a confirmed
// remote write: only the one node's dates and originality flags change.
type DatesPatched struct {
	NodeID     string
	Start, End time.Time
}

func (SnapshotLoaded) isEvent() {}
func (FilterChanged) isEvent()  {}
func (DatesPatched) isEvent()   {}

// Reduce applies one event to a snapshot and returns the next snapshot. It
// is pure: neither input is mutated.
func Reduce(s Snapshot, ev Event) Snapshot {
	switch e := ev.(type) {
	case SnapshotLoaded:
		s.Generation = e.Generation
		s.Milestones = e.Milestones
		s.Labels = e.Labels
		s.Issues = e.Issues
		s.Nodes = e.Nodes
		s.FetchError = e.FetchError
		s.Demo = e.Demo

	case FilterChanged:
		s.Filter = e.Filter

	case DatesPatched:
		nodes := make([]models.TaskNode, len(s.Nodes))
		copy(nodes, s.Nodes)
		for i := range nodes {
			if nodes[i].ID != e.NodeID {
				continue
			}
			nodes[i].Start = e.Start
			nodes[i].End = e.End
			// The confirmed edit establishes real dates
			nodes[i].HasOriginalStart = true
			nodes[i].HasOriginalEnd = true
			break
		}
		s.Nodes = nodes
	}
	return s
}
