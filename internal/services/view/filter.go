// Package view computes the visible subset of the task-node list for the
// active filter selection, keeping parent/child consistency: a milestone is
// shown iff it has a visible child, a checklist item iff its issue is
// visible.
package view

import (
	"github.com/mkarlsen/ganttdash/internal/models"
	"github.com/mkarlsen/ganttdash/internal/types"
)

// Apply filters nodes by the date window and milestone restriction. Input
// order is preserved. Nodes whose ids don't parse are dropped; the builder
// never produces such nodes.
func Apply(nodes []models.TaskNode, fs models.FilterState) []models.TaskNode {
	if fs.Unbounded() && !fs.Restricted() {
		return nodes
	}

	// First pass: decide issue visibility; milestones and checklist items
	// derive from it.
	issueVisible := make(map[string]bool)
	milestoneHasChild := make(map[string]bool)

	for _, n := range nodes {
		ref, ok := types.ParseNodeID(n.ID)
		if !ok || ref.Kind != types.KindIssue {
			continue
		}

		visible := passesDateWindow(n, fs)
		if fs.Restricted() {
			// Issues outside the selected milestones are excluded, and so
			// are top-level issues while a restriction is active.
			parentRef, hasParent := types.ParseNodeID(n.ParentID)
			visible = visible && hasParent && fs.HasMilestone(parentRef.MilestoneID)
		}

		issueVisible[n.ID] = visible
		if visible && n.ParentID != "" {
			milestoneHasChild[n.ParentID] = true
		}
	}

	out := make([]models.TaskNode, 0, len(nodes))
	for _, n := range nodes {
		ref, ok := types.ParseNodeID(n.ID)
		if !ok {
			continue
		}

		switch ref.Kind {
		case types.KindMilestone:
			// A milestone with zero visible children is dropped even when
			// its own range overlaps the window.
			if !milestoneHasChild[n.ID] {
				continue
			}
			if fs.Restricted() && !fs.HasMilestone(ref.MilestoneID) {
				continue
			}
		case types.KindIssue:
			if !issueVisible[n.ID] {
				continue
			}
		case types.KindChecklist:
			if !issueVisible[n.ParentID] {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// passesDateWindow applies the interval test. An issue whose displayed span
// is entirely inferred is always visible; the placeholder dates are not real
// data to filter on. An issue with one real date still participates using
// its inferred other bound.
func passesDateWindow(n models.TaskNode, fs models.FilterState) bool {
	if !n.HasOriginalStart && !n.HasOriginalEnd {
		return true
	}

	switch {
	case fs.DateStart != nil && fs.DateEnd != nil:
		return !n.Start.After(*fs.DateEnd) && !n.End.Before(*fs.DateStart)
	case fs.DateStart != nil:
		return !n.End.Before(*fs.DateStart)
	case fs.DateEnd != nil:
		return !n.Start.After(*fs.DateEnd)
	default:
		return true
	}
}
