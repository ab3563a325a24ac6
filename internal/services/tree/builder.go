// Package tree builds the flat task-node hierarchy out of normalized
// milestones and issues, inferring display dates where the remote records
// carry none. The build is deterministic: identical inputs and an identical
// injected "now" produce identical output.
package tree

import (
	"time"

	"github.com/mkarlsen/ganttdash/internal/models"
	"github.com/mkarlsen/ganttdash/internal/types"
)

// DefaultSpanDays is the inferred duration for records missing an end date.
const DefaultSpanDays = 7

// Builder converts remote records into task nodes. SpanDays overrides the
// default inferred duration when positive.
type Builder struct {
	SpanDays int
}

// Build produces the task-node list: milestones first, then each issue
// followed by its checklist sub-items. The "now" parameter is the fallback
// start for records with no usable date; it is injected rather than read
// from the wall clock.
func (b Builder) Build(milestones []models.RemoteMilestone, issues []models.ParsedIssue, now time.Time) []models.TaskNode {
	span := b.span()
	today := models.DateOnly(now)

	nodes := make([]models.TaskNode, 0, len(milestones)+len(issues))

	for _, m := range milestones {
		start, hasStart := models.ParseDate(m.StartDate)
		if !hasStart {
			start = today
		}
		end, hasEnd := models.ParseDate(m.DueDate)
		if !hasEnd {
			end = start.AddDate(0, 0, span)
		}

		nodes = append(nodes, models.TaskNode{
			ID:               types.MilestoneNodeID(m.ID),
			Text:             m.Title,
			Start:            start,
			End:              clampEnd(start, end),
			Kind:             models.KindSummary,
			HasOriginalStart: hasStart,
			HasOriginalEnd:   hasEnd,
			WebURL:           m.WebURL,
		})
	}

	for _, issue := range issues {
		node := b.buildIssue(issue, today, span)
		nodes = append(nodes, node)

		for i, item := range issue.Tasks {
			progress := 0
			if item.Checked {
				progress = 100
			}
			nodes = append(nodes, models.TaskNode{
				ID:               types.ChecklistNodeID(issue.ID, i),
				Text:             item.Text,
				Start:            node.Start,
				End:              node.End,
				Progress:         progress,
				Kind:             models.KindTask,
				ParentID:         node.ID,
				HasOriginalStart: node.HasOriginalStart,
				HasOriginalEnd:   node.HasOriginalEnd,
			})
		}
	}

	return nodes
}

func (b Builder) buildIssue(issue models.ParsedIssue, today time.Time, span int) models.TaskNode {
	// HasOriginalStart reflects only the start_date field itself; the
	// created_at fallback is display-only.
	start, hasStart := models.ParseDate(issue.StartDate)
	if !hasStart {
		if created, ok := models.ParseDate(issue.CreatedAt); ok {
			start = created
		} else {
			start = today
		}
	}

	end, hasEnd := models.ParseDate(issue.DueDate)
	if !hasEnd {
		end = start.AddDate(0, 0, span)
	}

	parentID := ""
	if issue.Milestone != nil {
		parentID = types.MilestoneNodeID(issue.Milestone.ID)
	}

	return models.TaskNode{
		ID:               types.IssueNodeID(issue.ID),
		Text:             issue.Title,
		Start:            start,
		End:              clampEnd(start, end),
		Progress:         issueProgress(issue),
		Kind:             models.KindTask,
		ParentID:         parentID,
		HasOriginalStart: hasStart,
		HasOriginalEnd:   hasEnd,
		WebURL:           issue.WebURL,
		Labels:           issue.LabelObjects,
	}
}

// issueProgress rolls up completion: checklist counts when present, else
// 100 for closed issues, else 0.
func issueProgress(issue models.ParsedIssue) int {
	if tc := issue.TaskCompletion; tc != nil && tc.Count > 0 {
		ratio := float64(tc.CompletedCount) / float64(tc.Count)
		return int(ratio*100 + 0.5)
	}
	if issue.State == models.IssueClosed {
		return 100
	}
	return 0
}

// clampEnd enforces the minimum one-day span: bad remote data can put the
// end on or before the start.
func clampEnd(start, end time.Time) time.Time {
	if !end.After(start) {
		return start.AddDate(0, 0, 1)
	}
	return end
}

func (b Builder) span() int {
	if b.SpanDays > 0 {
		return b.SpanDays
	}
	return DefaultSpanDays
}
