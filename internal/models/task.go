package models

import "time"

// ChecklistItem is one markdown task-list line parsed out of an issue
// description.
type ChecklistItem struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// ParsedIssue is a RemoteIssue plus the derived checklist and resolved
// label records. Built once per fetch and immutable until the next one.
type ParsedIssue struct {
	RemoteIssue
	Tasks        []ChecklistItem `json:"tasks"`
	LabelObjects []RemoteLabel   `json:"label_objects"`
}

// NodeKind distinguishes milestone rows from regular task rows in the chart.
type NodeKind string

const (
	KindTask    NodeKind = "task"
	KindSummary NodeKind = "summary"
)

// TaskNode is the unifying entity of the hierarchy view: a milestone, an
// issue, or a checklist sub-item, flattened with parent links.
//
// HasOriginalStart/HasOriginalEnd record whether the remote record carried a
// real, parseable date. When false, Start/End hold an inferred display value
// that must never be written back to GitLab as if it were user-entered.
type TaskNode struct {
	ID               string        `json:"id"`
	Text             string        `json:"text"`
	Start            time.Time     `json:"start"`
	End              time.Time     `json:"end"`
	Progress         int           `json:"progress"`
	Kind             NodeKind      `json:"kind"`
	ParentID         string        `json:"parent_id,omitempty"`
	HasOriginalStart bool          `json:"has_original_start"`
	HasOriginalEnd   bool          `json:"has_original_end"`
	WebURL           string        `json:"web_url,omitempty"`
	Labels           []RemoteLabel `json:"labels,omitempty"`
}
