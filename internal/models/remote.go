// Package models defines the domain records shared across the pipeline:
// the raw GitLab shapes, their parsed forms, and the task-node hierarchy
// handed to the chart.
package models

import "time"

// Issue and milestone state strings as GitLab reports them.
const (
	IssueOpened = "opened"
	IssueClosed = "closed"

	MilestoneActive = "active"
	MilestoneClosed = "closed"
)

// RemoteUser is a GitLab user reference attached to issues.
type RemoteUser struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	WebURL    string `json:"web_url"`
}

// RemoteLabel is a full label record as returned by the labels endpoint.
type RemoteLabel struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	TextColor string `json:"text_color"`
}

// RemoteMilestone is a milestone as returned by the milestones endpoint.
// Date fields stay raw strings; parsing happens at build time so a malformed
// date degrades to "absent" instead of failing the fetch.
type RemoteMilestone struct {
	ID        int    `json:"id"`
	IID       int    `json:"iid"`
	Title     string `json:"title"`
	State     string `json:"state"`
	StartDate string `json:"start_date"`
	DueDate   string `json:"due_date"`
	WebURL    string `json:"web_url"`
}

// TaskCompletion carries GitLab's checklist completion counts for an issue.
type TaskCompletion struct {
	Count          int `json:"count"`
	CompletedCount int `json:"completed_count"`
}

// RemoteIssue is an issue as returned by the issues endpoint. Labels are
// names only; full records are resolved during normalization.
type RemoteIssue struct {
	ID             int              `json:"id"`
	IID            int              `json:"iid"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	State          string           `json:"state"`
	Labels         []string         `json:"labels"`
	Milestone      *RemoteMilestone `json:"milestone"`
	Assignees      []RemoteUser     `json:"assignees"`
	Author         RemoteUser       `json:"author"`
	CreatedAt      string           `json:"created_at"`
	StartDate      string           `json:"start_date"`
	DueDate        string           `json:"due_date"`
	WebURL         string           `json:"web_url"`
	TaskCompletion *TaskCompletion  `json:"task_completion_status"`
}

// dateLayouts are the formats GitLab uses for date fields. Calendar dates
// for start/due, RFC 3339 for timestamps like created_at.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseDate parses a remote date string, truncating any time component.
// A missing or malformed value reports ok=false; that is the whole error
// handling contract for remote dates (they degrade to "absent").
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOnly(t), true
		}
	}
	return time.Time{}, false
}

// DateOnly normalizes a time to midnight UTC. All pipeline dates are
// calendar dates; time of day never survives past this point.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a calendar date the way GitLab expects it in updates.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
