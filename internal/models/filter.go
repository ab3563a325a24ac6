package models

import "time"

// IssueState is the user-selected state filter pushed down to the remote
// issue listing.
type IssueState string

const (
	StateOpened IssueState = "opened"
	StateClosed IssueState = "closed"
	StateAll    IssueState = "all"
)

// Valid reports whether s is one of the three recognized filter states.
func (s IssueState) Valid() bool {
	return s == StateOpened || s == StateClosed || s == StateAll
}

// FilterState is the user's chart filter selection. It is persisted as JSON
// under a single preference key; dates serialize as ISO-8601 and milestone
// ids as a plain number array.
type FilterState struct {
	IssueState   IssueState `json:"issue_state"`
	DateStart    *time.Time `json:"date_start"`
	DateEnd      *time.Time `json:"date_end"`
	MilestoneIDs []int      `json:"milestone_ids"`
}

// DefaultFilterState is the documented fallback used when nothing is
// persisted or the persisted value is malformed: opened issues, a window
// from one month back to two months ahead, no milestone restriction.
func DefaultFilterState(now time.Time) FilterState {
	start := DateOnly(now.AddDate(0, -1, 0))
	end := DateOnly(now.AddDate(0, 2, 0))
	return FilterState{
		IssueState: StateOpened,
		DateStart:  &start,
		DateEnd:    &end,
	}
}

// Restricted reports whether a milestone-id restriction is active.
func (f FilterState) Restricted() bool {
	return len(f.MilestoneIDs) > 0
}

// HasMilestone reports whether id is part of the active restriction.
func (f FilterState) HasMilestone(id int) bool {
	for _, m := range f.MilestoneIDs {
		if m == id {
			return true
		}
	}
	return false
}

// Unbounded reports whether neither date bound is set.
func (f FilterState) Unbounded() bool {
	return f.DateStart == nil && f.DateEnd == nil
}
