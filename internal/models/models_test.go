package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"calendar date", "2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"rfc3339 timestamp", "2024-01-15T09:30:00Z", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"rfc3339 with offset", "2024-01-15T23:30:00+02:00", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "next tuesday", time.Time{}, false},
		{"partial date", "2024-01", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDateOnlyTruncates(t *testing.T) {
	in := time.Date(2024, 3, 7, 18, 45, 12, 999, time.FixedZone("CET", 3600))
	got := DateOnly(in)
	assert.Equal(t, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), got)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2024-03-07", FormatDate(time.Date(2024, 3, 7, 15, 0, 0, 0, time.UTC)))
}

func TestIssueStateValid(t *testing.T) {
	assert.True(t, StateOpened.Valid())
	assert.True(t, StateClosed.Valid())
	assert.True(t, StateAll.Valid())
	assert.False(t, IssueState("resolved").Valid())
	assert.False(t, IssueState("").Valid())
}

func TestDefaultFilterState(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	fs := DefaultFilterState(now)

	assert.Equal(t, StateOpened, fs.IssueState)
	require.NotNil(t, fs.DateStart)
	require.NotNil(t, fs.DateEnd)
	assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), *fs.DateStart)
	assert.Equal(t, time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC), *fs.DateEnd)
	assert.Empty(t, fs.MilestoneIDs)
}

func TestFilterStateHelpers(t *testing.T) {
	var fs FilterState
	assert.True(t, fs.Unbounded())
	assert.False(t, fs.Restricted())
	assert.False(t, fs.HasMilestone(1))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fs.DateStart = &start
	assert.False(t, fs.Unbounded())

	fs.MilestoneIDs = []int{3, 9}
	assert.True(t, fs.Restricted())
	assert.True(t, fs.HasMilestone(9))
	assert.False(t, fs.HasMilestone(4))
}

func TestFilterStateRoundTrip(t *testing.T) {
	fs := DefaultFilterState(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	fs.MilestoneIDs = []int{7}

	raw, err := json.Marshal(fs)
	require.NoError(t, err)

	var back FilterState
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, fs.IssueState, back.IssueState)
	assert.Equal(t, *fs.DateStart, *back.DateStart)
	assert.Equal(t, fs.MilestoneIDs, back.MilestoneIDs)
}

func TestIssueJSONFieldNames(t *testing.T) {
	raw := `{
		"id": 11, "iid": 3, "title": "Fix login", "state": "opened",
		"labels": ["bug"],
		"created_at": "2024-01-02T08:00:00Z",
		"due_date": "2024-01-20",
		"task_completion_status": {"count": 4, "completed_count": 1}
	}`

	var issue RemoteIssue
	require.NoError(t, json.Unmarshal([]byte(raw), &issue))
	assert.Equal(t, 11, issue.ID)
	assert.Equal(t, 3, issue.IID)
	assert.Equal(t, []string{"bug"}, issue.Labels)
	require.NotNil(t, issue.TaskCompletion)
	assert.Equal(t, 4, issue.TaskCompletion.Count)
	assert.Equal(t, 1, issue.TaskCompletion.CompletedCount)
}
