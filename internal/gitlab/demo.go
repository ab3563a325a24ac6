package gitlab

import (
	"time"

	"github.com/mkarlsen/ganttdash/internal/models"
)

// DemoSnapshot returns a small built-in dataset, dated relative to now, used
// when a fetch fails so the chart stays populated. Ids are high enough not
// to collide with anything a real project is likely to return.
func DemoSnapshot(now time.Time) ([]models.RemoteMilestone, []models.RemoteIssue, []models.RemoteLabel) {
	day := func(offset int) string {
		return models.FormatDate(now.AddDate(0, 0, offset))
	}

	milestones := []models.RemoteMilestone{
		{ID: 900001, IID: 1, Title: "Demo: First release", State: "active", StartDate: day(-14), DueDate: day(14)},
		{ID: 900002, IID: 2, Title: "Demo: Polish", State: "active", StartDate: day(10), DueDate: day(40)},
	}

	labels := []models.RemoteLabel{
		{ID: 910001, Name: "feature", Color: "#428BCA", TextColor: "#FFFFFF"},
		{ID: 910002, Name: "bug", Color: "#D9534F", TextColor: "#FFFFFF"},
		{ID: 910003, Name: "docs", Color: "#5CB85C", TextColor: "#FFFFFF"},
	}

	issues := []models.RemoteIssue{
		{
			ID: 920001, IID: 1,
			Title:       "Demo: Connect to your project",
			Description: "Configure a GitLab token to replace this demo data.\n\n- [x] Install ganttdash\n- [ ] Create an access token\n- [ ] Set gitlab.project in the config",
			State:       models.IssueOpened,
			Labels:      []string{"docs"},
			Milestone:   &milestones[0],
			CreatedAt:   day(-14),
			StartDate:   day(-10),
			DueDate:     day(4),
			TaskCompletion: &models.TaskCompletion{Count: 3, CompletedCount: 1},
		},
		{
			ID: 920002, IID: 2,
			Title:     "Demo: Drag bars to reschedule",
			State:     models.IssueOpened,
			Labels:    []string{"feature"},
			Milestone: &milestones[0],
			CreatedAt: day(-7),
			StartDate: day(-3),
			DueDate:   day(10),
		},
		{
			ID: 920003, IID: 3,
			Title:     "Demo: An issue without dates",
			State:     models.IssueOpened,
			Labels:    []string{"bug"},
			Milestone: &milestones[1],
			CreatedAt: day(-2),
		},
		{
			ID: 920004, IID: 4,
			Title:     "Demo: A closed top-level issue",
			State:     models.IssueClosed,
			CreatedAt: day(-20),
			StartDate: day(-20),
			DueDate:   day(-12),
		},
	}

	return milestones, issues, labels
}
