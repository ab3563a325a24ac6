package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/mkarlsen/ganttdash/internal/gitlab"
	"github.com/mkarlsen/ganttdash/internal/models"
)

// DateUpdate records one remote date write.
type DateUpdate struct {
	ID         int
	Start, End time.Time
}

// StubSource is a scriptable in-memory implementation of gitlab.Source.
type StubSource struct {
	mu sync.Mutex

	Milestones []models.RemoteMilestone
	Issues     []models.RemoteIssue
	Labels     []models.RemoteLabel

	ListErr   error
	UpdateErr error

	MilestoneUpdates []DateUpdate
	IssueUpdates     []DateUpdate

	ListCalls int

	// OnListLabels runs inside ListLabels before it returns; tests use it to
	// interleave a competing refresh deterministically.
	OnListLabels func()
}

var _ gitlab.Source = (*StubSource)(nil)

// SetIssues swaps the served issue list; safe to call while a fetch is in
// flight.
func (s *StubSource) SetIssues(issues []models.RemoteIssue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Issues = issues
}

func (s *StubSource) ListMilestones(_ context.Context, _ bool) ([]models.RemoteMilestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListCalls++
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return append([]models.RemoteMilestone(nil), s.Milestones...), nil
}

func (s *StubSource) ListIssues(_ context.Context, _ gitlab.IssueListOptions) ([]models.RemoteIssue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return append([]models.RemoteIssue(nil), s.Issues...), nil
}

func (s *StubSource) ListLabels(_ context.Context) ([]models.RemoteLabel, error) {
	s.mu.Lock()
	hook := s.OnListLabels
	s.OnListLabels = nil
	err := s.ListErr
	labels := append([]models.RemoteLabel(nil), s.Labels...)
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return labels, nil
}

func (s *StubSource) UpdateMilestoneDates(_ context.Context, milestoneID int, start, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	s.MilestoneUpdates = append(s.MilestoneUpdates, DateUpdate{ID: milestoneID, Start: start, End: end})
	return nil
}

func (s *StubSource) UpdateIssueDates(_ context.Context, issueIID int, start, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	s.IssueUpdates = append(s.IssueUpdates, DateUpdate{ID: issueIID, Start: start, End: end})
	return nil
}
