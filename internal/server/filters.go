package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkarlsen/ganttdash/internal/models"
)

// filterRequest carries a partial filter update. Absent fields keep their
// current value; an empty date string clears that bound.
type filterRequest struct {
	State        *string `json:"state"`
	DateStart    *string `json:"date_start"`
	DateEnd      *string `json:"date_end"`
	MilestoneIDs *[]int  `json:"milestone_ids"`
}

type milestoneOption struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	State string `json:"state"`
}

// handleGetFilters returns the active filter selection together with the
// milestone list the frontend offers as choices.
func (s *Server) handleGetFilters(c *gin.Context) {
	fs := s.store.State().Filter

	options := []milestoneOption{}
	for _, m := range s.store.MilestoneRefs() {
		options = append(options, milestoneOption{ID: m.ID, Title: m.Title, State: m.State})
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"state":         fs.IssueState,
		"date_start":    dateString(fs.DateStart),
		"date_end":      dateString(fs.DateEnd),
		"milestone_ids": fs.MilestoneIDs,
		"milestones":    options,
	})
}

// handlePutFilters merges the request into the current filter, persists it,
// and refetches so the remote-side state filter takes effect.
func (s *Server) handlePutFilters(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	fs := s.store.State().Filter

	if req.State != nil {
		state := models.IssueState(*req.State)
		if !state.Valid() {
			s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid issue state %q", *req.State))
			return
		}
		fs.IssueState = state
	}
	if req.DateStart != nil {
		bound, err := parseBound(*req.DateStart)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, err)
			return
		}
		fs.DateStart = bound
	}
	if req.DateEnd != nil {
		bound, err := parseBound(*req.DateEnd)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, err)
			return
		}
		fs.DateEnd = bound
	}
	if req.MilestoneIDs != nil {
		fs.MilestoneIDs = *req.MilestoneIDs
	}

	if err := s.store.SetFilter(c.Request.Context(), fs); err != nil {
		// The selection is live in memory; only persistence failed
		s.logger.Warn("filter not persisted", slog.String("error", err.Error()))
	}

	s.metrics.IncFetchesTotal()
	applied, err := s.store.Refresh(c.Request.Context())
	if err != nil {
		s.metrics.IncFetchFailures()
	}
	if !applied {
		s.metrics.IncStaleDiscards()
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"state":         fs.IssueState,
		"date_start":    dateString(fs.DateStart),
		"date_end":      dateString(fs.DateEnd),
		"milestone_ids": fs.MilestoneIDs,
	})
}

// parseBound reads a calendar date bound; empty clears it.
func parseBound(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, ok := models.ParseDate(s)
	if !ok {
		return nil, fmt.Errorf("invalid date %q", s)
	}
	return &t, nil
}

func dateString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return models.FormatDate(*t)
}
