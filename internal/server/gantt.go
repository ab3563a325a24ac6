package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkarlsen/ganttdash/internal/gitlab"
	"github.com/mkarlsen/ganttdash/internal/models"
	"github.com/mkarlsen/ganttdash/internal/services/edit"
)

type editDatesRequest struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// handleGantt serves the filtered chart rows plus the display context the
// frontend needs to render them.
func (s *Server) handleGantt(c *gin.Context) {
	snap := s.store.State()
	nodes := s.store.VisibleNodes()

	respondSuccess(c, http.StatusOK, gin.H{
		"tasks":      nodes,
		"theme":      s.theme,
		"demo":       snap.Demo,
		"error":      snap.FetchError,
		"generation": snap.Generation,
	})
}

// handleEditDates applies a dragged date range to one chart row and pushes
// it to GitLab before the in-memory state is touched.
func (s *Server) handleEditDates(c *gin.Context) {
	nodeID := c.Param("id")

	var req editDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Start == nil || req.End == nil {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("start and end are required"))
		return
	}
	start, ok := models.ParseDate(*req.Start)
	if !ok {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid start date %q", *req.Start))
		return
	}
	end, ok := models.ParseDate(*req.End)
	if !ok {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid end date %q", *req.End))
		return
	}

	s.metrics.IncEditsTotal()
	if err := s.edits.ApplyEdit(c.Request.Context(), nodeID, start, end); err != nil {
		s.metrics.IncEditFailures()
		s.respondError(c, editStatus(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "updated"})
}

// handleRefresh triggers a full fetch-and-rebuild cycle.
func (s *Server) handleRefresh(c *gin.Context) {
	s.metrics.IncFetchesTotal()
	applied, err := s.store.Refresh(c.Request.Context())
	if err != nil {
		s.metrics.IncFetchFailures()
		s.logger.Warn("refresh degraded", slog.String("error", err.Error()))
	}
	if !applied {
		s.metrics.IncStaleDiscards()
	}

	snap := s.store.State()
	respondSuccess(c, http.StatusOK, gin.H{
		"applied":    applied,
		"demo":       snap.Demo,
		"error":      snap.FetchError,
		"generation": snap.Generation,
	})
}

// editStatus maps a date-edit failure to an HTTP status: caller mistakes
// are 4xx, upstream GitLab failures are 502.
func editStatus(err error) int {
	switch {
	case errors.Is(err, edit.ErrNotEditable), errors.Is(err, edit.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, edit.ErrUnknownIssue):
		return http.StatusNotFound
	case gitlab.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
