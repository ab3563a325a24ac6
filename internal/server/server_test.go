package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkarlsen/ganttdash/internal/database"
	"github.com/mkarlsen/ganttdash/internal/models"
	"github.com/mkarlsen/ganttdash/internal/services/edit"
	"github.com/mkarlsen/ganttdash/internal/store"
	"github.com/mkarlsen/ganttdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
}

func fixtureRemote() *testutil.StubSource {
	milestone := models.RemoteMilestone{ID: 7, Title: "v1", State: models.MilestoneActive, StartDate: "2024-01-01", DueDate: "2024-02-01"}
	return &testutil.StubSource{
		Milestones: []models.RemoteMilestone{milestone},
		Issues: []models.RemoteIssue{
			{
				ID: 42, IID: 4, Title: "Ship", State: models.IssueOpened,
				Milestone: &milestone, StartDate: "2024-01-05", DueDate: "2024-01-20",
			},
		},
		Labels: []models.RemoteLabel{{ID: 1, Name: "bug", Color: "#D9534F"}},
	}
}

func newTestServer(t *testing.T, remote *testutil.StubSource) *Server {
	t.Helper()

	prefs := database.NewPrefRepository(testutil.SetupTestDB(t))
	st := store.New(context.Background(), remote, prefs, 0, fixedNow)
	_, err := st.Refresh(context.Background())
	if err != nil {
		t.Logf("initial refresh degraded: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	edits := edit.NewCoordinator(remote, st)
	return New(st, edits, logger, "", "light")
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, fixtureRemote())

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestGanttReturnsTasks(t *testing.T) {
	srv := newTestServer(t, fixtureRemote())

	rec := doJSON(t, srv, http.MethodGet, "/api/gantt", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "light", body["theme"])
	assert.Equal(t, false, body["demo"])
	assert.Equal(t, "", body["error"])

	tasks, ok := body["tasks"].([]any)
	require.True(t, ok)
	require.Len(t, tasks, 2)

	first := tasks[0].(map[string]any)
	assert.Equal(t, "milestone-7", first["id"])
	assert.Equal(t, "summary", first["kind"])
	second := tasks[1].(map[string]any)
	assert.Equal(t, "issue-42", second["id"])
	assert.Equal(t, "milestone-7", second["parent_id"])
}

func TestGanttReportsDemoFallback(t *testing.T) {
	remote := fixtureRemote()
	remote.ListErr = errors.New("connection refused")
	srv := newTestServer(t, remote)

	rec := doJSON(t, srv, http.MethodGet, "/api/gantt", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["demo"])
	assert.Contains(t, body["error"], "connection refused")
	assert.NotEmpty(t, body["tasks"])
}

func TestEditDatesSuccess(t *testing.T) {
	remote := fixtureRemote()
	srv := newTestServer(t, remote)

	rec := doJSON(t, srv, http.MethodPut, "/api/gantt/issue-42/dates", map[string]string{
		"start": "2024-01-06",
		"end":   "2024-01-22",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, remote.IssueUpdates, 1)
	assert.Equal(t, 4, remote.IssueUpdates[0].ID)
	assert.Equal(t, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), remote.IssueUpdates[0].Start)

	// Local state patched after confirmed success
	var node models.TaskNode
	for _, n := range srv.store.State().Nodes {
		if n.ID == "issue-42" {
			node = n
		}
	}
	assert.Equal(t, time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC), node.End)
	assert.True(t, node.HasOriginalEnd)

	assert.Equal(t, int64(1), srv.metrics.EditsTotal.Load())
	assert.Equal(t, int64(0), srv.metrics.EditFailures.Load())
}

func TestEditDatesRejectsChecklistNode(t *testing.T) {
	srv := newTestServer(t, fixtureRemote())

	rec := doJSON(t, srv, http.MethodPut, "/api/gantt/issue-42-task-0/dates", map[string]string{
		"start": "2024-01-06",
		"end":   "2024-01-22",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEditDatesInvalidRange(t *testing.T) {
	srv := newTestServer(t, fixtureRemote())

	rec := doJSON(t, srv, http.MethodPut, "/api/gantt/issue-42/dates", map[string]string{
		"start": "2024-01-22",
		"end":   "2024-01-06",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int64(1), srv.metrics.EditFailures.Load())
}

func TestEditDatesMissingFields(t *testing.T) {
	srv := newTestServer(t, fixtureRemote())

	rec := doJSON(t, srv, http.MethodPut, "/api/gantt/issue-42/dates", map[string]string{
		"start": "2024-01-06",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEditDatesRemoteFailure(t *testing.T) {
	remote := fixtureRemote()
	srv := newTestServer(t, remote)
	remote.UpdateErr = errors.New("503 from upstream")

	rec := doJSON(t, srv, http.MethodPut, "/api/gantt/milestone-7/dates", map[string]string{
		"start": "2024-01-06",
		"end":   "2024-01-22",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Empty(t, remote.MilestoneUpdates)
}

func TestGetFilters(t *testing.T) {
	srv := newTestServer(t, fixtureRemote())

	rec := doJSON(t, srv, http.MethodGet, "/api/filters", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "opened", body["state"])

	options, ok := body["milestones"].([]any)
	require.True(t, ok)
	require.Len(t, options, 1)
	assert.Equal(t, "v1", options[0].(map[string]any)["title"])
}

func TestPutFiltersMergesAndRefetches(t *testing.T) {
	remote := fixtureRemote()
	srv := newTestServer(t, remote)
	before := remote.ListCalls

	rec := doJSON(t, srv, http.MethodPut, "/api/filters", map[string]any{
		"state":         "all",
		"milestone_ids": []int{7},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "all", body["state"])

	fs := srv.store.State().Filter
	assert.Equal(t, models.StateAll, fs.IssueState)
	assert.Equal(t, []int{7}, fs.MilestoneIDs)
	// Date bounds were absent from the request and kept their values
	assert.NotNil(t, fs.DateStart)

	assert.Greater(t, remote.ListCalls, before)
}

func TestPutFiltersClearsDateBound(t *testing.T) {
	srv := newTestServer(t, fixtureRemote())

	rec := doJSON(t, srv, http.MethodPut, "/api/filters", map[string]any{
		"date_start": "",
		"date_end":   "2024-03-01",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	fs := srv.store.State().Filter
	assert.Nil(t, fs.DateStart)
	require.NotNil(t, fs.DateEnd)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *fs.DateEnd)
}

func TestPutFiltersRejectsBadState(t *testing.T) {
	srv := newTestServer(t, fixtureRemote())

	rec := doJSON(t, srv, http.MethodPut, "/api/filters", map[string]any{
		"state": "resolved",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshEndpoint(t *testing.T) {
	srv := newTestServer(t, fixtureRemote())

	rec := doJSON(t, srv, http.MethodPost, "/api/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["applied"])
	assert.Equal(t, int64(1), srv.metrics.FetchesTotal.Load())
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, fixtureRemote())

	doJSON(t, srv, http.MethodPost, "/api/refresh", nil)
	rec := doJSON(t, srv, http.MethodGet, "/api/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["fetches_total"])
	assert.NotEmpty(t, body["uptime"])
}

func TestUnknownAPIRoute(t *testing.T) {
	srv := newTestServer(t, fixtureRemote())

	rec := doJSON(t, srv, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
