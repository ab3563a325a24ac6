// Package gitlab is the remote data source collaborator: a thin REST client
// for the GitLab API plus the built-in demonstration dataset used when the
// remote is unreachable.
package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mkarlsen/ganttdash/internal/models"
)

// Source defines the remote operations the dashboard consumes. The store and
// the edit coordinator depend on this interface, not on the HTTP client.
type Source interface {
	ListMilestones(ctx context.Context, onlyActive bool) ([]models.RemoteMilestone, error)
	ListIssues(ctx context.Context, opts IssueListOptions) ([]models.RemoteIssue, error)
	ListLabels(ctx context.Context) ([]models.RemoteLabel, error)
	UpdateMilestoneDates(ctx context.Context, milestoneID int, start, end time.Time) error
	UpdateIssueDates(ctx context.Context, issueIID int, start, end time.Time) error
}

// IssueListOptions narrows the remote issue listing.
type IssueListOptions struct {
	State           models.IssueState
	UpdatedAfter    *time.Time
	MilestoneTitles []string
}

// Client talks to one GitLab project over the REST API.
//
// The numeric project id behind the configured project path and the
// work-item ids behind issue iids are resolved lazily and memoized;
// ResetCache clears both (used by tests and when the configured project
// changes).
type Client struct {
	baseURL string
	token   string
	project string
	client  *http.Client

	mu          sync.Mutex
	projectID   int
	workItemIDs map[int]int
}

// NewClient creates a client for the given instance, token, and project path
// (e.g. "group/project").
func NewClient(baseURL, token, project string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		project:     project,
		client:      &http.Client{Timeout: 20 * time.Second},
		workItemIDs: make(map[int]int),
	}
}

// ResetCache drops the memoized project and work-item lookups.
func (c *Client) ResetCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projectID = 0
	c.workItemIDs = make(map[int]int)
}

// doRequest performs one API call and returns the raw body.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	u := c.baseURL + "/api/v4" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("PRIVATE-TOKEN", c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 400 {
		return nil, &APIError{Status: res.StatusCode, Message: apiMessage(data)}
	}
	return data, nil
}

// apiMessage pulls the "message" field out of an error body, falling back to
// the raw body.
func apiMessage(body []byte) string {
	var out struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(body, &out); err == nil && out.Message != nil {
		return fmt.Sprintf("%v", out.Message)
	}
	return strings.TrimSpace(string(body))
}

// resolveProjectID resolves and memoizes the numeric id behind the project
// path.
func (c *Client) resolveProjectID(ctx context.Context) (int, error) {
	if c.project == "" {
		return 0, ErrNoProject
	}

	c.mu.Lock()
	cached := c.projectID
	c.mu.Unlock()
	if cached != 0 {
		return cached, nil
	}

	data, err := c.doRequest(ctx, http.MethodGet, "/projects/"+url.PathEscape(c.project), nil, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve project %q: %w", c.project, err)
	}

	var out struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, fmt.Errorf("failed to decode project: %w", err)
	}

	c.mu.Lock()
	c.projectID = out.ID
	c.mu.Unlock()
	return out.ID, nil
}

// ListMilestones fetches the project's milestones, optionally only active
// ones.
func (c *Client) ListMilestones(ctx context.Context, onlyActive bool) ([]models.RemoteMilestone, error) {
	pid, err := c.resolveProjectID(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{"per_page": {"100"}}
	if onlyActive {
		query.Set("state", "active")
	}

	data, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/milestones", pid), query, nil)
	if err != nil {
		return nil, err
	}

	var milestones []models.RemoteMilestone
	if err := json.Unmarshal(data, &milestones); err != nil {
		return nil, fmt.Errorf("failed to decode milestones: %w", err)
	}
	return milestones, nil
}

// ListIssues fetches the project's issues. A milestone-title set is served
// with one request per title, since the API takes a single milestone filter.
func (c *Client) ListIssues(ctx context.Context, opts IssueListOptions) ([]models.RemoteIssue, error) {
	pid, err := c.resolveProjectID(ctx)
	if err != nil {
		return nil, err
	}

	titles := opts.MilestoneTitles
	if len(titles) == 0 {
		titles = []string{""}
	}

	var issues []models.RemoteIssue
	for _, title := range titles {
		query := url.Values{"per_page": {"100"}}
		if opts.State != "" && opts.State != models.StateAll {
			query.Set("state", string(opts.State))
		}
		if opts.UpdatedAfter != nil {
			query.Set("updated_after", opts.UpdatedAfter.UTC().Format(time.RFC3339))
		}
		if title != "" {
			query.Set("milestone", title)
		}

		data, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/issues", pid), query, nil)
		if err != nil {
			return nil, err
		}

		var page []models.RemoteIssue
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("failed to decode issues: %w", err)
		}
		issues = append(issues, page...)
	}
	return issues, nil
}

// ListLabels fetches the project's labels.
func (c *Client) ListLabels(ctx context.Context) ([]models.RemoteLabel, error) {
	pid, err := c.resolveProjectID(ctx)
	if err != nil {
		return nil, err
	}

	data, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/labels", pid), url.Values{"per_page": {"100"}}, nil)
	if err != nil {
		return nil, err
	}

	var labels []models.RemoteLabel
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("failed to decode labels: %w", err)
	}
	return labels, nil
}

// UpdateMilestoneDates writes a milestone's date range as calendar dates.
func (c *Client) UpdateMilestoneDates(ctx context.Context, milestoneID int, start, end time.Time) error {
	pid, err := c.resolveProjectID(ctx)
	if err != nil {
		return err
	}

	payload := map[string]string{
		"start_date": models.FormatDate(start),
		"due_date":   models.FormatDate(end),
	}
	_, err = c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/projects/%d/milestones/%d", pid, milestoneID), nil, payload)
	return err
}

// UpdateIssueDates writes an issue's date range. The issues endpoint does not
// carry a start date, so the write goes through the work item behind the
// issue, addressed by a separate id that is looked up once per iid.
func (c *Client) UpdateIssueDates(ctx context.Context, issueIID int, start, end time.Time) error {
	pid, err := c.resolveProjectID(ctx)
	if err != nil {
		return err
	}

	wid, err := c.workItemID(ctx, pid, issueIID)
	if err != nil {
		return err
	}

	payload := map[string]string{
		"start_date": models.FormatDate(start),
		"due_date":   models.FormatDate(end),
	}
	_, err = c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/projects/%d/work_items/%d", pid, wid), nil, payload)
	return err
}

// workItemID resolves and memoizes the work-item id behind an issue iid.
func (c *Client) workItemID(ctx context.Context, pid, issueIID int) (int, error) {
	c.mu.Lock()
	cached, ok := c.workItemIDs[issueIID]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	data, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/issues/%d", pid, issueIID), nil, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve work item for issue %d: %w", issueIID, err)
	}

	var out struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, fmt.Errorf("failed to decode issue %d: %w", issueIID, err)
	}

	c.mu.Lock()
	c.workItemIDs[issueIID] = out.ID
	c.mu.Unlock()
	return out.ID, nil
}
