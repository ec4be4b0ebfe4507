package entitystore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ignite/phishing-dashboard/internal/config"
	"github.com/ignite/phishing-dashboard/internal/domain"
	"github.com/ignite/phishing-dashboard/internal/pkg/httpretry"
	"github.com/ignite/phishing-dashboard/internal/pkg/logger"
)

// maxPages bounds a listing so a backend that ignores skip cannot loop forever.
const maxPages = 1000

// Client talks to the phishing simulation backend over HTTP.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient httpretry.HTTPDoer
}

var _ Store = (*Client)(nil)

// NewClient creates a backend client. Reads are retried on transient
// failures; writes are sent once. Repeated failures open a circuit
// breaker so refreshes fail fast while the backend is down.
func NewClient(cfg config.EntityStoreConfig) *Client {
	retry := httpretry.NewRetryClient(&http.Client{
		Timeout: cfg.Timeout(),
	}, cfg.MaxRetries)
	return NewClientWithDoer(cfg, httpretry.NewBreakerClient(retry, "entity-store", cfg.BreakerFailures, cfg.BreakerOpen()))
}

// NewClientWithDoer lets tests and callers supply their own transport.
func NewClientWithDoer(cfg config.EntityStoreConfig, doer httpretry.HTTPDoer) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		pageSize:   pageSize,
		httpClient: doer,
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// listAll pages through a collection with skip/limit until a short page.
func listAll[W any](ctx context.Context, c *Client, path string, params url.Values) ([]W, error) {
	if params == nil {
		params = url.Values{}
	}
	var all []W
	for page := 0; page < maxPages; page++ {
		params.Set("skip", strconv.Itoa(page*c.pageSize))
		params.Set("limit", strconv.Itoa(c.pageSize))

		body, err := c.doRequest(ctx, http.MethodGet, path, params)
		if err != nil {
			return nil, err
		}
		items, err := decode[[]W](body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		all = append(all, items...)
		if len(items) < c.pageSize {
			return all, nil
		}
	}
	logger.Warn("entitystore: listing truncated", "path", path, "pages", maxPages)
	return all, nil
}

// ListUsers returns every user with its embedded department.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := listAll[wireUser](ctx, c, "/users/", nil)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toDomain())
	}
	return users, nil
}

// ListDepartments returns every department.
func (c *Client) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	rows, err := listAll[wireDepartment](ctx, c, "/departments/", nil)
	if err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}
	depts := make([]domain.Department, 0, len(rows))
	for _, r := range rows {
		depts = append(depts, r.toDomain())
	}
	return depts, nil
}

// ListEmailLogs returns email logs, optionally narrowed by user or department.
func (c *Client) ListEmailLogs(ctx context.Context, filter domain.EmailLogFilter) ([]domain.EmailLog, error) {
	params := url.Values{}
	if filter.UserID != 0 {
		params.Set("user_id", strconv.FormatInt(filter.UserID, 10))
	}
	if filter.DepartmentID != 0 {
		params.Set("department_id", strconv.FormatInt(filter.DepartmentID, 10))
	}
	rows, err := listAll[wireEmailLog](ctx, c, "/email_logs/", params)
	if err != nil {
		return nil, fmt.Errorf("listing email logs: %w", err)
	}
	logs := make([]domain.EmailLog, 0, len(rows))
	for _, r := range rows {
		logs = append(logs, r.toDomain())
	}
	return logs, nil
}

// TrainingStats returns the backend's training completion analytics.
func (c *Client) TrainingStats(ctx context.Context) (*domain.TrainingStats, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/analytics/training-completion", nil)
	if err != nil {
		return nil, fmt.Errorf("fetching training stats: %w", err)
	}
	w, err := decode[wireTrainingStats](body)
	if err != nil {
		return nil, fmt.Errorf("fetching training stats: %w", err)
	}
	return w.toDomain(), nil
}

func (c *Client) post(ctx context.Context, path string) error {
	_, err := c.doRequest(ctx, http.MethodPost, path, nil)
	return err
}

// SimulateClick marks an email log as clicked.
func (c *Client) SimulateClick(ctx context.Context, logID int64) error {
	return c.post(ctx, fmt.Sprintf("/email_logs/%d/click", logID))
}

// SimulateResponse marks an email log as responded.
func (c *Client) SimulateResponse(ctx context.Context, logID int64) error {
	return c.post(ctx, fmt.Sprintf("/email_logs/%d/respond", logID))
}

// CompleteTraining marks one user's training complete.
func (c *Client) CompleteTraining(ctx context.Context, userID int64) error {
	return c.post(ctx, fmt.Sprintf("/users/%d/complete-training", userID))
}

// CompleteDepartmentTraining marks training complete for a department's users.
func (c *Client) CompleteDepartmentTraining(ctx context.Context, departmentID int64) error {
	return c.post(ctx, fmt.Sprintf("/departments/%d/complete-training", departmentID))
}

// CompleteAllTraining marks training complete for every user.
func (c *Client) CompleteAllTraining(ctx context.Context) error {
	return c.post(ctx, "/users/complete-all-training")
}

// WipeAllData deletes every email log, user and department.
func (c *Client) WipeAllData(ctx context.Context) (*domain.WipeResult, error) {
	body, err := c.doRequest(ctx, http.MethodDelete, "/wipe-all-data", nil)
	if err != nil {
		return nil, err
	}
	w, err := decode[wireWipeResult](body)
	if err != nil {
		return nil, fmt.Errorf("wipe: %w", err)
	}
	return w.toDomain(), nil
}
