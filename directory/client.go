// Package directory implements the task-directory client. List operations
// fail open: on any transport or decode failure they log and return empty
// results so a directory outage degrades to "no match" instead of an error
// page at the webhook edge.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-conversation-relay/core"
	"github.com/goliatone/go-conversation-relay/transport"
)

const (
	taskListPageSize      = 100
	taskListOptFields     = "gid,name"
	attachmentOptFields   = "gid,name,resource_type,resource_subtype,url,view_url,host"
	taskDetailOptFields   = "gid,name,notes,completed,assignee,due_on,projects"
	defaultRequestTimeout = 15 * time.Second
)

// Transport executes a single outbound call. Satisfied by
// *transport.RESTAdapter.
type Transport interface {
	Do(ctx context.Context, req core.TransportRequest) (core.TransportResponse, error)
}

// Client talks to the remote task directory on behalf of one configured
// project/section pair. All methods are safe for concurrent use.
type Client struct {
	cfg       core.DirectoryConfig
	transport Transport
	logger    core.Logger
	timeout   time.Duration
}

type Option func(*Client)

func WithTransport(t Transport) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

func WithLogger(logger core.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// New validates the directory configuration, builds the client, and verifies
// the credential with a current-user lookup. A client that fails the lookup
// is not returned; callers decide whether a missing client is fatal.
func New(ctx context.Context, cfg core.DirectoryConfig, options ...Option) (*Client, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	client := &Client{
		cfg:     cfg,
		logger:  glog.Nop(),
		timeout: defaultRequestTimeout,
	}
	for _, option := range options {
		option(client)
	}
	if client.transport == nil {
		adapter := transport.NewRESTAdapter(nil)
		adapter.DefaultHeaders["Authorization"] = "Bearer " + strings.TrimSpace(cfg.AccessToken)
		adapter.DefaultHeaders["Accept"] = "application/json"
		client.transport = adapter
	}

	user, ok := client.GetCurrentUser(ctx)
	if !ok {
		return nil, goerrors.New("directory: credential check failed", goerrors.CategoryExternal).
			WithCode(http.StatusBadGateway).
			WithTextCode(core.RelayErrorClientUnavailable).
			WithMetadata(map[string]any{"base_url": cfg.BaseURL})
	}
	client.logger.Info("directory client ready", "user", user.Name, "project_gid", cfg.ProjectGID)
	return client, nil
}

func validateConfig(cfg core.DirectoryConfig) error {
	missing := []string{}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		missing = append(missing, "base_url")
	}
	if strings.TrimSpace(cfg.AccessToken) == "" {
		missing = append(missing, "access_token")
	}
	if strings.TrimSpace(cfg.ProjectGID) == "" {
		missing = append(missing, "project_gid")
	}
	if len(missing) == 0 {
		return nil
	}
	return goerrors.New(
		fmt.Sprintf("directory: missing configuration: %s", strings.Join(missing, ", ")),
		goerrors.CategoryValidation,
	).WithCode(http.StatusBadRequest).
		WithTextCode(core.RelayErrorBadInput).
		WithMetadata(map[string]any{"missing": missing})
}

// ProjectGID returns the configured source project.
func (c *Client) ProjectGID() string {
	return c.cfg.ProjectGID
}

// ListProjectTasks returns the first page of tasks in the configured project.
// Failures are logged and reported as an empty slice.
func (c *Client) ListProjectTasks(ctx context.Context) []core.Task {
	path := fmt.Sprintf("/projects/%s/tasks", c.cfg.ProjectGID)
	body, ok := c.call(ctx, http.MethodGet, path, map[string]string{
		"opt_fields": taskListOptFields,
		"limit":      fmt.Sprintf("%d", taskListPageSize),
	}, nil)
	if !ok {
		return []core.Task{}
	}

	var envelope struct {
		Data []struct {
			GID  string `json:"gid"`
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.logger.Warn("directory: decode task list failed", "error", err)
		return []core.Task{}
	}
	tasks := make([]core.Task, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		tasks = append(tasks, core.Task{ID: item.GID, Name: item.Name})
	}
	return tasks
}

// ListAttachments returns the attachments on one task, URL fields included.
// Failures are logged and reported as an empty slice.
func (c *Client) ListAttachments(ctx context.Context, taskID string) []core.Attachment {
	if strings.TrimSpace(taskID) == "" {
		return []core.Attachment{}
	}
	body, ok := c.call(ctx, http.MethodGet, "/attachments", map[string]string{
		"parent":     strings.TrimSpace(taskID),
		"opt_fields": attachmentOptFields,
	}, nil)
	if !ok {
		return []core.Attachment{}
	}

	var envelope struct {
		Data []struct {
			GID             string `json:"gid"`
			Name            string `json:"name"`
			ResourceType    string `json:"resource_type"`
			ResourceSubtype string `json:"resource_subtype"`
			URL             string `json:"url"`
			ViewURL         string `json:"view_url"`
			Host            string `json:"host"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.logger.Warn("directory: decode attachment list failed", "task_gid", taskID, "error", err)
		return []core.Attachment{}
	}
	attachments := make([]core.Attachment, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		attachments = append(attachments, core.Attachment{
			ID:              item.GID,
			Name:            item.Name,
			ResourceType:    item.ResourceType,
			ResourceSubtype: item.ResourceSubtype,
			URL:             item.URL,
			ViewURL:         item.ViewURL,
			Host:            item.Host,
		})
	}
	return attachments
}

// MoveTask adds the task to the configured target section. The section
// membership change is idempotent upstream, so repeat moves are safe. A
// missing target section is a soft condition: every move reports false.
func (c *Client) MoveTask(ctx context.Context, taskID string) bool {
	if strings.TrimSpace(taskID) == "" {
		return false
	}
	if strings.TrimSpace(c.cfg.TargetSectionGID) == "" {
		c.logger.Warn("directory: target section not configured, move rejected", "task_gid", taskID)
		return false
	}
	payload, err := json.Marshal(map[string]any{
		"data": map[string]any{"task": strings.TrimSpace(taskID)},
	})
	if err != nil {
		c.logger.Error("directory: encode move payload failed", "task_gid", taskID, "error", err)
		return false
	}
	path := fmt.Sprintf("/sections/%s/addTask", c.cfg.TargetSectionGID)
	_, ok := c.call(ctx, http.MethodPost, path, nil, payload)
	return ok
}

// GetTaskDetails fetches the expanded record for one task.
func (c *Client) GetTaskDetails(ctx context.Context, taskID string) (core.TaskDetail, bool) {
	if strings.TrimSpace(taskID) == "" {
		return core.TaskDetail{}, false
	}
	path := fmt.Sprintf("/tasks/%s", strings.TrimSpace(taskID))
	body, ok := c.call(ctx, http.MethodGet, path, map[string]string{
		"opt_fields": taskDetailOptFields,
	}, nil)
	if !ok {
		return core.TaskDetail{}, false
	}

	var envelope struct {
		Data struct {
			GID       string `json:"gid"`
			Name      string `json:"name"`
			Notes     string `json:"notes"`
			Completed bool   `json:"completed"`
			Assignee  *struct {
				Name string `json:"name"`
				GID  string `json:"gid"`
			} `json:"assignee"`
			DueOn    string `json:"due_on"`
			Projects []struct {
				Name string `json:"name"`
			} `json:"projects"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.logger.Warn("directory: decode task detail failed", "task_gid", taskID, "error", err)
		return core.TaskDetail{}, false
	}

	detail := core.TaskDetail{
		ID:        envelope.Data.GID,
		Name:      envelope.Data.Name,
		Notes:     envelope.Data.Notes,
		Completed: envelope.Data.Completed,
		DueOn:     envelope.Data.DueOn,
	}
	if envelope.Data.Assignee != nil {
		detail.Assignee = envelope.Data.Assignee.Name
		if detail.Assignee == "" {
			detail.Assignee = envelope.Data.Assignee.GID
		}
	}
	for _, project := range envelope.Data.Projects {
		detail.Projects = append(detail.Projects, project.Name)
	}
	return detail, true
}

// GetCurrentUser resolves the account behind the configured credential.
func (c *Client) GetCurrentUser(ctx context.Context) (core.UserInfo, bool) {
	body, ok := c.call(ctx, http.MethodGet, "/users/me", nil, nil)
	if !ok {
		return core.UserInfo{}, false
	}
	var envelope struct {
		Data struct {
			GID   string `json:"gid"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.logger.Warn("directory: decode current user failed", "error", err)
		return core.UserInfo{}, false
	}
	return core.UserInfo{
		ID:    envelope.Data.GID,
		Name:  envelope.Data.Name,
		Email: envelope.Data.Email,
	}, true
}

// call executes one directory request and applies the fail-open policy:
// transport errors and non-2xx statuses are logged, never propagated.
func (c *Client) call(ctx context.Context, method, path string, query map[string]string, body []byte) ([]byte, bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	req := core.TransportRequest{
		Method:  method,
		URL:     strings.TrimRight(strings.TrimSpace(c.cfg.BaseURL), "/") + path,
		Query:   query,
		Body:    body,
		Timeout: c.timeout,
	}
	if len(body) > 0 {
		req.Headers = map[string]string{"Content-Type": "application/json"}
	}

	res, err := c.transport.Do(ctx, req)
	if err != nil {
		c.logger.Warn("directory: request failed", "method", method, "path", path, "error", err)
		return nil, false
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		c.logger.Warn("directory: request rejected",
			"method", method,
			"path", path,
			"status_code", res.StatusCode,
		)
		return nil, false
	}
	return res.Body, true
}
