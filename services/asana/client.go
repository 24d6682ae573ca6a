// Package asana is a small client for the parts of the Asana REST API the bridge uses.
package asana

import (
	"context"
	"net/http"
	"net/url"

	"asana-swit-backend/config"
	"asana-swit-backend/services/remote"
)

const service = "asana"

// Project is an Asana project.
type Project struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// User is an Asana user reference.
type User struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// Workspace is an Asana workspace reference.
type Workspace struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// WorkspaceMembership links a user to a workspace.
type WorkspaceMembership struct {
	GID       string    `json:"gid"`
	User      User      `json:"user"`
	Workspace Workspace `json:"workspace"`
}

// TaskInput is the payload for CreateTask. Empty optional fields are sent as null.
type TaskInput struct {
	Name        string
	Notes       string
	ProjectGID  string
	AssigneeGID string
	DueOn       string
}

// Task is a created Asana task.
type Task struct {
	GID          string    `json:"gid"`
	Name         string    `json:"name"`
	Notes        string    `json:"notes"`
	DueOn        string    `json:"due_on"`
	PermalinkURL string    `json:"permalink_url"`
	Assignee     *User     `json:"assignee"`
	Projects     []Project `json:"projects"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// Client calls the Asana API with a per-call access token.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewClient creates a Client.
func NewClient(cfg *config.Config, httpClient *http.Client) *Client {
	return &Client{cfg: cfg, httpClient: httpClient}
}

// ListProjects returns the projects visible to the token's user.
func (c *Client) ListProjects(ctx context.Context, token string) ([]Project, error) {
	var out envelope[[]Project]
	if err := remote.Do(ctx, c.httpClient, service, http.MethodGet, c.cfg.AsanaEndpoint("projects"), token, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListWorkspaceMemberships returns the workspaces the token's user belongs to.
func (c *Client) ListWorkspaceMemberships(ctx context.Context, token string) ([]WorkspaceMembership, error) {
	var out envelope[[]WorkspaceMembership]
	if err := remote.Do(ctx, c.httpClient, service, http.MethodGet, c.cfg.AsanaEndpoint("users/me/workspace_memberships"), token, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListWorkspaceMembers returns every membership of workspaceGID.
func (c *Client) ListWorkspaceMembers(ctx context.Context, token, workspaceGID string) ([]WorkspaceMembership, error) {
	endpoint := c.cfg.AsanaEndpoint("workspaces/" + url.PathEscape(workspaceGID) + "/workspace_memberships")
	var out envelope[[]WorkspaceMembership]
	if err := remote.Do(ctx, c.httpClient, service, http.MethodGet, endpoint, token, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CreateTask creates a task and returns it with project and assignee names.
func (c *Client) CreateTask(ctx context.Context, token string, in TaskInput) (*Task, error) {
	data := map[string]any{
		"name":     in.Name,
		"projects": []string{},
		"assignee": nullable(in.AssigneeGID),
		"due_on":   nullable(in.DueOn),
		"notes":    nullable(in.Notes),
	}
	if in.ProjectGID != "" {
		data["projects"] = []string{in.ProjectGID}
	}

	var out envelope[Task]
	if err := remote.Do(ctx, c.httpClient, service, http.MethodPost, c.cfg.AsanaEndpoint("tasks"), token, envelope[map[string]any]{Data: data}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// TaskURL builds the web link to a task inside a project.
func TaskURL(projectGID, taskGID string) string {
	return "https://app.asana.com/0/" + projectGID + "/" + taskGID
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
