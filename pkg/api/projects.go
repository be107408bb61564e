package api

import (
	"context"
	"fmt"
	"net/http"
)

// Project groups account resources for organization and billing.
type Project struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	AvatarID    string `json:"avatar_id,omitempty"`
	IsDefault   bool   `json:"is_default"`
}

// ProjectResource is a resource belonging to a project.
type ProjectResource struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Location Region `json:"location,omitempty"`
	Status   string `json:"status,omitempty"`
}

// GetProjects returns the account's projects.
func (c *Client) GetProjects(ctx context.Context) ([]Project, *Response, error) {
	var out struct {
		Projects []Project `json:"projects"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/projects", nil, nil, &out)
	return out.Projects, resp, err
}

// GetProject returns a single project.
func (c *Client) GetProject(ctx context.Context, projectID int) (*Project, *Response, error) {
	var out struct {
		Project *Project `json:"project"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d", projectID), nil, nil, &out)
	return out.Project, resp, err
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, name, description, avatarID string) (*Project, *Response, error) {
	body := map[string]string{"name": name}
	if description != "" {
		body["description"] = description
	}
	if avatarID != "" {
		body["avatar_id"] = avatarID
	}
	var out struct {
		Project *Project `json:"project"`
	}
	resp, err := c.do(ctx, http.MethodPost, "/projects", nil, body, &out)
	return out.Project, resp, err
}

// UpdateProject changes project properties.
func (c *Client) UpdateProject(ctx context.Context, projectID int, name, description, avatarID string) (*Project, *Response, error) {
	body := map[string]string{}
	if name != "" {
		body["name"] = name
	}
	if description != "" {
		body["description"] = description
	}
	if avatarID != "" {
		body["avatar_id"] = avatarID
	}
	var out struct {
		Project *Project `json:"project"`
	}
	resp, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/projects/%d", projectID), nil, body, &out)
	return out.Project, resp, err
}

// DeleteProject removes a project. Its resources move to the default
// project.
func (c *Client) DeleteProject(ctx context.Context, projectID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/projects/%d", projectID), nil, nil, nil)
}

// GetProjectResources returns all resources in a project.
func (c *Client) GetProjectResources(ctx context.Context, projectID int) ([]ProjectResource, *Response, error) {
	var out struct {
		Resources []ProjectResource `json:"resources"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/resources", projectID), nil, nil, &out)
	return out.Resources, resp, err
}

// MoveResourceToProject transfers one resource between projects.
func (c *Client) MoveResourceToProject(ctx context.Context, fromProject, toProject, resourceID int, resourceType ResourceType) (*Response, error) {
	body := map[string]any{
		"to_project":    toProject,
		"resource_id":   resourceID,
		"resource_type": resourceType,
	}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/projects/%d/resources/transfer", fromProject), nil, body, nil)
}
