package api

import (
	"context"
	"fmt"
	"net/http"
)

// SSHKey is a named public key stored in the account.
type SSHKey struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Body      string `json:"body"`
	IsDefault bool   `json:"is_default"`
	UsedBy    []struct {
		ID int `json:"id"`
	} `json:"used_by,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// GetSSHKeys returns the account's SSH keys.
func (c *Client) GetSSHKeys(ctx context.Context) ([]SSHKey, *Response, error) {
	var out struct {
		Keys []SSHKey `json:"ssh_keys"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/ssh-keys", nil, nil, &out)
	return out.Keys, resp, err
}

// GetSSHKey returns a single SSH key.
func (c *Client) GetSSHKey(ctx context.Context, keyID int) (*SSHKey, *Response, error) {
	var out struct {
		Key *SSHKey `json:"ssh_key"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/ssh-keys/%d", keyID), nil, nil, &out)
	return out.Key, resp, err
}

// AddSSHKey stores a public key in the account. isDefault keys get
// installed on every new server.
func (c *Client) AddSSHKey(ctx context.Context, name, body string, isDefault bool) (*SSHKey, *Response, error) {
	payload := map[string]any{
		"name":       name,
		"body":       body,
		"is_default": isDefault,
	}
	var out struct {
		Key *SSHKey `json:"ssh_key"`
	}
	resp, err := c.do(ctx, http.MethodPost, "/ssh-keys", nil, payload, &out)
	return out.Key, resp, err
}

// UpdateSSHKey changes key name, body or default flag.
func (c *Client) UpdateSSHKey(ctx context.Context, keyID int, name, body string, isDefault *bool) (*SSHKey, *Response, error) {
	payload := map[string]any{}
	if name != "" {
		payload["name"] = name
	}
	if body != "" {
		payload["body"] = body
	}
	if isDefault != nil {
		payload["is_default"] = *isDefault
	}
	var out struct {
		Key *SSHKey `json:"ssh_key"`
	}
	resp, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/ssh-keys/%d", keyID), nil, payload, &out)
	return out.Key, resp, err
}

// DeleteSSHKey removes a key from the account.
func (c *Client) DeleteSSHKey(ctx context.Context, keyID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/ssh-keys/%d", keyID), nil, nil, nil)
}
