package api

import (
	"context"
	"fmt"
	"net/http"
)

// Database is a managed database service.
type Database struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	HashType  string         `json:"hash_type,omitempty"`
	Status    string         `json:"status"`
	Location  Region         `json:"location"`
	PresetID  int            `json:"preset_id"`
	IP        string         `json:"ip,omitempty"`
	LocalIP   string         `json:"local_ip,omitempty"`
	Port      int            `json:"port,omitempty"`
	Config    map[string]any `json:"config_parameters,omitempty"`
	ProjectID int            `json:"project_id,omitempty"`
	CreatedAt string         `json:"created_at,omitempty"`
}

// DatabasePreset is a managed database configuration offering.
type DatabasePreset struct {
	ID       int     `json:"id"`
	Type     string  `json:"type"`
	CPU      int     `json:"cpu"`
	RAM      int     `json:"ram"`
	Disk     int     `json:"disk"`
	Location Region  `json:"location"`
	Price    float64 `json:"price"`
}

// DatabaseUser is a database account.
type DatabaseUser struct {
	ID        int      `json:"id"`
	Login     string   `json:"login"`
	Host      string   `json:"host,omitempty"`
	Privileges []string `json:"privileges,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
}

// DatabaseInstance is a logical database inside a managed cluster.
type DatabaseInstance struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

// DatabaseBackup is a managed database backup.
type DatabaseBackup struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Type      string `json:"type,omitempty"`
	Size      int    `json:"size,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateDatabaseRequest creates a managed database.
type CreateDatabaseRequest struct {
	Name             string         `json:"name" validate:"required"`
	Type             string         `json:"type" validate:"required"`
	PresetID         int            `json:"preset_id" validate:"required"`
	Login            string         `json:"login,omitempty"`
	Password         string         `json:"password,omitempty"`
	HashType         string         `json:"hash_type,omitempty"`
	ConfigParameters map[string]any `json:"config_parameters,omitempty"`
	ProjectID        int            `json:"project_id,omitempty"`
	AvailabilityZone string         `json:"availability_zone,omitempty"`
}

// UpdateDatabaseRequest changes database properties.
type UpdateDatabaseRequest struct {
	Name             string         `json:"name,omitempty"`
	PresetID         int            `json:"preset_id,omitempty"`
	Password         string         `json:"password,omitempty"`
	ConfigParameters map[string]any `json:"config_parameters,omitempty"`
	ExternalIP       *bool          `json:"is_external_ip,omitempty"`
}

// GetDatabases returns the account's managed databases.
func (c *Client) GetDatabases(ctx context.Context, limit, offset int) ([]Database, *Response, error) {
	var out struct {
		Databases []Database `json:"dbs"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/dbs", listQuery(limit, offset), nil, &out)
	return out.Databases, resp, err
}

// GetDatabase returns a single managed database.
func (c *Client) GetDatabase(ctx context.Context, dbID int) (*Database, *Response, error) {
	var out struct {
		Database *Database `json:"db"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/dbs/%d", dbID), nil, nil, &out)
	return out.Database, resp, err
}

// CreateDatabase provisions a managed database.
func (c *Client) CreateDatabase(ctx context.Context, req CreateDatabaseRequest) (*Database, *Response, error) {
	if err := validate.Struct(req); err != nil {
		return nil, nil, err
	}
	var out struct {
		Database *Database `json:"db"`
	}
	resp, err := c.do(ctx, http.MethodPost, "/dbs", nil, req, &out)
	return out.Database, resp, err
}

// UpdateDatabase changes database properties.
func (c *Client) UpdateDatabase(ctx context.Context, dbID int, req UpdateDatabaseRequest) (*Database, *Response, error) {
	var out struct {
		Database *Database `json:"db"`
	}
	resp, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/dbs/%d", dbID), nil, req, &out)
	return out.Database, resp, err
}

// DeleteDatabase removes a managed database.
func (c *Client) DeleteDatabase(ctx context.Context, dbID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/dbs/%d", dbID), nil, nil, nil)
}

// GetDatabasePresets returns the available database configurations.
func (c *Client) GetDatabasePresets(ctx context.Context) ([]DatabasePreset, *Response, error) {
	var out struct {
		Presets []DatabasePreset `json:"databases_presets"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/presets/dbs", nil, nil, &out)
	return out.Presets, resp, err
}

// GetDatabaseTypes returns the supported database engines.
func (c *Client) GetDatabaseTypes(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/database-types", nil, nil, nil)
}

// GetDatabaseBackups returns a database's backups.
func (c *Client) GetDatabaseBackups(ctx context.Context, dbID, limit, offset int) ([]DatabaseBackup, *Response, error) {
	var out struct {
		Backups []DatabaseBackup `json:"backups"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/dbs/%d/backups", dbID), listQuery(limit, offset), nil, &out)
	return out.Backups, resp, err
}

// CreateDatabaseBackup starts creation of a database backup.
func (c *Client) CreateDatabaseBackup(ctx context.Context, dbID int) (*DatabaseBackup, *Response, error) {
	var out struct {
		Backup *DatabaseBackup `json:"backup"`
	}
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/dbs/%d/backups", dbID), nil, struct{}{}, &out)
	return out.Backup, resp, err
}

// DeleteDatabaseBackup removes a database backup.
func (c *Client) DeleteDatabaseBackup(ctx context.Context, dbID, backupID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/dbs/%d/backups/%d", dbID, backupID), nil, nil, nil)
}

// RestoreDatabaseBackup restores a database from a backup.
func (c *Client) RestoreDatabaseBackup(ctx context.Context, dbID, backupID int) (*Response, error) {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/dbs/%d/backups/%d", dbID, backupID), nil, struct{}{}, nil)
}

// GetDatabaseUsers returns the user accounts of a database.
func (c *Client) GetDatabaseUsers(ctx context.Context, dbID int) ([]DatabaseUser, *Response, error) {
	var out struct {
		Users []DatabaseUser `json:"admins"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/databases/%d/admins", dbID), nil, nil, &out)
	return out.Users, resp, err
}

// CreateDatabaseUser adds a user account to a database.
func (c *Client) CreateDatabaseUser(ctx context.Context, dbID int, login, password, host string, privileges []string) (*DatabaseUser, *Response, error) {
	body := map[string]any{
		"login":    login,
		"password": password,
	}
	if host != "" {
		body["host"] = host
	}
	if len(privileges) > 0 {
		body["privileges"] = privileges
	}
	var out struct {
		User *DatabaseUser `json:"admin"`
	}
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/databases/%d/admins", dbID), nil, body, &out)
	return out.User, resp, err
}

// DeleteDatabaseUser removes a database user account.
func (c *Client) DeleteDatabaseUser(ctx context.Context, dbID, userID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/databases/%d/admins/%d", dbID, userID), nil, nil, nil)
}

// GetDatabaseInstances returns logical databases inside a cluster.
func (c *Client) GetDatabaseInstances(ctx context.Context, dbID int) ([]DatabaseInstance, *Response, error) {
	var out struct {
		Instances []DatabaseInstance `json:"instances"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/databases/%d/instances", dbID), nil, nil, &out)
	return out.Instances, resp, err
}

// CreateDatabaseInstance creates a logical database inside a cluster.
func (c *Client) CreateDatabaseInstance(ctx context.Context, dbID int, name string) (*DatabaseInstance, *Response, error) {
	body := map[string]string{"name": name}
	var out struct {
		Instance *DatabaseInstance `json:"instance"`
	}
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/databases/%d/instances", dbID), nil, body, &out)
	return out.Instance, resp, err
}

// DeleteDatabaseInstance removes a logical database.
func (c *Client) DeleteDatabaseInstance(ctx context.Context, dbID, instanceID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/databases/%d/instances/%d", dbID, instanceID), nil, nil, nil)
}
