package api

import (
	"context"
	"fmt"
	"net/http"
)

// Server is a cloud compute instance.
type Server struct {
	ID               int       `json:"id"`
	Name             string    `json:"name"`
	Comment          string    `json:"comment,omitempty"`
	Status           string    `json:"status"`
	Location         Region    `json:"location"`
	AvailabilityZone string    `json:"availability_zone,omitempty"`
	OS               ServerOS  `json:"os"`
	CPU              int       `json:"cpu"`
	RAM              int       `json:"ram"`
	PresetID         int       `json:"preset_id,omitempty"`
	ConfiguratorID   int       `json:"configurator_id,omitempty"`
	AvatarID         string    `json:"avatar_id,omitempty"`
	MainIPv4         string    `json:"main_ipv4,omitempty"`
	Disks            []Disk    `json:"disks,omitempty"`
	Networks         []Network `json:"networks,omitempty"`
	SoftwareID       int       `json:"software_id,omitempty"`
	ProjectID        int       `json:"project_id,omitempty"`
	BootMode         BootMode  `json:"boot_mode,omitempty"`
	CreatedAt        string    `json:"created_at,omitempty"`
}

// ServerOS is the operating system installed on a server.
type ServerOS struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Disk is a block device attached to a server.
type Disk struct {
	ID       int    `json:"id"`
	Size     int    `json:"size"`
	Used     int    `json:"used,omitempty"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	IsSystem bool   `json:"is_system"`
}

// Network is a server network attachment.
type Network struct {
	Type string      `json:"type"`
	NAT  NATMode     `json:"nat_mode,omitempty"`
	IPs  []ServerIP  `json:"ips,omitempty"`
}

// ServerIP is an IP address attached to a server.
type ServerIP struct {
	Type      string `json:"type"`
	IP        string `json:"ip"`
	PTR       string `json:"ptr,omitempty"`
	IsMain    bool   `json:"is_main"`
}

// Backup is a point-in-time copy of a server disk.
type Backup struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Comment   string `json:"comment,omitempty"`
	DiskID    int    `json:"disk_id"`
	Size      int    `json:"size"`
	Status    string `json:"status"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ServerPreset is a fixed server configuration offered by the provider.
type ServerPreset struct {
	ID          int    `json:"id"`
	Location    Region `json:"location"`
	CPU         int    `json:"cpu"`
	RAM         int    `json:"ram"`
	Disk        int    `json:"disk"`
	Bandwidth   int    `json:"bandwidth"`
	Price       float64 `json:"price"`
	Description string `json:"description,omitempty"`
}

// OSImage is an operating system image installable on servers.
type OSImage struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Family  string `json:"family,omitempty"`
}

// ServerConfiguration sizes a configurator-based server. Disk and RAM
// are in megabytes.
type ServerConfiguration struct {
	ConfiguratorID int `json:"configurator_id" validate:"required"`
	Disk           int `json:"disk" validate:"required"`
	CPU            int `json:"cpu" validate:"required"`
	RAM            int `json:"ram" validate:"required"`
}

// CreateServerRequest creates a new server. Exactly one of PresetID or
// Configuration must be set.
type CreateServerRequest struct {
	Name             string               `json:"name" validate:"required"`
	Comment          string               `json:"comment,omitempty"`
	OSID             int                  `json:"os_id" validate:"required"`
	PresetID         int                  `json:"preset_id,omitempty"`
	Configuration    *ServerConfiguration `json:"configurator,omitempty"`
	SoftwareID       int                  `json:"software_id,omitempty"`
	AvailabilityZone string               `json:"availability_zone,omitempty"`
	SSHKeyIDs        []int                `json:"ssh_keys_ids,omitempty"`
	IsDDOSGuard      bool                 `json:"is_ddos_guard,omitempty"`
	Bandwidth        int                  `json:"bandwidth,omitempty"`
	ProjectID        int                  `json:"project_id,omitempty"`
	IsLocalNetwork   bool                 `json:"is_local_network,omitempty"`
	NetworkID        string               `json:"network_id,omitempty"`
	CloudInit        string               `json:"cloud_init,omitempty"`
}

// UpdateServerRequest changes server properties. Zero fields are left
// untouched.
type UpdateServerRequest struct {
	Name          string               `json:"name,omitempty"`
	Comment       string               `json:"comment,omitempty"`
	OSID          int                  `json:"os_id,omitempty"`
	PresetID      int                  `json:"preset_id,omitempty"`
	Configuration *ServerConfiguration `json:"configurator,omitempty"`
	SoftwareID    int                  `json:"software_id,omitempty"`
}

// GetServers returns the account's servers.
func (c *Client) GetServers(ctx context.Context, limit, offset int) ([]Server, *Response, error) {
	var out struct {
		Servers []Server `json:"servers"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/servers", listQuery(limit, offset), nil, &out)
	return out.Servers, resp, err
}

// GetServer returns a single server.
func (c *Client) GetServer(ctx context.Context, serverID int) (*Server, *Response, error) {
	var out struct {
		Server *Server `json:"server"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/servers/%d", serverID), nil, nil, &out)
	return out.Server, resp, err
}

// CreateServer provisions a new server.
func (c *Client) CreateServer(ctx context.Context, req CreateServerRequest) (*Server, *Response, error) {
	if err := validate.Struct(req); err != nil {
		return nil, nil, err
	}
	var out struct {
		Server *Server `json:"server"`
	}
	resp, err := c.do(ctx, http.MethodPost, "/servers", nil, req, &out)
	return out.Server, resp, err
}

// UpdateServer changes server properties.
func (c *Client) UpdateServer(ctx context.Context, serverID int, req UpdateServerRequest) (*Server, *Response, error) {
	var out struct {
		Server *Server `json:"server"`
	}
	resp, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/servers/%d", serverID), nil, req, &out)
	return out.Server, resp, err
}

// DeleteServer removes a server and its disks.
func (c *Client) DeleteServer(ctx context.Context, serverID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/servers/%d", serverID), nil, nil, nil)
}

// DoServerAction performs a power or lifecycle action on a server.
func (c *Client) DoServerAction(ctx context.Context, serverID int, action ServerAction) (*Response, error) {
	body := map[string]ServerAction{"action": action}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/servers/%d/action", serverID), nil, body, nil)
}

// CloneServer creates a stopped copy of a server.
func (c *Client) CloneServer(ctx context.Context, serverID int) (*Server, *Response, error) {
	var out struct {
		Server *Server `json:"server"`
	}
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/servers/%d/clone", serverID), nil, struct{}{}, &out)
	return out.Server, resp, err
}

// SetServerBootMode changes how the server boots. The API names the
// recovery mode "recovery_disk".
func (c *Client) SetServerBootMode(ctx context.Context, serverID int, mode BootMode) (*Response, error) {
	wire := string(mode)
	if mode == BootModeRecovery {
		wire = "recovery_disk"
	}
	body := map[string]string{"boot_mode": wire}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/servers/%d/boot-mode", serverID), nil, body, nil)
}

// SetServerNATMode changes NAT behaviour for a LAN-attached server.
func (c *Client) SetServerNATMode(ctx context.Context, serverID int, mode NATMode) (*Response, error) {
	body := map[string]NATMode{"nat_mode": mode}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/servers/%d/local-networks/nat-mode", serverID), nil, body, nil)
}

// GetServerPresets returns purchasable server configurations.
func (c *Client) GetServerPresets(ctx context.Context) ([]ServerPreset, *Response, error) {
	var out struct {
		Presets []ServerPreset `json:"server_presets"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/presets/servers", nil, nil, &out)
	return out.Presets, resp, err
}

// GetServerOSImages returns installable operating system images.
func (c *Client) GetServerOSImages(ctx context.Context) ([]OSImage, *Response, error) {
	var out struct {
		Images []OSImage `json:"servers_os"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/os/servers", nil, nil, &out)
	return out.Images, resp, err
}

// ServerConfigurator describes the allowed ranges for a build-to-order
// server configuration.
type ServerConfigurator struct {
	ID           int    `json:"id"`
	Location     Region `json:"location"`
	DiskType     string `json:"disk_type,omitempty"`
	Requirements struct {
		CPUMin  int `json:"cpu_min"`
		CPUMax  int `json:"cpu_max"`
		RAMMin  int `json:"ram_min"`
		RAMMax  int `json:"ram_max"`
		DiskMin int `json:"disk_min"`
		DiskMax int `json:"disk_max"`
	} `json:"requirements"`
}

// GetServerConfigurators returns the build-to-order configurators.
func (c *Client) GetServerConfigurators(ctx context.Context) ([]ServerConfigurator, *Response, error) {
	var out struct {
		Configurators []ServerConfigurator `json:"server_configurators"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/configurator/servers", nil, nil, &out)
	return out.Configurators, resp, err
}

// ServerSoftware is a software bundle installable alongside an OS.
type ServerSoftware struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	OSIDs []int  `json:"os_ids,omitempty"`
}

// GetServerSoftware returns installable software bundles.
func (c *Client) GetServerSoftware(ctx context.Context) ([]ServerSoftware, *Response, error) {
	var out struct {
		Software []ServerSoftware `json:"servers_software"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/software/servers", nil, nil, &out)
	return out.Software, resp, err
}

// GetServerLogs returns the server event log, ordered asc or desc.
func (c *Client) GetServerLogs(ctx context.Context, serverID, limit, offset int, order string) (*Response, error) {
	q := listQuery(limit, offset)
	if order != "" {
		q.Set("order", order)
	}
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/servers/%d/logs", serverID), q, nil, nil)
}

// GetServerIPs returns the IP addresses attached to a server.
func (c *Client) GetServerIPs(ctx context.Context, serverID int) ([]ServerIP, *Response, error) {
	var out struct {
		IPs []ServerIP `json:"server_ips"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/servers/%d/ips", serverID), nil, nil, &out)
	return out.IPs, resp, err
}

// AddServerIP attaches a new IP of the given version ("ipv4"|"ipv6").
func (c *Client) AddServerIP(ctx context.Context, serverID int, version, ptr string) (*ServerIP, *Response, error) {
	body := map[string]string{"type": version}
	if ptr != "" {
		body["ptr"] = ptr
	}
	var out struct {
		IP *ServerIP `json:"server_ip"`
	}
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/servers/%d/ips", serverID), nil, body, &out)
	return out.IP, resp, err
}

// DeleteServerIP detaches an IP address from a server.
func (c *Client) DeleteServerIP(ctx context.Context, serverID int, ip string) (*Response, error) {
	body := map[string]string{"ip": ip}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/servers/%d/ips", serverID), nil, body, nil)
}

// GetDisks returns the disks of a server.
func (c *Client) GetDisks(ctx context.Context, serverID int) ([]Disk, *Response, error) {
	var out struct {
		Disks []Disk `json:"server_disks"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/servers/%d/disks", serverID), nil, nil, &out)
	return out.Disks, resp, err
}

// AddDisk attaches a new disk of the given size in megabytes.
func (c *Client) AddDisk(ctx context.Context, serverID, size int) (*Disk, *Response, error) {
	body := map[string]int{"size": size}
	var out struct {
		Disk *Disk `json:"server_disk"`
	}
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/servers/%d/disks", serverID), nil, body, &out)
	return out.Disk, resp, err
}

// UpdateDisk resizes a disk. Shrinking is not supported by the API.
func (c *Client) UpdateDisk(ctx context.Context, serverID, diskID, size int) (*Disk, *Response, error) {
	body := map[string]int{"size": size}
	var out struct {
		Disk *Disk `json:"server_disk"`
	}
	resp, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/servers/%d/disks/%d", serverID, diskID), nil, body, &out)
	return out.Disk, resp, err
}

// DeleteDisk detaches and destroys a disk.
func (c *Client) DeleteDisk(ctx context.Context, serverID, diskID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/servers/%d/disks/%d", serverID, diskID), nil, nil, nil)
}

// GetDiskBackups returns the backups of a disk.
func (c *Client) GetDiskBackups(ctx context.Context, serverID, diskID int) ([]Backup, *Response, error) {
	var out struct {
		Backups []Backup `json:"backups"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/servers/%d/disks/%d/backups", serverID, diskID), nil, nil, &out)
	return out.Backups, resp, err
}

// GetDiskBackup returns a single disk backup.
func (c *Client) GetDiskBackup(ctx context.Context, serverID, diskID, backupID int) (*Backup, *Response, error) {
	var out struct {
		Backup *Backup `json:"backup"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/servers/%d/disks/%d/backups/%d", serverID, diskID, backupID), nil, nil, &out)
	return out.Backup, resp, err
}

// CreateDiskBackup starts creation of a disk backup.
func (c *Client) CreateDiskBackup(ctx context.Context, serverID, diskID int, comment string) (*Backup, *Response, error) {
	body := map[string]string{}
	if comment != "" {
		body["comment"] = comment
	}
	var out struct {
		Backup *Backup `json:"backup"`
	}
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/servers/%d/disks/%d/backups", serverID, diskID), nil, body, &out)
	return out.Backup, resp, err
}

// DeleteDiskBackup removes a disk backup.
func (c *Client) DeleteDiskBackup(ctx context.Context, serverID, diskID, backupID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/servers/%d/disks/%d/backups/%d", serverID, diskID, backupID), nil, nil, nil)
}

// DoBackupAction restores, mounts or unmounts a disk backup.
func (c *Client) DoBackupAction(ctx context.Context, serverID, diskID, backupID int, action BackupAction) (*Response, error) {
	body := map[string]BackupAction{"action": action}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/servers/%d/disks/%d/backups/%d/action", serverID, diskID, backupID), nil, body, nil)
}

// AutoBackupSettings is a disk's scheduled backup policy. Interval is
// one of "day", "week" or "month"; DayOfWeek only applies to "week".
type AutoBackupSettings struct {
	IsEnabled       bool   `json:"is_enabled"`
	CopyCount       int    `json:"copy_count,omitempty"`
	CreationStartAt string `json:"creation_start_at,omitempty"`
	Interval        string `json:"interval,omitempty"`
	DayOfWeek       int    `json:"day_of_week,omitempty"`
}

// GetDiskAutoBackupSettings returns a disk's scheduled backup policy.
func (c *Client) GetDiskAutoBackupSettings(ctx context.Context, serverID, diskID int) (*AutoBackupSettings, *Response, error) {
	var out struct {
		Settings *AutoBackupSettings `json:"auto_backups_settings"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/servers/%d/disks/%d/auto-backups", serverID, diskID), nil, nil, &out)
	return out.Settings, resp, err
}

// UpdateDiskAutoBackupSettings changes a disk's scheduled backup policy.
func (c *Client) UpdateDiskAutoBackupSettings(ctx context.Context, serverID, diskID int, req AutoBackupSettings) (*AutoBackupSettings, *Response, error) {
	var out struct {
		Settings *AutoBackupSettings `json:"auto_backups_settings"`
	}
	resp, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/servers/%d/disks/%d/auto-backups", serverID, diskID), nil, req, &out)
	return out.Settings, resp, err
}

// AddSSHKeysToServer installs existing account SSH keys on a server.
func (c *Client) AddSSHKeysToServer(ctx context.Context, serverID int, keyIDs []int) (*Response, error) {
	body := map[string][]int{"ssh_key_ids": keyIDs}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/servers/%d/ssh-keys", serverID), nil, body, nil)
}

// DeleteSSHKeyFromServer removes an SSH key from a server.
func (c *Client) DeleteSSHKeyFromServer(ctx context.Context, serverID, keyID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/servers/%d/ssh-keys/%d", serverID, keyID), nil, nil, nil)
}
