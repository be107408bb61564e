package api

import (
	"context"
	"net/http"
)

// VPC is a private network.
type VPC struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Subnet      string `json:"subnet_v4"`
	Location    Region `json:"location"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// VPCPort is an address allocation on a private network.
type VPCPort struct {
	ID      int     `json:"id"`
	IPv4    string  `json:"ipv4"`
	NATMode NATMode `json:"nat_mode,omitempty"`
}

// VPCService is a cloud resource attached to a private network.
type VPCService struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	LocalIP  string `json:"local_ip"`
	PublicIP string `json:"public_ip,omitempty"`
}

// CreateVPCRequest creates a private network. The subnet must be an
// IPv4 CIDR inside the provider's allowed private ranges.
type CreateVPCRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Subnet      string `json:"subnet_v4" validate:"required,cidrv4"`
	Location    Region `json:"location" validate:"required"`
}

// GetVPCs returns the account's private networks.
func (c *Client) GetVPCs(ctx context.Context) ([]VPC, *Response, error) {
	var out struct {
		VPCs []VPC `json:"vpcs"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/vpcs", nil, nil, &out)
	return out.VPCs, resp, err
}

// GetVPC returns a single private network.
func (c *Client) GetVPC(ctx context.Context, vpcID string) (*VPC, *Response, error) {
	var out struct {
		VPC *VPC `json:"vpc"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/vpcs/"+vpcID, nil, nil, &out)
	return out.VPC, resp, err
}

// CreateVPC creates a private network.
func (c *Client) CreateVPC(ctx context.Context, req CreateVPCRequest) (*VPC, *Response, error) {
	if err := validate.Struct(req); err != nil {
		return nil, nil, err
	}
	var out struct {
		VPC *VPC `json:"vpc"`
	}
	resp, err := c.do(ctx, http.MethodPost, "/vpcs", nil, req, &out)
	return out.VPC, resp, err
}

// UpdateVPC changes network name or description.
func (c *Client) UpdateVPC(ctx context.Context, vpcID, name, description string) (*VPC, *Response, error) {
	body := map[string]string{}
	if name != "" {
		body["name"] = name
	}
	if description != "" {
		body["description"] = description
	}
	var out struct {
		VPC *VPC `json:"vpc"`
	}
	resp, err := c.do(ctx, http.MethodPatch, "/vpcs/"+vpcID, nil, body, &out)
	return out.VPC, resp, err
}

// DeleteVPC removes a private network.
func (c *Client) DeleteVPC(ctx context.Context, vpcID string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, "/vpcs/"+vpcID, nil, nil, nil)
}

// GetVPCPorts returns address allocations on a network.
func (c *Client) GetVPCPorts(ctx context.Context, vpcID string) ([]VPCPort, *Response, error) {
	var out struct {
		Ports []VPCPort `json:"vpc_ports"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/vpcs/"+vpcID+"/ports", nil, nil, &out)
	return out.Ports, resp, err
}

// GetVPCServices returns resources attached to a network.
func (c *Client) GetVPCServices(ctx context.Context, vpcID string) ([]VPCService, *Response, error) {
	var out struct {
		Services []VPCService `json:"services"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/vpcs/"+vpcID+"/services", nil, nil, &out)
	return out.Services, resp, err
}
