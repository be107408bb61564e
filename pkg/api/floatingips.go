package api

import (
	"context"
	"net/http"
)

// FloatingIP is a movable public IP address.
type FloatingIP struct {
	ID               string        `json:"id"`
	IP               string        `json:"ip"`
	PTR              string        `json:"ptr,omitempty"`
	Status           string        `json:"status,omitempty"`
	IsDDOSGuard      bool          `json:"is_ddos_guard"`
	AvailabilityZone string        `json:"availability_zone,omitempty"`
	Resource         *IPAttachment `json:"resource,omitempty"`
}

// IPAttachment names the resource a floating IP is bound to.
type IPAttachment struct {
	ID   int          `json:"resource_id"`
	Type ResourceType `json:"resource_type"`
}

// GetFloatingIPs returns the account's floating IPs.
func (c *Client) GetFloatingIPs(ctx context.Context) ([]FloatingIP, *Response, error) {
	var out struct {
		IPs []FloatingIP `json:"ips"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/floating-ips", nil, nil, &out)
	return out.IPs, resp, err
}

// GetFloatingIP returns a single floating IP.
func (c *Client) GetFloatingIP(ctx context.Context, ipID string) (*FloatingIP, *Response, error) {
	var out struct {
		IP *FloatingIP `json:"ip"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/floating-ips/"+ipID, nil, nil, &out)
	return out.IP, resp, err
}

// CreateFloatingIP reserves a new floating IP in an availability zone.
func (c *Client) CreateFloatingIP(ctx context.Context, zone string, ddosGuard bool) (*FloatingIP, *Response, error) {
	body := map[string]any{
		"availability_zone": zone,
		"is_ddos_guard":     ddosGuard,
	}
	var out struct {
		IP *FloatingIP `json:"ip"`
	}
	resp, err := c.do(ctx, http.MethodPost, "/floating-ips", nil, body, &out)
	return out.IP, resp, err
}

// UpdateFloatingIP sets the PTR record of a floating IP.
func (c *Client) UpdateFloatingIP(ctx context.Context, ipID, ptr string) (*FloatingIP, *Response, error) {
	body := map[string]string{"ptr": ptr}
	var out struct {
		IP *FloatingIP `json:"ip"`
	}
	resp, err := c.do(ctx, http.MethodPatch, "/floating-ips/"+ipID, nil, body, &out)
	return out.IP, resp, err
}

// AttachFloatingIP binds a floating IP to a resource.
func (c *Client) AttachFloatingIP(ctx context.Context, ipID string, resourceID int, resourceType ResourceType) (*Response, error) {
	body := map[string]any{
		"resource_id":   resourceID,
		"resource_type": resourceType,
	}
	return c.do(ctx, http.MethodPost, "/floating-ips/"+ipID+"/bind", nil, body, nil)
}

// DetachFloatingIP unbinds a floating IP from its resource.
func (c *Client) DetachFloatingIP(ctx context.Context, ipID string) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/floating-ips/"+ipID+"/unbind", nil, struct{}{}, nil)
}

// DeleteFloatingIP releases a floating IP.
func (c *Client) DeleteFloatingIP(ctx context.Context, ipID string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, "/floating-ips/"+ipID, nil, nil, nil)
}
