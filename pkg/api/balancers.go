package api

import (
	"context"
	"fmt"
	"net/http"
)

// Balancer is a managed load balancer.
type Balancer struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Status    string   `json:"status"`
	Location  Region   `json:"location"`
	PresetID  int      `json:"preset_id"`
	IP        string   `json:"ip,omitempty"`
	LocalIP   string   `json:"local_ip,omitempty"`
	Algo      string   `json:"algo"`
	Fall      int      `json:"fall,omitempty"`
	Rise      int      `json:"rise,omitempty"`
	Interval  int      `json:"inter,omitempty"`
	Timeout   int      `json:"timeout,omitempty"`
	IsSticky  bool     `json:"is_sticky"`
	IsUseProxy bool    `json:"is_use_proxy"`
	IsSSL     bool     `json:"is_ssl"`
	IPs       []string `json:"ips,omitempty"`
	ProjectID int      `json:"project_id,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
}

// BalancerRule forwards balancer frontend traffic to backends.
type BalancerRule struct {
	ID            int    `json:"id"`
	BalancerProto string `json:"proto"`
	BalancerPort  int    `json:"port"`
	ServerProto   string `json:"server_proto"`
	ServerPort    int    `json:"server_port"`
}

// BalancerPreset is a load balancer configuration offering.
type BalancerPreset struct {
	ID                int     `json:"id"`
	Location          Region  `json:"location"`
	Price             float64 `json:"price"`
	RequestsPerSecond string  `json:"requests_per_second,omitempty"`
	Description       string  `json:"description,omitempty"`
}

// CreateBalancerRequest creates a load balancer.
type CreateBalancerRequest struct {
	Name      string `json:"name" validate:"required"`
	PresetID  int    `json:"preset_id" validate:"required"`
	Algo      string `json:"algo,omitempty" validate:"omitempty,oneof=roundrobin leastconn"`
	IsSticky  bool   `json:"is_sticky,omitempty"`
	IsUseProxy bool  `json:"is_use_proxy,omitempty"`
	IsSSL     bool   `json:"is_ssl,omitempty"`
	ProjectID int    `json:"project_id,omitempty"`
	NetworkID string `json:"network_id,omitempty"`
}

// UpdateBalancerRequest changes balancer properties.
type UpdateBalancerRequest struct {
	Name      string `json:"name,omitempty"`
	Algo      string `json:"algo,omitempty" validate:"omitempty,oneof=roundrobin leastconn"`
	PresetID  int    `json:"preset_id,omitempty"`
	IsSticky  *bool  `json:"is_sticky,omitempty"`
	IsUseProxy *bool `json:"is_use_proxy,omitempty"`
	IsSSL     *bool  `json:"is_ssl,omitempty"`
}

// CreateBalancerRuleRequest adds a forwarding rule.
type CreateBalancerRuleRequest struct {
	BalancerProto string `json:"proto" validate:"required,oneof=http https http2 tcp"`
	BalancerPort  int    `json:"port" validate:"required,min=1,max=65535"`
	ServerProto   string `json:"server_proto" validate:"required,oneof=http https tcp"`
	ServerPort    int    `json:"server_port" validate:"required,min=1,max=65535"`
}

// GetBalancers returns the account's load balancers.
func (c *Client) GetBalancers(ctx context.Context) ([]Balancer, *Response, error) {
	var out struct {
		Balancers []Balancer `json:"balancers"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/balancers", nil, nil, &out)
	return out.Balancers, resp, err
}

// GetBalancer returns a single load balancer.
func (c *Client) GetBalancer(ctx context.Context, balancerID int) (*Balancer, *Response, error) {
	var out struct {
		Balancer *Balancer `json:"balancer"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/balancers/%d", balancerID), nil, nil, &out)
	return out.Balancer, resp, err
}

// CreateBalancer provisions a load balancer.
func (c *Client) CreateBalancer(ctx context.Context, req CreateBalancerRequest) (*Balancer, *Response, error) {
	if err := validate.Struct(req); err != nil {
		return nil, nil, err
	}
	var out struct {
		Balancer *Balancer `json:"balancer"`
	}
	resp, err := c.do(ctx, http.MethodPost, "/balancers", nil, req, &out)
	return out.Balancer, resp, err
}

// UpdateBalancer changes balancer properties.
func (c *Client) UpdateBalancer(ctx context.Context, balancerID int, req UpdateBalancerRequest) (*Balancer, *Response, error) {
	if err := validate.Struct(req); err != nil {
		return nil, nil, err
	}
	var out struct {
		Balancer *Balancer `json:"balancer"`
	}
	resp, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/balancers/%d", balancerID), nil, req, &out)
	return out.Balancer, resp, err
}

// DeleteBalancer removes a load balancer.
func (c *Client) DeleteBalancer(ctx context.Context, balancerID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/balancers/%d", balancerID), nil, nil, nil)
}

// GetBalancerIPs returns the backend IPs behind a balancer.
func (c *Client) GetBalancerIPs(ctx context.Context, balancerID int) ([]string, *Response, error) {
	var out struct {
		IPs []string `json:"ips"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/balancers/%d/ips", balancerID), nil, nil, &out)
	return out.IPs, resp, err
}

// AddBalancerIPs attaches backend IPs to a balancer.
func (c *Client) AddBalancerIPs(ctx context.Context, balancerID int, ips []string) (*Response, error) {
	for _, ip := range ips {
		if err := validate.Var(ip, "ip"); err != nil {
			return nil, fmt.Errorf("invalid IP address %q", ip)
		}
	}
	body := map[string][]string{"ips": ips}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/balancers/%d/ips", balancerID), nil, body, nil)
}

// DeleteBalancerIPs detaches backend IPs from a balancer.
func (c *Client) DeleteBalancerIPs(ctx context.Context, balancerID int, ips []string) (*Response, error) {
	body := map[string][]string{"ips": ips}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/balancers/%d/ips", balancerID), nil, body, nil)
}

// GetBalancerRules returns a balancer's forwarding rules.
func (c *Client) GetBalancerRules(ctx context.Context, balancerID int) ([]BalancerRule, *Response, error) {
	var out struct {
		Rules []BalancerRule `json:"rules"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/balancers/%d/rules", balancerID), nil, nil, &out)
	return out.Rules, resp, err
}

// CreateBalancerRule adds a forwarding rule to a balancer.
func (c *Client) CreateBalancerRule(ctx context.Context, balancerID int, req CreateBalancerRuleRequest) (*BalancerRule, *Response, error) {
	if err := validate.Struct(req); err != nil {
		return nil, nil, err
	}
	var out struct {
		Rule *BalancerRule `json:"rule"`
	}
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/balancers/%d/rules", balancerID), nil, req, &out)
	return out.Rule, resp, err
}

// DeleteBalancerRule removes a forwarding rule.
func (c *Client) DeleteBalancerRule(ctx context.Context, balancerID, ruleID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/balancers/%d/rules/%d", balancerID, ruleID), nil, nil, nil)
}

// GetBalancerPresets returns the available balancer configurations.
func (c *Client) GetBalancerPresets(ctx context.Context) ([]BalancerPreset, *Response, error) {
	var out struct {
		Presets []BalancerPreset `json:"balancers_presets"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/presets/balancers", nil, nil, &out)
	return out.Presets, resp, err
}
