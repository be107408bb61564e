package api

import (
	"context"
	"fmt"
	"net/http"
)

// FirewallGroup is a named set of firewall rules.
type FirewallGroup struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Policy        string `json:"policy,omitempty"`
	ResourceCount int    `json:"resources_count,omitempty"`
	RuleCount     int    `json:"rules_count,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// FirewallRule is a single allow rule in a group.
type FirewallRule struct {
	ID          string `json:"id"`
	GroupID     string `json:"group_id"`
	Direction   string `json:"direction"`
	Protocol    string `json:"protocol"`
	Port        string `json:"port,omitempty"`
	CIDR        string `json:"cidr"`
	Description string `json:"description,omitempty"`
}

// FirewallResource is a resource linked to a firewall group.
type FirewallResource struct {
	ID   int          `json:"id"`
	Type ResourceType `json:"resource_type"`
}

// CreateFirewallRuleRequest adds a rule to a group. Port may be a single
// port or a "from-to" range.
type CreateFirewallRuleRequest struct {
	Direction   string `json:"direction" validate:"required,oneof=ingress egress"`
	Protocol    string `json:"protocol" validate:"required,oneof=tcp udp icmp tcp6 udp6 icmp6"`
	Port        string `json:"port,omitempty"`
	CIDR        string `json:"cidr" validate:"required,cidr"`
	Description string `json:"description,omitempty"`
}

// GetFirewallGroups returns the account's firewall groups.
func (c *Client) GetFirewallGroups(ctx context.Context, limit, offset int) ([]FirewallGroup, *Response, error) {
	var out struct {
		Groups []FirewallGroup `json:"groups"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/firewall/groups", listQuery(limit, offset), nil, &out)
	return out.Groups, resp, err
}

// GetFirewallGroup returns a single firewall group.
func (c *Client) GetFirewallGroup(ctx context.Context, groupID string) (*FirewallGroup, *Response, error) {
	var out struct {
		Group *FirewallGroup `json:"group"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/firewall/groups/"+groupID, nil, nil, &out)
	return out.Group, resp, err
}

// CreateFirewallGroup creates an empty firewall group.
func (c *Client) CreateFirewallGroup(ctx context.Context, name, description string) (*FirewallGroup, *Response, error) {
	body := map[string]string{"name": name}
	if description != "" {
		body["description"] = description
	}
	var out struct {
		Group *FirewallGroup `json:"group"`
	}
	resp, err := c.do(ctx, http.MethodPost, "/firewall/groups", nil, body, &out)
	return out.Group, resp, err
}

// UpdateFirewallGroup changes group name or description.
func (c *Client) UpdateFirewallGroup(ctx context.Context, groupID, name, description string) (*FirewallGroup, *Response, error) {
	body := map[string]string{}
	if name != "" {
		body["name"] = name
	}
	if description != "" {
		body["description"] = description
	}
	var out struct {
		Group *FirewallGroup `json:"group"`
	}
	resp, err := c.do(ctx, http.MethodPatch, "/firewall/groups/"+groupID, nil, body, &out)
	return out.Group, resp, err
}

// DeleteFirewallGroup removes a firewall group and its rules.
func (c *Client) DeleteFirewallGroup(ctx context.Context, groupID string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, "/firewall/groups/"+groupID, nil, nil, nil)
}

// GetFirewallRules returns the rules of a group.
func (c *Client) GetFirewallRules(ctx context.Context, groupID string, limit, offset int) ([]FirewallRule, *Response, error) {
	var out struct {
		Rules []FirewallRule `json:"rules"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/firewall/groups/"+groupID+"/rules", listQuery(limit, offset), nil, &out)
	return out.Rules, resp, err
}

// CreateFirewallRule adds a rule to a group.
func (c *Client) CreateFirewallRule(ctx context.Context, groupID string, req CreateFirewallRuleRequest) (*FirewallRule, *Response, error) {
	if err := validate.Struct(req); err != nil {
		return nil, nil, err
	}
	var out struct {
		Rule *FirewallRule `json:"rule"`
	}
	resp, err := c.do(ctx, http.MethodPost, "/firewall/groups/"+groupID+"/rules", nil, req, &out)
	return out.Rule, resp, err
}

// DeleteFirewallRule removes a rule from a group.
func (c *Client) DeleteFirewallRule(ctx context.Context, groupID, ruleID string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, "/firewall/groups/"+groupID+"/rules/"+ruleID, nil, nil, nil)
}

// GetFirewallGroupResources returns resources linked to a group.
func (c *Client) GetFirewallGroupResources(ctx context.Context, groupID string) ([]FirewallResource, *Response, error) {
	var out struct {
		Resources []FirewallResource `json:"resources"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/firewall/groups/"+groupID+"/resources", nil, nil, &out)
	return out.Resources, resp, err
}

// LinkResourceToFirewall attaches a resource to a firewall group.
func (c *Client) LinkResourceToFirewall(ctx context.Context, groupID string, resourceID int, resourceType ResourceType) (*Response, error) {
	return c.do(ctx, http.MethodPost,
		fmt.Sprintf("/firewall/groups/%s/resources/%d", groupID, resourceID), nil,
		map[string]ResourceType{"resource_type": resourceType}, nil)
}

// UnlinkResourceFromFirewall detaches a resource from a firewall group.
func (c *Client) UnlinkResourceFromFirewall(ctx context.Context, groupID string, resourceID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete,
		fmt.Sprintf("/firewall/groups/%s/resources/%d", groupID, resourceID), nil, nil, nil)
}
