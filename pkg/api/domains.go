package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Domain is a DNS zone hosted by the provider.
type Domain struct {
	ID           int         `json:"id"`
	FQDN         string      `json:"fqdn"`
	Status       string      `json:"domain_status,omitempty"`
	IsAutoprolong bool       `json:"is_autoprolong_enabled,omitempty"`
	ExpiredAt    string      `json:"expiration,omitempty"`
	Subdomains   []Subdomain `json:"subdomains,omitempty"`
}

// Subdomain is a subdomain of a hosted zone.
type Subdomain struct {
	ID   int    `json:"id"`
	FQDN string `json:"fqdn"`
}

// DNSRecord is a DNS resource record.
type DNSRecord struct {
	ID   int           `json:"id"`
	Type string        `json:"type"`
	Data DNSRecordData `json:"data"`
}

// DNSRecordData is the value part of a DNS record.
type DNSRecordData struct {
	Value     string `json:"value"`
	Priority  int    `json:"priority,omitempty"`
	Subdomain string `json:"subdomain,omitempty"`
}

// AddDNSRecordRequest creates a DNS record on a zone. A/AAAA values are
// validated as IP addresses before the request is sent.
type AddDNSRecordRequest struct {
	Type      string `json:"type" validate:"required,oneof=A AAAA CNAME MX TXT SRV NS"`
	Value     string `json:"value" validate:"required"`
	Priority  int    `json:"priority,omitempty"`
	Subdomain string `json:"subdomain,omitempty"`
}

// GetDomains returns the account's DNS zones.
func (c *Client) GetDomains(ctx context.Context, limit, offset int) ([]Domain, *Response, error) {
	var out struct {
		Domains []Domain `json:"domains"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/domains", listQuery(limit, offset), nil, &out)
	return out.Domains, resp, err
}

// GetDomain returns a single DNS zone.
func (c *Client) GetDomain(ctx context.Context, fqdn string) (*Domain, *Response, error) {
	var out struct {
		Domain *Domain `json:"domain"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/domains/"+url.PathEscape(fqdn), nil, nil, &out)
	return out.Domain, resp, err
}

// AddDomain adds an existing domain name to the account.
func (c *Client) AddDomain(ctx context.Context, fqdn string) (*Response, error) {
	if err := validate.Var(fqdn, "fqdn"); err != nil {
		return nil, fmt.Errorf("invalid domain name %q", fqdn)
	}
	return c.do(ctx, http.MethodPost, "/add-domain/"+url.PathEscape(fqdn), nil, struct{}{}, nil)
}

// DeleteDomain removes a DNS zone from the account.
func (c *Client) DeleteDomain(ctx context.Context, fqdn string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, "/domains/"+url.PathEscape(fqdn), nil, nil, nil)
}

// SetDomainAutoprolong toggles automatic domain renewal.
func (c *Client) SetDomainAutoprolong(ctx context.Context, fqdn string, enabled bool) (*Response, error) {
	body := map[string]bool{"is_autoprolong_enabled": enabled}
	return c.do(ctx, http.MethodPatch, "/domains/"+url.PathEscape(fqdn), nil, body, nil)
}

// GetDNSRecords returns the records of a zone.
func (c *Client) GetDNSRecords(ctx context.Context, fqdn string, limit, offset int) ([]DNSRecord, *Response, error) {
	var out struct {
		Records []DNSRecord `json:"dns_records"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/domains/"+url.PathEscape(fqdn)+"/dns-records", listQuery(limit, offset), nil, &out)
	return out.Records, resp, err
}

// AddDNSRecord creates a DNS record on a zone.
func (c *Client) AddDNSRecord(ctx context.Context, fqdn string, req AddDNSRecordRequest) (*DNSRecord, *Response, error) {
	if err := validate.Struct(req); err != nil {
		return nil, nil, err
	}
	if req.Type == "A" || req.Type == "AAAA" {
		if err := validate.Var(req.Value, "ip"); err != nil {
			return nil, nil, fmt.Errorf("record value %q is not a valid IP address", req.Value)
		}
	}
	body := map[string]any{
		"type": req.Type,
		"data": map[string]any{
			"value": req.Value,
		},
	}
	data := body["data"].(map[string]any)
	if req.Priority > 0 {
		data["priority"] = req.Priority
	}
	if req.Subdomain != "" {
		data["subdomain"] = req.Subdomain
	}
	var out struct {
		Record *DNSRecord `json:"dns_record"`
	}
	resp, err := c.do(ctx, http.MethodPost, "/domains/"+url.PathEscape(fqdn)+"/dns-records", nil, body, &out)
	return out.Record, resp, err
}

// DeleteDNSRecord removes a DNS record.
func (c *Client) DeleteDNSRecord(ctx context.Context, fqdn string, recordID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/domains/%s/dns-records/%d", url.PathEscape(fqdn), recordID), nil, nil, nil)
}

// AddSubdomain creates a subdomain on a zone.
func (c *Client) AddSubdomain(ctx context.Context, fqdn, subdomainFQDN string) (*Subdomain, *Response, error) {
	var out struct {
		Subdomain *Subdomain `json:"subdomain"`
	}
	resp, err := c.do(ctx, http.MethodPost,
		fmt.Sprintf("/domains/%s/subdomains/%s", url.PathEscape(fqdn), url.PathEscape(subdomainFQDN)), nil, struct{}{}, &out)
	return out.Subdomain, resp, err
}

// DeleteSubdomain removes a subdomain and its DNS records.
func (c *Client) DeleteSubdomain(ctx context.Context, fqdn, subdomainFQDN string) (*Response, error) {
	return c.do(ctx, http.MethodDelete,
		fmt.Sprintf("/domains/%s/subdomains/%s", url.PathEscape(fqdn), url.PathEscape(subdomainFQDN)), nil, nil, nil)
}
