package api

import (
	"context"
	"net/http"
)

// AccountStatus describes the account's standing.
type AccountStatus struct {
	CompanyInfo *struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"company_info,omitempty"`
	IsBlocked        bool   `json:"is_blocked"`
	IsPermanentBlocked bool `json:"is_permanent_blocked"`
	LastPasswordChange string `json:"last_password_changed_at,omitempty"`
}

// AccountFinances describes balance and spending.
type AccountFinances struct {
	Balance       float64 `json:"balance"`
	Currency      string  `json:"currency"`
	MonthlyCost   float64 `json:"monthly_cost,omitempty"`
	HourlyCost    float64 `json:"hourly_cost,omitempty"`
	AutopayAmount float64 `json:"autopay_card_info,omitempty"`
}

// GetAccountStatus returns the account's standing.
func (c *Client) GetAccountStatus(ctx context.Context) (*AccountStatus, *Response, error) {
	var out struct {
		Status *AccountStatus `json:"status"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/account/status", nil, nil, &out)
	return out.Status, resp, err
}

// GetAccountFinances returns balance and spending figures.
func (c *Client) GetAccountFinances(ctx context.Context) (*AccountFinances, *Response, error) {
	var out struct {
		Finances *AccountFinances `json:"finances"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/account/finances", nil, nil, &out)
	return out.Finances, resp, err
}

// GetAccountRestrictions returns access restriction settings.
func (c *Client) GetAccountRestrictions(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/auth/access", nil, nil, nil)
}
