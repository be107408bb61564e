package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Bucket is an object storage bucket.
type Bucket struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status,omitempty"`
	Type        string `json:"type"`
	Location    Region `json:"location,omitempty"`
	PresetID    int    `json:"preset_id,omitempty"`
	DiskStats   *BucketDiskStats `json:"disk_stats,omitempty"`
	ObjectCount int    `json:"object_amount,omitempty"`
	AccessKey   string `json:"access_key,omitempty"`
	ProjectID   int    `json:"project_id,omitempty"`
}

// BucketDiskStats reports bucket space usage in kilobytes.
type BucketDiskStats struct {
	Size int `json:"size"`
	Used int `json:"used"`
}

// StorageUser is an object storage access user.
type StorageUser struct {
	ID        int    `json:"id"`
	AccessKey string `json:"access_key"`
}

// BucketSubdomain is a custom domain attached to a bucket.
type BucketSubdomain struct {
	ID        int    `json:"id"`
	Subdomain string `json:"subdomain"`
	CertReleased bool `json:"cert_released,omitempty"`
	Status    string `json:"status,omitempty"`
}

// StoragePreset is an object storage tariff.
type StoragePreset struct {
	ID       int     `json:"id"`
	Location Region  `json:"location"`
	Disk     int     `json:"disk"`
	Price    float64 `json:"price"`
}

// GetBuckets returns the account's storage buckets.
func (c *Client) GetBuckets(ctx context.Context) ([]Bucket, *Response, error) {
	var out struct {
		Buckets []Bucket `json:"buckets"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/storages/buckets", nil, nil, &out)
	return out.Buckets, resp, err
}

// CreateBucket makes a new bucket. Type is "private" or "public".
func (c *Client) CreateBucket(ctx context.Context, name string, presetID int, bucketType string) (*Bucket, *Response, error) {
	body := map[string]any{
		"name":      name,
		"preset_id": presetID,
		"type":      bucketType,
	}
	var out struct {
		Bucket *Bucket `json:"bucket"`
	}
	resp, err := c.do(ctx, http.MethodPost, "/storages/buckets", nil, body, &out)
	return out.Bucket, resp, err
}

// UpdateBucket changes bucket type or size preset.
func (c *Client) UpdateBucket(ctx context.Context, bucketID int, presetID int, bucketType string) (*Bucket, *Response, error) {
	body := map[string]any{}
	if presetID > 0 {
		body["preset_id"] = presetID
	}
	if bucketType != "" {
		body["type"] = bucketType
	}
	var out struct {
		Bucket *Bucket `json:"bucket"`
	}
	resp, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/storages/buckets/%d", bucketID), nil, body, &out)
	return out.Bucket, resp, err
}

// DeleteBucket removes a bucket and all objects in it.
func (c *Client) DeleteBucket(ctx context.Context, bucketID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/storages/buckets/%d", bucketID), nil, nil, nil)
}

// GetStoragePresets returns the available storage tariffs.
func (c *Client) GetStoragePresets(ctx context.Context) ([]StoragePreset, *Response, error) {
	var out struct {
		Presets []StoragePreset `json:"storages_presets"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/presets/storages", nil, nil, &out)
	return out.Presets, resp, err
}

// GetStorageUsers returns the account's storage users.
func (c *Client) GetStorageUsers(ctx context.Context) ([]StorageUser, *Response, error) {
	var out struct {
		Users []StorageUser `json:"users"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/storages/users", nil, nil, &out)
	return out.Users, resp, err
}

// UpdateStorageUserSecret sets a new secret key for a storage user.
func (c *Client) UpdateStorageUserSecret(ctx context.Context, userID int, secretKey string) (*Response, error) {
	body := map[string]string{"secret_key": secretKey}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/storages/users/%d", userID), nil, body, nil)
}

// GetBucketSubdomains returns custom domains attached to a bucket.
func (c *Client) GetBucketSubdomains(ctx context.Context, bucketID int) ([]BucketSubdomain, *Response, error) {
	var out struct {
		Subdomains []BucketSubdomain `json:"subdomains"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/storages/buckets/%d/subdomains", bucketID), nil, nil, &out)
	return out.Subdomains, resp, err
}

// AddBucketSubdomains attaches custom domains to a bucket.
func (c *Client) AddBucketSubdomains(ctx context.Context, bucketID int, subdomains []string) (*Response, error) {
	for _, s := range subdomains {
		if err := validate.Var(s, "fqdn"); err != nil {
			return nil, fmt.Errorf("invalid subdomain %q", s)
		}
	}
	body := map[string][]string{"subdomains": subdomains}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/storages/buckets/%d/subdomains", bucketID), nil, body, nil)
}

// DeleteBucketSubdomains detaches custom domains from a bucket.
func (c *Client) DeleteBucketSubdomains(ctx context.Context, bucketID int, subdomains []string) (*Response, error) {
	body := map[string][]string{"subdomains": subdomains}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/storages/buckets/%d/subdomains", bucketID), nil, body, nil)
}

// GenBucketSubdomainCert requests a TLS certificate for a bucket
// subdomain.
func (c *Client) GenBucketSubdomainCert(ctx context.Context, subdomain string) (*Response, error) {
	body := map[string]string{"subdomain": subdomain}
	return c.do(ctx, http.MethodPost, "/storages/certificates/generate", nil, body, nil)
}

// GetStorageTransferStatus reports the progress of an inbound bucket
// transfer.
func (c *Client) GetStorageTransferStatus(ctx context.Context, bucketID int) (*Response, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/storages/buckets/%d/transfer-status", bucketID), nil, nil, nil)
}

// StartStorageTransfer copies objects from a foreign S3-compatible
// storage into a bucket.
func (c *Client) StartStorageTransfer(ctx context.Context, srcBucket, dstBucket, accessKey, secretKey, endpoint string, forcePathStyle bool) (*Response, error) {
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	body := map[string]any{
		"from_bucket":      srcBucket,
		"to_bucket":        dstBucket,
		"access_key":       accessKey,
		"secret_key":       secretKey,
		"endpoint":         endpoint,
		"force_path_style": forcePathStyle,
	}
	return c.do(ctx, http.MethodPost, "/storages/transfer", nil, body, nil)
}
