package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Image is a custom disk image.
type Image struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	DiskID      int    `json:"disk_id,omitempty"`
	OS          string `json:"os,omitempty"`
	Location    Region `json:"location,omitempty"`
	Size        int    `json:"size,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// CreateImageRequest creates an image either from an existing server
// disk or by pulling from an external URL; the two sources are mutually
// exclusive and one is required.
type CreateImageRequest struct {
	DiskID      int    `json:"disk_id,omitempty"`
	UploadURL   string `json:"upload_url,omitempty" validate:"omitempty,url"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	OSType      string `json:"os,omitempty"`
	Location    Region `json:"location,omitempty"`
}

// GetImages returns the account's disk images.
func (c *Client) GetImages(ctx context.Context, limit, offset int) ([]Image, *Response, error) {
	var out struct {
		Images []Image `json:"images"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/images", listQuery(limit, offset), nil, &out)
	return out.Images, resp, err
}

// GetImage returns a single disk image.
func (c *Client) GetImage(ctx context.Context, imageID string) (*Image, *Response, error) {
	var out struct {
		Image *Image `json:"image"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/images/"+imageID, nil, nil, &out)
	return out.Image, resp, err
}

// CreateImage starts creation of a disk image.
func (c *Client) CreateImage(ctx context.Context, req CreateImageRequest) (*Image, *Response, error) {
	if err := validate.Struct(req); err != nil {
		return nil, nil, err
	}
	if (req.DiskID == 0) == (req.UploadURL == "") {
		return nil, nil, fmt.Errorf("exactly one of disk ID or upload URL must be set")
	}
	var out struct {
		Image *Image `json:"image"`
	}
	resp, err := c.do(ctx, http.MethodPost, "/images", nil, req, &out)
	return out.Image, resp, err
}

// UpdateImage changes image name or description.
func (c *Client) UpdateImage(ctx context.Context, imageID, name, description string) (*Image, *Response, error) {
	body := map[string]string{}
	if name != "" {
		body["name"] = name
	}
	if description != "" {
		body["description"] = description
	}
	var out struct {
		Image *Image `json:"image"`
	}
	resp, err := c.do(ctx, http.MethodPatch, "/images/"+imageID, nil, body, &out)
	return out.Image, resp, err
}

// UploadImage streams local image file contents into an existing image.
// size may be -1 when unknown; r is read to EOF.
func (c *Client) UploadImage(ctx context.Context, imageID string, r io.Reader, size int64, filename string) (*Response, error) {
	return c.upload(ctx, "/images/"+imageID, r, size, filename)
}

// DeleteImage removes a disk image.
func (c *Client) DeleteImage(ctx context.Context, imageID string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, "/images/"+imageID, nil, nil, nil)
}
