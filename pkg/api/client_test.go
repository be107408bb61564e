package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient builds a client against a httptest server with retries and
// rate limiting off, so failure tests do not multiply requests.
func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	c := NewClient("test-token",
		WithBaseURL(ts.URL),
		WithHTTPClient(ts.Client()),
		WithRateLimit(0),
	)
	return c, ts
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{"servers": []}`))
	})

	_, _, err := c.GetServers(context.Background(), 0, 0)
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "nimbus-cli/"+Version, got.Get("User-Agent"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestRequestPath(t *testing.T) {
	var gotPath, gotQuery string
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"servers": []}`))
	})

	_, _, err := c.GetServers(context.Background(), 50, 100)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/servers", gotPath)
	assert.Equal(t, "limit=50&offset=100", gotQuery)
}

func TestUnauthorized(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, resp, err := c.GetServers(context.Background(), 0, 0)
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNotFound(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status_code": 404, "error_code": "not_found", "message": "server not found", "response_id": "a1b2"}`))
	})

	_, _, err := c.GetServer(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "not_found", apiErr.ErrorCode)
	assert.Equal(t, "server not found", apiErr.Message)
	assert.Equal(t, "a1b2", apiErr.ResponseID)
}

func TestRateLimited(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"status_code": 429, "error_code": "rate_limit", "message": "slow down", "response_id": "x"}`))
	})

	_, _, err := c.GetServers(context.Background(), 0, 0)
	require.Error(t, err)
	assert.True(t, IsRateLimit(err))
}

func TestErrorMessageList(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status_code": 400, "error_code": "bad_request", "message": ["name is required", "os_id is required"], "response_id": "x"}`))
	})

	_, _, err := c.GetServers(context.Background(), 0, 0)
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "name is required")
	assert.Contains(t, apiErr.Message, "os_id is required")
}

func TestMalformedErrorBody(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>gateway error</html>"))
	})

	_, _, err := c.GetServers(context.Background(), 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestMalformedSuccessBody(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, _, err := c.GetServers(context.Background(), 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRawBodyPreserved(t *testing.T) {
	const body = `{"servers": [{"id": 7, "name": "web-1", "status": "on"}]}`
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})

	servers, resp, err := c.GetServers(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, body, string(resp.Body))
	require.Len(t, servers, 1)
	assert.Equal(t, 7, servers[0].ID)
	assert.Equal(t, "on", servers[0].Status)
}

func TestCreateServerValidation(t *testing.T) {
	called := false
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	// Missing required fields never reach the wire.
	_, _, err := c.CreateServer(context.Background(), CreateServerRequest{})
	require.Error(t, err)
	assert.False(t, called)
}

func TestCreateVPCRejectsBadCIDR(t *testing.T) {
	called := false
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, _, err := c.CreateVPC(context.Background(), CreateVPCRequest{
		Name:     "lan",
		Subnet:   "not-a-cidr",
		Location: RegionEU1,
	})
	require.Error(t, err)
	assert.False(t, called)

	_, _, err = c.CreateVPC(context.Background(), CreateVPCRequest{
		Name:     "lan",
		Subnet:   "10.0.0.0/24",
		Location: RegionEU1,
	})
	// The request is valid, so it reaches the server.
	require.NoError(t, err)
	assert.True(t, called)
}

func TestCreateImageRequiresOneSource(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})

	_, _, err := c.CreateImage(context.Background(), CreateImageRequest{})
	require.Error(t, err)

	_, _, err = c.CreateImage(context.Background(), CreateImageRequest{
		DiskID:    1,
		UploadURL: "https://example.com/img.qcow2",
	})
	require.Error(t, err)
}

// retryClient builds a client with the default transports, so retry
// behavior is what production sees. Rate limiting stays off.
func retryClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient("test-token", WithBaseURL(ts.URL), WithRateLimit(0))
}

func TestMutatingRequestNotRetriedOn5xx(t *testing.T) {
	var requests int
	c := retryClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status_code": 500, "error_code": "internal", "message": "boom", "response_id": "x"}`))
	})

	_, _, err := c.CreateServer(context.Background(), CreateServerRequest{Name: "web-1", OSID: 79, PresetID: 5})
	require.Error(t, err)
	assert.Equal(t, 1, requests, "a create must never be replayed")
}

func TestReadRetriedOn5xx(t *testing.T) {
	var requests int
	c := retryClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"servers": []}`))
	})

	_, _, err := c.GetServers(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
}

func TestUploadNotRetriedOn5xx(t *testing.T) {
	var requests int
	c := retryClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status_code": 500, "error_code": "internal", "message": "boom", "response_id": "x"}`))
	})

	_, err := c.UploadImage(context.Background(), "img-1", strings.NewReader("payload"), 7, "img.qcow2")
	require.Error(t, err)
	assert.Equal(t, 1, requests)
}

// drainReader records whether the body was fully consumed. The flag is
// atomic: the transport reads the body on its own goroutine.
type drainReader struct {
	r       io.Reader
	drained atomic.Bool
}

func (d *drainReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if err == io.EOF {
		d.drained.Store(true)
	}
	return n, err
}

func TestUploadStreamsBody(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 1<<20)
	src := &drainReader{r: bytes.NewReader(payload)}

	var undrainedAtArrival bool
	var received []byte
	c := retryClient(t, func(w http.ResponseWriter, r *http.Request) {
		// With a streaming body the request line arrives while most of
		// the payload is still unread.
		undrainedAtArrival = !src.drained.Load()
		var err error
		received, err = io.ReadAll(r.Body)
		require.NoError(t, err)
	})

	_, err := c.UploadImage(context.Background(), "img-1", src, int64(len(payload)), "img.raw")
	require.NoError(t, err)
	assert.True(t, undrainedAtArrival, "body must not be buffered before the request is sent")
	assert.Equal(t, payload, received)
}

func TestBootModeWireName(t *testing.T) {
	var gotBody []byte
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	})

	_, err := c.SetServerBootMode(context.Background(), 1, BootModeRecovery)
	require.NoError(t, err)
	assert.JSONEq(t, `{"boot_mode": "recovery_disk"}`, string(gotBody))
}
