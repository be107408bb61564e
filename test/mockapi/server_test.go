package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, a *API, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	return w
}

func TestRequiresToken(t *testing.T) {
	a := New(nil, "secret")

	w := doRequest(t, a, http.MethodGet, "/api/v1/servers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, a, http.MethodGet, "/api/v1/servers", "wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unauthorized", body["error_code"])
	assert.NotEmpty(t, body["response_id"])
}

func TestServerLifecycle(t *testing.T) {
	a := New(nil, "secret")

	w := doRequest(t, a, http.MethodPost, "/api/v1/servers", "secret",
		map[string]any{"name": "web-1", "os_id": 79})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Server Server `json:"server"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "web-1", created.Server.Name)
	assert.Equal(t, "installing", created.Server.Status)

	w = doRequest(t, a, http.MethodGet, "/api/v1/servers", "secret", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Servers []Server `json:"servers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed.Servers, 1)
}

func TestStatusScriptAdvances(t *testing.T) {
	state := NewState()
	srv := state.AddServer("db-1", "eu-1", "installing")
	state.ScriptServerStatus(srv.ID, "installing", "installing", "on")

	got, _ := state.GetServer(srv.ID)
	assert.Equal(t, "installing", got.Status)
	got, _ = state.GetServer(srv.ID)
	assert.Equal(t, "installing", got.Status)
	got, _ = state.GetServer(srv.ID)
	assert.Equal(t, "on", got.Status)

	// Last entry repeats.
	got, _ = state.GetServer(srv.ID)
	assert.Equal(t, "on", got.Status)
}

func TestDeleteFailureInjection(t *testing.T) {
	a := New(nil, "secret")
	srv := a.State().AddServer("web-1", "eu-1", "on")
	a.State().FailDelete(srv.ID)

	w := doRequest(t, a, http.MethodDelete, "/api/v1/servers/"+itoa(srv.ID), "secret", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// The server survives a failed delete.
	w = doRequest(t, a, http.MethodGet, "/api/v1/servers/"+itoa(srv.ID), "secret", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestActionChangesStatus(t *testing.T) {
	a := New(nil, "secret")
	srv := a.State().AddServer("web-1", "eu-1", "on")

	w := doRequest(t, a, http.MethodPost, "/api/v1/servers/"+itoa(srv.ID)+"/action", "secret",
		map[string]string{"action": "shutdown"})
	require.Equal(t, http.StatusNoContent, w.Code)

	got, ok := a.State().GetServer(srv.ID)
	require.True(t, ok)
	assert.Equal(t, "off", got.Status)
}

func itoa(id int) string {
	return strconv.Itoa(id)
}
