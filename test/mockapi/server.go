// Package mockapi is an in-memory fake of the Nimbus Cloud API for
// tests. It speaks the same wire format as the real service, including
// the error schema, so client and CLI tests can run against it with an
// httptest server.
package mockapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// API serves the fake Nimbus Cloud REST API.
type API struct {
	state  *State
	token  string
	router *gin.Engine

	// Requests counts handled requests, used to assert that a failing
	// command never reached the network.
	Requests int
}

// New builds a fake API accepting the given bearer token.
func New(state *State, token string) *API {
	if state == nil {
		state = NewState()
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())

	a := &API{state: state, token: token, router: router}
	a.setupRoutes()
	return a
}

// Router returns the handler, ready for httptest.NewServer.
func (a *API) Router() *gin.Engine {
	return a.router
}

// State returns the backing state for test manipulation.
func (a *API) State() *State {
	return a.state
}

func (a *API) setupRoutes() {
	v1 := a.router.Group("/api/v1")
	v1.Use(a.countRequests, a.requireAuth)

	v1.GET("/servers", a.handleListServers)
	v1.GET("/servers/:id", a.handleGetServer)
	v1.POST("/servers", a.handleCreateServer)
	v1.DELETE("/servers/:id", a.handleDeleteServer)
	v1.POST("/servers/:id/action", a.handleServerAction)

	v1.GET("/ssh-keys", a.handleListSSHKeys)
	v1.POST("/ssh-keys", a.handleAddSSHKey)
	v1.DELETE("/ssh-keys/:id", a.handleDeleteSSHKey)
}

func (a *API) countRequests(c *gin.Context) {
	a.Requests++
	c.Next()
}

// apiError writes the provider error schema.
func apiError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"status_code": status,
		"error_code":  code,
		"message":     message,
		"response_id": uuid.NewString(),
	})
}

func (a *API) requireAuth(c *gin.Context) {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != a.token {
		apiError(c, http.StatusUnauthorized, "unauthorized", "invalid or missing token")
		return
	}
	c.Next()
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "invalid ID")
		return 0, false
	}
	return id, true
}

func (a *API) handleListServers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"servers": a.state.ListServers()})
}

func (a *API) handleGetServer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	srv, ok := a.state.GetServer(id)
	if !ok {
		apiError(c, http.StatusNotFound, "not_found", "server not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"server": srv})
}

func (a *API) handleCreateServer(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
		OSID int    `json:"os_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		apiError(c, http.StatusBadRequest, "bad_request", "name is required")
		return
	}
	srv := a.state.AddServer(req.Name, "eu-1", "installing")
	c.JSON(http.StatusCreated, gin.H{"server": srv})
}

func (a *API) handleDeleteServer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := a.state.DeleteServer(id); err != nil {
		status := http.StatusNotFound
		code := "not_found"
		if a.state.deleteFails(id) {
			status = http.StatusInternalServerError
			code = "internal"
		}
		apiError(c, status, code, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) handleServerAction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Action string `json:"action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "action is required")
		return
	}
	if err := a.state.DoAction(id, req.Action); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) handleListSSHKeys(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ssh_keys": a.state.ListSSHKeys()})
}

func (a *API) handleAddSSHKey(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		Body      string `json:"body"`
		IsDefault bool   `json:"is_default"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Body == "" {
		apiError(c, http.StatusBadRequest, "bad_request", "name and body are required")
		return
	}
	key := a.state.AddSSHKey(req.Name, req.Body, req.IsDefault)
	c.JSON(http.StatusCreated, gin.H{"ssh_key": key})
}

func (a *API) handleDeleteSSHKey(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if !a.state.DeleteSSHKey(id) {
		apiError(c, http.StatusNotFound, "not_found", "ssh key not found")
		return
	}
	c.Status(http.StatusNoContent)
}
