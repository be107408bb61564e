package mockapi

import (
	"fmt"
	"sort"
	"sync"
)

// Server is a mock cloud server record.
type Server struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Location string `json:"location"`
	MainIPv4 string `json:"main_ipv4,omitempty"`
	OS       struct {
		ID      int    `json:"id"`
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"os"`

	// statusScript, when non-empty, is consumed one entry per GET so
	// tests can play out a provisioning sequence. The last entry
	// repeats once the script runs out.
	statusScript []string
}

// SSHKey is a mock account SSH key.
type SSHKey struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Body      string `json:"body"`
	IsDefault bool   `json:"is_default"`
}

// State is the in-memory backend behind the mock API.
type State struct {
	mu      sync.RWMutex
	servers map[int]*Server
	sshKeys map[int]*SSHKey
	nextID  int

	// failDelete marks server IDs whose deletion returns HTTP 500,
	// for exercising bulk-remove error handling.
	failDelete map[int]bool
}

// NewState builds an empty state.
func NewState() *State {
	return &State{
		servers:    make(map[int]*Server),
		sshKeys:    make(map[int]*SSHKey),
		failDelete: make(map[int]bool),
		nextID:     100,
	}
}

// AddServer registers a server and returns its assigned ID.
func (s *State) AddServer(name, location, status string) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	srv := &Server{ID: s.nextID, Name: name, Status: status, Location: location}
	srv.OS.ID = 79
	srv.OS.Name = "ubuntu"
	srv.OS.Version = "24.04"
	s.servers[srv.ID] = srv
	return srv
}

// ScriptServerStatus sets the status sequence played back by
// consecutive GETs of the server.
func (s *State) ScriptServerStatus(id int, statuses ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if srv, ok := s.servers[id]; ok {
		srv.statusScript = statuses
	}
}

// FailDelete makes deleting the given server ID return HTTP 500.
func (s *State) FailDelete(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDelete[id] = true
}

func (s *State) deleteFails(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failDelete[id]
}

// ListServers returns servers ordered by ID.
func (s *State) ListServers() []*Server {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Server, 0, len(s.servers))
	for _, srv := range s.servers {
		out = append(out, srv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetServer returns a server, advancing its status script.
func (s *State) GetServer(id int) (*Server, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	srv, ok := s.servers[id]
	if !ok {
		return nil, false
	}
	if len(srv.statusScript) > 0 {
		srv.Status = srv.statusScript[0]
		if len(srv.statusScript) > 1 {
			srv.statusScript = srv.statusScript[1:]
		}
	}
	return srv, true
}

// DeleteServer removes a server; injected failures win.
func (s *State) DeleteServer(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete[id] {
		return fmt.Errorf("internal error deleting server %d", id)
	}
	if _, ok := s.servers[id]; !ok {
		return fmt.Errorf("server %d not found", id)
	}
	delete(s.servers, id)
	return nil
}

// DoAction applies a power action to a server.
func (s *State) DoAction(id int, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	srv, ok := s.servers[id]
	if !ok {
		return fmt.Errorf("server %d not found", id)
	}
	switch action {
	case "start", "reboot", "hard_reboot":
		srv.Status = "on"
	case "shutdown", "hard_shutdown":
		srv.Status = "off"
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}

// AddSSHKey stores a key and returns it with an assigned ID.
func (s *State) AddSSHKey(name, body string, isDefault bool) *SSHKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	key := &SSHKey{ID: s.nextID, Name: name, Body: body, IsDefault: isDefault}
	s.sshKeys[key.ID] = key
	return key
}

// ListSSHKeys returns all stored keys.
func (s *State) ListSSHKeys() []*SSHKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*SSHKey, 0, len(s.sshKeys))
	for _, key := range s.sshKeys {
		out = append(out, key)
	}
	return out
}

// DeleteSSHKey removes a stored key.
func (s *State) DeleteSSHKey(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sshKeys[id]; !ok {
		return false
	}
	delete(s.sshKeys, id)
	return true
}
