package api

import (
	"context"
	"fmt"
	"net/http"
)

// Cluster is a managed Kubernetes cluster.
type Cluster struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Status        string `json:"status"`
	K8SVersion    string `json:"k8s_version"`
	NetworkDriver string `json:"network_driver"`
	Ingress       bool   `json:"ingress"`
	PresetID      int    `json:"preset_id"`
	NodeCount     int    `json:"node_count,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// NodeGroup is a homogeneous set of cluster worker nodes.
type NodeGroup struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	PresetID  int    `json:"preset_id"`
	NodeCount int    `json:"node_count"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ClusterNode is a worker node in a cluster.
type ClusterNode struct {
	ID        int    `json:"id"`
	GroupID   int    `json:"group_id"`
	Status    string `json:"status"`
	Type      string `json:"type"`
	CPU       int    `json:"cpu"`
	RAM       int    `json:"ram"`
	Disk      int    `json:"disk"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ClusterResources reports a cluster's aggregate requested/allocatable
// capacity.
type ClusterResources struct {
	Nodes     int `json:"nodes"`
	Cores     int `json:"cores"`
	RAM       int `json:"ram"`
	Memory    int `json:"memory,omitempty"`
}

// CreateClusterWorkerGroup describes a worker group at cluster creation.
type CreateClusterWorkerGroup struct {
	Name      string `json:"name" validate:"required"`
	PresetID  int    `json:"preset_id" validate:"required"`
	NodeCount int    `json:"node_count" validate:"required,min=1"`
}

// CreateClusterRequest creates a managed Kubernetes cluster.
type CreateClusterRequest struct {
	Name          string                     `json:"name" validate:"required"`
	Description   string                     `json:"description,omitempty"`
	K8SVersion    string                     `json:"k8s_version" validate:"required"`
	NetworkDriver string                     `json:"network_driver,omitempty"`
	Ingress       bool                       `json:"ingress,omitempty"`
	PresetID      int                        `json:"preset_id" validate:"required"`
	WorkerGroups  []CreateClusterWorkerGroup `json:"worker_groups,omitempty" validate:"dive"`
	ProjectID     int                        `json:"project_id,omitempty"`
}

// GetClusters returns the account's Kubernetes clusters.
func (c *Client) GetClusters(ctx context.Context, limit, offset int) ([]Cluster, *Response, error) {
	var out struct {
		Clusters []Cluster `json:"clusters"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/k8s/clusters", listQuery(limit, offset), nil, &out)
	return out.Clusters, resp, err
}

// GetCluster returns a single Kubernetes cluster.
func (c *Client) GetCluster(ctx context.Context, clusterID int) (*Cluster, *Response, error) {
	var out struct {
		Cluster *Cluster `json:"cluster"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/k8s/clusters/%d", clusterID), nil, nil, &out)
	return out.Cluster, resp, err
}

// CreateCluster provisions a Kubernetes cluster.
func (c *Client) CreateCluster(ctx context.Context, req CreateClusterRequest) (*Cluster, *Response, error) {
	if err := validate.Struct(req); err != nil {
		return nil, nil, err
	}
	var out struct {
		Cluster *Cluster `json:"cluster"`
	}
	resp, err := c.do(ctx, http.MethodPost, "/k8s/clusters", nil, req, &out)
	return out.Cluster, resp, err
}

// UpdateCluster changes the cluster description.
func (c *Client) UpdateCluster(ctx context.Context, clusterID int, description string) (*Cluster, *Response, error) {
	body := map[string]string{"description": description}
	var out struct {
		Cluster *Cluster `json:"cluster"`
	}
	resp, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/k8s/clusters/%d", clusterID), nil, body, &out)
	return out.Cluster, resp, err
}

// DeleteCluster removes a Kubernetes cluster.
func (c *Client) DeleteCluster(ctx context.Context, clusterID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/k8s/clusters/%d", clusterID), nil, nil, nil)
}

// GetClusterKubeconfig returns the cluster's admin kubeconfig as YAML.
func (c *Client) GetClusterKubeconfig(ctx context.Context, clusterID int) ([]byte, *Response, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/k8s/clusters/%d/kubeconfig", clusterID), nil, nil, nil)
	if err != nil {
		return nil, resp, err
	}
	return resp.Body, resp, nil
}

// GetClusterResources returns the cluster's aggregate resource usage.
func (c *Client) GetClusterResources(ctx context.Context, clusterID int) (*ClusterResources, *Response, error) {
	var out struct {
		Resources *ClusterResources `json:"resources"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/k8s/clusters/%d/resources", clusterID), nil, nil, &out)
	return out.Resources, resp, err
}

// GetNodeGroups returns the worker groups of a cluster.
func (c *Client) GetNodeGroups(ctx context.Context, clusterID int) ([]NodeGroup, *Response, error) {
	var out struct {
		Groups []NodeGroup `json:"node_groups"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/k8s/clusters/%d/groups", clusterID), nil, nil, &out)
	return out.Groups, resp, err
}

// CreateNodeGroup adds a worker group to a cluster.
func (c *Client) CreateNodeGroup(ctx context.Context, clusterID int, req CreateClusterWorkerGroup) (*NodeGroup, *Response, error) {
	if err := validate.Struct(req); err != nil {
		return nil, nil, err
	}
	var out struct {
		Group *NodeGroup `json:"node_group"`
	}
	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/k8s/clusters/%d/groups", clusterID), nil, req, &out)
	return out.Group, resp, err
}

// DeleteNodeGroup removes a worker group and its nodes.
func (c *Client) DeleteNodeGroup(ctx context.Context, clusterID, groupID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/k8s/clusters/%d/groups/%d", clusterID, groupID), nil, nil, nil)
}

// AddClusterNodes scales a worker group up by count nodes.
func (c *Client) AddClusterNodes(ctx context.Context, clusterID, groupID, count int) (*Response, error) {
	body := map[string]int{"count": count}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/k8s/clusters/%d/groups/%d/nodes", clusterID, groupID), nil, body, nil)
}

// DeleteClusterNodes scales a worker group down by count nodes.
func (c *Client) DeleteClusterNodes(ctx context.Context, clusterID, groupID, count int) (*Response, error) {
	body := map[string]int{"count": count}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/k8s/clusters/%d/groups/%d/nodes", clusterID, groupID), nil, body, nil)
}

// GetClusterNodes returns all worker nodes of a cluster.
func (c *Client) GetClusterNodes(ctx context.Context, clusterID int) ([]ClusterNode, *Response, error) {
	var out struct {
		Nodes []ClusterNode `json:"nodes"`
	}
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/k8s/clusters/%d/nodes", clusterID), nil, nil, &out)
	return out.Nodes, resp, err
}

// DeleteClusterNode removes a specific worker node.
func (c *Client) DeleteClusterNode(ctx context.Context, clusterID, nodeID int) (*Response, error) {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/k8s/clusters/%d/nodes/%d", clusterID, nodeID), nil, nil, nil)
}

// GetK8SVersions returns supported Kubernetes control plane versions.
func (c *Client) GetK8SVersions(ctx context.Context) ([]string, *Response, error) {
	var out struct {
		Versions []string `json:"k8s_versions"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/k8s/k8s_versions", nil, nil, &out)
	return out.Versions, resp, err
}

// GetK8SNetworkDrivers returns supported CNI drivers.
func (c *Client) GetK8SNetworkDrivers(ctx context.Context) ([]string, *Response, error) {
	var out struct {
		Drivers []string `json:"network_drivers"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/k8s/network_drivers", nil, nil, &out)
	return out.Drivers, resp, err
}

// GetK8SPresets returns node configurations for clusters.
func (c *Client) GetK8SPresets(ctx context.Context) ([]ServerPreset, *Response, error) {
	var out struct {
		Presets []ServerPreset `json:"k8s_presets"`
	}
	resp, err := c.do(ctx, http.MethodGet, "/presets/k8s", nil, nil, &out)
	return out.Presets, resp, err
}
