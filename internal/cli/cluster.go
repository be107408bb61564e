package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nimbuscloud/nimbus-cli/internal/output"
	"github.com/nimbuscloud/nimbus-cli/internal/poll"
	"github.com/nimbuscloud/nimbus-cli/pkg/api"
)

var clusterCmd = &cobra.Command{
	Use:     "cluster",
	Aliases: []string{"clusters", "k8s"},
	Short:   "Manage Kubernetes clusters",
}

func waitClusterStatus(ctx context.Context, client *api.Client, clusterID int, status string) error {
	_, err := poll.Waiter{
		Fetch: func(ctx context.Context) (string, error) {
			cluster, _, err := client.GetCluster(ctx, clusterID)
			if err != nil {
				return "", err
			}
			return cluster.Status, nil
		},
		Target:   []string{status},
		Interval: waitInterval,
		MaxWait:  waitTimeout,
	}.Wait(ctx)
	return err
}

var clusterListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List Kubernetes clusters",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(clusterFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetClusters(cmd.Context(), clusterFlags.limit, 0)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "clusters", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "STATUS", "VERSION", "DRIVER", "NODES")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "name"),
					output.Str(rec, "status"),
					output.Str(rec, "k8s_version"),
					output.Str(rec, "network_driver"),
					output.Str(rec, "node_count"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var clusterGetCmd = &cobra.Command{
	Use:   "get CLUSTER_ID",
	Short: "Get cluster details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		clusterID, err := parseID(args[0])
		if err != nil {
			return err
		}
		cluster, resp, err := rt.client.GetCluster(cmd.Context(), clusterID)
		if err != nil {
			return err
		}
		if clusterFlags.status {
			return statusCheck(cmd, cluster.Status, api.ClusterStatusActive)
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "STATUS", "VERSION", "DRIVER", "INGRESS")
			tbl.Row(cluster.ID, cluster.Name, cluster.Status, cluster.K8SVersion, cluster.NetworkDriver, cluster.Ingress)
			tbl.Render(w)
			return nil
		})
	},
}

var clusterCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a Kubernetes cluster",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		req := api.CreateClusterRequest{
			Name:          clusterFlags.name,
			Description:   clusterFlags.description,
			K8SVersion:    clusterFlags.version,
			NetworkDriver: clusterFlags.networkDriver,
			Ingress:       clusterFlags.ingress,
			PresetID:      clusterFlags.presetID,
			ProjectID:     clusterFlags.projectID,
		}
		if clusterFlags.workerGroupName != "" {
			req.WorkerGroups = []api.CreateClusterWorkerGroup{{
				Name:      clusterFlags.workerGroupName,
				PresetID:  clusterFlags.workerPresetID,
				NodeCount: clusterFlags.workerCount,
			}}
		}
		cluster, resp, err := rt.client.CreateCluster(cmd.Context(), req)
		if err != nil {
			return err
		}
		if clusterFlags.wait {
			if err := waitClusterStatus(cmd.Context(), rt.client, cluster.ID, api.ClusterStatusActive); err != nil {
				return err
			}
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, cluster.ID)
			return nil
		})
	},
}

var clusterSetCmd = &cobra.Command{
	Use:   "set CLUSTER_ID",
	Short: "Change the cluster description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		clusterID, err := parseID(args[0])
		if err != nil {
			return err
		}
		cluster, resp, err := rt.client.UpdateCluster(cmd.Context(), clusterID, clusterFlags.description)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, cluster.ID)
			return nil
		})
	},
}

var clusterRemoveCmd = &cobra.Command{
	Use:     "remove CLUSTER_ID...",
	Aliases: []string{"rm"},
	Short:   "Remove Kubernetes clusters",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, clusterFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		return removeEach(cmd, args, func(id string) error {
			clusterID, err := parseID(id)
			if err != nil {
				return err
			}
			_, err = rt.client.DeleteCluster(cmd.Context(), clusterID)
			return err
		})
	},
}

var clusterKubeconfigCmd = &cobra.Command{
	Use:   "kubeconfig CLUSTER_ID",
	Short: "Download the cluster kubeconfig",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		clusterID, err := parseID(args[0])
		if err != nil {
			return err
		}
		kubeconfig, _, err := rt.client.GetClusterKubeconfig(cmd.Context(), clusterID)
		if err != nil {
			return err
		}
		if clusterFlags.save != "" {
			return os.WriteFile(clusterFlags.save, kubeconfig, 0o600)
		}
		_, err = cmd.OutOrStdout().Write(kubeconfig)
		return err
	},
}

var clusterResourcesCmd = &cobra.Command{
	Use:   "resources CLUSTER_ID",
	Short: "Show aggregate cluster resource usage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		clusterID, err := parseID(args[0])
		if err != nil {
			return err
		}
		res, resp, err := rt.client.GetClusterResources(cmd.Context(), clusterID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			tbl := &output.Table{}
			tbl.Header("NODES", "CORES", "RAM")
			tbl.Row(res.Nodes, res.Cores, res.RAM)
			tbl.Render(w)
			return nil
		})
	},
}

var clusterVersionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List supported Kubernetes versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		versions, resp, err := rt.client.GetK8SVersions(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			for _, v := range versions {
				fmt.Fprintln(w, v)
			}
			return nil
		})
	},
}

var clusterNetworkDriversCmd = &cobra.Command{
	Use:   "network-drivers",
	Short: "List supported CNI network drivers",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		drivers, resp, err := rt.client.GetK8SNetworkDrivers(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			for _, d := range drivers {
				fmt.Fprintln(w, d)
			}
			return nil
		})
	},
}

var clusterPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List node configurations for clusters",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(clusterFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetK8SPresets(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "k8s_presets", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "LOCATION", "CPU", "RAM", "DISK", "PRICE")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "location"),
					output.Str(rec, "cpu"),
					output.Str(rec, "ram"),
					output.Str(rec, "disk"),
					output.Str(rec, "price"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var clusterGroupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage cluster worker groups",
}

var clusterGroupListCmd = &cobra.Command{
	Use:     "list CLUSTER_ID",
	Aliases: []string{"ls"},
	Short:   "List worker groups",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		clusterID, err := parseID(args[0])
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetNodeGroups(cmd.Context(), clusterID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "node_groups", nil)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "PRESET", "NODES")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "name"),
					output.Str(rec, "preset_id"),
					output.Str(rec, "node_count"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var clusterGroupAddCmd = &cobra.Command{
	Use:   "add CLUSTER_ID",
	Short: "Add a worker group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		clusterID, err := parseID(args[0])
		if err != nil {
			return err
		}
		group, resp, err := rt.client.CreateNodeGroup(cmd.Context(), clusterID, api.CreateClusterWorkerGroup{
			Name:      clusterFlags.workerGroupName,
			PresetID:  clusterFlags.workerPresetID,
			NodeCount: clusterFlags.workerCount,
		})
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, group.ID)
			return nil
		})
	},
}

var clusterGroupRemoveCmd = &cobra.Command{
	Use:     "remove CLUSTER_ID GROUP_ID...",
	Aliases: []string{"rm"},
	Short:   "Remove worker groups",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, clusterFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		clusterID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return removeEach(cmd, args[1:], func(id string) error {
			groupID, err := parseID(id)
			if err != nil {
				return err
			}
			_, err = rt.client.DeleteNodeGroup(cmd.Context(), clusterID, groupID)
			return err
		})
	},
}

var clusterGroupScaleUpCmd = &cobra.Command{
	Use:   "scale-up CLUSTER_ID GROUP_ID [COUNT]",
	Short: "Add worker nodes to a group",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		clusterID, groupID, err := parseTwoIDs(args[0], args[1])
		if err != nil {
			return err
		}
		count := 1
		if len(args) == 3 {
			if count, err = parseID(args[2]); err != nil {
				return err
			}
		}
		if _, err := rt.client.AddClusterNodes(cmd.Context(), clusterID, groupID, count); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[1])
		return nil
	},
}

var clusterGroupScaleDownCmd = &cobra.Command{
	Use:   "scale-down CLUSTER_ID GROUP_ID [COUNT]",
	Short: "Remove worker nodes from a group",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, clusterFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		clusterID, groupID, err := parseTwoIDs(args[0], args[1])
		if err != nil {
			return err
		}
		count := 1
		if len(args) == 3 {
			if count, err = parseID(args[2]); err != nil {
				return err
			}
		}
		if _, err := rt.client.DeleteClusterNodes(cmd.Context(), clusterID, groupID, count); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[1])
		return nil
	},
}

var clusterNodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Manage cluster worker nodes",
}

var clusterNodeListCmd = &cobra.Command{
	Use:     "list CLUSTER_ID",
	Aliases: []string{"ls"},
	Short:   "List worker nodes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(clusterFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		clusterID, err := parseID(args[0])
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetClusterNodes(cmd.Context(), clusterID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "nodes", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "GROUP", "STATUS", "CPU", "RAM", "DISK")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "group_id"),
					output.Str(rec, "status"),
					output.Str(rec, "cpu"),
					output.Str(rec, "ram"),
					output.Str(rec, "disk"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var clusterNodeRemoveCmd = &cobra.Command{
	Use:     "remove CLUSTER_ID NODE_ID...",
	Aliases: []string{"rm"},
	Short:   "Remove worker nodes",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, clusterFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		clusterID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return removeEach(cmd, args[1:], func(id string) error {
			nodeID, err := parseID(id)
			if err != nil {
				return err
			}
			_, err = rt.client.DeleteClusterNode(cmd.Context(), clusterID, nodeID)
			return err
		})
	},
}

var clusterFlags struct {
	filter          string
	limit           int
	status          bool
	wait            bool
	yes             bool
	name            string
	description     string
	version         string
	networkDriver   string
	ingress         bool
	presetID        int
	projectID       int
	workerGroupName string
	workerPresetID  int
	workerCount     int
	save            string
}

func init() {
	rootCmd.AddCommand(clusterCmd)

	clusterCmd.AddCommand(clusterListCmd)
	clusterCmd.AddCommand(clusterGetCmd)
	clusterCmd.AddCommand(clusterCreateCmd)
	clusterCmd.AddCommand(clusterSetCmd)
	clusterCmd.AddCommand(clusterRemoveCmd)
	clusterCmd.AddCommand(clusterKubeconfigCmd)
	clusterCmd.AddCommand(clusterResourcesCmd)
	clusterCmd.AddCommand(clusterVersionsCmd)
	clusterCmd.AddCommand(clusterNetworkDriversCmd)
	clusterCmd.AddCommand(clusterPresetsCmd)
	clusterCmd.AddCommand(clusterGroupCmd)
	clusterCmd.AddCommand(clusterNodeCmd)

	clusterGroupCmd.AddCommand(clusterGroupListCmd)
	clusterGroupCmd.AddCommand(clusterGroupAddCmd)
	clusterGroupCmd.AddCommand(clusterGroupRemoveCmd)
	clusterGroupCmd.AddCommand(clusterGroupScaleUpCmd)
	clusterGroupCmd.AddCommand(clusterGroupScaleDownCmd)

	clusterNodeCmd.AddCommand(clusterNodeListCmd)
	clusterNodeCmd.AddCommand(clusterNodeRemoveCmd)

	clusterListCmd.Flags().StringVarP(&clusterFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	clusterListCmd.Flags().IntVar(&clusterFlags.limit, "limit", 100, "Items per page")
	clusterPresetsCmd.Flags().StringVarP(&clusterFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	clusterNodeListCmd.Flags().StringVarP(&clusterFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")

	clusterGetCmd.Flags().BoolVar(&clusterFlags.status, "status", false, "Print status and exit 0 if the cluster is active")

	clusterCreateCmd.Flags().StringVar(&clusterFlags.name, "name", "", "Cluster name")
	clusterCreateCmd.Flags().StringVar(&clusterFlags.description, "description", "", "Cluster description")
	clusterCreateCmd.Flags().StringVar(&clusterFlags.version, "k8s-version", "", "Kubernetes control plane version")
	clusterCreateCmd.Flags().StringVar(&clusterFlags.networkDriver, "network-driver", "", "CNI driver")
	clusterCreateCmd.Flags().BoolVar(&clusterFlags.ingress, "ingress", false, "Install an ingress controller")
	clusterCreateCmd.Flags().IntVar(&clusterFlags.presetID, "preset-id", 0, "Master node preset ID")
	clusterCreateCmd.Flags().IntVar(&clusterFlags.projectID, "project-id", 0, "Project ID")
	clusterCreateCmd.Flags().StringVar(&clusterFlags.workerGroupName, "worker-group-name", "", "Initial worker group name")
	clusterCreateCmd.Flags().IntVar(&clusterFlags.workerPresetID, "worker-preset-id", 0, "Initial worker group preset ID")
	clusterCreateCmd.Flags().IntVar(&clusterFlags.workerCount, "worker-count", 1, "Initial worker group node count")
	clusterCreateCmd.Flags().BoolVar(&clusterFlags.wait, "wait", false, "Wait until the cluster is active")
	_ = clusterCreateCmd.MarkFlagRequired("name")
	_ = clusterCreateCmd.MarkFlagRequired("k8s-version")
	_ = clusterCreateCmd.MarkFlagRequired("preset-id")

	clusterSetCmd.Flags().StringVar(&clusterFlags.description, "description", "", "Cluster description")
	_ = clusterSetCmd.MarkFlagRequired("description")

	clusterKubeconfigCmd.Flags().StringVar(&clusterFlags.save, "save", "", "Write kubeconfig to a file instead of stdout")

	clusterGroupAddCmd.Flags().StringVar(&clusterFlags.workerGroupName, "name", "", "Worker group name")
	clusterGroupAddCmd.Flags().IntVar(&clusterFlags.workerPresetID, "preset-id", 0, "Worker node preset ID")
	clusterGroupAddCmd.Flags().IntVar(&clusterFlags.workerCount, "node-count", 1, "Worker node count")
	_ = clusterGroupAddCmd.MarkFlagRequired("name")
	_ = clusterGroupAddCmd.MarkFlagRequired("preset-id")

	clusterRemoveCmd.Flags().BoolVarP(&clusterFlags.yes, "yes", "y", false, "Do not ask for confirmation")
	clusterGroupRemoveCmd.Flags().BoolVarP(&clusterFlags.yes, "yes", "y", false, "Do not ask for confirmation")
	clusterGroupScaleDownCmd.Flags().BoolVarP(&clusterFlags.yes, "yes", "y", false, "Do not ask for confirmation")
	clusterNodeRemoveCmd.Flags().BoolVarP(&clusterFlags.yes, "yes", "y", false, "Do not ask for confirmation")
}
