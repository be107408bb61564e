package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nimbuscloud/nimbus-cli/internal/output"
	"github.com/nimbuscloud/nimbus-cli/internal/poll"
	"github.com/nimbuscloud/nimbus-cli/pkg/api"
)

var serverCmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"servers", "s"},
	Short:   "Manage cloud servers",
}

// waitServerStatus blocks until the server reaches the wanted status.
func waitServerStatus(ctx context.Context, client *api.Client, serverID int, status string) error {
	_, err := poll.Waiter{
		Fetch: func(ctx context.Context) (string, error) {
			srv, _, err := client.GetServer(ctx, serverID)
			if err != nil {
				return "", err
			}
			return srv.Status, nil
		},
		Target:   []string{status},
		Interval: waitInterval,
		MaxWait:  waitTimeout,
	}.Wait(ctx)
	return err
}

func serverTable(body []byte, filters []output.Filter) func(io.Writer) error {
	return func(w io.Writer) error {
		records, err := output.Records(body, "servers", filters)
		if err != nil {
			return err
		}
		tbl := &output.Table{}
		tbl.Header("ID", "NAME", "LOCATION", "STATUS", "IPV4", "OS")
		for _, rec := range records {
			tbl.Row(
				output.Str(rec, "id"),
				output.Str(rec, "name"),
				output.Str(rec, "location"),
				output.Str(rec, "status"),
				output.Str(rec, "main_ipv4"),
				output.Str(rec, "os.name")+" "+output.Str(rec, "os.version"),
			)
		}
		tbl.Render(w)
		return nil
	}
}

var serverListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(serverFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetServers(cmd.Context(), serverFlags.limit, 0)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, serverTable(resp.Body, filters))
	},
}

var serverGetCmd = &cobra.Command{
	Use:   "get SERVER_ID",
	Short: "Get server details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		serverID, err := parseID(args[0])
		if err != nil {
			return err
		}
		srv, resp, err := rt.client.GetServer(cmd.Context(), serverID)
		if err != nil {
			return err
		}
		if serverFlags.status {
			return statusCheck(cmd, srv.Status, api.ServerStatusOn)
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "LOCATION", "STATUS", "CPU", "RAM", "IPV4")
			tbl.Row(srv.ID, srv.Name, srv.Location, srv.Status, srv.CPU, srv.RAM, srv.MainIPv4)
			tbl.Render(w)
			return nil
		})
	},
}

var serverCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a server",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		if (serverFlags.presetID == 0) == (serverFlags.configuratorID == 0) {
			return fmt.Errorf("exactly one of --preset-id or --configurator-id is required")
		}
		req := api.CreateServerRequest{
			Name:             serverFlags.name,
			Comment:          serverFlags.comment,
			OSID:             serverFlags.osID,
			PresetID:         serverFlags.presetID,
			SoftwareID:       serverFlags.softwareID,
			AvailabilityZone: serverFlags.zone,
			SSHKeyIDs:        serverFlags.sshKeyIDs,
			Bandwidth:        serverFlags.bandwidth,
			ProjectID:        serverFlags.projectID,
			NetworkID:        serverFlags.networkID,
			CloudInit:        serverFlags.cloudInit,
		}
		if serverFlags.configuratorID != 0 {
			req.Configuration = &api.ServerConfiguration{
				ConfiguratorID: serverFlags.configuratorID,
				Disk:           serverFlags.disk,
				CPU:            serverFlags.cpu,
				RAM:            serverFlags.ram,
			}
		}
		srv, resp, err := rt.client.CreateServer(cmd.Context(), req)
		if err != nil {
			return err
		}
		if serverFlags.wait {
			if err := waitServerStatus(cmd.Context(), rt.client, srv.ID, api.ServerStatusOn); err != nil {
				return err
			}
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, srv.ID)
			return nil
		})
	},
}

var serverSetCmd = &cobra.Command{
	Use:   "set SERVER_ID",
	Short: "Change server properties",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		serverID, err := parseID(args[0])
		if err != nil {
			return err
		}
		srv, resp, err := rt.client.UpdateServer(cmd.Context(), serverID, api.UpdateServerRequest{
			Name:    serverFlags.name,
			Comment: serverFlags.comment,
		})
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, srv.ID)
			return nil
		})
	},
}

var serverRemoveCmd = &cobra.Command{
	Use:     "remove SERVER_ID...",
	Aliases: []string{"rm"},
	Short:   "Remove servers",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, serverFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		return removeEach(cmd, args, func(id string) error {
			serverID, err := parseID(id)
			if err != nil {
				return err
			}
			_, err = rt.client.DeleteServer(cmd.Context(), serverID)
			return err
		})
	},
}

// serverActionCmd builds the start/shutdown/reboot family. Waiting is
// only offered where a terminal status is well-defined.
func serverActionCmd(use, short string, action api.ServerAction, waitStatus string) *cobra.Command {
	var wait bool
	cmd := &cobra.Command{
		Use:   use + " SERVER_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			serverID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := rt.client.DoServerAction(cmd.Context(), serverID, action); err != nil {
				return err
			}
			if wait && waitStatus != "" {
				if err := waitServerStatus(cmd.Context(), rt.client, serverID, waitStatus); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), args[0])
			return nil
		},
	}
	if waitStatus != "" {
		cmd.Flags().BoolVar(&wait, "wait", false, "Wait until the server is "+waitStatus)
	}
	return cmd
}

var serverCloneCmd = &cobra.Command{
	Use:   "clone SERVER_ID",
	Short: "Clone a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		serverID, err := parseID(args[0])
		if err != nil {
			return err
		}
		clone, resp, err := rt.client.CloneServer(cmd.Context(), serverID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, clone.ID)
			return nil
		})
	},
}

var serverBootModeCmd = &cobra.Command{
	Use:       "boot-mode SERVER_ID MODE",
	Short:     "Set boot mode (default, single, recovery)",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"default", "single", "recovery"},
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		serverID, err := parseID(args[0])
		if err != nil {
			return err
		}
		mode := api.BootMode(args[1])
		switch mode {
		case api.BootModeDefault, api.BootModeSingle, api.BootModeRecovery:
		default:
			return fmt.Errorf("invalid boot mode %q", args[1])
		}
		if _, err := rt.client.SetServerBootMode(cmd.Context(), serverID, mode); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[0])
		return nil
	},
}

var serverNATModeCmd = &cobra.Command{
	Use:   "nat-mode SERVER_ID MODE",
	Short: "Set NAT mode (dnat_and_snat, snat, no_nat)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		serverID, err := parseID(args[0])
		if err != nil {
			return err
		}
		mode := api.NATMode(args[1])
		switch mode {
		case api.NATModeDNATAndSNAT, api.NATModeSNAT, api.NATModeNoNAT:
		default:
			return fmt.Errorf("invalid NAT mode %q", args[1])
		}
		if _, err := rt.client.SetServerNATMode(cmd.Context(), serverID, mode); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[0])
		return nil
	},
}

var serverPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List available server configurations",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(serverFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetServerPresets(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "server_presets", filters)
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

var serverOSImagesCmd = &cobra.Command{
	Use:   "os-images",
	Short: "List installable operating systems",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(serverFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetServerOSImages(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "servers_os", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "VERSION")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "name"),
					output.Str(rec, "version"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var serverConfiguratorsCmd = &cobra.Command{
	Use:   "configurators",
	Short: "List build-to-order server configurators",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(serverFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetServerConfigurators(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "server_configurators", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "LOCATION", "DISK TYPE", "CPU", "RAM", "DISK")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "location"),
					output.Str(rec, "disk_type"),
					output.Str(rec, "requirements.cpu_min")+"-"+output.Str(rec, "requirements.cpu_max"),
					output.Str(rec, "requirements.ram_min")+"-"+output.Str(rec, "requirements.ram_max"),
					output.Str(rec, "requirements.disk_min")+"-"+output.Str(rec, "requirements.disk_max"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var serverSoftwareCmd = &cobra.Command{
	Use:   "software",
	Short: "List installable software bundles",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(serverFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetServerSoftware(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "servers_software", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "NAME")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "name"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var serverLogsCmd = &cobra.Command{
	Use:   "logs SERVER_ID",
	Short: "Show server event log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		serverID, err := parseID(args[0])
		if err != nil {
			return err
		}
		resp, err := rt.client.GetServerLogs(cmd.Context(), serverID, serverFlags.limit, 0, serverFlags.order)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "server_logs", nil)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "LOGGED AT", "EVENT")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "logged_at"),
					output.Str(rec, "event"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

// serverFlags holds flag values shared across the server subcommands.
var serverFlags struct {
	filter         string
	limit          int
	status         bool
	wait           bool
	yes            bool
	name           string
	comment        string
	osID           int
	presetID       int
	configuratorID int
	cpu            int
	ram            int
	disk           int
	softwareID     int
	zone           string
	bandwidth      int
	projectID      int
	networkID      string
	cloudInit      string
	sshKeyIDs      []int
	order          string
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.AddCommand(serverListCmd)
	serverCmd.AddCommand(serverGetCmd)
	serverCmd.AddCommand(serverCreateCmd)
	serverCmd.AddCommand(serverSetCmd)
	serverCmd.AddCommand(serverRemoveCmd)
	serverCmd.AddCommand(serverActionCmd("start", "Start a server", api.ServerActionStart, api.ServerStatusOn))
	serverCmd.AddCommand(serverActionCmd("shutdown", "Shut down a server", api.ServerActionShutdown, api.ServerStatusOff))
	serverCmd.AddCommand(serverActionCmd("reboot", "Reboot a server", api.ServerActionReboot, api.ServerStatusOn))
	serverCmd.AddCommand(serverActionCmd("hard-reboot", "Hard reboot a server", api.ServerActionHardReboot, api.ServerStatusOn))
	serverCmd.AddCommand(serverActionCmd("hard-shutdown", "Hard shutdown a server", api.ServerActionHardShutdown, api.ServerStatusOff))
	serverCmd.AddCommand(serverCloneCmd)
	serverCmd.AddCommand(serverBootModeCmd)
	serverCmd.AddCommand(serverNATModeCmd)
	serverCmd.AddCommand(serverPresetsCmd)
	serverCmd.AddCommand(serverOSImagesCmd)
	serverCmd.AddCommand(serverConfiguratorsCmd)
	serverCmd.AddCommand(serverSoftwareCmd)
	serverCmd.AddCommand(serverLogsCmd)
	serverCmd.AddCommand(serverIPCmd)
	serverCmd.AddCommand(serverDiskCmd)
	serverCmd.AddCommand(serverBackupCmd)

	serverListCmd.Flags().StringVarP(&serverFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	serverListCmd.Flags().IntVar(&serverFlags.limit, "limit", 100, "Items per page")
	serverPresetsCmd.Flags().StringVarP(&serverFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	serverOSImagesCmd.Flags().StringVarP(&serverFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	serverConfiguratorsCmd.Flags().StringVarP(&serverFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	serverSoftwareCmd.Flags().StringVarP(&serverFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")

	serverLogsCmd.Flags().IntVar(&serverFlags.limit, "limit", 100, "Items per page")
	serverLogsCmd.Flags().StringVar(&serverFlags.order, "order", "asc", "Sort order: asc, desc")

	serverGetCmd.Flags().BoolVar(&serverFlags.status, "status", false, "Print status and exit 0 if the server is on")

	serverCreateCmd.Flags().StringVar(&serverFlags.name, "name", "", "Server name")
	serverCreateCmd.Flags().StringVar(&serverFlags.comment, "comment", "", "Comment")
	serverCreateCmd.Flags().IntVar(&serverFlags.osID, "os-id", 0, "Operating system ID")
	serverCreateCmd.Flags().IntVar(&serverFlags.presetID, "preset-id", 0, "Preset ID")
	serverCreateCmd.Flags().IntVar(&serverFlags.configuratorID, "configurator-id", 0, "Configurator ID")
	serverCreateCmd.Flags().IntVar(&serverFlags.cpu, "cpu", 0, "CPU count (with --configurator-id)")
	serverCreateCmd.Flags().IntVar(&serverFlags.ram, "ram", 0, "RAM in megabytes (with --configurator-id)")
	serverCreateCmd.Flags().IntVar(&serverFlags.disk, "disk", 0, "Disk size in megabytes (with --configurator-id)")
	serverCreateCmd.Flags().IntVar(&serverFlags.softwareID, "software-id", 0, "Software ID")
	serverCreateCmd.Flags().StringVar(&serverFlags.zone, "zone", "", "Availability zone")
	serverCreateCmd.Flags().IntVar(&serverFlags.bandwidth, "bandwidth", 0, "Bandwidth in Mbps")
	serverCreateCmd.Flags().IntVar(&serverFlags.projectID, "project-id", 0, "Project ID")
	serverCreateCmd.Flags().StringVar(&serverFlags.networkID, "network-id", "", "Private network ID")
	serverCreateCmd.Flags().StringVar(&serverFlags.cloudInit, "cloud-init", "", "Cloud-init user data")
	serverCreateCmd.Flags().IntSliceVar(&serverFlags.sshKeyIDs, "ssh-key-id", nil, "SSH key ID (repeatable)")
	serverCreateCmd.Flags().BoolVar(&serverFlags.wait, "wait", false, "Wait until the server is on")
	_ = serverCreateCmd.MarkFlagRequired("name")
	_ = serverCreateCmd.MarkFlagRequired("os-id")
	serverCreateCmd.MarkFlagsMutuallyExclusive("preset-id", "configurator-id")

	serverSetCmd.Flags().StringVar(&serverFlags.name, "name", "", "Server name")
	serverSetCmd.Flags().StringVar(&serverFlags.comment, "comment", "", "Comment")

	serverRemoveCmd.Flags().BoolVarP(&serverFlags.yes, "yes", "y", false, "Do not ask for confirmation")
}
