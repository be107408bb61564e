package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nimbuscloud/nimbus-cli/internal/output"
)

var serverIPCmd = &cobra.Command{
	Use:   "ip",
	Short: "Manage server IP addresses",
}

var serverIPListCmd = &cobra.Command{
	Use:     "list SERVER_ID",
	Aliases: []string{"ls"},
	Short:   "List server IP addresses",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(serverIPFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		serverID, err := parseID(args[0])
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetServerIPs(cmd.Context(), serverID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "server_ips", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("IP", "TYPE", "PTR", "MAIN")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "ip"),
					output.Str(rec, "type"),
					output.Str(rec, "ptr"),
					output.Str(rec, "is_main"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var serverIPAddCmd = &cobra.Command{
	Use:   "add SERVER_ID",
	Short: "Attach a new IP address to a server",
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
		version := "ipv4"
		if serverIPFlags.ipv6 {
			version = "ipv6"
		}
		ip, resp, err := rt.client.AddServerIP(cmd.Context(), serverID, version, serverIPFlags.ptr)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, ip.IP)
			return nil
		})
	},
}

var serverIPRemoveCmd = &cobra.Command{
	Use:     "remove SERVER_ID IP...",
	Aliases: []string{"rm"},
	Short:   "Detach IP addresses from a server",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, serverIPFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		serverID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return removeEach(cmd, args[1:], func(ip string) error {
			_, err := rt.client.DeleteServerIP(cmd.Context(), serverID, ip)
			return err
		})
	},
}

var serverIPFlags struct {
	filter string
	ipv6   bool
	ptr    string
	yes    bool
}

func init() {
	serverIPCmd.AddCommand(serverIPListCmd)
	serverIPCmd.AddCommand(serverIPAddCmd)
	serverIPCmd.AddCommand(serverIPRemoveCmd)

	serverIPListCmd.Flags().StringVarP(&serverIPFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	serverIPAddCmd.Flags().BoolVar(&serverIPFlags.ipv6, "ipv6", false, "Attach an IPv6 address instead of IPv4")
	serverIPAddCmd.Flags().StringVar(&serverIPFlags.ptr, "ptr", "", "Reverse DNS record")
	serverIPRemoveCmd.Flags().BoolVarP(&serverIPFlags.yes, "yes", "y", false, "Do not ask for confirmation")
}
