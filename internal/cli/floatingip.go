package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nimbuscloud/nimbus-cli/internal/output"
	"github.com/nimbuscloud/nimbus-cli/pkg/api"
)

var floatingIPCmd = &cobra.Command{
	Use:     "ip",
	Aliases: []string{"ips", "floating-ip"},
	Short:   "Manage floating IP addresses",
}

var floatingIPListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List floating IPs",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(floatingIPFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetFloatingIPs(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "ips", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "IP", "PTR", "ZONE", "RESOURCE")
			for _, rec := range records {
				resource := output.Str(rec, "resource.resource_type")
				if id := output.Str(rec, "resource.resource_id"); id != "" {
					resource += " " + id
				}
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "ip"),
					output.Str(rec, "ptr"),
					output.Str(rec, "availability_zone"),
					resource,
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var floatingIPGetCmd = &cobra.Command{
	Use:   "get IP_ID",
	Short: "Get floating IP details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		ip, resp, err := rt.client.GetFloatingIP(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			tbl := &output.Table{}
			tbl.Header("ID", "IP", "PTR", "ZONE", "DDOS GUARD")
			tbl.Row(ip.ID, ip.IP, ip.PTR, ip.AvailabilityZone, ip.IsDDOSGuard)
			tbl.Render(w)
			return nil
		})
	},
}

var floatingIPCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Reserve a floating IP",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		ip, resp, err := rt.client.CreateFloatingIP(cmd.Context(), floatingIPFlags.zone, floatingIPFlags.ddosGuard)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, ip.IP)
			return nil
		})
	},
}

var floatingIPSetCmd = &cobra.Command{
	Use:   "set IP_ID",
	Short: "Set reverse DNS for a floating IP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		ip, resp, err := rt.client.UpdateFloatingIP(cmd.Context(), args[0], floatingIPFlags.ptr)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, ip.IP)
			return nil
		})
	},
}

var floatingIPAttachCmd = &cobra.Command{
	Use:   "attach IP_ID RESOURCE_ID",
	Short: "Bind a floating IP to a resource",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		resourceID, err := parseID(args[1])
		if err != nil {
			return err
		}
		resourceType := api.ResourceType(floatingIPFlags.resourceType)
		if _, err := rt.client.AttachFloatingIP(cmd.Context(), args[0], resourceID, resourceType); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[0])
		return nil
	},
}

var floatingIPDetachCmd = &cobra.Command{
	Use:   "detach IP_ID",
	Short: "Unbind a floating IP from its resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		if _, err := rt.client.DetachFloatingIP(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[0])
		return nil
	},
}

var floatingIPRemoveCmd = &cobra.Command{
	Use:     "remove IP_ID...",
	Aliases: []string{"rm"},
	Short:   "Release floating IPs",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, floatingIPFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		return removeEach(cmd, args, func(id string) error {
			_, err := rt.client.DeleteFloatingIP(cmd.Context(), id)
			return err
		})
	},
}

var floatingIPFlags struct {
	filter       string
	yes          bool
	zone         string
	ddosGuard    bool
	ptr          string
	resourceType string
}

func init() {
	rootCmd.AddCommand(floatingIPCmd)

	floatingIPCmd.AddCommand(floatingIPListCmd)
	floatingIPCmd.AddCommand(floatingIPGetCmd)
	floatingIPCmd.AddCommand(floatingIPCreateCmd)
	floatingIPCmd.AddCommand(floatingIPSetCmd)
	floatingIPCmd.AddCommand(floatingIPAttachCmd)
	floatingIPCmd.AddCommand(floatingIPDetachCmd)
	floatingIPCmd.AddCommand(floatingIPRemoveCmd)

	floatingIPListCmd.Flags().StringVarP(&floatingIPFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")

	floatingIPCreateCmd.Flags().StringVar(&floatingIPFlags.zone, "zone", "", "Availability zone")
	floatingIPCreateCmd.Flags().BoolVar(&floatingIPFlags.ddosGuard, "ddos-guard", false, "Enable DDoS protection")
	_ = floatingIPCreateCmd.MarkFlagRequired("zone")

	floatingIPSetCmd.Flags().StringVar(&floatingIPFlags.ptr, "ptr", "", "Reverse DNS record")
	_ = floatingIPSetCmd.MarkFlagRequired("ptr")

	floatingIPAttachCmd.Flags().StringVar(&floatingIPFlags.resourceType, "resource-type", "server", "Resource type: server, balancer or database")

	floatingIPRemoveCmd.Flags().BoolVarP(&floatingIPFlags.yes, "yes", "y", false, "Do not ask for confirmation")
}
