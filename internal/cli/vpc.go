package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nimbuscloud/nimbus-cli/internal/output"
	"github.com/nimbuscloud/nimbus-cli/pkg/api"
)

var vpcCmd = &cobra.Command{
	Use:     "vpc",
	Aliases: []string{"vpcs", "network", "networks"},
	Short:   "Manage private networks",
}

var vpcListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List private networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(vpcFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetVPCs(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "vpcs", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "SUBNET", "LOCATION")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "name"),
					output.Str(rec, "subnet_v4"),
					output.Str(rec, "location"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var vpcGetCmd = &cobra.Command{
	Use:   "get VPC_ID",
	Short: "Get private network details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		vpc, resp, err := rt.client.GetVPC(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "SUBNET", "LOCATION", "DESCRIPTION")
			tbl.Row(vpc.ID, vpc.Name, vpc.Subnet, vpc.Location, vpc.Description)
			tbl.Render(w)
			return nil
		})
	},
}

var vpcCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a private network",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		vpc, resp, err := rt.client.CreateVPC(cmd.Context(), api.CreateVPCRequest{
			Name:        vpcFlags.name,
			Description: vpcFlags.description,
			Subnet:      vpcFlags.subnet,
			Location:    api.Region(vpcFlags.location),
		})
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, vpc.ID)
			return nil
		})
	},
}

var vpcSetCmd = &cobra.Command{
	Use:   "set VPC_ID",
	Short: "Change network name or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		vpc, resp, err := rt.client.UpdateVPC(cmd.Context(), args[0], vpcFlags.name, vpcFlags.description)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, vpc.ID)
			return nil
		})
	},
}

var vpcRemoveCmd = &cobra.Command{
	Use:     "remove VPC_ID...",
	Aliases: []string{"rm"},
	Short:   "Remove private networks",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, vpcFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		return removeEach(cmd, args, func(id string) error {
			_, err := rt.client.DeleteVPC(cmd.Context(), id)
			return err
		})
	},
}

var vpcPortsCmd = &cobra.Command{
	Use:   "ports VPC_ID",
	Short: "List address allocations on a network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetVPCPorts(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "vpc_ports", nil)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "IPV4", "NAT")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "ipv4"),
					output.Str(rec, "nat_mode"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var vpcServicesCmd = &cobra.Command{
	Use:   "services VPC_ID",
	Short: "List resources attached to a network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(vpcFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetVPCServices(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "services", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "TYPE", "LOCAL IP", "PUBLIC IP")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "name"),
					output.Str(rec, "type"),
					output.Str(rec, "local_ip"),
					output.Str(rec, "public_ip"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var vpcFlags struct {
	filter      string
	yes         bool
	name        string
	description string
	subnet      string
	location    string
}

func init() {
	rootCmd.AddCommand(vpcCmd)

	vpcCmd.AddCommand(vpcListCmd)
	vpcCmd.AddCommand(vpcGetCmd)
	vpcCmd.AddCommand(vpcCreateCmd)
	vpcCmd.AddCommand(vpcSetCmd)
	vpcCmd.AddCommand(vpcRemoveCmd)
	vpcCmd.AddCommand(vpcPortsCmd)
	vpcCmd.AddCommand(vpcServicesCmd)

	vpcListCmd.Flags().StringVarP(&vpcFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	vpcServicesCmd.Flags().StringVarP(&vpcFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")

	vpcCreateCmd.Flags().StringVar(&vpcFlags.name, "name", "", "Network name")
	vpcCreateCmd.Flags().StringVar(&vpcFlags.description, "description", "", "Network description")
	vpcCreateCmd.Flags().StringVar(&vpcFlags.subnet, "subnet", "", "IPv4 subnet in CIDR notation")
	vpcCreateCmd.Flags().StringVar(&vpcFlags.location, "location", "", "Region, for example eu-1")
	_ = vpcCreateCmd.MarkFlagRequired("name")
	_ = vpcCreateCmd.MarkFlagRequired("subnet")
	_ = vpcCreateCmd.MarkFlagRequired("location")

	vpcSetCmd.Flags().StringVar(&vpcFlags.name, "name", "", "Network name")
	vpcSetCmd.Flags().StringVar(&vpcFlags.description, "description", "", "Network description")

	vpcRemoveCmd.Flags().BoolVarP(&vpcFlags.yes, "yes", "y", false, "Do not ask for confirmation")
}
