package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nimbuscloud/nimbus-cli/internal/output"
	"github.com/nimbuscloud/nimbus-cli/pkg/api"
)

var firewallCmd = &cobra.Command{
	Use:     "firewall",
	Aliases: []string{"fw"},
	Short:   "Manage firewall groups and rules",
}

var firewallGroupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage firewall groups",
}

var firewallGroupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List firewall groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(firewallFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetFirewallGroups(cmd.Context(), firewallFlags.limit, 0)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "groups", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "POLICY", "RULES", "RESOURCES")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "name"),
					output.Str(rec, "policy"),
					output.Str(rec, "rules_count"),
					output.Str(rec, "resources_count"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var firewallGroupGetCmd = &cobra.Command{
	Use:   "get GROUP_ID",
	Short: "Get firewall group details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		group, resp, err := rt.client.GetFirewallGroup(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "POLICY", "DESCRIPTION")
			tbl.Row(group.ID, group.Name, group.Policy, group.Description)
			tbl.Render(w)
			return nil
		})
	},
}

var firewallGroupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a firewall group",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		group, resp, err := rt.client.CreateFirewallGroup(cmd.Context(), firewallFlags.name, firewallFlags.description)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, group.ID)
			return nil
		})
	},
}

var firewallGroupSetCmd = &cobra.Command{
	Use:   "set GROUP_ID",
	Short: "Change firewall group name or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		group, resp, err := rt.client.UpdateFirewallGroup(cmd.Context(), args[0], firewallFlags.name, firewallFlags.description)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, group.ID)
			return nil
		})
	},
}

var firewallGroupRemoveCmd = &cobra.Command{
	Use:     "remove GROUP_ID...",
	Aliases: []string{"rm"},
	Short:   "Remove firewall groups",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, firewallFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		return removeEach(cmd, args, func(id string) error {
			_, err := rt.client.DeleteFirewallGroup(cmd.Context(), id)
			return err
		})
	},
}

var firewallRuleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Manage firewall rules",
}

var firewallRuleListCmd = &cobra.Command{
	Use:     "list GROUP_ID",
	Aliases: []string{"ls"},
	Short:   "List rules of a group",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(firewallFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetFirewallRules(cmd.Context(), args[0], firewallFlags.limit, 0)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "rules", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "DIRECTION", "PROTOCOL", "PORT", "CIDR")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "direction"),
					output.Str(rec, "protocol"),
					output.Str(rec, "port"),
					output.Str(rec, "cidr"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var firewallRuleAddCmd = &cobra.Command{
	Use:   "add GROUP_ID",
	Short: "Add a rule to a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		rule, resp, err := rt.client.CreateFirewallRule(cmd.Context(), args[0], api.CreateFirewallRuleRequest{
			Direction:   firewallFlags.direction,
			Protocol:    firewallFlags.protocol,
			Port:        firewallFlags.port,
			CIDR:        firewallFlags.cidr,
			Description: firewallFlags.description,
		})
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, rule.ID)
			return nil
		})
	},
}

var firewallRuleRemoveCmd = &cobra.Command{
	Use:     "remove GROUP_ID RULE_ID...",
	Aliases: []string{"rm"},
	Short:   "Remove rules from a group",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, firewallFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		return removeEach(cmd, args[1:], func(id string) error {
			_, err := rt.client.DeleteFirewallRule(cmd.Context(), args[0], id)
			return err
		})
	},
}

var firewallLinkCmd = &cobra.Command{
	Use:   "link GROUP_ID RESOURCE_ID",
	Short: "Attach a resource to a firewall group",
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
		resourceType := api.ResourceType(firewallFlags.resourceType)
		if _, err := rt.client.LinkResourceToFirewall(cmd.Context(), args[0], resourceID, resourceType); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[1])
		return nil
	},
}

var firewallUnlinkCmd = &cobra.Command{
	Use:   "unlink GROUP_ID RESOURCE_ID",
	Short: "Detach a resource from a firewall group",
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
		if _, err := rt.client.UnlinkResourceFromFirewall(cmd.Context(), args[0], resourceID); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[1])
		return nil
	},
}

var firewallResourcesCmd = &cobra.Command{
	Use:   "resources GROUP_ID",
	Short: "List resources attached to a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetFirewallGroupResources(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "resources", nil)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "TYPE")
			for _, rec := range records {
				tbl.Row(output.Str(rec, "id"), output.Str(rec, "resource_type"))
			}
			tbl.Render(w)
			return nil
		})
	},
}

var firewallFlags struct {
	filter       string
	limit        int
	yes          bool
	name         string
	description  string
	direction    string
	protocol     string
	port         string
	cidr         string
	resourceType string
}

func init() {
	rootCmd.AddCommand(firewallCmd)

	firewallCmd.AddCommand(firewallGroupCmd)
	firewallCmd.AddCommand(firewallRuleCmd)
	firewallCmd.AddCommand(firewallLinkCmd)
	firewallCmd.AddCommand(firewallUnlinkCmd)
	firewallCmd.AddCommand(firewallResourcesCmd)

	firewallGroupCmd.AddCommand(firewallGroupListCmd)
	firewallGroupCmd.AddCommand(firewallGroupGetCmd)
	firewallGroupCmd.AddCommand(firewallGroupCreateCmd)
	firewallGroupCmd.AddCommand(firewallGroupSetCmd)
	firewallGroupCmd.AddCommand(firewallGroupRemoveCmd)

	firewallRuleCmd.AddCommand(firewallRuleListCmd)
	firewallRuleCmd.AddCommand(firewallRuleAddCmd)
	firewallRuleCmd.AddCommand(firewallRuleRemoveCmd)

	firewallGroupListCmd.Flags().StringVarP(&firewallFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	firewallGroupListCmd.Flags().IntVar(&firewallFlags.limit, "limit", 100, "Items per page")
	firewallRuleListCmd.Flags().StringVarP(&firewallFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")

	firewallGroupCreateCmd.Flags().StringVar(&firewallFlags.name, "name", "", "Group name")
	firewallGroupCreateCmd.Flags().StringVar(&firewallFlags.description, "description", "", "Group description")
	_ = firewallGroupCreateCmd.MarkFlagRequired("name")

	firewallGroupSetCmd.Flags().StringVar(&firewallFlags.name, "name", "", "Group name")
	firewallGroupSetCmd.Flags().StringVar(&firewallFlags.description, "description", "", "Group description")

	firewallRuleAddCmd.Flags().StringVar(&firewallFlags.direction, "direction", "ingress", "Traffic direction: ingress or egress")
	firewallRuleAddCmd.Flags().StringVar(&firewallFlags.protocol, "protocol", "", "Protocol: tcp, udp, icmp, tcp6, udp6 or icmp6")
	firewallRuleAddCmd.Flags().StringVar(&firewallFlags.port, "port", "", "Port or port range, for example 80 or 8000-8080")
	firewallRuleAddCmd.Flags().StringVar(&firewallFlags.cidr, "cidr", "", "Source or destination network in CIDR notation")
	firewallRuleAddCmd.Flags().StringVar(&firewallFlags.description, "description", "", "Rule description")
	_ = firewallRuleAddCmd.MarkFlagRequired("protocol")
	_ = firewallRuleAddCmd.MarkFlagRequired("cidr")

	firewallLinkCmd.Flags().StringVar(&firewallFlags.resourceType, "resource-type", "server", "Resource type: server, balancer or database")

	firewallGroupRemoveCmd.Flags().BoolVarP(&firewallFlags.yes, "yes", "y", false, "Do not ask for confirmation")
	firewallRuleRemoveCmd.Flags().BoolVarP(&firewallFlags.yes, "yes", "y", false, "Do not ask for confirmation")
}
