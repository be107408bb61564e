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

var balancerCmd = &cobra.Command{
	Use:     "balancer",
	Aliases: []string{"balancers", "lb"},
	Short:   "Manage load balancers",
}

func waitBalancerStatus(ctx context.Context, client *api.Client, balancerID int, status string) error {
	_, err := poll.Waiter{
		Fetch: func(ctx context.Context) (string, error) {
			lb, _, err := client.GetBalancer(ctx, balancerID)
			if err != nil {
				return "", err
			}
			return lb.Status, nil
		},
		Target:   []string{status},
		Interval: waitInterval,
		MaxWait:  waitTimeout,
	}.Wait(ctx)
	return err
}

var balancerListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List load balancers",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(balancerFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetBalancers(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "balancers", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "STATUS", "LOCATION", "IP", "ALGO")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "name"),
					output.Str(rec, "status"),
					output.Str(rec, "location"),
					output.Str(rec, "ip"),
					output.Str(rec, "algo"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var balancerGetCmd = &cobra.Command{
	Use:   "get BALANCER_ID",
	Short: "Get load balancer details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		balancerID, err := parseID(args[0])
		if err != nil {
			return err
		}
		lb, resp, err := rt.client.GetBalancer(cmd.Context(), balancerID)
		if err != nil {
			return err
		}
		if balancerFlags.status {
			return statusCheck(cmd, lb.Status, api.BalancerStatusActive)
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "STATUS", "LOCATION", "IP", "ALGO", "STICKY")
			tbl.Row(lb.ID, lb.Name, lb.Status, lb.Location, lb.IP, lb.Algo, lb.IsSticky)
			tbl.Render(w)
			return nil
		})
	},
}

var balancerCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a load balancer",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		lb, resp, err := rt.client.CreateBalancer(cmd.Context(), api.CreateBalancerRequest{
			Name:       balancerFlags.name,
			PresetID:   balancerFlags.presetID,
			Algo:       balancerFlags.algo,
			IsSticky:   balancerFlags.sticky,
			IsUseProxy: balancerFlags.useProxy,
			IsSSL:      balancerFlags.ssl,
			ProjectID:  balancerFlags.projectID,
			NetworkID:  balancerFlags.networkID,
		})
		if err != nil {
			return err
		}
		if balancerFlags.wait {
			if err := waitBalancerStatus(cmd.Context(), rt.client, lb.ID, api.BalancerStatusActive); err != nil {
				return err
			}
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, lb.ID)
			return nil
		})
	},
}

var balancerSetCmd = &cobra.Command{
	Use:   "set BALANCER_ID",
	Short: "Change load balancer properties",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		balancerID, err := parseID(args[0])
		if err != nil {
			return err
		}
		req := api.UpdateBalancerRequest{
			Name:     balancerFlags.name,
			Algo:     balancerFlags.algo,
			PresetID: balancerFlags.presetID,
		}
		if cmd.Flags().Changed("sticky") {
			req.IsSticky = &balancerFlags.sticky
		}
		if cmd.Flags().Changed("proxy-protocol") {
			req.IsUseProxy = &balancerFlags.useProxy
		}
		if cmd.Flags().Changed("ssl") {
			req.IsSSL = &balancerFlags.ssl
		}
		lb, resp, err := rt.client.UpdateBalancer(cmd.Context(), balancerID, req)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, lb.ID)
			return nil
		})
	},
}

var balancerRemoveCmd = &cobra.Command{
	Use:     "remove BALANCER_ID...",
	Aliases: []string{"rm"},
	Short:   "Remove load balancers",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, balancerFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		return removeEach(cmd, args, func(id string) error {
			balancerID, err := parseID(id)
			if err != nil {
				return err
			}
			_, err = rt.client.DeleteBalancer(cmd.Context(), balancerID)
			return err
		})
	},
}

var balancerPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List available balancer configurations",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(balancerFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetBalancerPresets(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "balancers_presets", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "LOCATION", "RPS", "PRICE")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "location"),
					output.Str(rec, "requests_per_second"),
					output.Str(rec, "price"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var balancerBackendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Manage balancer backend IPs",
}

var balancerBackendListCmd = &cobra.Command{
	Use:     "list BALANCER_ID",
	Aliases: []string{"ls"},
	Short:   "List backend IPs",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		balancerID, err := parseID(args[0])
		if err != nil {
			return err
		}
		ips, resp, err := rt.client.GetBalancerIPs(cmd.Context(), balancerID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			for _, ip := range ips {
				fmt.Fprintln(w, ip)
			}
			return nil
		})
	},
}

var balancerBackendAddCmd = &cobra.Command{
	Use:   "add BALANCER_ID IP...",
	Short: "Attach backend IPs",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		balancerID, err := parseID(args[0])
		if err != nil {
			return err
		}
		if _, err := rt.client.AddBalancerIPs(cmd.Context(), balancerID, args[1:]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[0])
		return nil
	},
}

var balancerBackendRemoveCmd = &cobra.Command{
	Use:     "remove BALANCER_ID IP...",
	Aliases: []string{"rm"},
	Short:   "Detach backend IPs",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, balancerFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		balancerID, err := parseID(args[0])
		if err != nil {
			return err
		}
		if _, err := rt.client.DeleteBalancerIPs(cmd.Context(), balancerID, args[1:]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[0])
		return nil
	},
}

var balancerRuleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Manage balancer forwarding rules",
}

var balancerRuleListCmd = &cobra.Command{
	Use:     "list BALANCER_ID",
	Aliases: []string{"ls"},
	Short:   "List forwarding rules",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(balancerFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		balancerID, err := parseID(args[0])
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetBalancerRules(cmd.Context(), balancerID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "rules", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "PROTO", "PORT", "SERVER PROTO", "SERVER PORT")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "proto"),
					output.Str(rec, "port"),
					output.Str(rec, "server_proto"),
					output.Str(rec, "server_port"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var balancerRuleAddCmd = &cobra.Command{
	Use:   "add BALANCER_ID",
	Short: "Add a forwarding rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		balancerID, err := parseID(args[0])
		if err != nil {
			return err
		}
		rule, resp, err := rt.client.CreateBalancerRule(cmd.Context(), balancerID, api.CreateBalancerRuleRequest{
			BalancerProto: balancerFlags.proto,
			BalancerPort:  balancerFlags.port,
			ServerProto:   balancerFlags.serverProto,
			ServerPort:    balancerFlags.serverPort,
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

var balancerRuleRemoveCmd = &cobra.Command{
	Use:     "remove BALANCER_ID RULE_ID...",
	Aliases: []string{"rm"},
	Short:   "Remove forwarding rules",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, balancerFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		balancerID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return removeEach(cmd, args[1:], func(id string) error {
			ruleID, err := parseID(id)
			if err != nil {
				return err
			}
			_, err = rt.client.DeleteBalancerRule(cmd.Context(), balancerID, ruleID)
			return err
		})
	},
}

var balancerFlags struct {
	filter      string
	status      bool
	wait        bool
	yes         bool
	name        string
	presetID    int
	algo        string
	sticky      bool
	useProxy    bool
	ssl         bool
	projectID   int
	networkID   string
	proto       string
	port        int
	serverProto string
	serverPort  int
}

func init() {
	rootCmd.AddCommand(balancerCmd)

	balancerCmd.AddCommand(balancerListCmd)
	balancerCmd.AddCommand(balancerGetCmd)
	balancerCmd.AddCommand(balancerCreateCmd)
	balancerCmd.AddCommand(balancerSetCmd)
	balancerCmd.AddCommand(balancerRemoveCmd)
	balancerCmd.AddCommand(balancerPresetsCmd)
	balancerCmd.AddCommand(balancerBackendCmd)
	balancerCmd.AddCommand(balancerRuleCmd)

	balancerBackendCmd.AddCommand(balancerBackendListCmd)
	balancerBackendCmd.AddCommand(balancerBackendAddCmd)
	balancerBackendCmd.AddCommand(balancerBackendRemoveCmd)

	balancerRuleCmd.AddCommand(balancerRuleListCmd)
	balancerRuleCmd.AddCommand(balancerRuleAddCmd)
	balancerRuleCmd.AddCommand(balancerRuleRemoveCmd)

	balancerListCmd.Flags().StringVarP(&balancerFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	balancerPresetsCmd.Flags().StringVarP(&balancerFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	balancerRuleListCmd.Flags().StringVarP(&balancerFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")

	balancerGetCmd.Flags().BoolVar(&balancerFlags.status, "status", false, "Print status and exit 0 if the balancer is started")

	balancerCreateCmd.Flags().StringVar(&balancerFlags.name, "name", "", "Balancer name")
	balancerCreateCmd.Flags().IntVar(&balancerFlags.presetID, "preset-id", 0, "Preset ID")
	balancerCreateCmd.Flags().StringVar(&balancerFlags.algo, "algo", "roundrobin", "Balancing algorithm: roundrobin or leastconn")
	balancerCreateCmd.Flags().BoolVar(&balancerFlags.sticky, "sticky", false, "Enable sticky sessions")
	balancerCreateCmd.Flags().BoolVar(&balancerFlags.useProxy, "proxy-protocol", false, "Enable PROXY protocol")
	balancerCreateCmd.Flags().BoolVar(&balancerFlags.ssl, "ssl", false, "Enable SSL termination")
	balancerCreateCmd.Flags().IntVar(&balancerFlags.projectID, "project-id", 0, "Project ID")
	balancerCreateCmd.Flags().StringVar(&balancerFlags.networkID, "network-id", "", "Private network ID")
	balancerCreateCmd.Flags().BoolVar(&balancerFlags.wait, "wait", false, "Wait until the balancer is started")
	_ = balancerCreateCmd.MarkFlagRequired("name")
	_ = balancerCreateCmd.MarkFlagRequired("preset-id")

	balancerSetCmd.Flags().StringVar(&balancerFlags.name, "name", "", "Balancer name")
	balancerSetCmd.Flags().StringVar(&balancerFlags.algo, "algo", "", "Balancing algorithm: roundrobin or leastconn")
	balancerSetCmd.Flags().IntVar(&balancerFlags.presetID, "preset-id", 0, "Preset ID")
	balancerSetCmd.Flags().BoolVar(&balancerFlags.sticky, "sticky", false, "Enable sticky sessions")
	balancerSetCmd.Flags().BoolVar(&balancerFlags.useProxy, "proxy-protocol", false, "Enable PROXY protocol")
	balancerSetCmd.Flags().BoolVar(&balancerFlags.ssl, "ssl", false, "Enable SSL termination")

	balancerRemoveCmd.Flags().BoolVarP(&balancerFlags.yes, "yes", "y", false, "Do not ask for confirmation")
	balancerBackendRemoveCmd.Flags().BoolVarP(&balancerFlags.yes, "yes", "y", false, "Do not ask for confirmation")
	balancerRuleRemoveCmd.Flags().BoolVarP(&balancerFlags.yes, "yes", "y", false, "Do not ask for confirmation")

	balancerRuleAddCmd.Flags().StringVar(&balancerFlags.proto, "proto", "", "Frontend protocol: http, https, http2 or tcp")
	balancerRuleAddCmd.Flags().IntVar(&balancerFlags.port, "port", 0, "Frontend port")
	balancerRuleAddCmd.Flags().StringVar(&balancerFlags.serverProto, "server-proto", "", "Backend protocol: http, https or tcp")
	balancerRuleAddCmd.Flags().IntVar(&balancerFlags.serverPort, "server-port", 0, "Backend port")
	_ = balancerRuleAddCmd.MarkFlagRequired("proto")
	_ = balancerRuleAddCmd.MarkFlagRequired("port")
	_ = balancerRuleAddCmd.MarkFlagRequired("server-proto")
	_ = balancerRuleAddCmd.MarkFlagRequired("server-port")
}
