package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nimbuscloud/nimbus-cli/internal/output"
	"github.com/nimbuscloud/nimbus-cli/pkg/api"
)

var domainCmd = &cobra.Command{
	Use:     "domain",
	Aliases: []string{"domains", "d"},
	Short:   "Manage domains and DNS records",
}

var domainListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List domains",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(domainFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetDomains(cmd.Context(), domainFlags.limit, 0)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "domains", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "FQDN", "STATUS", "EXPIRATION")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "fqdn"),
					output.Str(rec, "domain_status"),
					output.Str(rec, "expiration"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var domainGetCmd = &cobra.Command{
	Use:   "get DOMAIN",
	Short: "Get domain details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		domain, resp, err := rt.client.GetDomain(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			tbl := &output.Table{}
			tbl.Header("ID", "FQDN", "STATUS", "AUTOPROLONG", "EXPIRATION")
			tbl.Row(domain.ID, domain.FQDN, domain.Status, domain.IsAutoprolong, domain.ExpiredAt)
			tbl.Render(w)
			return nil
		})
	},
}

var domainAddCmd = &cobra.Command{
	Use:   "add DOMAIN",
	Short: "Add an existing domain to the account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		if _, err := rt.client.AddDomain(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[0])
		return nil
	},
}

var domainRemoveCmd = &cobra.Command{
	Use:     "remove DOMAIN...",
	Aliases: []string{"rm"},
	Short:   "Remove domains from the account",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, domainFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		return removeEach(cmd, args, func(fqdn string) error {
			_, err := rt.client.DeleteDomain(cmd.Context(), fqdn)
			return err
		})
	},
}

var domainAutoprolongCmd = &cobra.Command{
	Use:       "autoprolong DOMAIN on|off",
	Short:     "Toggle automatic domain renewal",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		var enabled bool
		switch args[1] {
		case "on":
			enabled = true
		case "off":
			enabled = false
		default:
			return fmt.Errorf("expected on or off, got %q", args[1])
		}
		if _, err := rt.client.SetDomainAutoprolong(cmd.Context(), args[0], enabled); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[0])
		return nil
	},
}

var domainRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Manage DNS records",
}

var domainRecordListCmd = &cobra.Command{
	Use:     "list DOMAIN",
	Aliases: []string{"ls"},
	Short:   "List DNS records",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(domainFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetDNSRecords(cmd.Context(), args[0], domainFlags.limit, 0)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "dns_records", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "TYPE", "SUBDOMAIN", "VALUE", "PRIORITY")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "type"),
					output.Str(rec, "data.subdomain"),
					output.Str(rec, "data.value"),
					output.Str(rec, "data.priority"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var domainRecordAddCmd = &cobra.Command{
	Use:   "add DOMAIN",
	Short: "Add a DNS record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		record, resp, err := rt.client.AddDNSRecord(cmd.Context(), args[0], api.AddDNSRecordRequest{
			Type:      domainFlags.recordType,
			Value:     domainFlags.value,
			Priority:  domainFlags.priority,
			Subdomain: domainFlags.subdomain,
		})
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, record.ID)
			return nil
		})
	},
}

var domainRecordRemoveCmd = &cobra.Command{
	Use:     "remove DOMAIN RECORD_ID...",
	Aliases: []string{"rm"},
	Short:   "Remove DNS records",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, domainFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		return removeEach(cmd, args[1:], func(id string) error {
			recordID, err := parseID(id)
			if err != nil {
				return err
			}
			_, err = rt.client.DeleteDNSRecord(cmd.Context(), args[0], recordID)
			return err
		})
	},
}

var domainSubdomainCmd = &cobra.Command{
	Use:   "subdomain",
	Short: "Manage subdomains",
}

var domainSubdomainAddCmd = &cobra.Command{
	Use:   "add DOMAIN SUBDOMAIN_FQDN",
	Short: "Create a subdomain",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		sub, resp, err := rt.client.AddSubdomain(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, sub.FQDN)
			return nil
		})
	},
}

var domainSubdomainRemoveCmd = &cobra.Command{
	Use:     "remove DOMAIN SUBDOMAIN_FQDN...",
	Aliases: []string{"rm"},
	Short:   "Remove subdomains and their DNS records",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, domainFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		return removeEach(cmd, args[1:], func(fqdn string) error {
			_, err := rt.client.DeleteSubdomain(cmd.Context(), args[0], fqdn)
			return err
		})
	},
}

var domainFlags struct {
	filter     string
	limit      int
	yes        bool
	recordType string
	value      string
	priority   int
	subdomain  string
}

func init() {
	rootCmd.AddCommand(domainCmd)

	domainCmd.AddCommand(domainListCmd)
	domainCmd.AddCommand(domainGetCmd)
	domainCmd.AddCommand(domainAddCmd)
	domainCmd.AddCommand(domainRemoveCmd)
	domainCmd.AddCommand(domainAutoprolongCmd)
	domainCmd.AddCommand(domainRecordCmd)
	domainCmd.AddCommand(domainSubdomainCmd)

	domainRecordCmd.AddCommand(domainRecordListCmd)
	domainRecordCmd.AddCommand(domainRecordAddCmd)
	domainRecordCmd.AddCommand(domainRecordRemoveCmd)

	domainSubdomainCmd.AddCommand(domainSubdomainAddCmd)
	domainSubdomainCmd.AddCommand(domainSubdomainRemoveCmd)

	domainListCmd.Flags().StringVarP(&domainFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	domainListCmd.Flags().IntVar(&domainFlags.limit, "limit", 100, "Items per page")
	domainRecordListCmd.Flags().StringVarP(&domainFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")

	domainRecordAddCmd.Flags().StringVar(&domainFlags.recordType, "type", "", "Record type: A, AAAA, CNAME, MX, TXT, SRV or NS")
	domainRecordAddCmd.Flags().StringVar(&domainFlags.value, "value", "", "Record value")
	domainRecordAddCmd.Flags().IntVar(&domainFlags.priority, "priority", 0, "Record priority (MX, SRV)")
	domainRecordAddCmd.Flags().StringVar(&domainFlags.subdomain, "subdomain", "", "Subdomain the record applies to")
	_ = domainRecordAddCmd.MarkFlagRequired("type")
	_ = domainRecordAddCmd.MarkFlagRequired("value")

	domainRemoveCmd.Flags().BoolVarP(&domainFlags.yes, "yes", "y", false, "Do not ask for confirmation")
	domainRecordRemoveCmd.Flags().BoolVarP(&domainFlags.yes, "yes", "y", false, "Do not ask for confirmation")
	domainSubdomainRemoveCmd.Flags().BoolVarP(&domainFlags.yes, "yes", "y", false, "Do not ask for confirmation")
}
