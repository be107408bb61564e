package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/nimbuscloud/nimbus-cli/internal/output"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Account information",
}

var accountStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show account standing",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		status, resp, err := rt.client.GetAccountStatus(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			tbl := &output.Table{}
			tbl.Header("BLOCKED", "PERMANENT BLOCK", "PASSWORD CHANGED")
			tbl.Row(status.IsBlocked, status.IsPermanentBlocked, status.LastPasswordChange)
			tbl.Render(w)
			return nil
		})
	},
}

var accountFinancesCmd = &cobra.Command{
	Use:   "finances",
	Short: "Show balance and spending",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		finances, resp, err := rt.client.GetAccountFinances(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			tbl := &output.Table{}
			tbl.Header("BALANCE", "CURRENCY", "MONTHLY", "HOURLY")
			tbl.Row(finances.Balance, finances.Currency, finances.MonthlyCost, finances.HourlyCost)
			tbl.Render(w)
			return nil
		})
	},
}

var accountAccessCmd = &cobra.Command{
	Use:   "access",
	Short: "Show access restriction settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		resp, err := rt.client.GetAccountRestrictions(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			_, err := w.Write(append(resp.Body, '\n'))
			return err
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the company the token belongs to",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		status, resp, err := rt.client.GetAccountStatus(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			tbl := &output.Table{}
			tbl.Header("ID", "NAME")
			if status.CompanyInfo != nil {
				tbl.Row(status.CompanyInfo.ID, status.CompanyInfo.Name)
			}
			tbl.Render(w)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(whoamiCmd)

	accountCmd.AddCommand(accountStatusCmd)
	accountCmd.AddCommand(accountFinancesCmd)
	accountCmd.AddCommand(accountAccessCmd)
}
