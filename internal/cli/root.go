// Package cli implements the nimbus command tree. Each resource domain
// gets one file with its subcommands; handlers build one HTTP call via
// pkg/api and render the response via internal/output.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/nimbuscloud/nimbus-cli/internal/config"
	"github.com/nimbuscloud/nimbus-cli/internal/logging"
	"github.com/nimbuscloud/nimbus-cli/internal/output"
)

var (
	flagVerbose bool
	flagConfig  string
	flagProfile string
	flagOutput  string
)

var rootCmd = &cobra.Command{
	Use:   "nimbus",
	Short: "Command-line client for Nimbus Cloud",
	Long: `nimbus manages Nimbus Cloud resources from the terminal:
servers, managed databases, load balancers, Kubernetes clusters,
object storage, DNS, firewalls, floating IPs, projects, SSH keys
and private networks.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(logging.Config{Verbose: flagVerbose || os.Getenv(config.EnvDebug) != ""})
		// Validate the output selector before anything touches the
		// network.
		if _, err := output.ParseFormat(flagOutput); err != nil {
			return err
		}
		return nil
	},
}

// Execute runs the root command with the given context. The context is
// cancelled on interrupt, which aborts in-flight requests and wait
// loops.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Configuration file (default ~/.nimbusrc, env "+config.EnvConfigFile+")")
	rootCmd.PersistentFlags().StringVarP(&flagProfile, "profile", "p", "", "Configuration profile (default \"default\", env "+config.EnvProfile+")")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "Output format: default, raw, json, yaml")
}
