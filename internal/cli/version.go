package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/nimbuscloud/nimbus-cli/pkg/api"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "nimbus %s %s/%s\n", api.Version, runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = api.Version
}
