package cli

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nimbuscloud/nimbus-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration profiles",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ResolvePath(flagConfig)
		profile := config.ResolveProfile(flagProfile)

		token := configFlags.token
		if token == "" {
			fmt.Fprint(cmd.OutOrStdout(), "API token: ")
			reader := bufio.NewReader(cmd.InOrStdin())
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read token: %w", err)
			}
			token = strings.TrimSpace(line)
		}
		if token == "" {
			return fmt.Errorf("token must not be empty")
		}
		if err := config.Init(path, profile, token); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value in the active profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ResolvePath(flagConfig)
		profile := config.ResolveProfile(flagProfile)
		return config.Set(path, profile, args[0], args[1])
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset KEY",
	Short: "Remove a configuration value from the active profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ResolvePath(flagConfig)
		profile := config.ResolveProfile(flagProfile)
		return config.Unset(path, profile, args[0])
	},
}

var configProfilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List configured profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ResolvePath(flagConfig)
		names, err := config.Profiles(path)
		if err != nil {
			return err
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the configuration file with tokens masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ResolvePath(flagConfig)
		raw, err := config.Dump(path)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(raw)
		return err
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the configuration file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}
		e := exec.CommandContext(cmd.Context(), editor, config.ResolvePath(flagConfig))
		e.Stdin = os.Stdin
		e.Stdout = os.Stdout
		e.Stderr = os.Stderr
		return e.Run()
	},
}

var configFileCmd = &cobra.Command{
	Use:   "file",
	Short: "Print the path of the active configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.ResolvePath(flagConfig))
		return nil
	},
}

var configFlags struct {
	token string
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configProfilesCmd)
	configCmd.AddCommand(configDumpCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configFileCmd)

	configInitCmd.Flags().StringVar(&configFlags.token, "token", "", "API token, prompted for when omitted")
}
