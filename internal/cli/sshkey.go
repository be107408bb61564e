package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nimbuscloud/nimbus-cli/internal/output"
)

var sshKeyCmd = &cobra.Command{
	Use:     "ssh-key",
	Aliases: []string{"ssh-keys", "k"},
	Short:   "Manage SSH keys",
}

var sshKeyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List SSH keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(sshKeyFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetSSHKeys(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "ssh_keys", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "DEFAULT", "CREATED")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "name"),
					output.Str(rec, "is_default"),
					output.Str(rec, "created_at"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var sshKeyGetCmd = &cobra.Command{
	Use:   "get KEY_ID",
	Short: "Get SSH key details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		keyID, err := parseID(args[0])
		if err != nil {
			return err
		}
		key, resp, err := rt.client.GetSSHKey(cmd.Context(), keyID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "DEFAULT", "BODY")
			tbl.Row(key.ID, key.Name, key.IsDefault, key.Body)
			tbl.Render(w)
			return nil
		})
	},
}

// readPublicKey accepts either a literal key or a path to a key file.
func readPublicKey(arg string) (string, error) {
	if strings.HasPrefix(arg, "ssh-") || strings.HasPrefix(arg, "ecdsa-") {
		return strings.TrimSpace(arg), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("cannot read public key: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

var sshKeyAddCmd = &cobra.Command{
	Use:   "add PUBLIC_KEY_OR_FILE",
	Short: "Add an SSH public key to the account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		body, err := readPublicKey(args[0])
		if err != nil {
			return err
		}
		name := sshKeyFlags.name
		if name == "" {
			// Use the key comment when present.
			if parts := strings.Fields(body); len(parts) >= 3 {
				name = parts[2]
			}
		}
		if name == "" {
			return fmt.Errorf("key has no comment, set --name")
		}
		key, resp, err := rt.client.AddSSHKey(cmd.Context(), name, body, sshKeyFlags.isDefault)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, key.ID)
			return nil
		})
	},
}

var sshKeySetCmd = &cobra.Command{
	Use:   "set KEY_ID",
	Short: "Change SSH key properties",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		keyID, err := parseID(args[0])
		if err != nil {
			return err
		}
		var isDefault *bool
		if cmd.Flags().Changed("default") {
			isDefault = &sshKeyFlags.isDefault
		}
		key, resp, err := rt.client.UpdateSSHKey(cmd.Context(), keyID, sshKeyFlags.name, "", isDefault)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, key.ID)
			return nil
		})
	},
}

var sshKeyRemoveCmd = &cobra.Command{
	Use:     "remove KEY_ID...",
	Aliases: []string{"rm"},
	Short:   "Remove SSH keys from the account",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, sshKeyFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		return removeEach(cmd, args, func(id string) error {
			keyID, err := parseID(id)
			if err != nil {
				return err
			}
			_, err = rt.client.DeleteSSHKey(cmd.Context(), keyID)
			return err
		})
	},
}

var sshKeyCopyCmd = &cobra.Command{
	Use:   "copy KEY_ID SERVER_ID",
	Short: "Install an account SSH key on a server",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		keyID, serverID, err := parseTwoIDs(args[0], args[1])
		if err != nil {
			return err
		}
		if _, err := rt.client.AddSSHKeysToServer(cmd.Context(), serverID, []int{keyID}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[0])
		return nil
	},
}

var sshKeyDetachCmd = &cobra.Command{
	Use:   "detach KEY_ID SERVER_ID",
	Short: "Remove an account SSH key from a server",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		keyID, serverID, err := parseTwoIDs(args[0], args[1])
		if err != nil {
			return err
		}
		if _, err := rt.client.DeleteSSHKeyFromServer(cmd.Context(), serverID, keyID); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[0])
		return nil
	},
}

var sshKeyFlags struct {
	filter    string
	yes       bool
	name      string
	isDefault bool
}

func init() {
	rootCmd.AddCommand(sshKeyCmd)

	sshKeyCmd.AddCommand(sshKeyListCmd)
	sshKeyCmd.AddCommand(sshKeyGetCmd)
	sshKeyCmd.AddCommand(sshKeyAddCmd)
	sshKeyCmd.AddCommand(sshKeySetCmd)
	sshKeyCmd.AddCommand(sshKeyRemoveCmd)
	sshKeyCmd.AddCommand(sshKeyCopyCmd)
	sshKeyCmd.AddCommand(sshKeyDetachCmd)

	sshKeyListCmd.Flags().StringVarP(&sshKeyFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")

	sshKeyAddCmd.Flags().StringVar(&sshKeyFlags.name, "name", "", "Key name, defaults to the key comment")
	sshKeyAddCmd.Flags().BoolVar(&sshKeyFlags.isDefault, "default", false, "Install on every new server")

	sshKeySetCmd.Flags().StringVar(&sshKeyFlags.name, "name", "", "Key name")
	sshKeySetCmd.Flags().BoolVar(&sshKeyFlags.isDefault, "default", false, "Install on every new server")

	sshKeyRemoveCmd.Flags().BoolVarP(&sshKeyFlags.yes, "yes", "y", false, "Do not ask for confirmation")
}
