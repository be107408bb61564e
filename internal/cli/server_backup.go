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

var serverBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage server disk backups",
}

var serverBackupListCmd = &cobra.Command{
	Use:     "list SERVER_ID DISK_ID",
	Aliases: []string{"ls"},
	Short:   "List disk backups",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(serverBackupFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		serverID, diskID, err := parseTwoIDs(args[0], args[1])
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetDiskBackups(cmd.Context(), serverID, diskID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "backups", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "STATUS", "SIZE", "TYPE", "CREATED")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "name"),
					output.Str(rec, "status"),
					output.Str(rec, "size"),
					output.Str(rec, "type"),
					output.Str(rec, "created_at"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var serverBackupCreateCmd = &cobra.Command{
	Use:   "create SERVER_ID DISK_ID",
	Short: "Create a disk backup",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		serverID, diskID, err := parseTwoIDs(args[0], args[1])
		if err != nil {
			return err
		}
		backup, resp, err := rt.client.CreateDiskBackup(cmd.Context(), serverID, diskID, serverBackupFlags.comment)
		if err != nil {
			return err
		}
		if serverBackupFlags.wait {
			_, err := poll.Waiter{
				Fetch: func(ctx context.Context) (string, error) {
					b, _, err := rt.client.GetDiskBackup(ctx, serverID, diskID, backup.ID)
					if err != nil {
						return "", err
					}
					return b.Status, nil
				},
				Target:   []string{api.BackupStatusCreated},
				Interval: waitInterval,
				MaxWait:  waitTimeout,
			}.Wait(cmd.Context())
			if err != nil {
				return err
			}
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, backup.ID)
			return nil
		})
	},
}

var serverBackupRemoveCmd = &cobra.Command{
	Use:     "remove SERVER_ID DISK_ID BACKUP_ID...",
	Aliases: []string{"rm"},
	Short:   "Remove disk backups",
	Args:    cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, serverBackupFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		serverID, diskID, err := parseTwoIDs(args[0], args[1])
		if err != nil {
			return err
		}
		return removeEach(cmd, args[2:], func(id string) error {
			backupID, err := parseID(id)
			if err != nil {
				return err
			}
			_, err = rt.client.DeleteDiskBackup(cmd.Context(), serverID, diskID, backupID)
			return err
		})
	},
}

// serverBackupActionCmd builds the restore/mount/unmount commands.
func serverBackupActionCmd(use, short string, action api.BackupAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " SERVER_ID DISK_ID BACKUP_ID",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			serverID, diskID, err := parseTwoIDs(args[0], args[1])
			if err != nil {
				return err
			}
			backupID, err := parseID(args[2])
			if err != nil {
				return err
			}
			if _, err := rt.client.DoBackupAction(cmd.Context(), serverID, diskID, backupID, action); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), args[2])
			return nil
		},
	}
}

func parseTwoIDs(a, b string) (int, int, error) {
	first, err := parseID(a)
	if err != nil {
		return 0, 0, err
	}
	second, err := parseID(b)
	if err != nil {
		return 0, 0, err
	}
	return first, second, nil
}

var serverBackupFlags struct {
	filter  string
	comment string
	wait    bool
	yes     bool
}

func init() {
	serverBackupCmd.AddCommand(serverBackupListCmd)
	serverBackupCmd.AddCommand(serverBackupCreateCmd)
	serverBackupCmd.AddCommand(serverBackupRemoveCmd)
	serverBackupCmd.AddCommand(serverBackupActionCmd("restore", "Restore a disk from a backup", api.BackupActionRestore))
	serverBackupCmd.AddCommand(serverBackupActionCmd("mount", "Mount a backup to its server", api.BackupActionMount))
	serverBackupCmd.AddCommand(serverBackupActionCmd("unmount", "Unmount a backup from its server", api.BackupActionUnmount))

	serverBackupListCmd.Flags().StringVarP(&serverBackupFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	serverBackupCreateCmd.Flags().StringVar(&serverBackupFlags.comment, "comment", "", "Backup comment")
	serverBackupCreateCmd.Flags().BoolVar(&serverBackupFlags.wait, "wait", false, "Wait until the backup is created")
	serverBackupRemoveCmd.Flags().BoolVarP(&serverBackupFlags.yes, "yes", "y", false, "Do not ask for confirmation")
}
