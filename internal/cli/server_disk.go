package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nimbuscloud/nimbus-cli/internal/output"
	"github.com/nimbuscloud/nimbus-cli/pkg/api"
)

var serverDiskCmd = &cobra.Command{
	Use:   "disk",
	Short: "Manage server disks",
}

var serverDiskListCmd = &cobra.Command{
	Use:     "list SERVER_ID",
	Aliases: []string{"ls"},
	Short:   "List server disks",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(serverDiskFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		serverID, err := parseID(args[0])
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetDisks(cmd.Context(), serverID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "server_disks", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "TYPE", "STATUS", "SIZE", "USED", "SYSTEM")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "type"),
					output.Str(rec, "status"),
					output.Str(rec, "size"),
					output.Str(rec, "used"),
					output.Str(rec, "is_system"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var serverDiskAddCmd = &cobra.Command{
	Use:   "add SERVER_ID",
	Short: "Attach a new disk to a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		serverID, err := parseID(args[0])
		if err != nil {
			return err
		}
		disk, resp, err := rt.client.AddDisk(cmd.Context(), serverID, serverDiskFlags.size)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, disk.ID)
			return nil
		})
	},
}

var serverDiskResizeCmd = &cobra.Command{
	Use:   "resize SERVER_ID DISK_ID",
	Short: "Grow a disk. Shrinking is not supported",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		serverID, err := parseID(args[0])
		if err != nil {
			return err
		}
		diskID, err := parseID(args[1])
		if err != nil {
			return err
		}
		disk, resp, err := rt.client.UpdateDisk(cmd.Context(), serverID, diskID, serverDiskFlags.size)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, disk.ID)
			return nil
		})
	},
}

var serverDiskRemoveCmd = &cobra.Command{
	Use:     "remove SERVER_ID DISK_ID...",
	Aliases: []string{"rm"},
	Short:   "Detach and destroy disks",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, serverDiskFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		serverID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return removeEach(cmd, args[1:], func(id string) error {
			diskID, err := parseID(id)
			if err != nil {
				return err
			}
			_, err = rt.client.DeleteDisk(cmd.Context(), serverID, diskID)
			return err
		})
	},
}

var serverDiskAutoBackupCmd = &cobra.Command{
	Use:   "auto-backup SERVER_ID DISK_ID",
	Short: "Show or change a disk's scheduled backup policy",
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

		var (
			settings *api.AutoBackupSettings
			resp     *api.Response
		)
		flags := cmd.Flags()
		if flags.NFlag() == 0 {
			settings, resp, err = rt.client.GetDiskAutoBackupSettings(cmd.Context(), serverID, diskID)
		} else {
			req := api.AutoBackupSettings{
				IsEnabled:       !serverDiskFlags.disable,
				CopyCount:       serverDiskFlags.copyCount,
				CreationStartAt: serverDiskFlags.startAt,
				Interval:        serverDiskFlags.interval,
				DayOfWeek:       serverDiskFlags.dayOfWeek,
			}
			settings, resp, err = rt.client.UpdateDiskAutoBackupSettings(cmd.Context(), serverID, diskID, req)
		}
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			tbl := &output.Table{}
			tbl.Header("ENABLED", "COPIES", "INTERVAL", "DAY", "START AT")
			tbl.Row(settings.IsEnabled, settings.CopyCount, settings.Interval, settings.DayOfWeek, settings.CreationStartAt)
			tbl.Render(w)
			return nil
		})
	},
}

var serverDiskFlags struct {
	filter    string
	size      int
	yes       bool
	disable   bool
	copyCount int
	startAt   string
	interval  string
	dayOfWeek int
}

func init() {
	serverDiskCmd.AddCommand(serverDiskListCmd)
	serverDiskCmd.AddCommand(serverDiskAddCmd)
	serverDiskCmd.AddCommand(serverDiskResizeCmd)
	serverDiskCmd.AddCommand(serverDiskRemoveCmd)
	serverDiskCmd.AddCommand(serverDiskAutoBackupCmd)

	serverDiskListCmd.Flags().StringVarP(&serverDiskFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	serverDiskAddCmd.Flags().IntVar(&serverDiskFlags.size, "size", 0, "Disk size in megabytes")
	_ = serverDiskAddCmd.MarkFlagRequired("size")
	serverDiskResizeCmd.Flags().IntVar(&serverDiskFlags.size, "size", 0, "New disk size in megabytes")
	_ = serverDiskResizeCmd.MarkFlagRequired("size")
	serverDiskRemoveCmd.Flags().BoolVarP(&serverDiskFlags.yes, "yes", "y", false, "Do not ask for confirmation")

	serverDiskAutoBackupCmd.Flags().BoolVar(&serverDiskFlags.disable, "disable", false, "Turn scheduled backups off")
	serverDiskAutoBackupCmd.Flags().IntVar(&serverDiskFlags.copyCount, "copy-count", 0, "Backups to keep")
	serverDiskAutoBackupCmd.Flags().StringVar(&serverDiskFlags.startAt, "start-at", "", "First backup date, YYYY-MM-DD")
	serverDiskAutoBackupCmd.Flags().StringVar(&serverDiskFlags.interval, "interval", "", "Backup interval: day, week, month")
	serverDiskAutoBackupCmd.Flags().IntVar(&serverDiskFlags.dayOfWeek, "day-of-week", 0, "Day of week for weekly interval, 1-7")
}
