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

var databaseCmd = &cobra.Command{
	Use:     "database",
	Aliases: []string{"databases", "db", "dbs"},
	Short:   "Manage managed databases",
}

func waitDatabaseStatus(ctx context.Context, client *api.Client, dbID int, status string) error {
	_, err := poll.Waiter{
		Fetch: func(ctx context.Context) (string, error) {
			db, _, err := client.GetDatabase(ctx, dbID)
			if err != nil {
				return "", err
			}
			return db.Status, nil
		},
		Target:   []string{status},
		Interval: waitInterval,
		MaxWait:  waitTimeout,
	}.Wait(ctx)
	return err
}

var databaseListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List databases",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(databaseFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetDatabases(cmd.Context(), databaseFlags.limit, 0)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "dbs", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "TYPE", "STATUS", "LOCATION", "IP")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "name"),
					output.Str(rec, "type"),
					output.Str(rec, "status"),
					output.Str(rec, "location"),
					output.Str(rec, "ip"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var databaseGetCmd = &cobra.Command{
	Use:   "get DATABASE_ID",
	Short: "Get database details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		dbID, err := parseID(args[0])
		if err != nil {
			return err
		}
		db, resp, err := rt.client.GetDatabase(cmd.Context(), dbID)
		if err != nil {
			return err
		}
		if databaseFlags.status {
			return statusCheck(cmd, db.Status, api.DatabaseStatusActive)
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "TYPE", "STATUS", "LOCATION", "IP", "PORT")
			tbl.Row(db.ID, db.Name, db.Type, db.Status, db.Location, db.IP, db.Port)
			tbl.Render(w)
			return nil
		})
	},
}

var databaseCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a managed database",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		db, resp, err := rt.client.CreateDatabase(cmd.Context(), api.CreateDatabaseRequest{
			Name:             databaseFlags.name,
			Type:             databaseFlags.dbType,
			PresetID:         databaseFlags.presetID,
			Login:            databaseFlags.login,
			Password:         databaseFlags.password,
			HashType:         databaseFlags.hashType,
			ProjectID:        databaseFlags.projectID,
			AvailabilityZone: databaseFlags.zone,
		})
		if err != nil {
			return err
		}
		if databaseFlags.wait {
			if err := waitDatabaseStatus(cmd.Context(), rt.client, db.ID, api.DatabaseStatusActive); err != nil {
				return err
			}
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, db.ID)
			return nil
		})
	},
}

var databaseSetCmd = &cobra.Command{
	Use:   "set DATABASE_ID",
	Short: "Change database properties",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		dbID, err := parseID(args[0])
		if err != nil {
			return err
		}
		req := api.UpdateDatabaseRequest{
			Name:     databaseFlags.name,
			PresetID: databaseFlags.presetID,
			Password: databaseFlags.password,
		}
		if cmd.Flags().Changed("external-ip") {
			req.ExternalIP = &databaseFlags.externalIP
		}
		db, resp, err := rt.client.UpdateDatabase(cmd.Context(), dbID, req)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, db.ID)
			return nil
		})
	},
}

var databaseRemoveCmd = &cobra.Command{
	Use:     "remove DATABASE_ID...",
	Aliases: []string{"rm"},
	Short:   "Remove databases",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, databaseFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		return removeEach(cmd, args, func(id string) error {
			dbID, err := parseID(id)
			if err != nil {
				return err
			}
			_, err = rt.client.DeleteDatabase(cmd.Context(), dbID)
			return err
		})
	},
}

var databasePresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List available database configurations",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(databaseFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetDatabasePresets(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "databases_presets", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "TYPE", "LOCATION", "CPU", "RAM", "DISK", "PRICE")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "type"),
					output.Str(rec, "location"),
					output.Str(rec, "cpu"),
					output.Str(rec, "ram"),
					output.Str(rec, "disk"),
					output.Str(rec, "price"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var databaseTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List supported database engines",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		resp, err := rt.client.GetDatabaseTypes(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "types", nil)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("NAME", "VERSION")
			for _, rec := range records {
				tbl.Row(output.Str(rec, "name"), output.Str(rec, "version"))
			}
			tbl.Render(w)
			return nil
		})
	},
}

var databaseBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage database backups",
}

var databaseBackupListCmd = &cobra.Command{
	Use:     "list DATABASE_ID",
	Aliases: []string{"ls"},
	Short:   "List database backups",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(databaseFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		dbID, err := parseID(args[0])
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetDatabaseBackups(cmd.Context(), dbID, databaseFlags.limit, 0)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "backups", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "STATUS", "SIZE", "CREATED")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "name"),
					output.Str(rec, "status"),
					output.Str(rec, "size"),
					output.Str(rec, "created_at"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var databaseBackupCreateCmd = &cobra.Command{
	Use:   "create DATABASE_ID",
	Short: "Create a database backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		dbID, err := parseID(args[0])
		if err != nil {
			return err
		}
		backup, resp, err := rt.client.CreateDatabaseBackup(cmd.Context(), dbID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, backup.ID)
			return nil
		})
	},
}

var databaseBackupRemoveCmd = &cobra.Command{
	Use:     "remove DATABASE_ID BACKUP_ID...",
	Aliases: []string{"rm"},
	Short:   "Remove database backups",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, databaseFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		dbID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return removeEach(cmd, args[1:], func(id string) error {
			backupID, err := parseID(id)
			if err != nil {
				return err
			}
			_, err = rt.client.DeleteDatabaseBackup(cmd.Context(), dbID, backupID)
			return err
		})
	},
}

var databaseBackupRestoreCmd = &cobra.Command{
	Use:   "restore DATABASE_ID BACKUP_ID",
	Short: "Restore a database from a backup",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, databaseFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		dbID, backupID, err := parseTwoIDs(args[0], args[1])
		if err != nil {
			return err
		}
		if _, err := rt.client.RestoreDatabaseBackup(cmd.Context(), dbID, backupID); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[1])
		return nil
	},
}

var databaseUserCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage database users",
}

var databaseUserListCmd = &cobra.Command{
	Use:     "list DATABASE_ID",
	Aliases: []string{"ls"},
	Short:   "List database users",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		dbID, err := parseID(args[0])
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetDatabaseUsers(cmd.Context(), dbID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "admins", nil)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "LOGIN", "HOST", "CREATED")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "login"),
					output.Str(rec, "host"),
					output.Str(rec, "created_at"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var databaseUserAddCmd = &cobra.Command{
	Use:   "add DATABASE_ID",
	Short: "Add a database user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		dbID, err := parseID(args[0])
		if err != nil {
			return err
		}
		user, resp, err := rt.client.CreateDatabaseUser(cmd.Context(), dbID,
			databaseFlags.login, databaseFlags.password, databaseFlags.host, databaseFlags.privileges)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, user.ID)
			return nil
		})
	},
}

var databaseUserRemoveCmd = &cobra.Command{
	Use:     "remove DATABASE_ID USER_ID...",
	Aliases: []string{"rm"},
	Short:   "Remove database users",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, databaseFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		dbID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return removeEach(cmd, args[1:], func(id string) error {
			userID, err := parseID(id)
			if err != nil {
				return err
			}
			_, err = rt.client.DeleteDatabaseUser(cmd.Context(), dbID, userID)
			return err
		})
	},
}

var databaseInstanceCmd = &cobra.Command{
	Use:   "instance",
	Short: "Manage logical databases inside a cluster",
}

var databaseInstanceListCmd = &cobra.Command{
	Use:     "list DATABASE_ID",
	Aliases: []string{"ls"},
	Short:   "List logical databases",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		dbID, err := parseID(args[0])
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetDatabaseInstances(cmd.Context(), dbID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "instances", nil)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "CREATED")
			for _, rec := range records {
				tbl.Row(output.Str(rec, "id"), output.Str(rec, "name"), output.Str(rec, "created_at"))
			}
			tbl.Render(w)
			return nil
		})
	},
}

var databaseInstanceAddCmd = &cobra.Command{
	Use:   "add DATABASE_ID NAME",
	Short: "Create a logical database",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		dbID, err := parseID(args[0])
		if err != nil {
			return err
		}
		instance, resp, err := rt.client.CreateDatabaseInstance(cmd.Context(), dbID, args[1])
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, instance.ID)
			return nil
		})
	},
}

var databaseInstanceRemoveCmd = &cobra.Command{
	Use:     "remove DATABASE_ID INSTANCE_ID...",
	Aliases: []string{"rm"},
	Short:   "Remove logical databases",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, databaseFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		dbID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return removeEach(cmd, args[1:], func(id string) error {
			instanceID, err := parseID(id)
			if err != nil {
				return err
			}
			_, err = rt.client.DeleteDatabaseInstance(cmd.Context(), dbID, instanceID)
			return err
		})
	},
}

var databaseFlags struct {
	filter     string
	limit      int
	status     bool
	wait       bool
	yes        bool
	name       string
	dbType     string
	presetID   int
	login      string
	password   string
	hashType   string
	host       string
	privileges []string
	projectID  int
	zone       string
	externalIP bool
}

func init() {
	rootCmd.AddCommand(databaseCmd)

	databaseCmd.AddCommand(databaseListCmd)
	databaseCmd.AddCommand(databaseGetCmd)
	databaseCmd.AddCommand(databaseCreateCmd)
	databaseCmd.AddCommand(databaseSetCmd)
	databaseCmd.AddCommand(databaseRemoveCmd)
	databaseCmd.AddCommand(databasePresetsCmd)
	databaseCmd.AddCommand(databaseTypesCmd)
	databaseCmd.AddCommand(databaseBackupCmd)
	databaseCmd.AddCommand(databaseUserCmd)
	databaseCmd.AddCommand(databaseInstanceCmd)

	databaseBackupCmd.AddCommand(databaseBackupListCmd)
	databaseBackupCmd.AddCommand(databaseBackupCreateCmd)
	databaseBackupCmd.AddCommand(databaseBackupRemoveCmd)
	databaseBackupCmd.AddCommand(databaseBackupRestoreCmd)

	databaseUserCmd.AddCommand(databaseUserListCmd)
	databaseUserCmd.AddCommand(databaseUserAddCmd)
	databaseUserCmd.AddCommand(databaseUserRemoveCmd)

	databaseInstanceCmd.AddCommand(databaseInstanceListCmd)
	databaseInstanceCmd.AddCommand(databaseInstanceAddCmd)
	databaseInstanceCmd.AddCommand(databaseInstanceRemoveCmd)

	databaseListCmd.Flags().StringVarP(&databaseFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	databaseListCmd.Flags().IntVar(&databaseFlags.limit, "limit", 100, "Items per page")
	databasePresetsCmd.Flags().StringVarP(&databaseFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	databaseBackupListCmd.Flags().StringVarP(&databaseFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")

	databaseGetCmd.Flags().BoolVar(&databaseFlags.status, "status", false, "Print status and exit 0 if the database is started")

	databaseCreateCmd.Flags().StringVar(&databaseFlags.name, "name", "", "Database name")
	databaseCreateCmd.Flags().StringVar(&databaseFlags.dbType, "type", "", "Database engine, for example mysql8 or postgres15")
	databaseCreateCmd.Flags().IntVar(&databaseFlags.presetID, "preset-id", 0, "Preset ID")
	databaseCreateCmd.Flags().StringVar(&databaseFlags.login, "login", "", "Admin login")
	databaseCreateCmd.Flags().StringVar(&databaseFlags.password, "password", "", "Admin password")
	databaseCreateCmd.Flags().StringVar(&databaseFlags.hashType, "hash-type", "", "Password hash type (mysql only)")
	databaseCreateCmd.Flags().IntVar(&databaseFlags.projectID, "project-id", 0, "Project ID")
	databaseCreateCmd.Flags().StringVar(&databaseFlags.zone, "zone", "", "Availability zone")
	databaseCreateCmd.Flags().BoolVar(&databaseFlags.wait, "wait", false, "Wait until the database is started")
	_ = databaseCreateCmd.MarkFlagRequired("name")
	_ = databaseCreateCmd.MarkFlagRequired("type")
	_ = databaseCreateCmd.MarkFlagRequired("preset-id")

	databaseSetCmd.Flags().StringVar(&databaseFlags.name, "name", "", "Database name")
	databaseSetCmd.Flags().IntVar(&databaseFlags.presetID, "preset-id", 0, "Preset ID")
	databaseSetCmd.Flags().StringVar(&databaseFlags.password, "password", "", "Admin password")
	databaseSetCmd.Flags().BoolVar(&databaseFlags.externalIP, "external-ip", true, "Expose the database on an external IP")

	databaseRemoveCmd.Flags().BoolVarP(&databaseFlags.yes, "yes", "y", false, "Do not ask for confirmation")
	databaseBackupRemoveCmd.Flags().BoolVarP(&databaseFlags.yes, "yes", "y", false, "Do not ask for confirmation")
	databaseBackupRestoreCmd.Flags().BoolVarP(&databaseFlags.yes, "yes", "y", false, "Do not ask for confirmation")
	databaseUserRemoveCmd.Flags().BoolVarP(&databaseFlags.yes, "yes", "y", false, "Do not ask for confirmation")
	databaseInstanceRemoveCmd.Flags().BoolVarP(&databaseFlags.yes, "yes", "y", false, "Do not ask for confirmation")

	databaseUserAddCmd.Flags().StringVar(&databaseFlags.login, "login", "", "User login")
	databaseUserAddCmd.Flags().StringVar(&databaseFlags.password, "password", "", "User password")
	databaseUserAddCmd.Flags().StringVar(&databaseFlags.host, "host", "", "Host the user may connect from")
	databaseUserAddCmd.Flags().StringSliceVar(&databaseFlags.privileges, "privilege", nil, "Privilege to grant (repeatable)")
	_ = databaseUserAddCmd.MarkFlagRequired("login")
	_ = databaseUserAddCmd.MarkFlagRequired("password")
}
