package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nimbuscloud/nimbus-cli/internal/output"
)

var storageCmd = &cobra.Command{
	Use:     "storage",
	Aliases: []string{"storages", "s3"},
	Short:   "Manage object storage",
}

var storageListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List storage buckets",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(storageFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetBuckets(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "buckets", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "TYPE", "STATUS", "LOCATION", "USED")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "name"),
					output.Str(rec, "type"),
					output.Str(rec, "status"),
					output.Str(rec, "location"),
					output.Str(rec, "disk_stats.used"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var storageMakeBucketCmd = &cobra.Command{
	Use:     "mb NAME",
	Aliases: []string{"create"},
	Short:   "Make a storage bucket",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		bucketType := "private"
		if storageFlags.public {
			bucketType = "public"
		}
		bucket, resp, err := rt.client.CreateBucket(cmd.Context(), args[0], storageFlags.presetID, bucketType)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, bucket.Name)
			return nil
		})
	},
}

var storageSetCmd = &cobra.Command{
	Use:   "set BUCKET_ID",
	Short: "Change bucket type or size preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		bucketID, err := parseID(args[0])
		if err != nil {
			return err
		}
		var bucketType string
		if cmd.Flags().Changed("public") {
			bucketType = "private"
			if storageFlags.public {
				bucketType = "public"
			}
		}
		bucket, resp, err := rt.client.UpdateBucket(cmd.Context(), bucketID, storageFlags.presetID, bucketType)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, bucket.ID)
			return nil
		})
	},
}

var storageRemoveBucketCmd = &cobra.Command{
	Use:     "rb BUCKET_ID...",
	Aliases: []string{"remove", "rm"},
	Short:   "Remove storage buckets and all objects in them",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, storageFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		return removeEach(cmd, args, func(id string) error {
			bucketID, err := parseID(id)
			if err != nil {
				return err
			}
			_, err = rt.client.DeleteBucket(cmd.Context(), bucketID)
			return err
		})
	},
}

var storagePresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List available storage tariffs",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(storageFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetStoragePresets(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "storages_presets", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "LOCATION", "DISK", "PRICE")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "location"),
					output.Str(rec, "disk"),
					output.Str(rec, "price"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var storageUserCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage storage users",
}

var storageUserListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List storage users",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetStorageUsers(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "users", nil)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "ACCESS KEY")
			for _, rec := range records {
				tbl.Row(output.Str(rec, "id"), output.Str(rec, "access_key"))
			}
			tbl.Render(w)
			return nil
		})
	},
}

var storageUserSecretCmd = &cobra.Command{
	Use:   "secret USER_ID SECRET_KEY",
	Short: "Set a new secret key for a storage user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		userID, err := parseID(args[0])
		if err != nil {
			return err
		}
		if _, err := rt.client.UpdateStorageUserSecret(cmd.Context(), userID, args[1]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[0])
		return nil
	},
}

var storageSubdomainCmd = &cobra.Command{
	Use:   "subdomain",
	Short: "Manage bucket custom domains",
}

var storageSubdomainListCmd = &cobra.Command{
	Use:     "list BUCKET_ID",
	Aliases: []string{"ls"},
	Short:   "List bucket custom domains",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		bucketID, err := parseID(args[0])
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetBucketSubdomains(cmd.Context(), bucketID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "subdomains", nil)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "SUBDOMAIN", "STATUS", "CERT")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "subdomain"),
					output.Str(rec, "status"),
					output.Str(rec, "cert_released"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var storageSubdomainAddCmd = &cobra.Command{
	Use:   "add BUCKET_ID SUBDOMAIN...",
	Short: "Attach custom domains to a bucket",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		bucketID, err := parseID(args[0])
		if err != nil {
			return err
		}
		if _, err := rt.client.AddBucketSubdomains(cmd.Context(), bucketID, args[1:]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[0])
		return nil
	},
}

var storageSubdomainRemoveCmd = &cobra.Command{
	Use:     "remove BUCKET_ID SUBDOMAIN...",
	Aliases: []string{"rm"},
	Short:   "Detach custom domains from a bucket",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, storageFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		bucketID, err := parseID(args[0])
		if err != nil {
			return err
		}
		if _, err := rt.client.DeleteBucketSubdomains(cmd.Context(), bucketID, args[1:]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[0])
		return nil
	},
}

var storageSubdomainCertCmd = &cobra.Command{
	Use:   "gen-cert SUBDOMAIN",
	Short: "Request a TLS certificate for a bucket subdomain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		if _, err := rt.client.GenBucketSubdomainCert(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[0])
		return nil
	},
}

var storageTransferCmd = &cobra.Command{
	Use:   "transfer SRC_BUCKET DST_BUCKET",
	Short: "Copy objects from a foreign S3-compatible storage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, err = rt.client.StartStorageTransfer(cmd.Context(), args[0], args[1],
			storageFlags.accessKey, storageFlags.secretKey, storageFlags.endpoint, storageFlags.pathStyle)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[1])
		return nil
	},
}

var storageTransferStatusCmd = &cobra.Command{
	Use:   "transfer-status BUCKET_ID",
	Short: "Report the progress of an inbound bucket transfer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		bucketID, err := parseID(args[0])
		if err != nil {
			return err
		}
		resp, err := rt.client.GetStorageTransferStatus(cmd.Context(), bucketID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			_, err := w.Write(append(resp.Body, '\n'))
			return err
		})
	},
}

var storageFlags struct {
	filter    string
	yes       bool
	presetID  int
	public    bool
	accessKey string
	secretKey string
	endpoint  string
	pathStyle bool
}

func init() {
	rootCmd.AddCommand(storageCmd)

	storageCmd.AddCommand(storageListCmd)
	storageCmd.AddCommand(storageMakeBucketCmd)
	storageCmd.AddCommand(storageSetCmd)
	storageCmd.AddCommand(storageRemoveBucketCmd)
	storageCmd.AddCommand(storagePresetsCmd)
	storageCmd.AddCommand(storageUserCmd)
	storageCmd.AddCommand(storageSubdomainCmd)
	storageCmd.AddCommand(storageTransferCmd)
	storageCmd.AddCommand(storageTransferStatusCmd)

	storageUserCmd.AddCommand(storageUserListCmd)
	storageUserCmd.AddCommand(storageUserSecretCmd)

	storageSubdomainCmd.AddCommand(storageSubdomainListCmd)
	storageSubdomainCmd.AddCommand(storageSubdomainAddCmd)
	storageSubdomainCmd.AddCommand(storageSubdomainRemoveCmd)
	storageSubdomainCmd.AddCommand(storageSubdomainCertCmd)

	storageListCmd.Flags().StringVarP(&storageFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	storagePresetsCmd.Flags().StringVarP(&storageFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")

	storageMakeBucketCmd.Flags().IntVar(&storageFlags.presetID, "preset-id", 0, "Storage tariff ID")
	storageMakeBucketCmd.Flags().BoolVar(&storageFlags.public, "public", false, "Make the bucket public")
	_ = storageMakeBucketCmd.MarkFlagRequired("preset-id")

	storageSetCmd.Flags().IntVar(&storageFlags.presetID, "preset-id", 0, "Storage tariff ID")
	storageSetCmd.Flags().BoolVar(&storageFlags.public, "public", false, "Make the bucket public")

	storageRemoveBucketCmd.Flags().BoolVarP(&storageFlags.yes, "yes", "y", false, "Do not ask for confirmation")
	storageSubdomainRemoveCmd.Flags().BoolVarP(&storageFlags.yes, "yes", "y", false, "Do not ask for confirmation")

	storageTransferCmd.Flags().StringVar(&storageFlags.accessKey, "access-key", "", "Foreign storage access key")
	storageTransferCmd.Flags().StringVar(&storageFlags.secretKey, "secret-key", "", "Foreign storage secret key")
	storageTransferCmd.Flags().StringVar(&storageFlags.endpoint, "endpoint", "", "Foreign storage endpoint URL")
	storageTransferCmd.Flags().BoolVar(&storageFlags.pathStyle, "force-path-style", false, "Use path-style bucket addressing")
	_ = storageTransferCmd.MarkFlagRequired("access-key")
	_ = storageTransferCmd.MarkFlagRequired("secret-key")
	_ = storageTransferCmd.MarkFlagRequired("endpoint")
}
