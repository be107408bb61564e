package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/nimbuscloud/nimbus-cli/internal/output"
	"github.com/nimbuscloud/nimbus-cli/internal/poll"
	"github.com/nimbuscloud/nimbus-cli/pkg/api"
)

var imageCmd = &cobra.Command{
	Use:     "image",
	Aliases: []string{"images", "i"},
	Short:   "Manage disk images",
}

func waitImageStatus(ctx context.Context, client *api.Client, imageID, status string) error {
	_, err := poll.Waiter{
		Fetch: func(ctx context.Context) (string, error) {
			img, _, err := client.GetImage(ctx, imageID)
			if err != nil {
				return "", err
			}
			return img.Status, nil
		},
		Target:   []string{status},
		Interval: waitInterval,
		MaxWait:  waitTimeout,
	}.Wait(ctx)
	return err
}

var imageListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List disk images",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(imageFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetImages(cmd.Context(), imageFlags.limit, 0)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "images", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "STATUS", "OS", "LOCATION", "SIZE")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "name"),
					output.Str(rec, "status"),
					output.Str(rec, "os"),
					output.Str(rec, "location"),
					output.Str(rec, "size"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var imageGetCmd = &cobra.Command{
	Use:   "get IMAGE_ID",
	Short: "Get disk image details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		img, resp, err := rt.client.GetImage(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if imageFlags.status {
			return statusCheck(cmd, img.Status, api.ImageStatusCreated)
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "STATUS", "OS", "LOCATION", "SIZE")
			tbl.Row(img.ID, img.Name, img.Status, img.OS, img.Location, img.Size)
			tbl.Render(w)
			return nil
		})
	},
}

var imageCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a disk image from a server disk or external URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		img, resp, err := rt.client.CreateImage(cmd.Context(), api.CreateImageRequest{
			DiskID:      imageFlags.diskID,
			UploadURL:   imageFlags.uploadURL,
			Name:        imageFlags.name,
			Description: imageFlags.description,
			OSType:      imageFlags.osType,
			Location:    api.Region(imageFlags.location),
		})
		if err != nil {
			return err
		}
		if imageFlags.wait {
			if err := waitImageStatus(cmd.Context(), rt.client, img.ID, api.ImageStatusCreated); err != nil {
				return err
			}
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, img.ID)
			return nil
		})
	},
}

var imageUploadCmd = &cobra.Command{
	Use:   "upload IMAGE_ID FILE",
	Short: "Upload a local file into an image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return err
		}

		var src io.Reader = f
		if !imageFlags.quiet {
			bar := pb.Full.Start64(info.Size())
			bar.Set(pb.Bytes, true)
			defer bar.Finish()
			src = bar.NewProxyReader(f)
		}
		if _, err := rt.client.UploadImage(cmd.Context(), args[0], src, info.Size(), filepath.Base(args[1])); err != nil {
			return err
		}
		if imageFlags.wait {
			if err := waitImageStatus(cmd.Context(), rt.client, args[0], api.ImageStatusCreated); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[0])
		return nil
	},
}

var imageSetCmd = &cobra.Command{
	Use:   "set IMAGE_ID",
	Short: "Change image name or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		img, resp, err := rt.client.UpdateImage(cmd.Context(), args[0], imageFlags.name, imageFlags.description)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, img.ID)
			return nil
		})
	},
}

var imageRemoveCmd = &cobra.Command{
	Use:     "remove IMAGE_ID...",
	Aliases: []string{"rm"},
	Short:   "Remove disk images",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, imageFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		return removeEach(cmd, args, func(id string) error {
			_, err := rt.client.DeleteImage(cmd.Context(), id)
			return err
		})
	},
}

var imageFlags struct {
	filter      string
	limit       int
	status      bool
	wait        bool
	yes         bool
	quiet       bool
	name        string
	description string
	diskID      int
	uploadURL   string
	osType      string
	location    string
}

func init() {
	rootCmd.AddCommand(imageCmd)

	imageCmd.AddCommand(imageListCmd)
	imageCmd.AddCommand(imageGetCmd)
	imageCmd.AddCommand(imageCreateCmd)
	imageCmd.AddCommand(imageUploadCmd)
	imageCmd.AddCommand(imageSetCmd)
	imageCmd.AddCommand(imageRemoveCmd)

	imageListCmd.Flags().StringVarP(&imageFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	imageListCmd.Flags().IntVar(&imageFlags.limit, "limit", 100, "Items per page")

	imageGetCmd.Flags().BoolVar(&imageFlags.status, "status", false, "Print status and exit 0 if the image is created")

	imageCreateCmd.Flags().IntVar(&imageFlags.diskID, "disk-id", 0, "Source server disk ID")
	imageCreateCmd.Flags().StringVar(&imageFlags.uploadURL, "upload-url", "", "External URL to pull the image from")
	imageCreateCmd.Flags().StringVar(&imageFlags.name, "name", "", "Image name")
	imageCreateCmd.Flags().StringVar(&imageFlags.description, "description", "", "Image description")
	imageCreateCmd.Flags().StringVar(&imageFlags.osType, "os", "", "Image OS type, for example linux")
	imageCreateCmd.Flags().StringVar(&imageFlags.location, "location", "", "Region, for example eu-1")
	imageCreateCmd.Flags().BoolVar(&imageFlags.wait, "wait", false, "Wait until the image is created")
	imageCreateCmd.MarkFlagsMutuallyExclusive("disk-id", "upload-url")

	imageUploadCmd.Flags().BoolVarP(&imageFlags.quiet, "quiet", "q", false, "Do not show a progress bar")
	imageUploadCmd.Flags().BoolVar(&imageFlags.wait, "wait", false, "Wait until the image is created")

	imageSetCmd.Flags().StringVar(&imageFlags.name, "name", "", "Image name")
	imageSetCmd.Flags().StringVar(&imageFlags.description, "description", "", "Image description")

	imageRemoveCmd.Flags().BoolVarP(&imageFlags.yes, "yes", "y", false, "Do not ask for confirmation")
}
