package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nimbuscloud/nimbus-cli/internal/output"
	"github.com/nimbuscloud/nimbus-cli/pkg/api"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects", "p"},
	Short:   "Manage projects",
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(projectFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetProjects(cmd.Context())
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "projects", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "DEFAULT", "DESCRIPTION")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "name"),
					output.Str(rec, "is_default"),
					output.Str(rec, "description"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var projectGetCmd = &cobra.Command{
	Use:   "get PROJECT_ID",
	Short: "Get project details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		projectID, err := parseID(args[0])
		if err != nil {
			return err
		}
		project, resp, err := rt.client.GetProject(cmd.Context(), projectID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "DEFAULT", "DESCRIPTION")
			tbl.Row(project.ID, project.Name, project.IsDefault, project.Description)
			tbl.Render(w)
			return nil
		})
	},
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		project, resp, err := rt.client.CreateProject(cmd.Context(),
			projectFlags.name, projectFlags.description, projectFlags.avatarID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, project.ID)
			return nil
		})
	},
}

var projectSetCmd = &cobra.Command{
	Use:   "set PROJECT_ID",
	Short: "Change project properties",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		projectID, err := parseID(args[0])
		if err != nil {
			return err
		}
		project, resp, err := rt.client.UpdateProject(cmd.Context(), projectID,
			projectFlags.name, projectFlags.description, projectFlags.avatarID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			fmt.Fprintln(w, project.ID)
			return nil
		})
	},
}

var projectRemoveCmd = &cobra.Command{
	Use:     "remove PROJECT_ID...",
	Aliases: []string{"rm"},
	Short:   "Remove projects. Their resources move to the default project",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(cmd, projectFlags.yes); err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		return removeEach(cmd, args, func(id string) error {
			projectID, err := parseID(id)
			if err != nil {
				return err
			}
			_, err = rt.client.DeleteProject(cmd.Context(), projectID)
			return err
		})
	},
}

var projectResourcesCmd = &cobra.Command{
	Use:   "resources PROJECT_ID",
	Short: "List resources in a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(projectFlags.filter)
		if err != nil {
			return err
		}
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		projectID, err := parseID(args[0])
		if err != nil {
			return err
		}
		_, resp, err := rt.client.GetProjectResources(cmd.Context(), projectID)
		if err != nil {
			return err
		}
		return rt.printer(cmd).Print(resp.Body, func(w io.Writer) error {
			records, err := output.Records(resp.Body, "resources", filters)
			if err != nil {
				return err
			}
			tbl := &output.Table{}
			tbl.Header("ID", "NAME", "TYPE", "LOCATION", "STATUS")
			for _, rec := range records {
				tbl.Row(
					output.Str(rec, "id"),
					output.Str(rec, "name"),
					output.Str(rec, "type"),
					output.Str(rec, "location"),
					output.Str(rec, "status"),
				)
			}
			tbl.Render(w)
			return nil
		})
	},
}

var projectMoveCmd = &cobra.Command{
	Use:   "move FROM_PROJECT_ID TO_PROJECT_ID RESOURCE_ID",
	Short: "Move a resource between projects",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		fromProject, toProject, err := parseTwoIDs(args[0], args[1])
		if err != nil {
			return err
		}
		resourceID, err := parseID(args[2])
		if err != nil {
			return err
		}
		resourceType := api.ResourceType(projectFlags.resourceType)
		if _, err := rt.client.MoveResourceToProject(cmd.Context(), fromProject, toProject, resourceID, resourceType); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[2])
		return nil
	},
}

var projectFlags struct {
	filter       string
	yes          bool
	name         string
	description  string
	avatarID     string
	resourceType string
}

func init() {
	rootCmd.AddCommand(projectCmd)

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectGetCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectSetCmd)
	projectCmd.AddCommand(projectRemoveCmd)
	projectCmd.AddCommand(projectResourcesCmd)
	projectCmd.AddCommand(projectMoveCmd)

	projectListCmd.Flags().StringVarP(&projectFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")
	projectResourcesCmd.Flags().StringVarP(&projectFlags.filter, "filter", "f", "", "Filter output: KEY:VALUE[,KEY:VALUE]")

	projectCreateCmd.Flags().StringVar(&projectFlags.name, "name", "", "Project name")
	projectCreateCmd.Flags().StringVar(&projectFlags.description, "description", "", "Project description")
	projectCreateCmd.Flags().StringVar(&projectFlags.avatarID, "avatar-id", "", "Avatar ID")
	_ = projectCreateCmd.MarkFlagRequired("name")

	projectSetCmd.Flags().StringVar(&projectFlags.name, "name", "", "Project name")
	projectSetCmd.Flags().StringVar(&projectFlags.description, "description", "", "Project description")
	projectSetCmd.Flags().StringVar(&projectFlags.avatarID, "avatar-id", "", "Avatar ID")

	projectMoveCmd.Flags().StringVar(&projectFlags.resourceType, "resource-type", "server", "Resource type: server, balancer, database, kubernetes or storage")

	projectRemoveCmd.Flags().BoolVarP(&projectFlags.yes, "yes", "y", false, "Do not ask for confirmation")
}
