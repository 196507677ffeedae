package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/atrium-dev/atrium/internal/client"
)

// NewProjectsCmd creates the projects command group
func NewProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects",
	}

	cmd.AddCommand(newProjectsListCmd())
	cmd.AddCommand(newProjectsCreateCmd())
	cmd.AddCommand(newProjectsCapacityCmd())
	cmd.AddCommand(newProjectsDeleteCmd())

	return cmd
}

func newProjectsListCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List your projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectsList(serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")

	return cmd
}

func runProjectsList(serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAuth(ctx); err != nil {
		return err
	}

	projects, err := ws.api.ListProjects(ctx)
	if err != nil {
		return err
	}

	if len(projects) == 0 {
		fmt.Println("No projects found.")
		fmt.Println("\nCreate one with: atrium projects create <name>")
		return nil
	}

	fmt.Printf("Projects on %s:\n\n", ws.server.Alias)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
	fmt.Fprintln(w, "──\t────\t───────────")

	for _, project := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\n", project.ID, project.Name, project.Description)
	}

	w.Flush()

	return nil
}

func newProjectsCreateCmd() *cobra.Command {
	var serverAlias, description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectsCreate(args[0], description, serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")
	cmd.Flags().StringVar(&description, "description", "", "Project description")

	return cmd
}

func runProjectsCreate(name, description, serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAuth(ctx); err != nil {
		return err
	}

	project, err := ws.api.CreateProject(ctx, client.CreateProjectRequest{
		Name:        name,
		Description: description,
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Created project %s (%s)\n", project.Name, project.ID)
	return nil
}

func newProjectsCapacityCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "capacity <project-id>",
		Short: "Show a project's document count and storage usage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectsCapacity(args[0], serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")

	return cmd
}

func runProjectsCapacity(projectID, serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAuth(ctx); err != nil {
		return err
	}

	capacity, err := ws.api.GetCapacity(ctx, projectID)
	if err != nil {
		return err
	}

	fmt.Printf("Documents: %d / %d\n", capacity.DocumentCount, capacity.DocumentLimit)
	fmt.Printf("Storage:   %d / %d bytes\n", capacity.UsedBytes, capacity.ByteLimit)

	return nil
}

func newProjectsDeleteCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "rm <project-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a project and everything in it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectsDelete(args[0], serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")

	return cmd
}

func runProjectsDelete(projectID, serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAuth(ctx); err != nil {
		return err
	}

	if err := ws.api.DeleteProject(ctx, projectID); err != nil {
		return err
	}

	fmt.Printf("✓ Deleted project %s\n", projectID)
	return nil
}
