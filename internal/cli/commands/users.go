package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewUsersCmd creates the users command group (superuser only)
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Administer user accounts (superuser only)",
	}

	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersDeleteCmd())

	return cmd
}

func newUsersListCmd() *cobra.Command {
	var serverAlias string
	var skip, limit int

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersList(serverAlias, skip, limit)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")
	cmd.Flags().IntVar(&skip, "skip", 0, "Number of users to skip")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of users to return")

	return cmd
}

func runUsersList(serverAlias string, skip, limit int) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAdmin(ctx); err != nil {
		return err
	}

	page, err := ws.api.ListUsers(ctx, skip, limit)
	if err != nil {
		return err
	}

	fmt.Printf("Users on %s (%d total):\n\n", ws.server.Alias, page.Count)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tACTIVE\tSUPERUSER")
	fmt.Fprintln(w, "──\t─────\t────\t──────\t─────────")

	for _, user := range page.Data {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%t\n",
			user.ID,
			user.Email,
			user.FullName,
			user.IsActive,
			user.IsSuperuser,
		)
	}

	w.Flush()

	return nil
}

func newUsersDeleteCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "rm <user-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a user account",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersDelete(args[0], serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")

	return cmd
}

func runUsersDelete(userID, serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAdmin(ctx); err != nil {
		return err
	}

	if err := ws.api.DeleteUser(ctx, userID); err != nil {
		return err
	}

	fmt.Printf("✓ Deleted user %s\n", userID)
	return nil
}
