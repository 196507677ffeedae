package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the currently signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")

	return cmd
}

func runWhoami(serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAuth(ctx); err != nil {
		return err
	}

	sess := ws.session.CurrentSession(ctx)
	user := sess.User

	fmt.Printf("Server: %s (%s)\n", ws.server.Alias, ws.server.URL)
	fmt.Printf("User:   %s (%s)\n", user.FullName, user.Email)
	if user.IsSuperuser {
		fmt.Println("Role:   Superuser")
	}

	return nil
}
