package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and discard the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")

	return cmd
}

func runLogout(serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	// Logout always succeeds locally, even if the server is unreachable
	ws.session.Logout(cmdContext())

	if err := ws.persistSession(); err != nil {
		return fmt.Errorf("failed to discard stored session: %w", err)
	}

	fmt.Println("✓ Signed out.")
	return nil
}
