package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/atrium-dev/atrium/internal/session"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password, serverAlias string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with an Atrium server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(email, password, serverAlias)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set ATRIUM_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set ATRIUM_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")

	return cmd
}

func runLogin(email, password, serverAlias string) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("ATRIUM_EMAIL")
	}
	if password == "" {
		password = os.Getenv("ATRIUM_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or ATRIUM_EMAIL env var)")
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		// Check if stdin is a terminal (not piped)
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println() // New line after password input
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or ATRIUM_PASSWORD env var)")
		}
	}

	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	fmt.Printf("Logging in to %s (%s)...\n", ws.server.Alias, ws.server.URL)

	sess, err := ws.session.Login(cmdContext(), session.Credentials{
		Username: email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := ws.persistSession(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s (%s)\n", sess.User.FullName, sess.User.Email)
	if sess.User.IsSuperuser {
		fmt.Println("  Role: Superuser")
	}

	return nil
}
