package commands

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/atrium-dev/atrium/internal/session"
)

// NewSignupCmd creates the signup command
func NewSignupCmd() *cobra.Command {
	var email, password, fullName, serverAlias string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignup(email, password, fullName, serverAlias)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().StringVar(&fullName, "name", "", "Full name")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")

	return cmd
}

func runSignup(email, password, fullName, serverAlias string) error {
	if email == "" {
		return fmt.Errorf("email is required (use --email flag)")
	}

	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println()
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag)")
		}
	}

	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	err = ws.session.Signup(cmdContext(), session.Registration{
		Email:    email,
		Password: password,
		FullName: fullName,
	})
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}

	fmt.Println("✓ Account created.")
	return nil
}
