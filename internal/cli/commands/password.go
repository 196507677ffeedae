package commands

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewRecoverPasswordCmd creates the recover-password command
func NewRecoverPasswordCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "recover-password <email>",
		Short: "Request a password-reset token for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecoverPassword(args[0], serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")

	return cmd
}

func runRecoverPassword(email, serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	resp, err := ws.api.RecoverPassword(cmdContext(), email)
	if err != nil {
		return fmt.Errorf("password recovery failed: %w", err)
	}

	fmt.Println(resp.Message)
	return nil
}

// NewResetPasswordCmd creates the reset-password command
func NewResetPasswordCmd() *cobra.Command {
	var token, password, serverAlias string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password using a reset token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResetPassword(token, password, serverAlias)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Password-reset token")
	cmd.Flags().StringVar(&password, "password", "", "New password (will prompt if not provided)")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func runResetPassword(token, password, serverAlias string) error {
	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("New password: ")
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

	resp, err := ws.api.ResetPassword(cmdContext(), token, password)
	if err != nil {
		return fmt.Errorf("password reset failed: %w", err)
	}

	fmt.Println(resp.Message)
	return nil
}
