package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atrium-dev/atrium/internal/cli/commands"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "atrium",
	Short: "Atrium - Chat with your project documents",
	Long: `Atrium CLI - Manage projects, upload documents and chat with them.

Sign in once with 'atrium login'; the session is stored in your OS keychain
and reused until it expires or you run 'atrium logout'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("atrium version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewSignupCmd())
	rootCmd.AddCommand(commands.NewRecoverPasswordCmd())
	rootCmd.AddCommand(commands.NewResetPasswordCmd())
	rootCmd.AddCommand(commands.NewItemsCmd())
	rootCmd.AddCommand(commands.NewProjectsCmd())
	rootCmd.AddCommand(commands.NewDocumentsCmd())
	rootCmd.AddCommand(commands.NewChatCmd())
	rootCmd.AddCommand(commands.NewUsersCmd())
	rootCmd.AddCommand(commands.NewSelectServerCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
