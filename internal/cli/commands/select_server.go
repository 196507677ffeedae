package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atrium-dev/atrium/internal/cli/config"
	"github.com/atrium-dev/atrium/internal/cli/serverselect"
	"github.com/atrium-dev/atrium/internal/cli/userconfig"
)

// NewSelectServerCmd creates the select-server command
func NewSelectServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select-server [url-or-alias]",
		Short: "Choose which server subsequent commands talk to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			urlOrAlias := ""
			if len(args) > 0 {
				urlOrAlias = args[0]
			}
			return runSelectServer(urlOrAlias)
		},
	}
}

func runSelectServer(urlOrAlias string) error {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'atrium init' to create a configuration file", err)
	}

	var server *config.Server
	if urlOrAlias != "" {
		server, err = serverselect.GetServerByURLOrAlias(cfg, urlOrAlias)
		if err != nil {
			return err
		}
	} else {
		server, err = serverselect.PromptServerSelection(cfg)
		if err != nil {
			return err
		}
	}

	if err := userconfig.SetSelectedServer(server.URL); err != nil {
		return fmt.Errorf("failed to save selected server: %w", err)
	}

	fmt.Printf("✓ Selected server: %s (%s)\n", server.Alias, server.URL)
	return nil
}
