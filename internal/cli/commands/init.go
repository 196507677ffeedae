package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/atrium-dev/atrium/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an atrium.json configuration file in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit()
		},
	}
}

func runInit() error {
	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(currentDir, config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists in this directory", config.ConfigFileName)
	}

	if err := config.Save(configPath, config.DefaultConfig()); err != nil {
		return err
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("Edit it to point at your Atrium server, then run 'atrium login'.")

	return nil
}
