package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shakram02/go-sqlplus-mcp/internal/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Writes the default configuration to the --config path. Connection
settings are left empty; fill them in or set the SQLPLUS_* variables.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeDefaultConfig(configPath, forceInit)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}

// writeDefaultConfig never writes environment overrides, so secrets taken
// from SQLPLUS_PASSWORD stay out of the file.
func writeDefaultConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	logger.Info("Configuration written")
	return nil
}
