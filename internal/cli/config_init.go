package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fedipage/fedipage/internal/config"
)

// configPath returns the file config commands read and write: --config, or
// the default location.
func configPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	return config.New().Path()
}

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a configuration file with default values at
$FEDIPAGE_HOME/config.yaml (default ~/.fedipage/config.yaml), or at --config.`,
		Example: `  # Create configuration
  fedipage config init

  # Overwrite an existing file
  fedipage config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.New()
			cfg.SetPath(configPath(cmd))

			if !force {
				_, err := os.Stat(cfg.Path())
				if err == nil {
					return errors.New("configuration file already exists, use --force to overwrite")
				}
				if !os.IsNotExist(err) {
					return fmt.Errorf("cannot access config path %s: %w", cfg.Path(), err)
				}
			}

			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			cmd.Printf("Configuration initialized successfully\n")
			cmd.Printf("Configuration file: %s\n", cfg.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	return cmd
}
