package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fedipage/fedipage/internal/config"
)

// NewConfigSetCmd creates the config set command.
func NewConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Sets a dotted configuration key and saves the file. Valid keys:\n  " + strings.Join(config.Keys(), "\n  "),
		Example: `  fedipage config set instance.url https://mastodon.social
  fedipage config set paging.page_size 80
  fedipage config set paging.retry_delay 5s`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(configPath(cmd))
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			shown, _ := cfg.Get(args[0])
			if args[0] == "instance.token" {
				shown = config.MaskSecret(shown)
			}
			cmd.Printf("Set %s = %s\n", args[0], shown)
			return nil
		},
	}
}

// NewConfigGetCmd creates the config get command.
func NewConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <key>",
		Short:   "Print a configuration value",
		Example: `  fedipage config get paging.page_size`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.GetGlobalConfig().Get(args[0])
			if err != nil {
				return err
			}
			cmd.Println(v)
			return nil
		},
	}
}

// NewConfigListCmd creates the config list command.
func NewConfigListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long:  "Lists every key with its effective value, after environment and flag overrides. The token is masked.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			values := cfg.List()

			switch strings.ToLower(output) {
			case "", OutputTable:
				keys := make([]string, 0, len(values))
				for k := range values {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					cmd.Printf("%s = %s\n", k, values[k])
				}
				return nil
			case OutputJSON, OutputYAML:
				return renderValues(cmd.OutOrStdout(), strings.ToLower(output), values)
			default:
				return fmt.Errorf("unsupported output format %q (use table, json or yaml)", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: table, json or yaml")
	return cmd
}

// NewConfigValidateCmd creates the config validate command.
func NewConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Checks the configuration file, with environment and flag overrides applied:
URL syntax, page size and retry delay bounds, store settings, output format
and logging settings. Every problem found is reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.GlobalConfigError(); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			cfg := config.GetGlobalConfig()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			cmd.Printf("Configuration is valid (%s)\n", cfg.Path())
			return nil
		},
	}
}
