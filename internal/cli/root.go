package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fedipage/fedipage/internal/config"
	"github.com/fedipage/fedipage/internal/logging"
	"github.com/fedipage/fedipage/internal/mastodon"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root command. It loads the configuration, applies
// the global flag overrides, sets up logging with a trace ID and wires the
// subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:           "fedipage",
		Short:         "Page through Mastodon account lists",
		Long:          "fedipage loads following and follower lists page by page, in the terminal or as table, JSON or YAML.",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			if err := config.InitGlobalConfig(configPath); err != nil {
				cmd.PrintErrf("Warning: could not load configuration, using defaults: %v\n", err)
			}
			if err := applyGlobalFlags(cmd, config.GetGlobalConfig()); err != nil {
				return err
			}

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file (default $FEDIPAGE_HOME/config.yaml or ~/.fedipage/config.yaml)")
	cmd.PersistentFlags().String("instance", "", "server URL, e.g. https://mastodon.social (overrides config and env)")
	cmd.PersistentFlags().String("token", "", "access token (overrides config and env)")

	cmd.AddCommand(
		NewAccountListCmd(mastodon.ListFollowing),
		NewAccountListCmd(mastodon.ListFollowers),
		NewInstanceCmd(),
		newConfigCmd(),
		newCacheCmd(),
	)
	return cmd
}

const rootCmdExample = `  # List who an account follows
  fedipage following alice@mastodon.social --instance https://mastodon.social

  # List your own followers as JSON, most followed first
  fedipage followers me --output json --sort followers:desc

  # Browse a list interactively
  fedipage following me --interactive

  # Show server information
  fedipage instance

  # Initialize and edit configuration
  fedipage config init
  fedipage config set instance.url https://mastodon.social`

// applyGlobalFlags copies --instance and --token onto cfg.
func applyGlobalFlags(cmd *cobra.Command, cfg *config.Config) error {
	for flag, key := range map[string]string{"instance": "instance.url", "token": "instance.token"} {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		v, _ := cmd.Flags().GetString(flag)
		if err := cfg.Set(key, v); err != nil {
			return fmt.Errorf("--%s: %w", flag, err)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(), NewConfigSetCmd(), NewConfigGetCmd(),
		NewConfigListCmd(), NewConfigValidateCmd(),
	)
	return cmd
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Local record store commands"}
	cmd.AddCommand(NewCacheStatsCmd(), NewCacheClearCmd(), NewCachePruneCmd())
	return cmd
}
