package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fedipage/fedipage/internal/config"
	"github.com/fedipage/fedipage/internal/mastodon"
)

// NewInstanceCmd creates the instance command.
func NewInstanceCmd() *cobra.Command {
	var (
		output string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "instance",
		Short: "Show server information and version compatibility",
		Long: fmt.Sprintf(`Shows the configured server's name, software version and API level.

The v2 instance endpoint is tried first; servers without it are read from the
v1 endpoint. Servers older than %s are reported as incompatible.`, mastodon.MinServerVersion),
		Example: `  # Show the configured server
  fedipage instance

  # Another server, as JSON, failing when it is too old
  fedipage instance --instance https://example.social --output json --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			format, err := resolveFormat(output, cfg)
			if err != nil {
				return err
			}
			client, err := newClient(cmd, cfg)
			if err != nil {
				return err
			}

			inst, err := client.Instance(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching instance information: %w", err)
			}
			compatErr := mastodon.CheckCompatibility(inst)
			if err := renderInstance(cmd.OutOrStdout(), format, inst, compatErr); err != nil {
				return err
			}
			if strict && compatErr != nil {
				return compatErr
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: table, json or yaml (default from config)")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when the server is incompatible")
	return cmd
}
