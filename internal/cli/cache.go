package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fedipage/fedipage/internal/config"
	"github.com/fedipage/fedipage/internal/store"
	"github.com/fedipage/fedipage/internal/tui"
)

const bytesPerKB = 1024

// NewCacheStatsCmd creates the cache stats command.
func NewCacheStatsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show record store usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			format, err := resolveFormat(output, cfg)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			if !st.IsEnabled() {
				cmd.Println("Record store is disabled")
				return nil
			}

			stats, err := st.Stats()
			if err != nil {
				return fmt.Errorf("reading record store: %w", err)
			}

			if format != OutputTable {
				values := map[string]string{
					"directory":   stats.Directory,
					"entries":     fmt.Sprint(stats.Entries),
					"expired":     fmt.Sprint(stats.Expired),
					"size_bytes":  fmt.Sprint(stats.SizeBytes),
					"ttl_seconds": fmt.Sprint(stats.TTLSeconds),
					"max_size_mb": fmt.Sprint(stats.MaxSizeMB),
				}
				return renderValues(cmd.OutOrStdout(), format, values)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, tabPadding, ' ', 0)
			fmt.Fprintf(tw, "Directory:\t%s\n", stats.Directory)
			fmt.Fprintf(tw, "Entries:\t%s (%d expired)\n", tui.FormatCount(stats.Entries, "record"), stats.Expired)
			fmt.Fprintf(tw, "Size:\t%d KB\n", stats.SizeBytes/bytesPerKB)
			fmt.Fprintf(tw, "TTL:\t%s\n", store.FormatDuration(time.Duration(stats.TTLSeconds)*time.Second))
			if stats.MaxSizeMB > 0 {
				fmt.Fprintf(tw, "Max size:\t%d MB\n", stats.MaxSizeMB)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: table, json or yaml (default from config)")
	return cmd
}

// NewCacheClearCmd creates the cache clear command.
func NewCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored page, relationship and account lookup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore(config.GetGlobalConfig())
			if err != nil {
				return err
			}
			n, err := st.Clear()
			if err != nil {
				return fmt.Errorf("clearing record store: %w", err)
			}
			cmd.Printf("Removed %s\n", tui.FormatCount(n, "record"))
			return nil
		},
	}
}

// NewCachePruneCmd creates the cache prune command.
func NewCachePruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete expired entries and enforce the size limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore(config.GetGlobalConfig())
			if err != nil {
				return err
			}
			n, err := st.Prune()
			if err != nil {
				return fmt.Errorf("pruning record store: %w", err)
			}
			cmd.Printf("Removed %s\n", tui.FormatCount(n, "record"))
			return nil
		},
	}
}
