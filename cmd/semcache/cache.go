package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/semcache-ai/semcache/pkg/config"
)

func newCacheCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the answer cache",
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			stats, err := st.Stats(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("Backend: %s\nEntries: %d\n", cfg.Store.Backend, stats.Entries)
			return nil
		},
	}

	var expiredOnly bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cache entries",
		Long: `Clear cache entries.

The engine never evicts on its own — expired entries stay stored and are
only filtered out of matching. Run with --expired to reclaim that space.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			removed, err := st.Purge(context.Background(), expiredOnly)
			if err != nil {
				return err
			}
			if expiredOnly {
				fmt.Printf("Removed %d expired entries.\n", removed)
			} else {
				fmt.Printf("Removed %d entries.\n", removed)
			}
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&expiredOnly, "expired", false, "only clear expired entries")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "semcache.yaml", "path to config file")
	cmd.AddCommand(statsCmd, clearCmd)
	return cmd
}
