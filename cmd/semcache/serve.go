package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/semcache-ai/semcache/pkg/config"
	"github.com/semcache-ai/semcache/pkg/engine"
	"github.com/semcache-ai/semcache/pkg/llm/openai"
	"github.com/semcache-ai/semcache/pkg/server"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the semantic cache API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			apiKey := os.Getenv(cfg.OpenAI.APIKeyEnv)
			if apiKey == "" {
				return fmt.Errorf("no API key in $%s", cfg.OpenAI.APIKeyEnv)
			}

			st, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("init store: %w", err)
			}
			defer func() { _ = st.Close() }()

			client := openai.New(cfg.OpenAI, apiKey)
			eng := engine.New(cfg.Cache, st, client)
			srv := server.New(cfg, eng)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Printf("starting semcache with config: %s (store: %s)", configPath, cfg.Store.Backend)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "semcache.yaml", "path to config file")
	return cmd
}
