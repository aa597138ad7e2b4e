package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sellerping/sellerping/internal/avito"
	"github.com/sellerping/sellerping/internal/boot"
	"github.com/sellerping/sellerping/internal/config"
	"github.com/sellerping/sellerping/internal/logger"
	"github.com/sellerping/sellerping/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:   "sellerping",
		Short: "Relay Avito messenger events to an operator chat with optional auto-reply",
	}

	var configPath string
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.toml (defaults to ./config.toml)")

	root.AddCommand(newServeCommand(&configPath))
	root.AddCommand(newRegisterCommand(&configPath))
	root.AddCommand(newVersionCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sellerping %s\n", version.GetInfo())
		},
	}
}

// newRegisterCommand performs the one-shot webhook registration from the CLI,
// for deployments where hitting GET /setup/register is inconvenient.
func newRegisterCommand(configPath *string) *cobra.Command {
	var callbackURL string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register the public callback URL with the upstream messenger API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			rc, err := boot.ProvideRuntimeConfig(cfg)
			if err != nil {
				return err
			}
			logger.Init(cfg.Log.Level, cfg.Log.Format)

			tokens := avito.NewClientCredentials(logger.L, rc.AvitoClientID, rc.AvitoClientSecret, rc.AvitoTokenURL, nil)
			client := avito.NewClient(logger.L, rc.AvitoBaseURL, tokens, nil, nil)

			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			report, err := client.RegisterWebhook(ctx, callbackURL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
			return nil
		},
	}

	cmd.Flags().StringVar(&callbackURL, "url", "", "public callback URL (e.g. https://relay.example.com/webhook/message)")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}
