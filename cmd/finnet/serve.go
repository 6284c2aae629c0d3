package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/finnet/internal/api"
	"github.com/Veraticus/finnet/internal/certs"
	"github.com/Veraticus/finnet/internal/cli"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the review API for the compliance dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			rps, _ := cmd.Flags().GetFloat64("rate")
			useTLS, _ := cmd.Flags().GetBool("tls")
			certDir, _ := cmd.Flags().GetString("cert-dir")

			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			store, err := openStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Shutting down review API.")
			ctx, stop := interrupts.HandleInterrupts(cmd.Context())
			defer stop()

			apiCfg := api.Config{RequestsPerSecond: rps, Burst: 30}
			if useTLS {
				if certDir == "" {
					home, err := os.UserHomeDir()
					if err != nil {
						return fmt.Errorf("failed to resolve home directory: %w", err)
					}
					certDir = filepath.Join(home, ".config", "finnet", "certs")
				}
				apiCfg.TLS, err = certs.NewStore(certDir).TLSConfig()
				if err != nil {
					return fmt.Errorf("failed to prepare TLS certificate: %w", err)
				}
			}

			srv := api.NewServer(store, apiCfg, nil)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default: server.addr)")
	cmd.Flags().Float64("rate", 10, "requests per second allowed; 0 disables limiting")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed localhost certificate")
	cmd.Flags().String("cert-dir", "", "certificate directory (default: $HOME/.config/finnet/certs)")

	return cmd
}
