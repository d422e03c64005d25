package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagevoice/pagevoice/pkg/config"
	"github.com/pagevoice/pagevoice/pkg/gateway"
	"github.com/pagevoice/pagevoice/pkg/logger"
)

// newServeCmd runs the gateway HTTP server until interrupted.
func newServeCmd(loadCfg func() (*config.Config, error)) *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the narration web page and API",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadCfg()
			if err != nil {
				return err
			}
			if host != "" {
				cfg.Gateway.Host = host
			}
			if port != 0 {
				cfg.Gateway.Port = port
			}

			srv, err := gateway.NewServer(cfg)
			if err != nil {
				return fmt.Errorf("gateway setup: %w", err)
			}
			if err := srv.Start(); err != nil {
				return err
			}
			fmt.Printf("Serving on http://%s:%d (Ctrl-C to stop)\n", cfg.Gateway.Host, cfg.Gateway.Port)

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig

			logger.InfoC("main", "Shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "bind host (default from config)")
	cmd.Flags().IntVar(&port, "port", 0, "bind port (default from config)")

	return cmd
}
