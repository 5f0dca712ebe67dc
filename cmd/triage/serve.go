package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/metalagman/triage/internal/app"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, dashboard and MCP endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			a := app.New(cfg, version)
			if err := a.Err(); err != nil {
				return err
			}

			startCtx, cancel := context.WithTimeout(cmd.Context(), a.StartTimeout())
			defer cancel()
			if err := a.Start(startCtx); err != nil {
				return err
			}

			select {
			case sig := <-a.Wait():
				log.Info().Str("signal", sig.Signal.String()).Msg("shutting down")
			case <-cmd.Context().Done():
				log.Info().Msg("shutting down")
			}

			stopCtx, stopCancel := context.WithTimeout(context.Background(), a.StopTimeout())
			defer stopCancel()
			return a.Stop(stopCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}
