package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/metalagman/triage/internal/mcpserver"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, closeFn, err := openService(ctx, true)
			if err != nil {
				return err
			}
			defer closeFn()

			log.Debug().Msg("serving mcp over stdio")
			return mcpserver.New(svc, version).ServeStdio(ctx)
		},
	}
}
