package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/toolhouse/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts Toolhouse as an MCP Server so AI agents (like Claude Desktop) can
call its tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		if transport != "stdio" && transport != "sse" {
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}

		host, logger, err := newServer(cmd)
		if err != nil {
			return err
		}
		defer host.Close()

		srv, err := mcp.NewServer(host.Registry,
			mcp.WithLogger(logger),
			mcp.WithMetricsHandler(host.MetricsHandler()),
		)
		if err != nil {
			return err
		}

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("Starting Toolhouse MCP Server (Stdio)...", "tools", len(host.Registry.List()))
			if err := srv.ServeStdio(); err != nil {
				return fmt.Errorf("mcp server execution failed: %w", err)
			}
		case "sse":
			logger.Info("Starting Toolhouse MCP Server (SSE)", "port", port, "tools", len(host.Registry.List()))

			// Create a context that cancels on interrupt signal
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil {
				return fmt.Errorf("mcp server execution failed: %w", err)
			}
			logger.Info("MCP Server stopped gracefully")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
