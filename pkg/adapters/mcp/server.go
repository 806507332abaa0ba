package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/toolhouse"
	"github.com/aretw0/toolhouse/internal/logging"
	"github.com/aretw0/toolhouse/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogURI is the resource listing every exposed tool as JSON.
const CatalogURI = "toolhouse://tools"

// Tools is the tool host the MCP server exposes.
type Tools interface {
	List() []domain.Tool
	Execute(ctx context.Context, name string, args map[string]any) (any, error)
}

// Server exposes a tool registry as an MCP Server.
type Server struct {
	tools     Tools
	mcpServer *server.MCPServer
	metrics   http.Handler
	logger    *slog.Logger
}

type Option func(*Server)

// WithMetricsHandler mounts h on /metrics when serving SSE.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(tools Tools, opts ...Option) (*Server, error) {
	s := &Server{
		tools:     tools,
		mcpServer: server.NewMCPServer(toolhouse.Name, strings.TrimSpace(toolhouse.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.registerTools(); err != nil {
		return nil, err
	}
	s.registerResources()
	return s, nil
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// Handler returns the SSE endpoints (and /metrics when configured) for a
// server reachable at baseURL.
func (s *Server) Handler(baseURL string) http.Handler {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return mux
}

// ServeSSE starts the server on the given port using SSE and shuts it down
// when ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(baseURL),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() error {
	for _, tool := range s.tools.List() {
		schema, err := json.Marshal(tool.Parameters)
		if err != nil {
			return fmt.Errorf("failed to marshal schema for %s: %w", tool.Name, err)
		}
		s.mcpServer.AddTool(
			mcp.NewToolWithRawSchema(tool.Name, tool.Description, schema),
			s.handler(tool.Name),
		)
	}
	return nil
}

// handler reports tool failures as error results so the caller sees the
// message; only an unknown tool is a protocol error.
func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := s.tools.Execute(ctx, name, request.GetArguments())
		if errors.Is(err, domain.ErrToolNotFound) {
			return nil, err
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if text, ok := out.(string); ok {
			return mcp.NewToolResultText(text), nil
		}
		jsonBytes, err := json.Marshal(out)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s result: %w", name, err)
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Tool Catalogue",
		mcp.WithResourceDescription("Every tool this server exposes, with its JSON Schema"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.tools.List())
		if err != nil {
			return nil, fmt.Errorf("failed to encode tool catalogue: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CatalogURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
