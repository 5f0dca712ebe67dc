// Package mcpserver exposes task analysis as MCP tools.
package mcpserver

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/metalagman/triage/internal/analysis"
)

// Name is the MCP implementation name.
const Name = "triage"

// Server is the triage MCP server.
type Server struct {
	svc *analysis.Service
	mcp *mcp.Server
}

// New creates an MCP server with all tools registered.
func New(svc *analysis.Service, version string) *Server {
	s := &Server{
		svc: svc,
		mcp: mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil),
	}
	s.registerTools()
	return s
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Handler serves the tools over streamable HTTP.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil)
}

// ServeStdio serves the tools over stdin/stdout until ctx is done or the
// client disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
