// File: mcptools/server.go
package mcptools

import (
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"slotify/services/scheduling"
	"slotify/services/session"
)

const serverVersion = "1.0.0"

// NewServer builds the MCP server with the scheduling tools registered.
func NewServer(engine scheduling.SchedulingEngine, sessions session.Store) (*mcpserver.MCPServer, error) {
	s := mcpserver.NewMCPServer("slotify-scheduling", serverVersion,
		mcpserver.WithToolCapabilities(true),
	)
	if err := RegisterSchedulingTools(s, engine, sessions); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSSEHTTPServer wraps the MCP server in its SSE transport on addr. The
// returned http.Server routes /sse and /message; no write timeout is set
// because SSE connections are long-lived.
func NewSSEHTTPServer(mcpSrv *mcpserver.MCPServer, addr string) *http.Server {
	sse := mcpserver.NewSSEServer(mcpSrv,
		mcpserver.WithSSEEndpoint("/sse"),
		mcpserver.WithMessageEndpoint("/message"),
	)

	return &http.Server{
		Addr:              addr,
		Handler:           sse,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
