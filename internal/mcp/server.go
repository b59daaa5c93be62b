package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/vivekkdagar/deepgrep/internal/engine"
	"github.com/vivekkdagar/deepgrep/internal/history"
	"github.com/vivekkdagar/deepgrep/internal/semantic"
)

const (
	// ServerName is the MCP server name
	ServerName = "deepgrep"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the history database
	DefaultDBPath = "~/.deepgrep"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	engine  *engine.Engine
	matcher *semantic.Matcher
	history history.Store
}

// NewServer creates a new MCP server instance
func NewServer(dbPath string) (*Server, error) {
	// Expand home directory if needed
	if dbPath == "" || dbPath == DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".deepgrep")
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dbFile := filepath.Join(dbPath, "deepgrep.db")

	store, err := history.NewSQLiteStore(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history store: %w", err)
	}

	emb, err := semantic.NewFromEnv()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	eng, err := engine.New(engine.DefaultConfig())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}

	matcher := semantic.NewMatcher(emb)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:     mcpServer,
		engine:  eng,
		matcher: matcher,
		history: store,
	}

	s.registerTools()

	return s, nil
}

// NewServerWithDeps wires a server from pre-built dependencies. Used by tests
// to substitute in-memory stores and offline embedders.
func NewServerWithDeps(eng *engine.Engine, matcher *semantic.Matcher, store history.Store) *Server {
	s := &Server{
		mcp:     server.NewMCPServer(ServerName, ServerVersion),
		engine:  eng,
		matcher: matcher,
		history: store,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		_ = s.matcher.Close()
		_ = s.history.Close()
	}()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchPatternTool(), s.handleSearchPattern)
	s.mcp.AddTool(searchSemanticTool(), s.handleSearchSemantic)
	s.mcp.AddTool(getHistoryTool(), s.handleGetHistory)
}
