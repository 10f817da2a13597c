// Package mcp exposes the engine to agent hosts over the Model Context
// Protocol, on stdio or SSE.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	forager "github.com/aretw0/forager"
	"github.com/aretw0/forager/internal/presentation/graph"
	"github.com/aretw0/forager/pkg/domain"
	"github.com/aretw0/forager/pkg/plan"
)

// RecommendResponse is the structured result of the recommend tool.
type RecommendResponse struct {
	SessionID string          `json:"session_id" jsonschema_description:"Session ID for replaying this result"`
	Envelope  domain.Envelope `json:"envelope" jsonschema_description:"Ranked offers, scoring and explanation"`
}

// Engine is the surface the MCP tools need.
type Engine interface {
	Recommend(ctx context.Context, query string, rc domain.RunContext) (*domain.SessionRecord, error)
	Session(ctx context.Context, sessionID string) (*domain.SessionRecord, error)
	Sessions(ctx context.Context) ([]string, error)
	Plan() plan.Plan
}

// Server wraps the engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server over the engine.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("forager-mcp", forager.Version),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE, shutting
// down gracefully when ctx is canceled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
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

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	recommendTool := mcp.NewTool("recommend",
		mcp.WithDescription("Search marketplace offers for a query, rank them by weighted criteria and explain the winner."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural-language shopping query")),
		mcp.WithNumber("top_k", mcp.Description("Maximum offers to consider (optional)")),
		mcp.WithString("criteria", mcp.Description("JSON array of {name, weight, maximize} overriding the default criteria (optional)")),
		mcp.WithOutputSchema[RecommendResponse](),
	)
	s.mcpServer.AddTool(recommendTool, mcp.NewStructuredToolHandler(s.handleRecommend))

	sessionTool := mcp.NewTool("get_session",
		mcp.WithDescription("Replay a stored recommendation session by ID, including the step-by-step audit log."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID returned by recommend")),
	)
	s.mcpServer.AddTool(sessionTool, s.handleGetSession)

	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List stored recommendation session IDs."),
	), s.handleListSessions)

	s.mcpServer.AddTool(mcp.NewTool("get_plan",
		mcp.WithDescription("Get the engine's execution plan as a Mermaid flowchart."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(graph.GenerateMermaid(s.engine.Plan())), nil
	})
}

func (s *Server) handleRecommend(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RecommendResponse, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return RecommendResponse{}, fmt.Errorf("query is required")
	}

	rc := domain.RunContext{}
	if v, ok := args["top_k"].(float64); ok {
		rc.TopK = int(v)
	}
	if raw, ok := args["criteria"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &rc.Criteria); err != nil {
			return RecommendResponse{}, fmt.Errorf("invalid criteria: %w", err)
		}
	}

	record, err := s.engine.Recommend(ctx, query, rc)
	if err != nil {
		return RecommendResponse{}, fmt.Errorf("recommend failed: %w", err)
	}
	return RecommendResponse{
		SessionID: record.SessionID,
		Envelope:  record.Envelope,
	}, nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session_id", "")
	record, err := s.engine.Session(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("session lookup failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(record)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.engine.Sessions(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(ids)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
