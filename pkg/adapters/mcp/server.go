// Package mcp exposes the planner to AI agents as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/runner"
	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const catalogURI = "waypoint://catalog"

// Planner is the part of waypoint.Client the MCP server needs.
type Planner interface {
	Converse(ctx context.Context, id string, in waypoint.TurnInput) (*domain.TurnResponse, error)
	Conversation(ctx context.Context, id string) (*domain.Conversation, error)
	Catalog() *catalog.Catalog
}

// TurnResult is the structured output of plan_turn.
type TurnResult struct {
	ConversationID    string            `json:"conversation_id" jsonschema_description:"Conversation to pass to the next plan_turn call"`
	Message           string            `json:"message" jsonschema_description:"Reply to show the user"`
	Phase             domain.Phase      `json:"phase" jsonschema_description:"gathering, confirming, confirmed or error"`
	Domain            string            `json:"domain,omitempty"`
	Question          string            `json:"question,omitempty" jsonschema_description:"ID of the question asked by message"`
	Progress          domain.Progress   `json:"progress"`
	Draft             *domain.PlanDraft `json:"draft,omitempty" jsonschema_description:"Plan awaiting confirmation"`
	CreatedActivityID string            `json:"created_activity_id,omitempty"`
}

type planTurnArgs struct {
	ConversationID string `json:"conversation_id"`
	Input          string `json:"input"`
	Mode           string `json:"mode"`
	Domain         string `json:"domain"`
	Location       string `json:"location"`
}

// Server wraps a Planner and exposes it as an MCP server.
type Server struct {
	planner      Planner
	mcpServer    *server.MCPServer
	logger       *slog.Logger
	maxInputSize int
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger. It must not write to stdout when serving over stdio.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxInputSize overrides runner.DefaultMaxInputSize.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInputSize = n
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(p Planner, opts ...Option) *Server {
	s := &Server{
		planner:   p,
		mcpServer: server.NewMCPServer("waypoint-mcp", waypoint.Version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	allowAll := cors.AllowAll().Handler
	mux := http.NewServeMux()
	mux.Handle("/sse", allowAll(sseServer.SSEHandler()))
	mux.Handle("/message", allowAll(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
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

func (s *Server) registerTools() {
	planTool := mcp.NewTool("plan_turn",
		mcp.WithDescription("Send the user's message to the planning assistant and get its reply. "+
			"Reuse the same conversation_id for the whole conversation; reply \"yes\" to a draft to save it."),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Stable conversation identifier")),
		mcp.WithString("input", mcp.Description("What the user said (empty to open the conversation)")),
		mcp.WithString("mode", mcp.Enum(string(domain.ModeQuick), string(domain.ModeSmart)), mcp.Description("Question budget, fixed on the first turn")),
		mcp.WithString("domain", mcp.Description("Planning domain hint such as travel or event")),
		mcp.WithString("location", mcp.Description("The user's home location, used as the default starting point")),
		mcp.WithOutputSchema[TurnResult](),
	)
	s.mcpServer.AddTool(planTool, mcp.NewStructuredToolHandler(s.handlePlanTurn))

	s.mcpServer.AddTool(mcp.NewTool("get_conversation",
		mcp.WithDescription("Get the stored state of a conversation, including its slots and draft."),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation identifier")),
	), s.handleGetConversation)
}

func (s *Server) handlePlanTurn(ctx context.Context, request mcp.CallToolRequest, args planTurnArgs) (TurnResult, error) {
	if args.ConversationID == "" {
		return TurnResult{}, errors.New("conversation_id is required")
	}
	input := args.Input
	if input != "" {
		clean, err := runner.SanitizeInput(input, s.maxInputSize)
		if err != nil {
			s.logger.Warn("MCP plan_turn: Input rejected", "err", err, "size", len(input))
			return TurnResult{}, fmt.Errorf("input rejected: %w", err)
		}
		input = clean
	}

	in := waypoint.TurnInput{Input: input, Mode: domain.Mode(args.Mode), DomainHint: args.Domain}
	if args.Location != "" {
		in.Profile = &domain.UserProfile{Location: args.Location}
	}
	resp, err := s.planner.Converse(ctx, args.ConversationID, in)
	if err != nil {
		return TurnResult{}, fmt.Errorf("plan_turn failed: %w", err)
	}

	out := TurnResult{
		ConversationID: args.ConversationID,
		Message:        resp.Message,
		Phase:          resp.Phase,
		Domain:         resp.Domain,
		Question:       resp.Question,
		Progress:       resp.Progress,
		Draft:          resp.Draft,
	}
	if resp.CreatedActivity != nil {
		out.CreatedActivityID = resp.CreatedActivity.ID
	}
	return out, nil
}

func (s *Server) handleGetConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("conversation_id", "")
	conv, err := s.planner.Conversation(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get_conversation failed: %v", err)), nil
	}
	data, err := json.Marshal(conv)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(catalogURI, "Planning Domains",
		mcp.WithResourceDescription("Domains, slots and question budgets the assistant knows"),
		mcp.WithMIMEType("application/json"),
	), s.readCatalog)
}

func (s *Server) readCatalog(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.planner.Catalog())
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      catalogURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
