// Package mcp exposes a swallow engine as Model Context Protocol tools so
// coding agents can drive refactorings.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/swallow"
	"github.com/aretw0/swallow/internal/catalog"
	"github.com/aretw0/swallow/internal/logging"
	"github.com/aretw0/swallow/internal/presentation/graph"
	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/registry"
	"github.com/aretw0/swallow/pkg/workspace"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ProjectsURI names the project graph resource.
const ProjectsURI = "swallow://workspace/projects"

// Engine is the part of *swallow.Engine the tools drive.
type Engine interface {
	Open(ctx context.Context) (*workspace.Workspace, error)
	Asyncify(ctx context.Context, ws *workspace.Workspace, project, descriptor string) (*swallow.Result, error)
	Run(ctx context.Context, ws *workspace.Workspace, name, project, descriptor string, args []string) (*swallow.Result, error)
	Edit(ctx context.Context, ws *workspace.Workspace, path, name string, args []string) (*swallow.Result, error)
	Functions(ctx context.Context, ws *workspace.Workspace, path, filter string, args []string) ([]domain.FunctionInfo, error)
	Commit(ctx context.Context, ws *workspace.Workspace) (bool, error)
}

var _ Engine = (*swallow.Engine)(nil)

// ChangeResponse reports the outcome of a transformation tool.
type ChangeResponse struct {
	Changed   []domain.DocumentID `json:"changed" jsonschema_description:"Documents whose text changed"`
	Rewritten []domain.FunctionID `json:"rewritten,omitempty" jsonschema_description:"Functions whose signature became asynchronous"`
	Committed bool                `json:"committed" jsonschema_description:"Whether the change was written back"`
	Diff      string              `json:"diff" jsonschema_description:"Unified diff of the change"`
}

// FunctionView is a flat rendering of a declared function. Types are
// printed, e.g. Task<int>.
type FunctionView struct {
	ID             domain.FunctionID `json:"id"`
	Name           string            `json:"name"`
	ContainingType string            `json:"containing_type"`
	Params         []string          `json:"params,omitempty" jsonschema_description:"Parameters as 'type name'"`
	Result         string            `json:"result"`
	Async          bool              `json:"async"`
	HasBody        bool              `json:"has_body"`
}

func newFunctionView(info domain.FunctionInfo) FunctionView {
	v := FunctionView{
		ID:             info.ID,
		Name:           info.Name,
		ContainingType: info.ContainingType,
		Result:         info.Result.String(),
		Async:          info.Async,
		HasBody:        info.HasBody,
	}
	for _, p := range info.Parameters {
		v.Params = append(v.Params, p.Type.String()+" "+p.Name)
	}
	return v
}

// FunctionsResponse lists declared functions.
type FunctionsResponse struct {
	Functions []FunctionView `json:"functions"`
}

// CatalogResponse lists the named transformations and filters.
type CatalogResponse struct {
	Symbols   []registry.Metadata `json:"symbols"`
	Documents []registry.Metadata `json:"documents"`
	Filters   []registry.Metadata `json:"filters"`
}

// Server wraps an Engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("swallow-mcp", swallow.Version(),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves the protocol on Stdin/Stdout until the client leaves.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// SSEHandler serves the protocol over server-sent events, with the stream
// on /sse and client messages on /message.
func (s *Server) SSEHandler(baseURL string) http.Handler {
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))
	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sse.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sse.MessageHandler()))
	return mux
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	dryRun := mcp.WithBoolean("dry_run", mcp.Description("Only report the diff, do not write"))
	args := mcp.WithArray("args", mcp.Description("Transformation arguments, in order"), mcp.WithStringItems())

	s.mcpServer.AddTool(mcp.NewTool("asyncify",
		mcp.WithDescription("Make a function asynchronous and propagate the change to its callers, overrides and interface members."),
		mcp.WithString("function", mcp.Required(), mcp.Description("Function as Type.Name")),
		mcp.WithString("project", mcp.Description("Project that must declare the function (optional)")),
		dryRun,
		mcp.WithOutputSchema[ChangeResponse](),
	), mcp.NewStructuredToolHandler(s.handleAsyncify))

	s.mcpServer.AddTool(mcp.NewTool("run_transformation",
		mcp.WithDescription("Apply a named symbol transformation from the catalog."),
		mcp.WithString("transformation", mcp.Required(), mcp.Description("Catalog name, e.g. rename")),
		mcp.WithString("function", mcp.Required(), mcp.Description("Function as Type.Name")),
		mcp.WithString("project", mcp.Description("Project that must declare the function (optional)")),
		args,
		dryRun,
		mcp.WithOutputSchema[ChangeResponse](),
	), mcp.NewStructuredToolHandler(s.handleRun))

	s.mcpServer.AddTool(mcp.NewTool("edit_document",
		mcp.WithDescription("Apply a named document transformation from the catalog."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Document path")),
		mcp.WithString("transformation", mcp.Required(), mcp.Description("Catalog name, e.g. wrap-signature")),
		args,
		dryRun,
		mcp.WithOutputSchema[ChangeResponse](),
	), mcp.NewStructuredToolHandler(s.handleEdit))

	s.mcpServer.AddTool(mcp.NewTool("list_functions",
		mcp.WithDescription("List the functions declared in a document."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Document path")),
		mcp.WithString("filter", mcp.Description("Catalog filter name (optional)")),
		args,
		mcp.WithOutputSchema[FunctionsResponse](),
	), mcp.NewStructuredToolHandler(s.handleFunctions))

	s.mcpServer.AddTool(mcp.NewTool("catalog",
		mcp.WithDescription("List the named transformations and filters."),
		mcp.WithOutputSchema[CatalogResponse](),
	), mcp.NewStructuredToolHandler(s.handleCatalog))
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func stringsArg(args map[string]interface{}, key string) []string {
	raw, _ := args[key].([]interface{})
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (s *Server) handleAsyncify(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (ChangeResponse, error) {
	return s.change(ctx, args, func(ctx context.Context, ws *workspace.Workspace) (*swallow.Result, error) {
		return s.engine.Asyncify(ctx, ws, stringArg(args, "project"), stringArg(args, "function"))
	})
}

func (s *Server) handleRun(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (ChangeResponse, error) {
	return s.change(ctx, args, func(ctx context.Context, ws *workspace.Workspace) (*swallow.Result, error) {
		return s.engine.Run(ctx, ws, stringArg(args, "transformation"), stringArg(args, "project"),
			stringArg(args, "function"), stringsArg(args, "args"))
	})
}

func (s *Server) handleEdit(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (ChangeResponse, error) {
	return s.change(ctx, args, func(ctx context.Context, ws *workspace.Workspace) (*swallow.Result, error) {
		return s.engine.Edit(ctx, ws, stringArg(args, "document"), stringArg(args, "transformation"), stringsArg(args, "args"))
	})
}

func (s *Server) handleFunctions(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (FunctionsResponse, error) {
	ws, err := s.engine.Open(ctx)
	if err != nil {
		return FunctionsResponse{}, err
	}
	infos, err := s.engine.Functions(ctx, ws, stringArg(args, "document"), stringArg(args, "filter"), stringsArg(args, "args"))
	if err != nil {
		return FunctionsResponse{}, fmt.Errorf("list functions: %w", err)
	}
	resp := FunctionsResponse{Functions: make([]FunctionView, 0, len(infos))}
	for _, info := range infos {
		resp.Functions = append(resp.Functions, newFunctionView(info))
	}
	return resp, nil
}

func (s *Server) handleCatalog(context.Context, mcp.CallToolRequest, map[string]interface{}) (CatalogResponse, error) {
	docs, err := catalog.Documents()
	if err != nil {
		return CatalogResponse{}, err
	}
	symbols, err := catalog.Symbols()
	if err != nil {
		return CatalogResponse{}, err
	}
	filters, err := catalog.Filters()
	if err != nil {
		return CatalogResponse{}, err
	}
	return CatalogResponse{Symbols: symbols.List(), Documents: docs.List(), Filters: filters.List()}, nil
}

func (s *Server) change(ctx context.Context, args map[string]interface{}, apply func(context.Context, *workspace.Workspace) (*swallow.Result, error)) (ChangeResponse, error) {
	ws, err := s.engine.Open(ctx)
	if err != nil {
		return ChangeResponse{}, err
	}
	res, err := apply(ctx, ws)
	if err != nil {
		s.logger.Warn("mcp tool failed", "err", err)
		return ChangeResponse{}, err
	}

	resp := ChangeResponse{Changed: res.Changed}
	if res.Collected != nil {
		resp.Rewritten = res.Collected.Rewritten()
	}
	if resp.Diff, err = res.Diff(); err != nil {
		return ChangeResponse{}, err
	}
	if dry, _ := args["dry_run"].(bool); !dry && len(res.Changed) > 0 {
		if resp.Committed, err = s.engine.Commit(ctx, res.After); err != nil {
			return ChangeResponse{}, fmt.Errorf("commit: %w", err)
		}
	}
	return resp, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ProjectsURI, "Project graph",
		mcp.WithMIMEType("text/plain"),
	), s.readProjects)
}

func (s *Server) readProjects(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ws, err := s.engine.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ProjectsURI,
			MIMEType: "text/plain",
			Text:     graph.Projects(ws),
		},
	}, nil
}
