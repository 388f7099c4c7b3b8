// Package mcp exposes the todo service as MCP tools so AI assistants can
// manage todos and look up phase recommendations.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/devtodo/internal/catalog"
	"github.com/ternarybob/devtodo/internal/models"
	"github.com/ternarybob/devtodo/internal/store"
	"github.com/ternarybob/devtodo/internal/todo"
)

// Server wraps the todo service to provide MCP tool access.
type Server struct {
	svc    *todo.Service
	server *server.MCPServer
}

// NewServer creates a new MCP server around the todo service.
func NewServer(svc *todo.Service, version string) *Server {
	s := &Server{
		svc: svc,
	}

	mcpServer := server.NewMCPServer(
		"devtodo",
		version,
		server.WithToolCapabilities(true),
	)

	s.registerTools(mcpServer)

	s.server = mcpServer
	return s
}

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools(mcpServer *server.MCPServer) {
	// list_todos - List todos with optional filters
	mcpServer.AddTool(
		mcp.NewTool("list_todos",
			mcp.WithDescription("List todos, most recently created first. All filters are optional and combined with AND."),
			mcp.WithString("phase",
				mcp.Description("Filter by phase: planning, design, implementation, testing, deployment"),
			),
			mcp.WithString("priority",
				mcp.Description("Filter by priority: low, medium, high"),
			),
			mcp.WithString("completed",
				mcp.Description("Filter by completion: true or false"),
			),
		),
		s.handleListTodos,
	)

	// get_todo - Get a single todo with recommended skills
	mcpServer.AddTool(
		mcp.NewTool("get_todo",
			mcp.WithDescription("Get a todo by id, including the skills recommended for its phase."),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Todo id"),
			),
		),
		s.handleGetTodo,
	)

	// create_todo - Create a new todo
	mcpServer.AddTool(
		mcp.NewTool("create_todo",
			mcp.WithDescription("Create a new todo in a development phase."),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Todo title (max 200 characters)"),
			),
			mcp.WithString("phase",
				mcp.Required(),
				mcp.Description("Phase: planning, design, implementation, testing, deployment"),
			),
			mcp.WithString("priority",
				mcp.Required(),
				mcp.Description("Priority: low, medium, high"),
			),
			mcp.WithString("description",
				mcp.Description("Optional longer description"),
			),
			mcp.WithString("due_date",
				mcp.Description("Optional due date (YYYY-MM-DD)"),
			),
		),
		s.handleCreateTodo,
	)

	// complete_todo - Toggle the completed flag
	mcpServer.AddTool(
		mcp.NewTool("complete_todo",
			mcp.WithDescription("Toggle the completed flag of a todo."),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Todo id"),
			),
		),
		s.handleCompleteTodo,
	)

	// delete_todo - Delete a todo
	mcpServer.AddTool(
		mcp.NewTool("delete_todo",
			mcp.WithDescription("Delete a todo permanently."),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Todo id"),
			),
		),
		s.handleDeleteTodo,
	)

	// phase_skills - Recommended skills for a phase
	mcpServer.AddTool(
		mcp.NewTool("phase_skills",
			mcp.WithDescription("Get the ordered recommended skills for a development phase."),
			mcp.WithString("phase",
				mcp.Required(),
				mcp.Description("Phase: planning, design, implementation, testing, deployment"),
			),
		),
		s.handlePhaseSkills,
	)
}

// handleListTodos handles the list_todos tool.
func (s *Server) handleListTodos(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var f store.Filter

	if v := request.GetString("phase", ""); v != "" {
		phase, err := models.ParsePhase(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		f.Phase = &phase
	}
	if v := request.GetString("priority", ""); v != "" {
		priority, err := models.ParsePriority(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		f.Priority = &priority
	}
	if v := request.GetString("completed", ""); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			return mcp.NewToolResultError("completed must be true or false"), nil
		}
		f.Completed = &completed
	}

	todos, err := s.svc.List(ctx, f)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list todos failed: %v", err)), nil
	}

	return jsonResult(todos)
}

// handleGetTodo handles the get_todo tool.
func (s *Server) handleGetTodo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetInt("id", 0)
	if id <= 0 {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	view, err := s.svc.GetWithSkills(ctx, int64(id))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get todo failed: %v", err)), nil
	}

	return jsonResult(view)
}

// handleCreateTodo handles the create_todo tool.
func (s *Server) handleCreateTodo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := models.TodoCreate{
		Title:    request.GetString("title", ""),
		Phase:    models.Phase(request.GetString("phase", "")),
		Priority: models.Priority(request.GetString("priority", "")),
	}

	if desc := request.GetString("description", ""); desc != "" {
		in.Description = &desc
	}
	if raw := request.GetString("due_date", ""); raw != "" {
		due, err := models.ParseDate(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		in.DueDate = &due
	}

	created, err := s.svc.Create(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("create todo failed: %v", err)), nil
	}

	return jsonResult(todo.WithSkills(*created))
}

// handleCompleteTodo handles the complete_todo tool.
func (s *Server) handleCompleteTodo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetInt("id", 0)
	if id <= 0 {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	toggled, err := s.svc.ToggleComplete(ctx, int64(id))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("toggle failed: %v", err)), nil
	}

	return jsonResult(toggled)
}

// handleDeleteTodo handles the delete_todo tool.
func (s *Server) handleDeleteTodo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetInt("id", 0)
	if id <= 0 {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	deleted, err := s.svc.Delete(ctx, int64(id))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}
	if !deleted {
		return mcp.NewToolResultError(fmt.Sprintf("todo %d not found", id)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("deleted todo %d", id)), nil
}

// handlePhaseSkills handles the phase_skills tool.
func (s *Server) handlePhaseSkills(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phase, err := models.ParsePhase(request.GetString("phase", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(catalog.SkillsForPhase(phase))
}

// ServeStdio starts the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.server)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
