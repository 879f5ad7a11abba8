// Package mcpserver exposes the assistant responses and the pending action
// list as MCP tools.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/execmind/execmind/internal/actions"
	"github.com/execmind/execmind/internal/assistant"
)

// Handlers holds the state the tools read and mutate.
type Handlers struct {
	Actions      *actions.List
	MeetingTitle string
	Log          zerolog.Logger

	// OnToggle is called after a successful toggle.
	OnToggle func()
}

// New builds the MCP server with every tool registered.
func New(h *Handlers, version string) *server.MCPServer {
	s := server.NewMCPServer("execmind", version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("assistant_response",
		mcp.WithDescription("Return the executive assistant's answer for a meeting mode"),
		mcp.WithString("mode",
			mcp.Required(),
			mcp.Description("Which assistant to ask"),
			mcp.Enum(string(assistant.ModePostMeeting), string(assistant.ModePreMeeting)),
		),
		mcp.WithString("meeting_title",
			mcp.Description("Meeting name used in post-meeting summaries"),
		),
	), h.AssistantResponse)

	s.AddTool(mcp.NewTool("pending_actions",
		mcp.WithDescription("List the executive's pending actions"),
		mcp.WithString("filter",
			mcp.Description("Which actions to list"),
			mcp.Enum("all", "pending", "completed"),
		),
	), h.PendingActions)

	s.AddTool(mcp.NewTool("toggle_action",
		mcp.WithDescription("Mark a pending action done, or not done if it already is"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Action id as shown by pending_actions"),
		),
	), h.ToggleAction)

	return s
}

// AssistantResponse returns the question and response for a mode.
func (h *Handlers) AssistantResponse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("mode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode, err := assistant.ParseMode(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	title := req.GetString("meeting_title", h.MeetingTitle)
	resp := assistant.Lookup(mode, title)
	h.Log.Debug().Str("mode", string(mode)).Msg("mcp assistant_response")

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", mode.Title())
	fmt.Fprintf(&b, "> %s\n\n", assistant.Question(mode))
	b.WriteString(resp.Markdown())
	return mcp.NewToolResultText(b.String()), nil
}

// PendingActions lists actions, filtered by completion.
func (h *Handlers) PendingActions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		list []actions.PendingAction
		err  error
	)
	switch filter := req.GetString("filter", "all"); filter {
	case "all":
		list, err = h.Actions.All()
	case "pending":
		list, err = h.Actions.Pending()
	case "completed":
		list, err = h.Actions.Completed()
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown filter %q", filter)), nil
	}
	if err != nil {
		return nil, err
	}

	if len(list) == 0 {
		return mcp.NewToolResultText("No actions."), nil
	}
	var b strings.Builder
	for _, a := range list {
		box := " "
		if a.Completed {
			box = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s (%s, %s) id=%s\n", box, a.Title, a.DueDate, a.Priority, a.ID)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ToggleAction flips the completed flag of an action.
func (h *Handlers) ToggleAction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	a, err := h.Actions.Toggle(id)
	if errors.Is(err, actions.ErrActionNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("no action with id %q", id)), nil
	}
	if err != nil {
		return nil, err
	}
	if h.OnToggle != nil {
		h.OnToggle()
	}

	state := "pending"
	if a.Completed {
		state = "completed"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s is now %s", a.Title, state)), nil
}

// ServeStdio serves the tools on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
