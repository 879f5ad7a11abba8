package mcpserver

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execmind/execmind/internal/actions"
	"github.com/execmind/execmind/internal/db"
)

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	store, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	list, err := actions.NewList(store, actions.Defaults(), zerolog.Nop())
	require.NoError(t, err)
	return &Handlers{Actions: list, MeetingTitle: "Board Strategy Session", Log: zerolog.Nop()}
}

func call(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return tc.Text
}

func TestAssistantResponse(t *testing.T) {
	h := newTestHandlers(t)

	res, err := h.AssistantResponse(context.Background(), call(map[string]any{
		"mode":          "post-meeting",
		"meeting_title": "Q3 Review",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	out := text(t, res)
	assert.Contains(t, out, "# Post-Meeting Insight Assistant")
	assert.Contains(t, out, "What were the key decisions made in the board meeting today?")
	assert.Contains(t, out, "Here's what happened in your Q3 Review:")
	assert.Contains(t, out, "**Insights:**")
}

func TestAssistantResponseDefaultsTitle(t *testing.T) {
	h := newTestHandlers(t)

	res, err := h.AssistantResponse(context.Background(), call(map[string]any{"mode": "post-meeting"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "Board Strategy Session")
}

func TestAssistantResponseBadMode(t *testing.T) {
	h := newTestHandlers(t)

	res, err := h.AssistantResponse(context.Background(), call(map[string]any{"mode": "lunch"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.AssistantResponse(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestPendingActionsAndToggle(t *testing.T) {
	h := newTestHandlers(t)
	toggles := 0
	h.OnToggle = func() { toggles++ }

	res, err := h.PendingActions(context.Background(), call(nil))
	require.NoError(t, err)
	out := text(t, res)
	assert.Contains(t, out, "- [ ] Follow-up with Sarah on Q4 budget (Due in 2 hours, high) id=follow-up-sarah")

	res, err = h.ToggleAction(context.Background(), call(map[string]any{"id": "follow-up-sarah"}))
	require.NoError(t, err)
	assert.Equal(t, "Follow-up with Sarah on Q4 budget is now completed", text(t, res))
	assert.Equal(t, 1, toggles)

	res, err = h.PendingActions(context.Background(), call(map[string]any{"filter": "completed"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "- [x] Follow-up with Sarah on Q4 budget")

	res, err = h.PendingActions(context.Background(), call(map[string]any{"filter": "pending"}))
	require.NoError(t, err)
	assert.NotContains(t, text(t, res), "Sarah")
}

func TestToggleUnknownAction(t *testing.T) {
	h := newTestHandlers(t)

	res, err := h.ToggleAction(context.Background(), call(map[string]any{"id": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), `no action with id "nope"`)
}

func TestPendingActionsEmptyFilter(t *testing.T) {
	h := newTestHandlers(t)

	res, err := h.PendingActions(context.Background(), call(map[string]any{"filter": "completed"}))
	require.NoError(t, err)
	assert.Equal(t, "No actions.", text(t, res))
}

func TestNewRegistersTools(t *testing.T) {
	s := New(newTestHandlers(t), "test")
	tools := s.ListTools()
	for _, name := range []string{"assistant_response", "pending_actions", "toggle_action"} {
		assert.Contains(t, tools, name)
	}
}
