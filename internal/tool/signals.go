package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/email-assistant/internal/format"
)

// DoneRequest marks the email as handled.
type DoneRequest struct {
	Done bool `json:"done" jsonschema:"true once the email has been handled"`
}

// DoneResponse acknowledges the end of the turn.
type DoneResponse struct {
	Done bool `json:"done" jsonschema:"echo of the request flag"`
}

// QuestionRequest carries a clarifying question for the user.
type QuestionRequest struct {
	Content string `json:"content" jsonschema:"the question to ask the user"`
}

// QuestionResponse hands the question back for display.
type QuestionResponse struct {
	Question string `json:"question" jsonschema:"the question as asked"`
	Display  string `json:"display" jsonschema:"markdown rendering for the user"`
}

// Done handles the Done signal. It has no side effect.
func Done(_ context.Context, _ *mcp.CallToolRequest, input DoneRequest) (*mcp.CallToolResult, DoneResponse, error) {
	return nil, DoneResponse(input), nil
}

// Question handles the Question signal. It has no side effect.
func Question(_ context.Context, _ *mcp.CallToolRequest, input QuestionRequest) (*mcp.CallToolResult, QuestionResponse, error) {
	return nil, QuestionResponse{
		Question: input.Content,
		Display:  format.ToolCallMarkdown(format.NameQuestion, map[string]any{"content": input.Content}),
	}, nil
}
