package tool

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/email-assistant/internal/instrumentation"
	"github.com/hal9000y/email-assistant/internal/logging"
)

// Kind tells actions apart from control signals.
type Kind string

const (
	// KindAction tools perform an effect and return a confirmation.
	KindAction Kind = "action"
	// KindSignal tools end or redirect the agent's turn.
	KindSignal Kind = "signal"
)

// Tool is a named action or control signal an agent may invoke.
type Tool struct {
	Name        string
	Description string
	Kind        Kind
	// Namespace is set by the registry.
	Namespace string

	install func(s *mcp.Server, o observer)
}

// observer receives one record per tool invocation.
type observer struct {
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

func newTool[In, Out any](name, description string, kind Kind, h mcp.ToolHandlerFor[In, Out]) Tool {
	return Tool{
		Name:        name,
		Description: description,
		Kind:        kind,
		install: func(s *mcp.Server, o observer) {
			mcp.AddTool(s, &mcp.Tool{Name: name, Description: description}, instrument(name, o, h))
		},
	}
}

func instrument[In, Out any](name string, o observer, h mcp.ToolHandlerFor[In, Out]) mcp.ToolHandlerFor[In, Out] {
	logger := logging.WithTool(o.logger, name)

	return func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		start := time.Now()
		res, out, err := h(ctx, req, in)
		elapsed := time.Since(start)

		status := logging.StatusSuccess
		if err != nil || (res != nil && res.IsError) {
			status = logging.StatusError
		}

		o.metrics.RecordToolInvocation(name, status, elapsed)
		logger.Info("tool invoked",
			logging.Status(status),
			slog.Duration(logging.KeyDuration, elapsed),
			logging.Err(err),
		)

		return res, out, err
	}
}
