package tool

import (
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/email-assistant/internal/instrumentation"
	"github.com/hal9000y/email-assistant/internal/logging"
)

const (
	serverName    = "email-assistant"
	serverVersion = "v1.0.0"
)

// Option configures NewServer.
type Option func(*observer)

// WithLogger logs every invocation to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *observer) {
		o.logger = logger
	}
}

// WithMetrics records every invocation in m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(o *observer) {
		o.metrics = m
	}
}

// NewServer creates an MCP server exposing the default tools plus those of
// the given namespaces.
func NewServer(reg *Registry, namespaces []string, opts ...Option) *mcp.Server {
	o := observer{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	for _, t := range reg.List(nil, namespaces...) {
		if t.install == nil {
			o.logger.Warn("tool has no handler", logging.Tool(t.Name))
			continue
		}
		t.install(server, observer{
			logger:  o.logger.With(logging.Namespace(t.Namespace)),
			metrics: o.metrics,
		})
	}

	return server
}
