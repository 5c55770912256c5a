package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/email-assistant/internal/email"
	"github.com/hal9000y/email-assistant/internal/format"
	"github.com/hal9000y/email-assistant/internal/logging"
	"github.com/hal9000y/email-assistant/internal/tool"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "email-assistant",
		Short: "Tools and renderers for an email triage agent",
		Long: `email-assistant serves the tools an email agent may call (write_email,
Done, Question and, optionally, Gmail search and retrieval) over MCP, and
renders emails and agent tool calls as markdown.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	root.PersistentFlags().String("log-format", "text", "Log format: text or json")

	root.AddCommand(newServeCmd(), newToolsCmd(), newRenderCmd())

	return root
}

// newLogger builds a logger writing to w from the persistent log flags.
func newLogger(cmd *cobra.Command, w io.Writer) (*slog.Logger, error) {
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("flag log-level: %w", err)
	}
	logFormat, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return nil, fmt.Errorf("flag log-format: %w", err)
	}

	return logging.New(w, level, logFormat)
}

type sender interface {
	SendEmail(ctx context.Context, to, subject, content string) (string, error)
}

type mailbox interface {
	sender
	ListMessages(ctx context.Context, q, pageToken string, maxResults int64) (*gmail.ListMessagesResponse, error)
	GetMessageMetadata(ctx context.Context, msgID string) (*gmail.Message, error)
	GetMessage(ctx context.Context, msgID string) (*gmail.Message, error)
}

// newRegistry registers the default tools and the gmail namespace. A nil
// send keeps write_email in draft mode.
func newRegistry(mb mailbox, send sender, logger *slog.Logger) (*tool.Registry, error) {
	reg, err := tool.NewRegistry(
		tool.Builtin(send, logger),
		tool.Gmail(mb, format.Converter{}, email.NewParser(logger)),
	)
	if err != nil {
		return nil, fmt.Errorf("tool.NewRegistry failed: %w", err)
	}

	return reg, nil
}
