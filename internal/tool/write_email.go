package tool

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/email-assistant/internal/format"
	"github.com/hal9000y/email-assistant/internal/logging"
)

// WriteEmailRequest is the write_email input.
type WriteEmailRequest struct {
	To      string `json:"to" jsonschema:"recipient email address"`
	Subject string `json:"subject" jsonschema:"email subject"`
	Content string `json:"content" jsonschema:"email body"`
}

// WriteEmailResponse confirms the email.
type WriteEmailResponse struct {
	Confirmation string `json:"confirmation" jsonschema:"human readable confirmation"`
	Sent         bool   `json:"sent" jsonschema:"whether the email left the outbox"`
	MessageID    string `json:"message_id,omitempty" jsonschema:"ID of the sent message"`
	Draft        string `json:"draft" jsonschema:"markdown rendering of the email"`
}

type emailSender interface {
	SendEmail(ctx context.Context, to, subject, content string) (string, error)
}

// NewWriteEmail creates the write_email handler. A nil sender keeps emails
// as drafts.
func NewWriteEmail(sender emailSender, logger *slog.Logger) *WriteEmail {
	if logger == nil {
		logger = logging.Discard()
	}
	return &WriteEmail{
		sender: sender,
		logger: logger,
	}
}

// WriteEmail writes, and optionally sends, an email.
type WriteEmail struct {
	sender emailSender
	logger *slog.Logger
}

// WriteEmail handles a write_email call.
func (t *WriteEmail) WriteEmail(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input WriteEmailRequest,
) (*mcp.CallToolResult, WriteEmailResponse, error) {
	resp := WriteEmailResponse{
		Confirmation: fmt.Sprintf("Email sent to %s with subject '%s' and content: %s", input.To, input.Subject, input.Content),
		Draft: format.ToolCallMarkdown(format.NameWriteEmail, map[string]any{
			"to":      input.To,
			"subject": input.Subject,
			"content": input.Content,
		}),
	}

	if t.sender == nil {
		t.logger.Info("email drafted", logging.Domain(input.To))
		return nil, resp, nil
	}

	id, err := t.sender.SendEmail(ctx, input.To, input.Subject, input.Content)
	if err != nil {
		return nil, WriteEmailResponse{}, fmt.Errorf("sender.SendEmail failed: %w", err)
	}

	resp.Sent = true
	resp.MessageID = id

	return nil, resp, nil
}
