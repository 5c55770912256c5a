package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/email-assistant/internal/email"
	"github.com/hal9000y/email-assistant/internal/format"
)

// GetMessagesRequest contains message IDs to retrieve.
type GetMessagesRequest struct {
	MessageIDs []string `json:"message_ids" jsonschema:"array of message IDs to retrieve"`
}

// GetMessagesResponse contains full message contents.
type GetMessagesResponse struct {
	Messages []MessageContent `json:"messages" jsonschema:"array of full message contents"`
}

// MessageContent is a message with its body and display rendering.
type MessageContent struct {
	Summary     MessageSummary     `json:"summary" jsonschema:"summary"`
	BodyText    string             `json:"body_text,omitempty" jsonschema:"text body"`
	Markdown    string             `json:"markdown" jsonschema:"markdown rendering for display"`
	Attachments []email.Attachment `json:"attachments,omitempty" jsonschema:"list of attachments"`
}

type getMessagesSvc interface {
	GetMessage(ctx context.Context, msgID string) (*gmail.Message, error)
}

type htmlConverter interface {
	HTML2Text(raw []byte) (string, error)
}

type gmailParser interface {
	ParseGmail(record map[string]string) (email.Record, error)
}

// NewGetMessages creates the get_messages handler.
func NewGetMessages(svc getMessagesSvc, conv htmlConverter, parser gmailParser) *GetMessages {
	return &GetMessages{
		svc:    svc,
		conv:   conv,
		parser: parser,
	}
}

// GetMessages retrieves messages and renders them for display.
type GetMessages struct {
	svc    getMessagesSvc
	conv   htmlConverter
	parser gmailParser
}

// GetMessages handles a get_messages call.
func (t *GetMessages) GetMessages(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetMessagesRequest,
) (*mcp.CallToolResult, GetMessagesResponse, error) {
	messages := make([]MessageContent, 0, len(input.MessageIDs))

	for _, msgID := range input.MessageIDs {
		msg, err := t.svc.GetMessage(ctx, msgID)
		if err != nil {
			return nil, GetMessagesResponse{}, fmt.Errorf("get message %s failed: %w", msgID, err)
		}

		m := email.FlattenMessage(msg)

		body, err := t.bodyText(m)
		if err != nil {
			return nil, GetMessagesResponse{}, fmt.Errorf("bodyText failed: %w", err)
		}

		rec, err := t.parser.ParseGmail(m.GmailRecord(body))
		if err != nil {
			return nil, GetMessagesResponse{}, fmt.Errorf("parser.ParseGmail failed: %w", err)
		}

		messages = append(messages, MessageContent{
			Summary:     summarize(m),
			BodyText:    body,
			Markdown:    format.EmailMarkdown(rec.Subject, rec.Author, rec.To, rec.Thread, rec.ID),
			Attachments: m.Attachments,
		})
	}

	return nil, GetMessagesResponse{
		Messages: messages,
	}, nil
}

// bodyText prefers the plain text part and converts HTML only when it is
// the sole body.
func (t *GetMessages) bodyText(m email.Message) (string, error) {
	if m.TextBody != "" {
		return m.TextBody, nil
	}
	if m.HTMLBody == "" {
		return "", nil
	}

	converted, err := t.conv.HTML2Text([]byte(m.HTMLBody))
	if err != nil {
		return "", fmt.Errorf("conv.HTML2Text failed: %w", err)
	}

	return converted, nil
}
