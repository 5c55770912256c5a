package tool_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/email-assistant/internal/email"
	"github.com/hal9000y/email-assistant/internal/format"
	"github.com/hal9000y/email-assistant/internal/tool"
)

func newGetMessagesGmailSvc() *gmailSvcMock {
	return &gmailSvcMock{
		GetMessageFunc: func(_ context.Context, msgID string) (*gmail.Message, error) {
			switch msgID {
			case "error-msg":
				return nil, fmt.Errorf("message not found: %s", msgID)
			case "html-msg":
				return &gmail.Message{
					Id:       msgID,
					ThreadId: "t-" + msgID,
					Payload: &gmail.MessagePart{
						Headers: []*gmail.MessagePartHeader{
							{Name: "From", Value: "news@example.com"},
							{Name: "To", Value: "me@example.com"},
							{Name: "Subject", Value: "Newsletter"},
						},
						MimeType: "text/html",
						Body: &gmail.MessagePartBody{
							Data: "PGI-VGVzdCBIVE1MIGJvZHkgZm9yIDwvYj4=",
						},
					},
				}, nil
			}
			return &gmail.Message{
				Id:       msgID,
				ThreadId: "t-" + msgID,
				Snippet:  "test snippet " + msgID,
				Payload: &gmail.MessagePart{
					Headers: []*gmail.MessagePartHeader{
						{Name: "From", Value: fmt.Sprintf("Sender <%s@example.com>", msgID)},
						{Name: "To", Value: fmt.Sprintf("Receiver <receiver-%s@example.com>", msgID)},
						{Name: "Subject", Value: "Test subject " + msgID},
						{Name: "Date", Value: "2025-01-01 10:00:00"},
					},
					MimeType: "multipart/alternative",
					Parts: []*gmail.MessagePart{
						{
							MimeType: "text/plain",
							Body: &gmail.MessagePartBody{
								Data: "VGVzdCBwbGFpbiB0ZXh0IGJvZHkgZm9yIA==", // "Test plain text body for " base64
							},
						},
						{
							MimeType: "text/html",
							Body: &gmail.MessagePartBody{
								Data: "PGI-VGVzdCBIVE1MIGJvZHkgZm9yIDwvYj4=", // "<b>Test HTML body for </b>" base64
							},
						},
					},
				},
			}, nil
		},
	}
}

func TestGetMessages(t *testing.T) {
	cases := []struct {
		name        string
		req         tool.GetMessagesRequest
		expected    tool.GetMessagesResponse
		expectedErr error
	}{
		{
			name: "success with multiple messages",
			req: tool.GetMessagesRequest{
				MessageIDs: []string{"msg-001", "msg-002"},
			},
			expected: tool.GetMessagesResponse{
				Messages: []tool.MessageContent{
					{
						Summary: tool.MessageSummary{
							ID:        "msg-001",
							ThreadID:  "t-msg-001",
							Timestamp: "2025-01-01 10:00:00",
							From:      email.Address{Name: "Sender", Email: "msg-001@example.com"},
							To:        []email.Address{{Name: "Receiver", Email: "receiver-msg-001@example.com"}},
							Subject:   "Test subject msg-001",
							Snippet:   "test snippet msg-001",
						},
						BodyText: "Test plain text body for ",
						Markdown: format.EmailMarkdown(
							"Test subject msg-001",
							"Sender <msg-001@example.com>",
							"Receiver <receiver-msg-001@example.com>",
							"Test plain text body for ",
							"msg-001",
						),
					},
					{
						Summary: tool.MessageSummary{
							ID:        "msg-002",
							ThreadID:  "t-msg-002",
							Timestamp: "2025-01-01 10:00:00",
							From:      email.Address{Name: "Sender", Email: "msg-002@example.com"},
							To:        []email.Address{{Name: "Receiver", Email: "receiver-msg-002@example.com"}},
							Subject:   "Test subject msg-002",
							Snippet:   "test snippet msg-002",
						},
						BodyText: "Test plain text body for ",
						Markdown: format.EmailMarkdown(
							"Test subject msg-002",
							"Sender <msg-002@example.com>",
							"Receiver <receiver-msg-002@example.com>",
							"Test plain text body for ",
							"msg-002",
						),
					},
				},
			},
		},
		{
			name: "html only body is converted",
			req: tool.GetMessagesRequest{
				MessageIDs: []string{"html-msg"},
			},
			expected: tool.GetMessagesResponse{
				Messages: []tool.MessageContent{
					{
						Summary: tool.MessageSummary{
							ID:       "html-msg",
							ThreadID: "t-html-msg",
							From:     email.Address{Email: "news@example.com"},
							To:       []email.Address{{Email: "me@example.com"}},
							Subject:  "Newsletter",
						},
						BodyText: "**Converted from HTML**",
						Markdown: "\n\n**Subject**: Newsletter\n**From**: news@example.com\n**To**: me@example.com\n**ID**: html-msg\n\n**Converted from HTML**\n\n---\n",
					},
				},
			},
		},
		{
			name: "error case",
			req: tool.GetMessagesRequest{
				MessageIDs: []string{"error-msg"},
			},
			expectedErr: fmt.Errorf("message not found: error-msg"),
		},
	}

	gmailSvc := newGetMessagesGmailSvc()
	converter := &converterMock{
		HTML2TextFunc: func(_ []byte) (string, error) {
			return "**Converted from HTML**", nil
		},
	}

	reg, err := tool.NewRegistry(
		tool.Builtin(nil, nil),
		tool.Gmail(gmailSvc, converter, email.NewParser(nil)),
	)
	require.NoError(t, err)

	clientSession := connect(t, tool.NewServer(reg, []string{tool.GmailNamespace}))
	ctx := context.Background()

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := clientSession.CallTool(ctx, &mcp.CallToolParams{
				Name:      "get_messages",
				Arguments: tc.req,
			})
			require.NoError(t, err)
			text := resultText(t, result)

			if tc.expectedErr != nil {
				require.True(t, result.IsError, "Result should indicate error")
				assert.Contains(t, text, tc.expectedErr.Error())
				return
			}

			var response tool.GetMessagesResponse
			require.NoError(t, json.Unmarshal([]byte(text), &response))
			assert.Equal(t, tc.expected, response)
		})
	}
}
func TestGetMessagesConverterError(t *testing.T) {
	svc := &gmailSvcMock{
		GetMessageFunc: func(_ context.Context, msgID string) (*gmail.Message, error) {
			return &gmail.Message{
				Id: msgID,
				Payload: &gmail.MessagePart{
					MimeType: "text/html",
					Body:     &gmail.MessagePartBody{Data: "PHA+aGk8L3A+"},
				},
			}, nil
		},
	}
	conv := &converterMock{
		HTML2TextFunc: func(_ []byte) (string, error) {
			return "", fmt.Errorf("broken markup")
		},
	}

	_, _, err := tool.NewGetMessages(svc, conv, email.NewParser(nil)).GetMessages(
		context.Background(), nil, tool.GetMessagesRequest{MessageIDs: []string{"m-1"}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken markup")
}
