package tool_test

import (
	"context"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
)

type gmailSvcMock struct {
	GetMessageFunc         func(ctx context.Context, msgID string) (*gmail.Message, error)
	GetMessageMetadataFunc func(ctx context.Context, msgID string) (*gmail.Message, error)
	ListMessagesFunc       func(ctx context.Context, q, pageToken string, maxResults int64) (*gmail.ListMessagesResponse, error)
}

func (m *gmailSvcMock) GetMessage(ctx context.Context, msgID string) (*gmail.Message, error) {
	if m.GetMessageFunc == nil {
		panic("gmailSvcMock.GetMessageFunc: method is nil but GetMessage was just called")
	}
	return m.GetMessageFunc(ctx, msgID)
}

func (m *gmailSvcMock) GetMessageMetadata(ctx context.Context, msgID string) (*gmail.Message, error) {
	if m.GetMessageMetadataFunc == nil {
		panic("gmailSvcMock.GetMessageMetadataFunc: method is nil but GetMessageMetadata was just called")
	}
	return m.GetMessageMetadataFunc(ctx, msgID)
}

func (m *gmailSvcMock) ListMessages(ctx context.Context, q, pageToken string, maxResults int64) (*gmail.ListMessagesResponse, error) {
	if m.ListMessagesFunc == nil {
		panic("gmailSvcMock.ListMessagesFunc: method is nil but ListMessages was just called")
	}
	return m.ListMessagesFunc(ctx, q, pageToken, maxResults)
}

type converterMock struct {
	HTML2TextFunc func(raw []byte) (string, error)
}

func (m *converterMock) HTML2Text(raw []byte) (string, error) {
	if m.HTML2TextFunc == nil {
		panic("converterMock.HTML2TextFunc: method is nil but HTML2Text was just called")
	}
	return m.HTML2TextFunc(raw)
}

type sentEmail struct {
	To, Subject, Content string
}

type senderMock struct {
	mu   sync.Mutex
	sent []sentEmail
	id   string
	err  error
}

func (m *senderMock) SendEmail(_ context.Context, to, subject, content string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, Content: content})
	return m.id, nil
}

func (m *senderMock) calls() []sentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentEmail(nil), m.sent...)
}

// connect starts server over in-memory transports and returns a client
// session bound to it.
func connect(t *testing.T, server *mcp.Server) *mcp.ClientSession {
	t.Helper()

	ctx := context.Background()
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = clientSession.Close() })

	return clientSession
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content should be text")
	return text.Text
}
