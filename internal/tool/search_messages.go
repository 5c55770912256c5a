package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/email-assistant/internal/email"
)

const (
	defaultMaxResults = 10
	maxMaxResults     = 50
)

// SearchMessagesRequest is the search_messages input.
type SearchMessagesRequest struct {
	Query      string `json:"query" jsonschema:"the Gmail search query"`
	MaxResults int64  `json:"max_results,omitempty" jsonschema:"max results per page"`
	PageToken  string `json:"page_token,omitempty" jsonschema:"token for pagination"`
}

// SearchMessagesResponse lists matching message summaries.
type SearchMessagesResponse struct {
	Messages      []MessageSummary `json:"messages" jsonschema:"array of message summaries"`
	NextPageToken string           `json:"next_page_token,omitempty" jsonschema:"token for next page"`
	TotalResults  int              `json:"total_results" jsonschema:"number of messages returned"`
}

type searchMessagesSvc interface {
	ListMessages(ctx context.Context, q, pageToken string, maxResults int64) (*gmail.ListMessagesResponse, error)
	GetMessageMetadata(ctx context.Context, msgID string) (*gmail.Message, error)
}

// NewSearchMessages creates the search_messages handler.
func NewSearchMessages(svc searchMessagesSvc) *SearchMessages {
	return &SearchMessages{
		svc: svc,
	}
}

// SearchMessages searches the mailbox.
type SearchMessages struct {
	svc searchMessagesSvc
}

// SearchMessages handles a search_messages call.
func (t *SearchMessages) SearchMessages(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchMessagesRequest,
) (*mcp.CallToolResult, SearchMessagesResponse, error) {
	input.MaxResults = normalizeMaxResults(input.MaxResults)

	result, err := t.svc.ListMessages(ctx, input.Query, input.PageToken, input.MaxResults)
	if err != nil {
		return nil, SearchMessagesResponse{}, fmt.Errorf("svc.ListMessages failed: %w", err)
	}

	messages := make([]MessageSummary, 0, len(result.Messages))
	for _, m := range result.Messages {
		msg, err := t.svc.GetMessageMetadata(ctx, m.Id)
		if err != nil {
			return nil, SearchMessagesResponse{}, fmt.Errorf("get message %s failed: %w", m.Id, err)
		}
		messages = append(messages, summarize(email.FlattenMessage(msg)))
	}

	return nil, SearchMessagesResponse{
		Messages:      messages,
		NextPageToken: result.NextPageToken,
		TotalResults:  len(messages),
	}, nil
}

func normalizeMaxResults(maxResults int64) int64 {
	if maxResults <= 0 {
		return defaultMaxResults
	}
	return min(maxResults, maxMaxResults)
}
