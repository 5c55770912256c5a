package tool

import "github.com/hal9000y/email-assistant/internal/email"

// MessageSummary contains essential message metadata.
type MessageSummary struct {
	ID        string          `json:"id" jsonschema:"message ID"`
	ThreadID  string          `json:"thread_id" jsonschema:"thread ID"`
	Timestamp string          `json:"timestamp" jsonschema:"message timestamp"`
	From      email.Address   `json:"from" jsonschema:"sender information"`
	To        []email.Address `json:"to,omitempty" jsonschema:"recipients"`
	CC        []email.Address `json:"cc,omitempty" jsonschema:"CC recipients"`
	Subject   string          `json:"subject" jsonschema:"email subject"`
	Snippet   string          `json:"snippet" jsonschema:"message preview"`
}

func summarize(m email.Message) MessageSummary {
	from := email.Address{}
	if m.From != "" {
		from = email.ParseAddress(m.From)
	}

	return MessageSummary{
		ID:        m.ID,
		ThreadID:  m.ThreadID,
		Timestamp: m.Date,
		From:      from,
		To:        email.ParseAddressList(m.To),
		CC:        email.ParseAddressList(m.CC),
		Subject:   m.Subject,
		Snippet:   m.Snippet,
	}
}
