// Package gservice wraps the Gmail API calls the assistant makes.
package gservice

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const gmailUserID = "me"

// ErrInvalidHeader indicates a header value that would break the message
// framing.
var ErrInvalidHeader = errors.New("invalid header value")

type tokenSource interface {
	OAuthToken() (*oauth2.Token, error)
}

// NewGmail creates a Gmail client authorized by tok. Extra options are
// appended to the HTTP client option.
func NewGmail(cfg *oauth2.Config, tok tokenSource, opts ...option.ClientOption) *GMail {
	return &GMail{
		cfg:  cfg,
		tok:  tok,
		opts: opts,
	}
}

// GMail talks to the mailbox of the authorized user.
type GMail struct {
	cfg  *oauth2.Config
	tok  tokenSource
	opts []option.ClientOption
}

// ListMessages runs a Gmail search query.
func (m *GMail) ListMessages(ctx context.Context, q, pageToken string, maxResults int64) (*gmail.ListMessagesResponse, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	call := svc.Users.Messages.List(gmailUserID).
		Q(q).
		PageToken(pageToken).
		MaxResults(maxResults).
		Context(ctx)

	result, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("messages.List failed: %w", err)
	}

	return result, nil
}

// GetMessageMetadata fetches the headers of a message.
func (m *GMail) GetMessageMetadata(ctx context.Context, msgID string) (*gmail.Message, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	msg, err := svc.Users.Messages.Get(gmailUserID, msgID).
		Format("METADATA").
		MetadataHeaders("From", "To", "Cc", "Subject", "Date").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("messages.Get failed: %w", err)
	}

	return msg, nil
}

// GetMessage fetches a full message.
func (m *GMail) GetMessage(ctx context.Context, msgID string) (*gmail.Message, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	msg, err := svc.Users.Messages.Get(gmailUserID, msgID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("messages.Get failed: %w", err)
	}

	return msg, nil
}

// SendEmail sends a plain text email and returns the ID of the sent message.
func (m *GMail) SendEmail(ctx context.Context, to, subject, content string) (string, error) {
	raw, err := ComposeMessage(to, subject, content)
	if err != nil {
		return "", fmt.Errorf("ComposeMessage failed: %w", err)
	}

	svc, err := m.newSvc(ctx)
	if err != nil {
		return "", fmt.Errorf("newSvc failed: %w", err)
	}

	sent, err := svc.Users.Messages.Send(gmailUserID, &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("messages.Send failed: %w", err)
	}

	return sent.Id, nil
}

// ComposeMessage builds an RFC 2822 message. The sender is filled in by
// Gmail.
func ComposeMessage(to, subject, content string) ([]byte, error) {
	if to == "" {
		return nil, fmt.Errorf("%w: empty recipient", ErrInvalidHeader)
	}
	for name, v := range map[string]string{"To": to, "Subject": subject} {
		if strings.ContainsAny(v, "\r\n") {
			return nil, fmt.Errorf("%w: line break in %s", ErrInvalidHeader, name)
		}
	}

	var b strings.Builder
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(content, "\r\n", "\n"), "\n", "\r\n"))

	return []byte(b.String()), nil
}

func (m *GMail) newSvc(ctx context.Context) (*gmail.Service, error) {
	t, err := m.tok.OAuthToken()
	if err != nil {
		return nil, fmt.Errorf("tok.OAuthToken failed: %w", err)
	}

	clt := m.cfg.Client(ctx, t)

	opts := append([]option.ClientOption{option.WithHTTPClient(clt)}, m.opts...)
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService failed: %w", err)
	}

	return svc, nil
}
