package email

import (
	"encoding/base64"
	"net/mail"
	"strings"

	"google.golang.org/api/gmail/v1"
)

// Address is a mailbox with an optional display name.
type Address struct {
	Name  string `json:"name,omitempty" jsonschema:"the display name"`
	Email string `json:"email" jsonschema:"the email address"`
}

// Attachment is attachment metadata found in a message payload.
type Attachment struct {
	ID       string `json:"id" jsonschema:"attachment ID"`
	Filename string `json:"filename" jsonschema:"original filename"`
	MimeType string `json:"mime_type" jsonschema:"MIME type"`
	Size     int64  `json:"size" jsonschema:"size in bytes"`
}

// Message is a Gmail API message flattened to the fields the assistant uses.
type Message struct {
	ID          string
	ThreadID    string
	Snippet     string
	From        string
	To          string
	CC          string
	Subject     string
	Date        string
	TextBody    string
	HTMLBody    string
	Attachments []Attachment
}

// FlattenMessage reads headers, bodies and attachments from a Gmail message.
// Metadata-only messages yield empty bodies.
func FlattenMessage(msg *gmail.Message) Message {
	m := Message{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
	}
	if msg.Payload == nil {
		return m
	}

	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "From":
			m.From = h.Value
		case "To":
			m.To = h.Value
		case "Cc":
			m.CC = h.Value
		case "Subject":
			m.Subject = h.Value
		case "Date":
			m.Date = h.Value
		}
	}

	m.TextBody, m.HTMLBody = extractBodies(msg.Payload)
	m.Attachments = extractAttachments(msg.Payload)

	return m
}

// GmailRecord returns the message in the Gmail record schema, using body as
// the thread content.
func (m Message) GmailRecord(body string) map[string]string {
	return map[string]string{
		KeyFrom:    m.From,
		KeyTo:      m.To,
		KeySubject: m.Subject,
		KeyBody:    body,
		KeyID:      m.ID,
	}
}

// ParseAddress parses an RFC 5322 address, falling back to a lenient
// `Name <addr>` split for headers net/mail rejects.
func ParseAddress(s string) Address {
	if a, err := mail.ParseAddress(s); err == nil {
		return Address{Name: a.Name, Email: a.Address}
	}

	addr := Address{}

	if idx := strings.Index(s, "<"); idx != -1 {
		addr.Name = strings.TrimSpace(s[:idx])
		if end := strings.Index(s[idx:], ">"); end != -1 {
			addr.Email = strings.TrimSpace(s[idx+1 : idx+end])
		}
	} else {
		addr.Email = strings.TrimSpace(s)
	}

	addr.Name = strings.Trim(addr.Name, "\"")

	return addr
}

// ParseAddressList parses an address list header. Quoted display names may
// contain commas; malformed lists fall back to splitting on every comma.
func ParseAddressList(s string) []Address {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	if list, err := mail.ParseAddressList(s); err == nil {
		out := make([]Address, 0, len(list))
		for _, a := range list {
			out = append(out, Address{Name: a.Name, Email: a.Address})
		}
		return out
	}

	parts := strings.Split(s, ",")
	out := make([]Address, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, ParseAddress(p))
		}
	}

	return out
}

// extractBodies returns the first text/plain and text/html bodies found,
// depth first.
func extractBodies(part *gmail.MessagePart) (text, html string) {
	text, html = bodyOf(part)

	for _, child := range part.Parts {
		childText, childHTML := extractBodies(child)
		if text == "" {
			text = childText
		}
		if html == "" {
			html = childHTML
		}
	}

	return text, html
}

func bodyOf(part *gmail.MessagePart) (text, html string) {
	if part.Body == nil || part.Body.Data == "" {
		return "", ""
	}

	switch part.MimeType {
	case "text/plain":
		return decodeBase64URL(part.Body.Data), ""
	case "text/html":
		return "", decodeBase64URL(part.Body.Data)
	default:
		return "", ""
	}
}

var bodyEncodings = []*base64.Encoding{
	base64.URLEncoding,
	base64.RawURLEncoding,
	base64.StdEncoding,
	base64.RawStdEncoding,
}

// decodeBase64URL accepts base64url with or without padding, tolerates the
// standard alphabet and falls back to the raw data.
func decodeBase64URL(data string) string {
	for _, enc := range bodyEncodings {
		if decoded, err := enc.DecodeString(data); err == nil {
			return string(decoded)
		}
	}
	return data
}

func extractAttachments(part *gmail.MessagePart) []Attachment {
	var out []Attachment

	if part.Body != nil && part.Body.AttachmentId != "" {
		out = append(out, Attachment{
			ID:       part.PartId,
			Filename: part.Filename,
			MimeType: part.MimeType,
			Size:     part.Body.Size,
		})
	}

	for _, child := range part.Parts {
		out = append(out, extractAttachments(child)...)
	}

	return out
}
