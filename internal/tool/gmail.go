package tool

// GmailNamespace holds the mailbox tools.
const GmailNamespace = "gmail"

// Gmail tool names.
const (
	NameSearchMessages = "search_messages"
	NameGetMessages    = "get_messages"
)

type gmailSvc interface {
	getMessagesSvc
	searchMessagesSvc
}

// Gmail returns the gmail namespace.
func Gmail(svc gmailSvc, conv htmlConverter, parser gmailParser) Toolset {
	return Toolset{
		Name: GmailNamespace,
		Members: []Tool{
			newTool(NameSearchMessages, "Search Gmail messages using Gmail search syntax", KindAction,
				NewSearchMessages(svc).SearchMessages),
			newTool(NameGetMessages, "Get full message content and a markdown rendering for specified message IDs", KindAction,
				NewGetMessages(svc, conv, parser).GetMessages),
		},
	}
}
