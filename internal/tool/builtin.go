package tool

import "log/slog"

// Built-in tool names.
const (
	NameWriteEmail = "write_email"
	NameDone       = "Done"
	NameQuestion   = "Question"
)

// Builtin returns the default namespace: write_email, Done and Question, in
// that order. A nil sender keeps written emails as drafts.
func Builtin(sender emailSender, logger *slog.Logger) Toolset {
	return Toolset{
		Name: DefaultNamespace,
		Members: []Tool{
			newTool(NameWriteEmail, "Write and send an email", KindAction,
				NewWriteEmail(sender, logger).WriteEmail),
			newTool(NameDone, "Signal that the email has been handled", KindSignal, Done),
			newTool(NameQuestion, "Ask the user a clarifying question", KindSignal, Question),
		},
	}
}
