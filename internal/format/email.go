// Package format renders emails and agent tool calls as markdown for display.
//
// Inputs are not escaped; callers own any markdown-special characters.
package format

import "strings"

// EmailMarkdown renders an email header block followed by the thread and a
// horizontal rule. The ID line is written only when id is not empty.
func EmailMarkdown(subject, author, to, thread, id string) string {
	var b strings.Builder

	b.WriteString("\n\n")
	b.WriteString("**Subject**: " + subject + "\n")
	b.WriteString("**From**: " + author + "\n")
	b.WriteString("**To**: " + to)
	if id != "" {
		b.WriteString("\n**ID**: " + id)
	}
	b.WriteString("\n\n")
	b.WriteString(thread)
	b.WriteString("\n\n---\n")

	return b.String()
}
