package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hal9000y/email-assistant/internal/tool"
)

func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)

	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestToolsCmd(t *testing.T) {
	out, _, err := run(t, "", "tools")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "write_email"))
	assert.Contains(t, lines[0], "action")
	assert.True(t, strings.HasPrefix(lines[1], "Done"))
	assert.Contains(t, lines[1], "signal")
	assert.True(t, strings.HasPrefix(lines[2], "Question"))
}

func TestToolsCmdSelection(t *testing.T) {
	out, _, err := run(t, "", "tools", "Question", "bogus", "-o", "yaml")
	require.NoError(t, err)

	var entries []toolEntry
	require.NoError(t, yaml.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Question", entries[0].Name)
	assert.Equal(t, tool.DefaultNamespace, entries[0].Namespace)
	assert.Equal(t, string(tool.KindSignal), entries[0].Kind)

	_, _, err = run(t, "", "tools", "Question", "bogus", "--strict")
	require.Error(t, err)
	assert.ErrorIs(t, err, tool.ErrUnknownTool)
}

func TestToolsCmdExtended(t *testing.T) {
	out, _, err := run(t, "", "tools", "--extended")
	require.NoError(t, err)
	assert.Contains(t, out, "search_messages")
	assert.Contains(t, out, "get_messages")

	out, _, err = run(t, "", "tools", "get_messages", "--namespace", "gmail", "--strict")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "get_messages"))
}

func TestRenderEmailCmd(t *testing.T) {
	input := `
author: alice@example.com
to: bob@example.com
subject: Standup
email_thread: Moved to 10am.
`
	out, _, err := run(t, input, "render", "email")
	require.NoError(t, err)
	assert.Equal(t, "\n\n**Subject**: Standup\n**From**: alice@example.com\n**To**: bob@example.com\n\nMoved to 10am.\n\n---\n", out)
}

func TestRenderEmailCmdGmailFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "email.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"from":"a@x.org","to":"b@y.org","subject":"Hi","body":"Hello","id":"m-1"}`,
	), 0600))

	out, _, err := run(t, "", "render", "email", "--schema", "gmail", path)
	require.NoError(t, err)
	assert.Contains(t, out, "**ID**: m-1\n")
	assert.Contains(t, out, "\n\nHello\n\n---\n")
}

func TestRenderEmailCmdMissingField(t *testing.T) {
	_, _, err := run(t, "author: a\nto: b\nsubject: c\n", "render", "email")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email_thread")

	_, _, err = run(t, "author: a\n", "render", "email", "--schema", "outlook")
	require.Error(t, err)
}

func TestRenderToolCallCmd(t *testing.T) {
	input := `
name: schedule_meeting
args:
  subject: Planning
  attendees: [a@x.org, b@x.org]
  duration_minutes: 30
`
	out, stderr, err := run(t, input, "render", "tool-call")
	require.NoError(t, err)
	assert.Contains(t, out, "**Attendees**: a@x.org, b@x.org\n")
	assert.Contains(t, out, "**Duration**: 30 minutes\n")
	assert.Contains(t, out, "**Day**: <missing>\n")
	assert.Contains(t, stderr, "missing preferred_day")
}

func TestRenderToolCallCmdUnknownTool(t *testing.T) {
	out, stderr, err := run(t, `{"name": "archive", "args": {"id": "m-1"}}`, "render", "tool-call")
	require.NoError(t, err)
	assert.Equal(t, "# Tool Call: archive\n\nArguments:\n{\n  \"id\": \"m-1\"\n}\n", out)
	assert.Empty(t, stderr)

	out, _, err = run(t, "name: archive\nargs: {1: x}\n", "render", "tool-call")
	require.NoError(t, err)
	assert.Equal(t, "# Tool Call: archive\n\nArguments:\n{\n  \"1\": \"x\"\n}\n", out)

	_, _, err = run(t, `{"args": {}}`, "render", "tool-call")
	require.Error(t, err)
}
