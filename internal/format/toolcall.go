package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Tool names with a dedicated rendering.
const (
	NameWriteEmail      = "write_email"
	NameScheduleMeeting = "schedule_meeting"
	NameQuestion        = "Question"
)

// Placeholder stands in for an argument the call did not carry.
const Placeholder = "<missing>"

// ToolCall is a tool invocation as emitted by the agent runtime.
type ToolCall struct {
	Name string `json:"name" yaml:"name"`
	Args any    `json:"args" yaml:"args"`
}

// Call resolves the raw call into its variant.
func (tc ToolCall) Call() Call {
	return ParseCall(tc.Name, tc.Args)
}

// Call is one of WriteEmail, ScheduleMeeting, Question or Unrecognized.
type Call interface {
	// ToolName is the name the call was made with.
	ToolName() string
	// Missing lists expected argument keys the call did not carry.
	Missing() []string

	isCall()
}

// WriteEmail is a write_email call.
type WriteEmail struct {
	To      string
	Subject string
	Content string

	missing []string
}

// ScheduleMeeting is a schedule_meeting call.
type ScheduleMeeting struct {
	Subject         string
	Attendees       []string
	DurationMinutes string
	PreferredDay    string

	missing []string
}

// Question is a call asking the user something.
type Question struct {
	Content string

	missing []string
}

// Unrecognized is any other call; its arguments are kept raw.
type Unrecognized struct {
	Name string
	Args any
}

func (WriteEmail) ToolName() string      { return NameWriteEmail }
func (ScheduleMeeting) ToolName() string { return NameScheduleMeeting }
func (Question) ToolName() string        { return NameQuestion }
func (u Unrecognized) ToolName() string  { return u.Name }

func (c WriteEmail) Missing() []string      { return c.missing }
func (c ScheduleMeeting) Missing() []string { return c.missing }
func (c Question) Missing() []string        { return c.missing }
func (Unrecognized) Missing() []string      { return nil }

func (WriteEmail) isCall()      {}
func (ScheduleMeeting) isCall() {}
func (Question) isCall()        {}
func (Unrecognized) isCall()    {}

// ParseCall resolves a call by name. Missing arguments never fail: they take
// the Placeholder value and are reported by Missing.
func ParseCall(name string, args any) Call {
	switch name {
	case NameWriteEmail:
		a := newArgReader(args)
		return WriteEmail{
			To:      a.str("to"),
			Subject: a.str("subject"),
			Content: a.str("content"),
			missing: a.missing,
		}
	case NameScheduleMeeting:
		a := newArgReader(args)
		return ScheduleMeeting{
			Subject:         a.str("subject"),
			Attendees:       a.list("attendees"),
			DurationMinutes: a.str("duration_minutes"),
			PreferredDay:    a.str("preferred_day"),
			missing:         a.missing,
		}
	case NameQuestion:
		a := newArgReader(args)
		return Question{
			Content: a.str("content"),
			missing: a.missing,
		}
	default:
		return Unrecognized{Name: name, Args: args}
	}
}

// Render renders a resolved call.
func Render(c Call) string {
	switch c := c.(type) {
	case WriteEmail:
		return fmt.Sprintf("# Email Draft\n\n**To**: %s\n**Subject**: %s\n\n%s\n",
			c.To, c.Subject, c.Content)
	case ScheduleMeeting:
		return fmt.Sprintf("# Calendar Invite\n\n**Meeting**: %s\n**Attendees**: %s\n**Duration**: %s minutes\n**Day**: %s\n",
			c.Subject, strings.Join(c.Attendees, ", "), c.DurationMinutes, c.PreferredDay)
	case Question:
		return fmt.Sprintf("# Question for User\n\n%s\n", c.Content)
	case Unrecognized:
		return fmt.Sprintf("# Tool Call: %s\n\nArguments:\n%s\n", c.Name, renderArgs(c.Args))
	default:
		panic(fmt.Sprintf("format: unhandled call type %T", c))
	}
}

// ToolCallMarkdown parses and renders a call in one step.
func ToolCallMarkdown(name string, args any) string {
	return Render(ParseCall(name, args))
}

// renderArgs writes mappings as indented JSON and anything else in its
// string form.
func renderArgs(args any) string {
	if args == nil {
		return Placeholder
	}
	if reflect.ValueOf(args).Kind() != reflect.Map {
		return fmt.Sprint(args)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonable(args)); err != nil {
		return fmt.Sprint(args)
	}

	return strings.TrimSuffix(buf.String(), "\n")
}

// jsonable rewrites every map into map[string]any so maps with non-string
// keys, as YAML decodes them, encode as JSON objects.
func jsonable(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = jsonable(iter.Value().Interface())
		}
		return out
	case reflect.Slice:
		switch rv.Type().Elem().Kind() {
		case reflect.Interface, reflect.Map, reflect.Slice:
		default:
			return v
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = jsonable(rv.Index(i).Interface())
		}
		return out
	default:
		return v
	}
}

type argReader struct {
	args    map[string]any
	missing []string
}

func newArgReader(args any) *argReader {
	a := &argReader{}

	if m, ok := args.(map[string]any); ok {
		a.args = m
		return a
	}

	rv := reflect.ValueOf(args)
	if rv.Kind() != reflect.Map {
		return a
	}

	a.args = make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		a.args[fmt.Sprint(iter.Key().Interface())] = deref(iter.Value())
	}

	return a
}

// deref unwraps pointers and interfaces; a nil one yields nil.
func deref(v reflect.Value) any {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	return v.Interface()
}

func (a *argReader) get(key string) (any, bool) {
	v, ok := a.args[key]
	if !ok || v == nil {
		a.missing = append(a.missing, key)
		return nil, false
	}
	return v, true
}

func (a *argReader) str(key string) string {
	v, ok := a.get(key)
	if !ok {
		return Placeholder
	}
	return fmt.Sprint(v)
}

func (a *argReader) list(key string) []string {
	v, ok := a.get(key)
	if !ok {
		return []string{Placeholder}
	}

	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}
