// Package tool holds the registry of tools the email agent may call and
// exposes them over MCP.
package tool

import (
	"errors"
	"fmt"
	"slices"
)

// DefaultNamespace holds the built-in tools and is always listed.
const DefaultNamespace = "default"

// ErrUnknownTool indicates a required tool name is not registered.
var ErrUnknownTool = errors.New("unknown tool")

// UnknownToolError names the tool that could not be resolved.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownTool, e.Name)
}

// Is reports whether target is ErrUnknownTool.
func (e *UnknownToolError) Is(target error) bool {
	return target == ErrUnknownTool
}

// Provider supplies the tools of one namespace.
type Provider interface {
	Namespace() string
	Tools() []Tool
}

// Toolset is a static Provider.
type Toolset struct {
	Name    string
	Members []Tool
}

// Namespace implements Provider.
func (t Toolset) Namespace() string { return t.Name }

// Tools implements Provider.
func (t Toolset) Tools() []Tool { return t.Members }

type namespace struct {
	name  string
	tools []Tool
}

// Registry maps tool names to tools, grouped by namespace. It is immutable
// after construction and safe for concurrent use.
type Registry struct {
	namespaces []namespace
	byName     map[string]Tool
}

// NewRegistry builds a registry from providers. Namespaces and tool names
// must be unique across the registry.
func NewRegistry(providers ...Provider) (*Registry, error) {
	r := &Registry{byName: make(map[string]Tool)}

	for _, p := range providers {
		ns := p.Namespace()
		if ns == "" {
			return nil, errors.New("provider namespace must not be empty")
		}
		if r.namespace(ns) != nil {
			return nil, fmt.Errorf("namespace %q registered twice", ns)
		}

		tools := slices.Clone(p.Tools())
		for i := range tools {
			tools[i].Namespace = ns
			t := tools[i]
			if t.Name == "" {
				return nil, fmt.Errorf("namespace %q: tool without a name", ns)
			}
			if _, ok := r.byName[t.Name]; ok {
				return nil, fmt.Errorf("namespace %q: tool %q registered twice", ns, t.Name)
			}
			r.byName[t.Name] = t
		}

		r.namespaces = append(r.namespaces, namespace{name: ns, tools: tools})
	}

	return r, nil
}

// List returns the tools of the default namespace plus the given namespaces.
// A nil names returns every selected tool in definition order. Otherwise the
// result follows names, keeping duplicates and silently dropping names that
// are not registered in the selected namespaces.
func (r *Registry) List(names []string, namespaces ...string) []Tool {
	selected := r.selected(namespaces)

	if names == nil {
		var out []Tool
		for _, ns := range selected {
			out = append(out, ns.tools...)
		}
		return out
	}

	index := indexNamespaces(selected)
	out := make([]Tool, 0, len(names))
	for _, name := range names {
		if t, ok := index[name]; ok {
			out = append(out, t)
		}
	}

	return out
}

// Require is the strict form of List: every name must resolve.
func (r *Registry) Require(names []string, namespaces ...string) ([]Tool, error) {
	index := indexNamespaces(r.selected(namespaces))

	out := make([]Tool, 0, len(names))
	for _, name := range names {
		t, ok := index[name]
		if !ok {
			return nil, &UnknownToolError{Name: name}
		}
		out = append(out, t)
	}

	return out, nil
}

// Index maps tools by name. A nil tools indexes the default listing.
func (r *Registry) Index(tools []Tool) map[string]Tool {
	if tools == nil {
		tools = r.List(nil)
	}
	return Index(tools)
}

// Lookup finds a tool by name in any namespace.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Namespaces returns the registered namespaces in registration order.
func (r *Registry) Namespaces() []string {
	out := make([]string, 0, len(r.namespaces))
	for _, ns := range r.namespaces {
		out = append(out, ns.name)
	}
	return out
}

// Extended returns every namespace other than the default one.
func (r *Registry) Extended() []string {
	var out []string
	for _, ns := range r.namespaces {
		if ns.name != DefaultNamespace {
			out = append(out, ns.name)
		}
	}
	return out
}

// Index maps tools by name; on duplicates the later tool wins.
func Index(tools []Tool) map[string]Tool {
	out := make(map[string]Tool, len(tools))
	for _, t := range tools {
		out[t.Name] = t
	}
	return out
}

// selected returns the default namespace followed by the requested ones in
// registration order. Unknown namespaces are ignored.
func (r *Registry) selected(requested []string) []namespace {
	var out []namespace
	if ns := r.namespace(DefaultNamespace); ns != nil {
		out = append(out, *ns)
	}
	for _, ns := range r.namespaces {
		if ns.name != DefaultNamespace && slices.Contains(requested, ns.name) {
			out = append(out, ns)
		}
	}
	return out
}

func (r *Registry) namespace(name string) *namespace {
	for i := range r.namespaces {
		if r.namespaces[i].name == name {
			return &r.namespaces[i]
		}
	}
	return nil
}

func indexNamespaces(namespaces []namespace) map[string]Tool {
	index := make(map[string]Tool)
	for _, ns := range namespaces {
		for _, t := range ns.tools {
			index[t.Name] = t
		}
	}
	return index
}
