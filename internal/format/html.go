package format

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxUnwrapPasses bounds nested layout-table unwrapping.
const maxUnwrapPasses = 10

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Converter turns HTML-only email bodies into readable text.
type Converter struct{}

// HTML2Text strips markup from an HTML email body. Single-column layout
// tables are unwrapped first so their rows become lines; data tables keep
// one line per row with cells separated by " | ".
func (c Converter) HTML2Text(raw []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("html.Parse failed: %w", err)
	}

	for range maxUnwrapPasses {
		if !unwrapLayoutTables(doc) {
			break
		}
	}

	var b strings.Builder
	writeText(&b, doc)

	text := blankRuns.ReplaceAllString(b.String(), "\n\n")
	return strings.TrimSpace(text), nil
}

// unwrapLayoutTables replaces layout tables with their cell content,
// bottom-up. It reports whether anything changed.
func unwrapLayoutTables(n *html.Node) bool {
	changed := false

	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		if unwrapLayoutTables(child) {
			changed = true
		}
		child = next
	}

	if n.Type == html.ElementNode && n.DataAtom == atom.Table && isLayoutTable(n) {
		unwrap(n)
		changed = true
	}

	return changed
}

// isLayoutTable treats headerless single-column tables as layout, unless they
// look like a long uniform list of data rows.
func isLayoutTable(table *html.Node) bool {
	if hasDescendant(table, atom.Th, atom.Thead) {
		return false
	}

	var cellCounts []int
	walkElements(table, atom.Tr, func(tr *html.Node) {
		cellCounts = append(cellCounts, countCells(tr))
	})

	for _, c := range cellCounts {
		if c > 1 {
			return false
		}
	}

	for _, attr := range table.Attr {
		if attr.Key == "id" && (attr.Val == "main" || strings.Contains(attr.Val, "layout") || strings.Contains(attr.Val, "wrapper")) {
			return true
		}
	}

	return len(cellCounts) <= 5
}

func unwrap(table *html.Node) {
	parent := table.Parent
	if parent == nil {
		return
	}

	walkElements(table, atom.Tr, func(tr *html.Node) {
		for cell := tr.FirstChild; cell != nil; cell = cell.NextSibling {
			if cell.Type != html.ElementNode {
				continue
			}
			for c := cell.FirstChild; c != nil; {
				next := c.NextSibling
				cell.RemoveChild(c)
				parent.InsertBefore(c, table)
				c = next
			}
		}
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: "\n"}, table)
	})

	parent.RemoveChild(table)
}

// walkElements calls fn for every element of kind a below n. It does not
// descend into matches or into nested tables.
func walkElements(n *html.Node, a atom.Atom, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if c.DataAtom == a {
				fn(c)
				continue
			}
			if c.DataAtom == atom.Table {
				continue
			}
		}
		walkElements(c, a, fn)
	}
}

func hasDescendant(n *html.Node, atoms ...atom.Atom) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			for _, a := range atoms {
				if c.DataAtom == a {
					return true
				}
			}
		}
		if hasDescendant(c, atoms...) {
			return true
		}
	}
	return false
}

func countCells(tr *html.Node) int {
	n := 0
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if isCell(c) {
			n++
		}
	}
	return n
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		text := strings.Join(strings.Fields(n.Data), " ")
		if text == "" {
			if n.Data == "\n" {
				b.WriteByte('\n')
			}
			return
		}
		if s := b.String(); s != "" && !strings.HasSuffix(s, "\n") && !strings.HasSuffix(s, " ") {
			b.WriteByte(' ')
		}
		b.WriteString(text)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Head:
			return
		case atom.Br:
			b.WriteByte('\n')
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
		if isCell(c) && hasNextCell(c) {
			b.WriteString(" | ")
		}
	}

	if n.Type == html.ElementNode && isBlock(n.DataAtom) {
		b.WriteByte('\n')
	}
}

func isCell(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.DataAtom == atom.Td || n.DataAtom == atom.Th)
}

func hasNextCell(n *html.Node) bool {
	for c := n.NextSibling; c != nil; c = c.NextSibling {
		if isCell(c) {
			return true
		}
	}
	return false
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Tr, atom.Li, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Table, atom.Ul, atom.Ol, atom.Blockquote, atom.Pre:
		return true
	}
	return false
}
