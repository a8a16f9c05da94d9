package ast

import "strings"

// WalkStatus steers a tree walk.
type WalkStatus int

// Results of a visitor function.
const (
	WalkContinue WalkStatus = iota
	WalkSkipChildren
	WalkStop
)

// Visitor is called twice for every node, once when entering it and once when
// leaving it. The result on leaving is ignored except for WalkStop.
type Visitor func(n Node, entering bool) WalkStatus

// Walk traverses the tree rooted at n depth-first.
func Walk(n Node, visit Visitor) WalkStatus {
	status := visit(n, true)
	if status == WalkStop {
		return WalkStop
	}
	if status != WalkSkipChildren {
		for _, c := range Children(n) {
			if Walk(c, visit) == WalkStop {
				return WalkStop
			}
		}
	}
	if visit(n, false) == WalkStop {
		return WalkStop
	}
	return WalkContinue
}

// Children returns the child nodes of n as a fresh slice.
func Children(n Node) []Node {
	var children []Node
	switch x := n.(type) {
	case *Document:
		for _, c := range x.Children {
			children = append(children, c)
		}
	case *Blockquote:
		for _, c := range x.Children {
			children = append(children, c)
		}
	case *ListItem:
		for _, c := range x.Children {
			children = append(children, c)
		}
	case *List:
		for _, c := range x.Children {
			children = append(children, c)
		}
	case *Table:
		for _, c := range x.Children {
			children = append(children, c)
		}
	case *TableRow:
		for _, c := range x.Children {
			children = append(children, c)
		}
	case *Heading:
		children = inlinesAsNodes(x.Children)
	case *Paragraph:
		children = inlinesAsNodes(x.Children)
	case *TableCell:
		children = inlinesAsNodes(x.Children)
	case *Emphasis:
		children = inlinesAsNodes(x.Children)
	case *Strong:
		children = inlinesAsNodes(x.Children)
	case *Link:
		children = inlinesAsNodes(x.Children)
	}
	return children
}

func inlinesAsNodes(inl []Inline) []Node {
	nodes := make([]Node, len(inl))
	for i, c := range inl {
		nodes[i] = c
	}
	return nodes
}

// PlainText concatenates the textual content of inline nodes, dropping all
// markup. Breaks become spaces, images contribute their description.
func PlainText(inlines []Inline) string {
	var b strings.Builder
	collectText(&b, inlines)
	return b.String()
}

func collectText(b *strings.Builder, inlines []Inline) {
	for _, inl := range inlines {
		switch x := inl.(type) {
		case *Text:
			b.WriteString(x.Value)
		case *CodeSpan:
			b.WriteString(x.Value)
		case *HardBreak, *SoftBreak:
			b.WriteByte(' ')
		case *Emphasis:
			collectText(b, x.Children)
		case *Strong:
			collectText(b, x.Children)
		case *Link:
			collectText(b, x.Children)
		case *Image:
			b.WriteString(x.Alt)
		}
	}
}
