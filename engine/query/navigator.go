package query

import (
	"strconv"
	"strings"

	"github.com/antchfx/xpath"
	"github.com/npillmayer/mdtree/engine/ast"
)

// NodeNavigator implements xpath.NodeNavigator for document trees.
//
// For a description of the various methods of interface xpath.NodeNavigator
// please refer to the documentation of antchfx/xpath. It is not replicated here.
type NodeNavigator struct {
	root  ast.Node
	path  []frame     // path[0] is the root
	attrs []attribute // attributes of the current node, computed on demand
	attr  int         // attributes index
}

type frame struct {
	node     ast.Node
	siblings []ast.Node
	index    int
}

type attribute struct {
	key, value string
}

// NewNavigator creates a new xpath.NodeNavigator for a (sub-)tree.
func NewNavigator(root ast.Node) *NodeNavigator {
	return &NodeNavigator{
		root: root,
		path: []frame{{node: root}},
		attr: -1,
	}
}

// Current returns the node the navigator is positioned at. For attributes,
// this is the node owning the attribute.
func (nav *NodeNavigator) Current() ast.Node {
	return nav.top().node
}

func (nav *NodeNavigator) top() *frame {
	return &nav.path[len(nav.path)-1]
}

func (nav *NodeNavigator) NodeType() xpath.NodeType {
	switch {
	case nav.attr != -1:
		return xpath.AttributeNode
	case len(nav.path) == 1:
		return xpath.RootNode
	}
	if _, ok := nav.Current().(*ast.Text); ok {
		return xpath.TextNode
	}
	return xpath.ElementNode
}

func (nav *NodeNavigator) LocalName() string {
	if nav.attr != -1 {
		return nav.attrs[nav.attr].key
	}
	return nav.Current().Kind().String()
}

func (*NodeNavigator) Prefix() string {
	return ""
}

func (nav *NodeNavigator) Value() string {
	if nav.attr != -1 {
		return nav.attrs[nav.attr].value
	}
	return textContent(nav.Current())
}

func (nav *NodeNavigator) Copy() xpath.NodeNavigator {
	n := *nav
	n.path = append([]frame(nil), nav.path...)
	return &n
}

func (nav *NodeNavigator) MoveToRoot() {
	nav.path = nav.path[:1]
	nav.attr = -1
}

func (nav *NodeNavigator) MoveToParent() bool {
	if nav.attr != -1 {
		nav.attr = -1 // move from attributes to element
		return true
	}
	if len(nav.path) == 1 {
		return false
	}
	nav.path = nav.path[:len(nav.path)-1]
	return true
}

func (nav *NodeNavigator) MoveToNextAttribute() bool {
	if nav.attr == -1 {
		nav.attrs = attributes(nav.Current())
	}
	if nav.attr >= len(nav.attrs)-1 {
		return false
	}
	nav.attr++
	return true
}

func (nav *NodeNavigator) MoveToChild() bool {
	if nav.attr != -1 {
		return false
	}
	children := ast.Children(nav.Current())
	if len(children) == 0 {
		return false
	}
	nav.path = append(nav.path, frame{node: children[0], siblings: children})
	return true
}

func (nav *NodeNavigator) MoveToFirst() bool {
	if nav.attr != -1 || nav.top().index == 0 {
		return false
	}
	return nav.moveSibling(0)
}

func (nav *NodeNavigator) MoveToNext() bool {
	if nav.attr != -1 {
		return false
	}
	return nav.moveSibling(nav.top().index + 1)
}

func (nav *NodeNavigator) MoveToPrevious() bool {
	if nav.attr != -1 {
		return false
	}
	return nav.moveSibling(nav.top().index - 1)
}

func (nav *NodeNavigator) moveSibling(i int) bool {
	f := nav.top()
	if i < 0 || i >= len(f.siblings) {
		return false
	}
	f.node, f.index = f.siblings[i], i
	return true
}

func (nav *NodeNavigator) MoveTo(other xpath.NodeNavigator) bool {
	n, ok := other.(*NodeNavigator)
	if !ok || n.root != nav.root {
		return false
	}
	nav.path = append(nav.path[:0], n.path...)
	nav.attrs = n.attrs
	nav.attr = n.attr
	return true
}

func (nav *NodeNavigator) String() string {
	return nav.Value()
}

var _ xpath.NodeNavigator = &NodeNavigator{}

// textContent concatenates the text of a node and its descendants.
func textContent(n ast.Node) string {
	var b strings.Builder
	ast.Walk(n, func(n ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.WalkContinue
		}
		switch x := n.(type) {
		case *ast.Text:
			b.WriteString(x.Value)
		case *ast.CodeSpan:
			b.WriteString(x.Value)
		case *ast.HTMLInline:
			b.WriteString(x.Value)
		case *ast.SoftBreak, *ast.HardBreak:
			b.WriteByte('\n')
		case *ast.Image:
			b.WriteString(x.Alt)
		case *ast.CodeBlock:
			b.WriteString(x.Value)
		case *ast.HTMLBlock:
			b.WriteString(x.Value)
		}
		return ast.WalkContinue
	})
	return b.String()
}

func attributes(n ast.Node) []attribute {
	var attrs []attribute
	add := func(key, value string) {
		if value != "" {
			attrs = append(attrs, attribute{key, value})
		}
	}
	flag := func(key string, on bool) {
		attrs = append(attrs, attribute{key, strconv.FormatBool(on)})
	}
	switch x := n.(type) {
	case *ast.ThematicBreak:
		add("marker", x.Marker)
	case *ast.Heading:
		add("level", strconv.Itoa(x.Level))
		add("style", x.Style.String())
	case *ast.CodeBlock:
		add("style", x.Style.String())
		add("fence", x.Fence)
		add("lang", x.Lang)
		add("meta", x.Meta)
	case *ast.HTMLBlock:
		add("type", strconv.Itoa(x.HTMLType))
	case *ast.LinkReferenceDefinition:
		add("label", x.Label)
		add("url", x.URL)
		add("title", x.Title)
	case *ast.List:
		flag("ordered", x.Ordered)
		if x.Ordered {
			add("start", strconv.Itoa(x.FirstNumber()))
		}
		flag("spread", x.Spread)
		add("marker", x.Marker)
	case *ast.ListItem:
		add("marker", x.Marker)
		flag("spread", x.Spread)
		if x.Checked != nil {
			flag("checked", *x.Checked)
		}
	case *ast.Table:
		align := make([]string, len(x.Align))
		for i, a := range x.Align {
			align[i] = a.String()
		}
		add("align", strings.Join(align, ","))
	case *ast.TableRow:
		flag("header", x.IsHeader)
	case *ast.TableCell:
		add("align", x.Align.String())
		flag("header", x.IsHeader)
	case *ast.Emphasis:
		add("marker", x.Marker)
	case *ast.Strong:
		add("marker", x.Marker)
	case *ast.Link:
		add("url", x.URL)
		add("title", x.Title)
	case *ast.Image:
		add("url", x.URL)
		add("alt", x.Alt)
		add("title", x.Title)
	}
	return attrs
}
