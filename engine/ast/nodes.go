package ast

import "fmt"

// NodeKind is the discriminant of a node.
type NodeKind uint8

// Kinds of nodes. Document is the root, kinds up to TableCell are blocks or
// parts of blocks, the remaining kinds are inline nodes.
const (
	KindDocument NodeKind = iota
	KindThematicBreak
	KindHeading
	KindCodeBlock
	KindHTMLBlock
	KindParagraph
	KindLinkReferenceDefinition
	KindBlockquote
	KindList
	KindListItem
	KindTable
	KindTableRow
	KindTableCell
	KindText
	KindCodeSpan
	KindHardBreak
	KindSoftBreak
	KindHTMLInline
	KindEmphasis
	KindStrong
	KindLink
	KindImage
	kindStopper
)

var kindNames = [kindStopper]string{
	"document", "thematicBreak", "heading", "codeBlock", "htmlBlock", "paragraph",
	"linkReferenceDefinition", "blockquote", "list", "listItem", "table", "tableRow",
	"tableCell", "text", "codeSpan", "hardBreak", "softBreak", "htmlInline",
	"emphasis", "strong", "link", "image",
}

func (k NodeKind) String() string {
	if k >= kindStopper {
		return fmt.Sprintf("NodeKind(%d)", k)
	}
	return kindNames[k]
}

// IsInline is true for kinds of inline nodes.
func (k NodeKind) IsInline() bool {
	return k >= KindText && k < kindStopper
}

// Node is implemented by every node of a document tree.
type Node interface {
	Kind() NodeKind
}

// Block is a block-level node. Table rows and cells are not blocks on their
// own; they only occur as children of tables.
type Block interface {
	Node
	isBlock()
}

// Inline is an inline-level node.
type Inline interface {
	Node
	isInline()
}

// Position locates a node in the source text. Lines and columns are 1-based,
// offsets are byte offsets into the normalized input. End positions are
// inclusive of the node's last line.
type Position struct {
	StartLine, StartColumn, StartOffset int
	EndLine, EndColumn, EndOffset       int
}

func (p *Position) String() string {
	if p == nil {
		return "<no position>"
	}
	return fmt.Sprintf("%d:%d-%d:%d", p.StartLine, p.StartColumn, p.EndLine, p.EndColumn)
}

// HeadingStyle tells how a heading has been written in source.
type HeadingStyle uint8

// Heading styles. HeadingUnset lets generators decide.
const (
	HeadingUnset HeadingStyle = iota
	HeadingATX
	HeadingSetext
)

func (s HeadingStyle) String() string {
	switch s {
	case HeadingATX:
		return "atx"
	case HeadingSetext:
		return "setext"
	}
	return "unset"
}

// CodeStyle tells how a code block has been written in source.
type CodeStyle uint8

// Code block styles. CodeUnset lets generators decide.
const (
	CodeUnset CodeStyle = iota
	CodeFenced
	CodeIndented
)

func (s CodeStyle) String() string {
	switch s {
	case CodeFenced:
		return "fenced"
	case CodeIndented:
		return "indented"
	}
	return "unset"
}

// Alignment of a table column.
type Alignment uint8

// Column alignments. AlignNone denotes a column without alignment markers.
const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return "none"
}

// --- Blocks ----------------------------------------------------------------

// Document is the root of a tree.
type Document struct {
	Children   []Block
	References References
	LineEnding string // "\n", "\r\n" or "\r", as detected in the input
	Pos        *Position
}

// ThematicBreak is a horizontal rule.
type ThematicBreak struct {
	Marker string // "-", "*" or "_"
	Pos    *Position
}

// Heading is an ATX or setext heading of level 1 to 6.
type Heading struct {
	Level    int
	Style    HeadingStyle
	Children []Inline
	Pos      *Position
}

// CodeBlock is a fenced or indented code block.
type CodeBlock struct {
	Style       CodeStyle
	Fence       string // "`" or "~" for fenced code
	FenceLength int
	Lang        string
	Meta        string
	Value       string
	Pos         *Position
}

// HTMLBlock is raw HTML of one of the seven HTML block types.
type HTMLBlock struct {
	HTMLType int
	Value    string
	Pos      *Position
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Children []Inline
	Pos      *Position
}

// LinkReferenceDefinition is a `[label]: url "title"` definition.
type LinkReferenceDefinition struct {
	Label string // as written, not normalized
	URL   string
	Title string
	Pos   *Position
}

// Blockquote contains blocks prefixed with '>'.
type Blockquote struct {
	Children []Block
	Pos      *Position
}

// List is an ordered or unordered list. Marker is the bullet character for
// unordered lists and the delimiter ('.' or ')') for ordered ones. Start is
// the number of the first item of an ordered list, nil meaning 1.
type List struct {
	Ordered  bool
	Start    *int
	Spread   bool
	Marker   string
	Children []*ListItem
	Pos      *Position
}

// FirstNumber returns the number of the first item of an ordered list.
func (l *List) FirstNumber() int {
	if l.Start == nil {
		return 1
	}
	return *l.Start
}

// StartAt returns a list start number.
func StartAt(n int) *int {
	return &n
}

// ListItem is an item of a list. Checked is non-nil for task items.
type ListItem struct {
	Children []Block
	Marker   string // the item's marker as written, e.g. "-" or "3)"
	Spread   bool
	Checked  *bool
	Pos      *Position
}

// Table is a GFM table. Align has one entry per column, and every row has
// exactly len(Align) cells.
type Table struct {
	Children []*TableRow
	Align    []Alignment
	Pos      *Position
}

// TableRow is a header or body row of a table.
type TableRow struct {
	Children []*TableCell
	IsHeader bool
	Pos      *Position
}

// TableCell is a single table cell.
type TableCell struct {
	Children []Inline
	Align    Alignment
	IsHeader bool
}

// --- Inlines ---------------------------------------------------------------

// Text is literal text.
type Text struct {
	Value string
}

// CodeSpan is inline code.
type CodeSpan struct {
	Value string
}

// HardBreak is a forced line break.
type HardBreak struct{}

// SoftBreak is a line ending within a paragraph.
type SoftBreak struct{}

// HTMLInline is raw inline HTML.
type HTMLInline struct {
	Value string
}

// Emphasis is emphasized content, marker is "*" or "_".
type Emphasis struct {
	Marker   string
	Children []Inline
}

// Strong is strongly emphasized content, marker is "**" or "__".
type Strong struct {
	Marker   string
	Children []Inline
}

// Link is a hyperlink.
type Link struct {
	URL      string
	Title    string
	Children []Inline
}

// Image is an image. Its description is kept as plain text.
type Image struct {
	URL   string
	Alt   string
	Title string
}

// --- Kinds -----------------------------------------------------------------

func (*Document) Kind() NodeKind                { return KindDocument }
func (*ThematicBreak) Kind() NodeKind           { return KindThematicBreak }
func (*Heading) Kind() NodeKind                 { return KindHeading }
func (*CodeBlock) Kind() NodeKind               { return KindCodeBlock }
func (*HTMLBlock) Kind() NodeKind               { return KindHTMLBlock }
func (*Paragraph) Kind() NodeKind               { return KindParagraph }
func (*LinkReferenceDefinition) Kind() NodeKind { return KindLinkReferenceDefinition }
func (*Blockquote) Kind() NodeKind              { return KindBlockquote }
func (*List) Kind() NodeKind                    { return KindList }
func (*ListItem) Kind() NodeKind                { return KindListItem }
func (*Table) Kind() NodeKind                   { return KindTable }
func (*TableRow) Kind() NodeKind                { return KindTableRow }
func (*TableCell) Kind() NodeKind               { return KindTableCell }
func (*Text) Kind() NodeKind                    { return KindText }
func (*CodeSpan) Kind() NodeKind                { return KindCodeSpan }
func (*HardBreak) Kind() NodeKind               { return KindHardBreak }
func (*SoftBreak) Kind() NodeKind               { return KindSoftBreak }
func (*HTMLInline) Kind() NodeKind              { return KindHTMLInline }
func (*Emphasis) Kind() NodeKind                { return KindEmphasis }
func (*Strong) Kind() NodeKind                  { return KindStrong }
func (*Link) Kind() NodeKind                    { return KindLink }
func (*Image) Kind() NodeKind                   { return KindImage }

func (*ThematicBreak) isBlock()           {}
func (*Heading) isBlock()                 {}
func (*CodeBlock) isBlock()               {}
func (*HTMLBlock) isBlock()               {}
func (*Paragraph) isBlock()               {}
func (*LinkReferenceDefinition) isBlock() {}
func (*Blockquote) isBlock()              {}
func (*List) isBlock()                    {}
func (*Table) isBlock()                   {}

func (*Text) isInline()       {}
func (*CodeSpan) isInline()   {}
func (*HardBreak) isInline()  {}
func (*SoftBreak) isInline()  {}
func (*HTMLInline) isInline() {}
func (*Emphasis) isInline()   {}
func (*Strong) isInline()     {}
func (*Link) isInline()       {}
func (*Image) isInline()      {}

// PositionOf returns the source position of a block-level node, if it has
// been recorded.
func PositionOf(n Node) *Position {
	switch b := n.(type) {
	case *Document:
		return b.Pos
	case *ThematicBreak:
		return b.Pos
	case *Heading:
		return b.Pos
	case *CodeBlock:
		return b.Pos
	case *HTMLBlock:
		return b.Pos
	case *Paragraph:
		return b.Pos
	case *LinkReferenceDefinition:
		return b.Pos
	case *Blockquote:
		return b.Pos
	case *List:
		return b.Pos
	case *ListItem:
		return b.Pos
	case *Table:
		return b.Pos
	case *TableRow:
		return b.Pos
	}
	return nil
}
