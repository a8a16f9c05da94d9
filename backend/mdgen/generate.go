package mdgen

import (
	"strconv"
	"strings"

	"github.com/npillmayer/mdtree/core"
	"github.com/npillmayer/mdtree/core/parameters"
	"github.com/npillmayer/mdtree/engine/ast"
)

// Generate creates Markdown text for a document. If regs is nil, default style
// registers are used. Lines are terminated by the line ending held in the
// registers.
func Generate(doc *ast.Document, regs *parameters.StyleRegisters) (string, error) {
	if doc == nil {
		return "", core.Error(core.EINVALID, "cannot generate Markdown for nil document")
	}
	return GenerateBlocks(doc.Children, regs)
}

// GenerateBlocks creates Markdown text for a sequence of top-level blocks.
func GenerateBlocks(blocks []ast.Block, regs *parameters.StyleRegisters) (string, error) {
	if regs == nil {
		regs = parameters.NewStyleRegisters()
	}
	g := &generator{regs: regs}
	out, err := g.blocks(blocks, context{})
	if err != nil {
		tracer().Errorf("cannot generate Markdown: %v", err)
		return "", err
	}
	if len(out) == 0 {
		return "", nil
	}
	nl := regs.S(parameters.P_LINEENDING)
	tracer().Debugf("generated %d lines for %d blocks", len(out), len(blocks))
	return strings.Join(out, nl) + nl, nil
}

type generator struct {
	regs *parameters.StyleRegisters
}

// context describes the container blocks are generated for.
type context struct {
	tight   bool // no blank lines between blocks, as in tight list items
	inQuote bool // indented code is not available
	bullet  byte // bullet character of the enclosing list item, if any
}

// blocks generates a sequence of sibling blocks.
func (g *generator) blocks(bs []ast.Block, ctx context) ([]string, error) {
	var out []string
	var prev ast.Block
	for i, b := range bs {
		if b == nil {
			return nil, core.Error(core.EINVALID, "nil block at index %d", i)
		}
		lines, err := g.block(b, prev, ctx)
		if err != nil {
			return nil, err
		}
		if prev != nil && (!ctx.tight || needsBlank(prev, b)) {
			out = append(out, "")
		}
		out = append(out, lines...)
		prev = b
	}
	return out, nil
}

// needsBlank is true if b could not follow prev without a blank line in
// between, as b would be read as a continuation of prev.
func needsBlank(prev, b ast.Block) bool {
	if h, ok := prev.(*ast.HTMLBlock); ok && h.HTMLType >= 6 {
		return true
	}
	if _, ok := prev.(*ast.Paragraph); !ok {
		return false
	}
	switch x := b.(type) {
	case *ast.Paragraph, *ast.Table, *ast.LinkReferenceDefinition:
		return true
	case *ast.CodeBlock:
		return x.Style == ast.CodeIndented
	case *ast.HTMLBlock:
		return x.HTMLType == 7
	case *ast.Heading:
		return x.Style == ast.HeadingSetext
	case *ast.List:
		return x.Ordered && x.FirstNumber() != 1
	}
	return false
}

func (g *generator) block(b ast.Block, prev ast.Block, ctx context) ([]string, error) {
	switch x := b.(type) {
	case *ast.ThematicBreak:
		return []string{g.thematicBreak(x, prev, ctx)}, nil
	case *ast.Heading:
		return g.heading(x)
	case *ast.CodeBlock:
		return g.codeBlock(x, prev, ctx), nil
	case *ast.HTMLBlock:
		return strings.Split(x.Value, "\n"), nil
	case *ast.Paragraph:
		text, err := renderInlines(x.Children, g.regs)
		if err != nil {
			return nil, err
		}
		return strings.Split(text, "\n"), nil
	case *ast.LinkReferenceDefinition:
		return []string{"[" + x.Label + "]: " + destination(x.URL, true) + title(x.Title)}, nil
	case *ast.Blockquote:
		return g.blockquote(x, ctx)
	case *ast.List:
		return g.list(x, prev, ctx)
	case *ast.Table:
		return g.table(x)
	}
	return nil, core.Error(core.EINVALID, "unexpected block node of type %T", b)
}

func (g *generator) thematicBreak(tb *ast.ThematicBreak, prev ast.Block, ctx context) string {
	c := tb.Marker
	if c == "" {
		c = g.regs.S(parameters.P_RULECHAR)
	}
	_, afterPara := prev.(*ast.Paragraph)
	if c[0] == ctx.bullet || (c == "-" && afterPara && ctx.tight) {
		// a rule of bullet characters reads as a list item, "---" after a
		// paragraph as a setext underline
		c = "*"
		if ctx.bullet == '*' {
			c = "_"
		}
	}
	return strings.Repeat(c, g.regs.N(parameters.P_RULELENGTH))
}

func (g *generator) heading(h *ast.Heading) ([]string, error) {
	if h.Level < 1 || h.Level > 6 {
		return nil, core.Error(core.EINVALID, "heading level %d out of range", h.Level)
	}
	text, err := renderInlines(h.Children, g.regs)
	if err != nil {
		return nil, err
	}
	style := h.Style
	if style == ast.HeadingUnset {
		style = ast.HeadingATX
		if g.regs.B(parameters.P_SETEXT) && h.Level <= 2 {
			style = ast.HeadingSetext
		}
	}
	if style == ast.HeadingSetext && h.Level <= 2 && strings.TrimSpace(text) != "" {
		lines := strings.Split(text, "\n")
		width := 3
		for _, l := range lines {
			if w := cellWidth(l); w > width {
				width = w
			}
		}
		underline := "="
		if h.Level == 2 {
			underline = "-"
		}
		return append(lines, strings.Repeat(underline, width)), nil
	}
	text = strings.ReplaceAll(text, "\n", " ")
	if strings.HasSuffix(text, "#") && !strings.HasSuffix(text, `\#`) {
		text = text[:len(text)-1] + `\#`
	}
	line := strings.Repeat("#", h.Level)
	if text != "" {
		line += " " + text
	}
	return []string{line}, nil
}

func (g *generator) codeBlock(code *ast.CodeBlock, prev ast.Block, ctx context) []string {
	var content []string
	if code.Value != "" {
		content = strings.Split(code.Value, "\n")
	}
	if g.indentable(code, content, prev, ctx) {
		lines := make([]string, len(content))
		for i, l := range content {
			if l != "" {
				lines[i] = "    " + l
			}
		}
		return lines
	}
	c := code.Fence
	if c == "" {
		c = g.regs.S(parameters.P_FENCECHAR)
	}
	info := code.Lang
	if code.Meta != "" {
		info += " " + code.Meta
	}
	if c == "`" && strings.Contains(info, "`") {
		c = "~"
	}
	n := code.FenceLength
	if n < 3 {
		n = g.regs.N(parameters.P_FENCELENGTH)
	}
	for _, l := range content {
		t := strings.TrimLeft(l, " ")
		if run := len(t) - len(strings.TrimLeft(t, c)); run >= n {
			n = run + 1
		}
	}
	fence := strings.Repeat(c, n)
	lines := make([]string, 0, len(content)+2)
	lines = append(lines, fence+info)
	lines = append(lines, content...)
	return append(lines, fence)
}

// indentable checks if a code block may be generated as indented code.
// Indented code cannot start or end with a blank line, does not exist in
// block quotes, and would merge with a preceding list or indented code block.
func (g *generator) indentable(code *ast.CodeBlock, content []string, prev ast.Block, ctx context) bool {
	if code.Style != ast.CodeIndented || ctx.inQuote || len(content) == 0 {
		return false
	}
	if strings.TrimSpace(content[0]) == "" || strings.TrimSpace(content[len(content)-1]) == "" {
		return false
	}
	switch p := prev.(type) {
	case *ast.List:
		return false
	case *ast.CodeBlock:
		return p.Style != ast.CodeIndented
	}
	return true
}

func (g *generator) blockquote(q *ast.Blockquote, ctx context) ([]string, error) {
	inner, err := g.blocks(q.Children, context{inQuote: true})
	if err != nil {
		return nil, err
	}
	if len(inner) == 0 {
		return []string{">"}, nil
	}
	lines := make([]string, len(inner))
	for i, l := range inner {
		if l == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + l
		}
	}
	return lines, nil
}

// list generates a list. A list directly following a list of the same kind
// would be merged with it when re-parsed, so it switches its marker within a
// register group.
func (g *generator) list(list *ast.List, prev ast.Block, ctx context) ([]string, error) {
	g.regs.Begingroup()
	defer g.regs.Endgroup()
	marker := g.listMarker(list)
	if p, ok := prev.(*ast.List); ok && p.Ordered == list.Ordered && g.listMarker(p) == marker {
		marker = alternateMarker(marker, list.Ordered)
		key := parameters.P_BULLET
		if list.Ordered {
			key = parameters.P_ORDERED
		}
		if err := g.regs.Set(key, marker); err != nil {
			return nil, err
		}
		tracer().Debugf("switching list marker to %q", marker)
	}
	var out []string
	for i, item := range list.Children {
		if item == nil {
			return nil, core.Error(core.EINVALID, "nil list item at index %d", i)
		}
		m := marker
		if list.Ordered {
			m = strconv.Itoa(list.FirstNumber()+i) + marker
		}
		lines, err := g.listItem(item, m, list, ctx)
		if err != nil {
			return nil, err
		}
		if i > 0 && list.Spread {
			out = append(out, "")
		}
		out = append(out, lines...)
	}
	return out, nil
}

// listMarker returns the bullet character or ordered delimiter of a list.
func (g *generator) listMarker(list *ast.List) string {
	if list.Ordered {
		if list.Marker == "." || list.Marker == ")" {
			return list.Marker
		}
		return g.regs.S(parameters.P_ORDERED)
	}
	if list.Marker == "-" || list.Marker == "*" || list.Marker == "+" {
		return list.Marker
	}
	return g.regs.S(parameters.P_BULLET)
}

func alternateMarker(m string, ordered bool) string {
	if ordered {
		if m == "." {
			return ")"
		}
		return "."
	}
	switch m {
	case "-":
		return "*"
	case "*":
		return "+"
	}
	return "-"
}

func (g *generator) listItem(item *ast.ListItem, marker string, list *ast.List, ctx context) ([]string, error) {
	inner := context{tight: !item.Spread, inQuote: ctx.inQuote}
	if !list.Ordered {
		inner.bullet = marker[0]
	}
	content, err := g.blocks(item.Children, inner)
	if err != nil {
		return nil, err
	}
	if item.Checked != nil {
		box := "[ ] "
		if *item.Checked {
			box = "[x] "
		}
		if len(content) == 0 {
			content = []string{box}
		} else {
			content[0] = box + content[0]
		}
	}
	if len(content) == 0 {
		return []string{marker}, nil
	}
	indent := strings.Repeat(" ", len(marker)+1)
	lines := make([]string, len(content))
	for i, l := range content {
		switch {
		case i == 0:
			lines[i] = marker + " " + l
		case l == "":
			lines[i] = ""
		default:
			lines[i] = indent + l
		}
	}
	return lines, nil
}

func (g *generator) table(t *ast.Table) ([]string, error) {
	cols := len(t.Align)
	if cols == 0 {
		return nil, core.Error(core.EINVALID, "table without columns")
	}
	rows := make([][]string, 0, len(t.Children))
	widths := make([]int, cols)
	for i := range widths {
		widths[i] = 3
	}
	for _, row := range t.Children {
		if row == nil {
			return nil, core.Error(core.EINVALID, "nil table row")
		}
		cells := make([]string, cols)
		for k := 0; k < cols && k < len(row.Children); k++ {
			if row.Children[k] == nil {
				continue
			}
			text, err := renderInlines(row.Children[k].Children, g.regs)
			if err != nil {
				return nil, err
			}
			cells[k] = strings.ReplaceAll(text, "\n", " ")
			if w := cellWidth(cells[k]); w > widths[k] {
				widths[k] = w
			}
		}
		rows = append(rows, cells)
	}
	padding := g.regs.B(parameters.P_TABLEPAD)
	format := func(cells []string) string {
		var b strings.Builder
		b.WriteString("|")
		for k, c := range cells {
			if padding {
				c = pad(c, widths[k], t.Align[k] == ast.AlignRight, t.Align[k] == ast.AlignCenter)
			}
			b.WriteString(" " + c + " |")
		}
		return b.String()
	}
	delims := make([]string, cols)
	for k, a := range t.Align {
		w := 3
		if padding {
			w = widths[k]
		}
		switch a {
		case ast.AlignLeft:
			delims[k] = ":" + strings.Repeat("-", w-1)
		case ast.AlignCenter:
			delims[k] = ":" + strings.Repeat("-", w-2) + ":"
		case ast.AlignRight:
			delims[k] = strings.Repeat("-", w-1) + ":"
		default:
			delims[k] = strings.Repeat("-", w)
		}
	}
	if len(rows) == 0 {
		rows = append(rows, make([]string, cols))
	}
	lines := []string{format(rows[0]), "|" + strings.Join(padAll(delims), "|") + "|"}
	for _, r := range rows[1:] {
		lines = append(lines, format(r))
	}
	return lines, nil
}

func padAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = " " + c + " "
	}
	return out
}
