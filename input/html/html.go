package html

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/mdtree/core"
	"github.com/npillmayer/mdtree/engine/ast"
	"github.com/npillmayer/mdtree/engine/block"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Options control the conversion.
type Options struct {
	Ignore     string // CSS selector of elements to drop
	MaxNesting int    // maximum depth of nested containers, default block.DefaultMaxNesting
}

// FromHTML reads an HTML document and converts its body into a Markdown
// document tree. An invalid Ignore selector is an EINVALID error.
func FromHTML(r io.Reader, opts Options) (*ast.Document, error) {
	var ignore cascadia.Selector
	if opts.Ignore != "" {
		sel, err := cascadia.Compile(opts.Ignore)
		if err != nil {
			return nil, core.WrapError(err, core.EINVALID, "invalid selector %q", opts.Ignore)
		}
		ignore = sel
	}
	dom, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, core.WrapError(err, core.EDECODE, "cannot parse HTML")
	}
	if ignore != nil {
		removed := dom.FindMatcher(ignore).Remove()
		tracer().Debugf("ignoring %d elements", removed.Length())
	}
	c := &converter{max: opts.MaxNesting}
	if c.max <= 0 {
		c.max = block.DefaultMaxNesting
	}
	doc := &ast.Document{References: ast.References{}, LineEnding: "\n"}
	for _, body := range dom.Find("body").Nodes {
		doc.Children = append(doc.Children, c.blocks(body)...)
	}
	tracer().Infof("converted HTML into %d blocks", len(doc.Children))
	return doc, nil
}

type converter struct {
	depth int
	max   int
}

// blocks converts the children of a container. Runs of inline content become
// paragraphs.
func (c *converter) blocks(n *xhtml.Node) []ast.Block {
	var out []ast.Block
	var run []ast.Inline
	flush := func() {
		if inl := tidy(run); len(inl) > 0 {
			out = append(out, &ast.Paragraph{Children: inl})
		}
		run = nil
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		switch {
		case ch.Type == xhtml.TextNode:
			run = append(run, c.inline(ch)...)
		case ch.Type != xhtml.ElementNode:
			continue
		case isInline(ch):
			run = append(run, c.inline(ch)...)
		default:
			flush()
			out = append(out, c.block(ch)...)
		}
	}
	flush()
	return out
}

func (c *converter) nested(n *xhtml.Node) []ast.Block {
	if c.depth >= c.max {
		tracer().Infof("maximum nesting depth %d exceeded, dropping <%s>", c.max, n.Data)
		return nil
	}
	c.depth++
	defer func() { c.depth-- }()
	return c.blocks(n)
}

func (c *converter) block(n *xhtml.Node) []ast.Block {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return []ast.Block{&ast.Heading{
			Level:    int(n.Data[1] - '0'),
			Children: tidy(c.inlines(n)),
		}}
	case atom.P:
		if inl := tidy(c.inlines(n)); len(inl) > 0 {
			return []ast.Block{&ast.Paragraph{Children: inl}}
		}
		return nil
	case atom.Hr:
		return []ast.Block{&ast.ThematicBreak{}}
	case atom.Pre:
		return []ast.Block{codeBlock(n)}
	case atom.Blockquote:
		return []ast.Block{&ast.Blockquote{Children: c.nested(n)}}
	case atom.Ul, atom.Ol:
		return []ast.Block{c.list(n)}
	case atom.Table:
		if t := c.table(n); t != nil {
			return []ast.Block{t}
		}
		return nil
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Head, atom.Title,
		atom.Meta, atom.Link, atom.Input:
		return nil
	case atom.Div, atom.Section, atom.Article, atom.Main, atom.Header, atom.Footer,
		atom.Nav, atom.Aside, atom.Body, atom.Html, atom.Center, atom.Li, atom.Address:
		return c.nested(n)
	}
	return []ast.Block{rawBlock(n)}
}

var inlineAtoms = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.B: true, atom.Bdi: true, atom.Bdo: true,
	atom.Br: true, atom.Cite: true, atom.Code: true, atom.Data: true, atom.Dfn: true,
	atom.Em: true, atom.I: true, atom.Img: true, atom.Kbd: true, atom.Mark: true,
	atom.Q: true, atom.S: true, atom.Samp: true, atom.Small: true, atom.Span: true,
	atom.Strong: true, atom.Sub: true, atom.Sup: true, atom.Time: true, atom.U: true,
	atom.Var: true, atom.Del: true, atom.Ins: true, atom.Wbr: true, atom.Label: true,
	atom.Input: true,
}

func isInline(n *xhtml.Node) bool {
	return inlineAtoms[n.DataAtom]
}

func (c *converter) inlines(n *xhtml.Node) []ast.Inline {
	var out []ast.Inline
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		out = append(out, c.inline(ch)...)
	}
	return out
}

func (c *converter) inline(n *xhtml.Node) []ast.Inline {
	if n.Type == xhtml.TextNode {
		return []ast.Inline{&ast.Text{Value: collapse(n.Data)}}
	}
	if n.Type != xhtml.ElementNode {
		return nil
	}
	switch n.DataAtom {
	case atom.Em, atom.I:
		return wrap(c.inlines(n), func(kids []ast.Inline) ast.Inline {
			return &ast.Emphasis{Children: kids}
		})
	case atom.Strong, atom.B:
		return wrap(c.inlines(n), func(kids []ast.Inline) ast.Inline {
			return &ast.Strong{Children: kids}
		})
	case atom.Code, atom.Kbd, atom.Samp:
		if v := collapse(textOf(n)); strings.TrimSpace(v) != "" {
			return []ast.Inline{&ast.CodeSpan{Value: v}}
		}
		return nil
	case atom.A:
		href, ok := attr(n, "href")
		if !ok {
			return c.inlines(n)
		}
		title, _ := attr(n, "title")
		return wrap(c.inlines(n), func(kids []ast.Inline) ast.Inline {
			return &ast.Link{URL: href, Title: title, Children: kids}
		})
	case atom.Img:
		src, _ := attr(n, "src")
		alt, _ := attr(n, "alt")
		title, _ := attr(n, "title")
		return []ast.Inline{&ast.Image{URL: src, Alt: alt, Title: title}}
	case atom.Br:
		return []ast.Inline{&ast.HardBreak{}}
	case atom.Input, atom.Script, atom.Style, atom.Template:
		return nil
	}
	return c.inlines(n)
}

// wrap creates a span node for kids. Whitespace at the edges of kids is moved
// outside of the span.
func wrap(kids []ast.Inline, span func([]ast.Inline) ast.Inline) []ast.Inline {
	var lead, trail bool
	if len(kids) > 0 {
		if t, ok := kids[0].(*ast.Text); ok && strings.HasPrefix(t.Value, " ") {
			kids[0], lead = &ast.Text{Value: t.Value[1:]}, true
		}
		if t, ok := kids[len(kids)-1].(*ast.Text); ok && strings.HasSuffix(t.Value, " ") {
			kids[len(kids)-1], trail = &ast.Text{Value: t.Value[:len(t.Value)-1]}, true
		}
	}
	kids = tidy(kids)
	var out []ast.Inline
	if lead {
		out = append(out, &ast.Text{Value: " "})
	}
	if len(kids) > 0 {
		out = append(out, span(kids))
	}
	if trail {
		out = append(out, &ast.Text{Value: " "})
	}
	return out
}

// tidy merges adjacent text, collapses whitespace across text nodes and trims
// whitespace at the edges and around hard breaks.
func tidy(inl []ast.Inline) []ast.Inline {
	var merged []ast.Inline
	for _, x := range inl {
		t, ok := x.(*ast.Text)
		if !ok {
			merged = append(merged, x)
			continue
		}
		if n := len(merged); n > 0 {
			if prev, ok := merged[n-1].(*ast.Text); ok {
				merged[n-1] = &ast.Text{Value: collapse(prev.Value + t.Value)}
				continue
			}
		}
		merged = append(merged, &ast.Text{Value: t.Value})
	}
	var out []ast.Inline
	for i, x := range merged {
		t, ok := x.(*ast.Text)
		if !ok {
			out = append(out, x)
			continue
		}
		v := t.Value
		if i == 0 || isBreak(merged[i-1]) {
			v = strings.TrimLeft(v, " ")
		}
		if i == len(merged)-1 || isBreak(merged[i+1]) {
			v = strings.TrimRight(v, " ")
		}
		if v != "" {
			out = append(out, &ast.Text{Value: v})
		}
	}
	for len(out) > 0 && isBreak(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

func isBreak(n ast.Inline) bool {
	_, ok := n.(*ast.HardBreak)
	return ok
}

// collapse replaces runs of HTML whitespace by a single space.
func collapse(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	if space {
		b.WriteByte(' ')
	}
	return b.String()
}

func textOf(n *xhtml.Node) string {
	if n.Type == xhtml.TextNode {
		return n.Data
	}
	var b strings.Builder
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		b.WriteString(textOf(ch))
	}
	return b.String()
}

func attr(n *xhtml.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func codeBlock(pre *xhtml.Node) *ast.CodeBlock {
	code := &ast.CodeBlock{Style: ast.CodeFenced, Value: strings.TrimSuffix(textOf(pre), "\n")}
	for ch := pre.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.DataAtom != atom.Code {
			continue
		}
		class, _ := attr(ch, "class")
		for _, cl := range strings.Fields(class) {
			for _, prefix := range []string{"language-", "lang-"} {
				if strings.HasPrefix(cl, prefix) && len(cl) > len(prefix) {
					code.Lang = cl[len(prefix):]
				}
			}
		}
		break
	}
	return code
}

func (c *converter) list(n *xhtml.Node) *ast.List {
	list := &ast.List{Ordered: n.DataAtom == atom.Ol}
	if s, ok := attr(n, "start"); ok && list.Ordered {
		if start, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && start >= 0 && start <= 999999999 {
			list.Start = ast.StartAt(start)
		}
	}
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.DataAtom != atom.Li {
			continue
		}
		item := &ast.ListItem{Checked: checkbox(li)}
		for ch := li.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.DataAtom == atom.P {
				item.Spread, list.Spread = true, true
			}
		}
		item.Children = c.nested(li)
		list.Children = append(list.Children, item)
	}
	return list
}

// checkbox finds a leading checkbox of a task list item.
func checkbox(li *xhtml.Node) *bool {
	for ch := li.FirstChild; ch != nil; ch = ch.NextSibling {
		switch {
		case ch.Type == xhtml.TextNode && strings.TrimSpace(ch.Data) == "":
			continue
		case ch.DataAtom == atom.P:
			return checkbox(ch)
		case ch.DataAtom == atom.Input:
			if typ, _ := attr(ch, "type"); strings.EqualFold(typ, "checkbox") {
				_, checked := attr(ch, "checked")
				return &checked
			}
		}
		return nil
	}
	return nil
}

func (c *converter) table(n *xhtml.Node) *ast.Table {
	type row struct {
		cells  []*xhtml.Node
		header bool
	}
	var rows []row
	addRow := func(tr *xhtml.Node, inHead bool) {
		r := row{header: inHead}
		allTH := true
		for td := tr.FirstChild; td != nil; td = td.NextSibling {
			if td.DataAtom == atom.Td || td.DataAtom == atom.Th {
				r.cells = append(r.cells, td)
				allTH = allTH && td.DataAtom == atom.Th
			}
		}
		r.header = r.header || (allTH && len(r.cells) > 0)
		rows = append(rows, r)
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		switch ch.DataAtom {
		case atom.Tr:
			addRow(ch, false)
		case atom.Thead, atom.Tbody, atom.Tfoot:
			for tr := ch.FirstChild; tr != nil; tr = tr.NextSibling {
				if tr.DataAtom == atom.Tr {
					addRow(tr, ch.DataAtom == atom.Thead)
				}
			}
		}
	}
	cols := 0
	for _, r := range rows {
		if len(r.cells) > cols {
			cols = len(r.cells)
		}
	}
	if cols == 0 {
		return nil
	}
	t := &ast.Table{Align: make([]ast.Alignment, cols)}
	for i, cell := range rows[0].cells {
		t.Align[i] = alignment(cell)
	}
	for i, r := range rows {
		header := i == 0
		if i > 0 && r.header {
			tracer().Debugf("header row within table body becomes a body row")
		}
		tr := &ast.TableRow{IsHeader: header}
		for j := 0; j < cols; j++ {
			cell := &ast.TableCell{Align: t.Align[j], IsHeader: header}
			if j < len(r.cells) {
				cell.Children = cellContent(c.inlines(r.cells[j]))
			}
			tr.Children = append(tr.Children, cell)
		}
		t.Children = append(t.Children, tr)
	}
	return t
}

// cellContent replaces line breaks, which table cells cannot hold.
func cellContent(inl []ast.Inline) []ast.Inline {
	for i, x := range inl {
		if isBreak(x) {
			inl[i] = &ast.Text{Value: " "}
		}
	}
	return tidy(inl)
}

// alignment reads the align attribute or the text-align property of a cell.
func alignment(cell *xhtml.Node) ast.Alignment {
	value, ok := attr(cell, "align")
	if style, found := attr(cell, "style"); !ok && found {
		// the last declaration is lost without a terminating semicolon
		if !strings.HasSuffix(strings.TrimSpace(style), ";") {
			style += ";"
		}
		decls, err := parser.ParseDeclarations(style)
		if err != nil {
			tracer().Debugf("cannot parse style %q: %v", style, err)
		}
		for _, d := range decls {
			if strings.EqualFold(d.Property, "text-align") {
				value = d.Value
			}
		}
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "left", "start":
		return ast.AlignLeft
	case "center":
		return ast.AlignCenter
	case "right", "end":
		return ast.AlignRight
	}
	return ast.AlignNone
}

// rawBlock keeps an element without Markdown counterpart as HTML. Blank lines
// would end an HTML block and are removed.
func rawBlock(n *xhtml.Node) *ast.HTMLBlock {
	var buf bytes.Buffer
	if err := xhtml.Render(&buf, n); err != nil {
		tracer().Errorf("cannot render <%s>: %v", n.Data, err)
	}
	var kept []string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	return &ast.HTMLBlock{HTMLType: block.HTMLBlockType(n.Data), Value: strings.Join(kept, "\n")}
}
