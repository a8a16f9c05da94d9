package block

import (
	"strconv"
	"strings"

	"github.com/npillmayer/mdtree/engine/ast"
	"github.com/npillmayer/mdtree/engine/inline"
	"github.com/npillmayer/mdtree/engine/lines"
)

// --- Predicates ------------------------------------------------------------
//
// Predicates taking a string expect a line with its indentation removed.

func isThematicBreak(s string) bool {
	if s == "" || (s[0] != '-' && s[0] != '*' && s[0] != '_') {
		return false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case s[0]:
			n++
		case ' ', '\t':
		default:
			return false
		}
	}
	return n >= 3
}

func isATXHeading(s string) bool {
	n := 0
	for n < len(s) && s[n] == '#' {
		n++
	}
	return n >= 1 && n <= 6 && (n == len(s) || s[n] == ' ' || s[n] == '\t')
}

// setextLevel returns 1 or 2 for a setext heading underline, 0 otherwise.
func setextLevel(s string) int {
	s = strings.TrimRight(s, " \t")
	if s == "" || (s[0] != '=' && s[0] != '-') {
		return 0
	}
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return 0
		}
	}
	if s[0] == '=' {
		return 1
	}
	return 2
}

// parseFence checks for an opening code fence and returns the fence
// character, the fence length and the info string.
func parseFence(s string) (byte, int, string, bool) {
	if len(s) < 3 || (s[0] != '`' && s[0] != '~') {
		return 0, 0, "", false
	}
	c := s[0]
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	if n < 3 {
		return 0, 0, "", false
	}
	info := strings.TrimSpace(s[n:])
	if c == '`' && strings.IndexByte(info, '`') >= 0 {
		return 0, 0, "", false
	}
	return c, n, info, true
}

func isFenceOpen(s string) bool {
	_, _, _, ok := parseFence(s)
	return ok
}

func isFenceClose(s string, c byte, length int) bool {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	return n >= length && strings.TrimRight(s[n:], " \t") == ""
}

// htmlStart returns the type of an HTML block starting with s, or 0.
func htmlStart(s string) int {
	if typ := htmlBlockStart(s); typ > 0 {
		return typ
	}
	m := inline.OpenTagRe.FindString(s)
	if m == "" {
		m = inline.CloseTagRe.FindString(s)
	}
	if m == "" || strings.TrimRight(s[len(m):], " \t") != "" {
		return 0
	}
	name := strings.TrimLeft(m, "</")
	if i := strings.IndexAny(name, " \t\n/>"); i >= 0 {
		name = name[:i]
	}
	if htmlTagType(name) == 1 {
		return 0
	}
	return 7
}

// isInterrupt checks if a line may interrupt a paragraph.
func isInterrupt(l lines.Line) bool {
	if l.Blank || l.Indent >= 4 {
		return false
	}
	rest := l.Rest()
	if isThematicBreak(rest) || isATXHeading(rest) || isFenceOpen(rest) ||
		htmlBlockStart(rest) > 0 || rest[0] == '>' {
		return true
	}
	m, ok := parseListMarker(l)
	return ok && !m.empty && (!m.ordered || m.start == 1)
}

// --- Leaf blocks -----------------------------------------------------------

func (p *parser) atxHeading(s string) *ast.Heading {
	level := 0
	for level < len(s) && s[level] == '#' {
		level++
	}
	content := strings.TrimRight(s[level:], " \t")
	j := len(content)
	for j > 0 && content[j-1] == '#' {
		j--
	}
	if j == 0 {
		content = ""
	} else if content[j-1] == ' ' || content[j-1] == '\t' {
		content = content[:j]
	}
	content = strings.Trim(content, " \t")
	return &ast.Heading{Level: level, Style: ast.HeadingATX, Children: p.inlines(content)}
}

func (p *parser) fencedCode(ls []lines.Line, i int) (ast.Block, int, bool) {
	indent := ls[i].Indent
	c, n, info, _ := parseFence(ls[i].Rest())
	var content []string
	closed := false
	j := i + 1
	for ; j < len(ls); j++ {
		l := ls[j]
		if l.Indent < 4 && isFenceClose(l.Rest(), c, n) {
			closed = true
			j++
			break
		}
		content = append(content, l.Strip(indent).Text)
	}
	code := &ast.CodeBlock{
		Style:       ast.CodeFenced,
		Fence:       string(c),
		FenceLength: n,
		Value:       strings.Join(content, "\n"),
	}
	if info != "" {
		info = inline.Unescape(info)
		if k := strings.IndexAny(info, " \t"); k >= 0 {
			code.Lang = info[:k]
			code.Meta = strings.TrimSpace(info[k:])
		} else {
			code.Lang = info
		}
	}
	return code, j, !closed
}

func (p *parser) indentedCode(ls []lines.Line, i int) (ast.Block, int, bool) {
	last := i
	for j := i; j < len(ls); j++ {
		if ls[j].Blank {
			continue
		}
		if ls[j].Indent < 4 {
			break
		}
		last = j
	}
	content := make([]string, 0, last-i+1)
	for j := i; j <= last; j++ {
		content = append(content, ls[j].Strip(4).Text)
	}
	code := &ast.CodeBlock{Style: ast.CodeIndented, Value: strings.Join(content, "\n")}
	return code, last + 1, onlyBlanksFrom(ls, last+1)
}

func (p *parser) htmlBlock(ls []lines.Line, i int, typ int) (ast.Block, int, bool) {
	var content []string
	j := i
	closed := false
	for ; j < len(ls); j++ {
		l := ls[j]
		if typ >= 6 && l.Blank {
			closed = true
			break
		}
		content = append(content, l.Text)
		if typ <= 5 && htmlBlockEnds(typ, l.Text) {
			closed = true
			j++
			break
		}
	}
	return &ast.HTMLBlock{HTMLType: typ, Value: strings.Join(content, "\n")}, j, !closed
}

func (p *parser) paragraph(ls []lines.Line, i int, inQuote bool) (ast.Block, int, bool) {
	texts := []string{ls[i].Rest()}
	j := i + 1
	for ; j < len(ls); j++ {
		l := ls[j]
		if l.Blank {
			break
		}
		if l.Indent < 4 {
			if level := setextLevel(l.Rest()); level > 0 {
				text := strings.TrimRight(strings.Join(texts, "\n"), " \t")
				h := &ast.Heading{Level: level, Style: ast.HeadingSetext, Children: p.inlines(text)}
				return h, j + 1, false
			}
		}
		if isInterrupt(l) {
			break
		}
		texts = append(texts, l.Rest())
	}
	text := strings.TrimRight(strings.Join(texts, "\n"), " \t")
	return &ast.Paragraph{Children: p.inlines(text)}, j, j == len(ls)
}

// --- Tables ----------------------------------------------------------------

// splitRow splits a table row into trimmed cells. Escaped pipes become
// literal pipes.
func splitRow(s string) []string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "|") {
		s = s[1:]
	}
	if strings.HasSuffix(s, "|") && !strings.HasSuffix(s, `\|`) {
		s = s[:len(s)-1]
	}
	var cells []string
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '|':
			b.WriteByte('|')
			i++
		case s[i] == '|':
			cells = append(cells, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteByte(s[i])
		}
	}
	return append(cells, strings.TrimSpace(b.String()))
}

// delimiterRow parses the delimiter row of a table.
func delimiterRow(s string) ([]ast.Alignment, bool) {
	if strings.IndexByte(s, '|') < 0 {
		return nil, false
	}
	cells := splitRow(s)
	align := make([]ast.Alignment, len(cells))
	for i, c := range cells {
		left := strings.HasPrefix(c, ":")
		right := strings.HasSuffix(c, ":")
		dashes := strings.Trim(c, ":")
		if dashes == "" || strings.Trim(dashes, "-") != "" || strings.Count(c, ":") > 2 {
			return nil, false
		}
		switch {
		case left && right:
			align[i] = ast.AlignCenter
		case left:
			align[i] = ast.AlignLeft
		case right:
			align[i] = ast.AlignRight
		}
	}
	return align, true
}

func isTableStart(header, delim lines.Line) bool {
	if delim.Indent >= 4 || delim.Blank || strings.IndexByte(header.Rest(), '|') < 0 {
		return false
	}
	align, ok := delimiterRow(delim.Rest())
	return ok && len(align) == len(splitRow(header.Rest()))
}

func (p *parser) table(ls []lines.Line, i int) (ast.Block, int, bool) {
	align, _ := delimiterRow(ls[i+1].Rest())
	t := &ast.Table{Align: align}
	t.Children = append(t.Children, p.tableRow(splitRow(ls[i].Rest()), align, true))
	if p.cfg.Positions {
		t.Children[0].Pos = position(ls, i, i+1)
	}
	j := i + 2
	for ; j < len(ls); j++ {
		l := ls[j]
		if l.Blank || isInterrupt(l) {
			break
		}
		row := p.tableRow(splitRow(l.Rest()), align, false)
		if p.cfg.Positions {
			row.Pos = position(ls, j, j+1)
		}
		t.Children = append(t.Children, row)
	}
	return t, j, j == len(ls)
}

// tableRow creates a row with exactly len(align) cells, padding or truncating
// the cells found in source.
func (p *parser) tableRow(cells []string, align []ast.Alignment, header bool) *ast.TableRow {
	row := &ast.TableRow{IsHeader: header, Children: make([]*ast.TableCell, len(align))}
	for k := range align {
		cell := &ast.TableCell{Align: align[k], IsHeader: header}
		if k < len(cells) {
			cell.Children = p.inlines(cells[k])
		}
		row.Children[k] = cell
	}
	return row
}

// --- Link reference definitions --------------------------------------------

// parseLinkRefDef tries to parse a link reference definition starting at line
// i. It returns the definition, the index of the line after it and whether
// following lines could still extend it.
func parseLinkRefDef(ls []lines.Line, i int) (*ast.LinkReferenceDefinition, int, bool, bool) {
	l := ls[i]
	if l.Indent >= 4 || l.Blank || l.Rest()[0] != '[' {
		return nil, i, false, false
	}
	var b strings.Builder
	b.WriteString(l.Rest())
	k := i + 1
	for ; k < len(ls) && !ls[k].Blank; k++ {
		b.WriteByte('\n')
		b.WriteString(ls[k].Text)
	}
	open := k == len(ls)
	s := b.String()
	label, pos, ok := inline.ParseLinkLabel(s, 0)
	if !ok || strings.TrimSpace(label) == "" || pos >= len(s) || s[pos] != ':' {
		return nil, i, false, false
	}
	pos, _ = skipWhitespace(s, pos+1)
	dest, destEnd, ok := inline.ParseLinkDestination(s, pos)
	if !ok {
		return nil, i, false, false
	}
	def := &ast.LinkReferenceDefinition{Label: label, URL: dest}
	end := -1
	if tpos, newline := skipWhitespace(s, destEnd); tpos > destEnd {
		if title, tend, ok := inline.ParseLinkTitle(s, tpos); ok && restOfLineBlank(s, tend) {
			def.Title = title
			end = endOfLine(s, tend)
		} else if !newline && !restOfLineBlank(s, destEnd) {
			return nil, i, false, false
		}
	}
	if end < 0 {
		if !restOfLineBlank(s, destEnd) {
			return nil, i, false, false
		}
		end = endOfLine(s, destEnd)
	}
	next := i + strings.Count(s[:end], "\n") + 1
	return def, next, open, true
}

// skipWhitespace skips spaces and tabs and at most one line ending.
func skipWhitespace(s string, i int) (int, bool) {
	newline := false
	for ; i < len(s); i++ {
		if s[i] == '\n' {
			if newline {
				break
			}
			newline = true
		} else if s[i] != ' ' && s[i] != '\t' {
			break
		}
	}
	return i, newline
}

func restOfLineBlank(s string, i int) bool {
	for ; i < len(s) && s[i] != '\n'; i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return false
		}
	}
	return true
}

func endOfLine(s string, i int) int {
	if k := strings.IndexByte(s[i:], '\n'); k >= 0 {
		return i + k
	}
	return len(s)
}

// --- List markers ----------------------------------------------------------

type listMarker struct {
	ordered bool
	char    byte // bullet character or delimiter
	start   int
	text    string
	width   int        // indentation of item content relative to the line
	empty   bool       // no content after the marker
	content lines.Line // first line of content
	checked *bool      // task item state
}

func parseListMarker(l lines.Line) (listMarker, bool) {
	var m listMarker
	if l.Indent >= 4 || l.Blank {
		return m, false
	}
	rest := l.Rest()
	switch c := rest[0]; {
	case c == '-' || c == '+' || c == '*':
		m.char, m.text = c, rest[:1]
	case c >= '0' && c <= '9':
		n := 0
		for n < len(rest) && n < 10 && rest[n] >= '0' && rest[n] <= '9' {
			n++
		}
		if n > 9 || n >= len(rest) || (rest[n] != '.' && rest[n] != ')') {
			return m, false
		}
		m.ordered, m.char, m.text = true, rest[n], rest[:n+1]
		m.start, _ = strconv.Atoi(rest[:n])
	default:
		return m, false
	}
	after := l.StripAll().Advance(len(m.text))
	if !after.Blank && after.Indent == 0 {
		return m, false // marker must be followed by whitespace
	}
	if after.Blank {
		m.empty = true
		m.width = l.Indent + len(m.text) + 1
		m.content = after.Strip(after.Indent)
		return m, true
	}
	sp := after.Indent
	if sp > 4 {
		sp = 1
	}
	m.width = l.Indent + len(m.text) + sp
	m.content = after.Strip(sp)
	if c := m.content.Text; len(c) > 4 && c[0] == '[' && c[2] == ']' && (c[3] == ' ' || c[3] == '\t') &&
		(c[1] == ' ' || c[1] == 'x' || c[1] == 'X') && strings.TrimSpace(c[4:]) != "" {
		checked := c[1] != ' '
		m.checked = &checked
		m.content = m.content.Advance(3).Strip(1)
	}
	return m, true
}
