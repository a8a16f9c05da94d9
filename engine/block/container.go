package block

import (
	"strings"

	"github.com/npillmayer/mdtree/engine/ast"
	"github.com/npillmayer/mdtree/engine/lines"
)

// --- Block quotes ----------------------------------------------------------

// quoteContent strips a block quote marker and one optional following space.
func quoteContent(l lines.Line) lines.Line {
	l = l.StripAll().Advance(1)
	if l.Indent > 0 {
		l = l.Strip(1)
	}
	return l
}

func isQuoteLine(l lines.Line) bool {
	return !l.Blank && l.Indent < 4 && l.Rest()[0] == '>'
}

func (p *parser) blockquote(ls []lines.Line, i int, depth int) (ast.Block, int, bool) {
	var inner []lines.Line
	var st lazyState
	j := i
	for ; j < len(ls); j++ {
		l := ls[j]
		if isQuoteLine(l) {
			l = quoteContent(l)
			st.update(l, true)
			inner = append(inner, l)
			continue
		}
		if l.Blank || !st.para || endsLazy(l) {
			break
		}
		inner = append(inner, l.StripAll()) // lazy continuation line
	}
	children, _ := p.blocks(inner, depth+1, true)
	return &ast.Blockquote{Children: children}, j, j == len(ls)
}

// endsLazy is true for lines which end a container instead of continuing its
// paragraph lazily. Any list marker and any HTML block start qualify, as the
// paragraph is not the line's container.
func endsLazy(l lines.Line) bool {
	return isInterrupt(l) || isListMarker(l) || (l.Indent < 4 && htmlStart(l.Rest()) > 0)
}

// --- Lists -----------------------------------------------------------------

func isListMarker(l lines.Line) bool {
	_, ok := parseListMarker(l)
	return ok
}

func sameFamily(a, b listMarker) bool {
	return a.ordered == b.ordered && a.char == b.char
}

func (p *parser) list(ls []lines.Line, i int, depth int, inQuote bool) (ast.Block, int, bool) {
	m, _ := parseListMarker(ls[i])
	list := &ast.List{Ordered: m.ordered, Marker: string(m.char)}
	if m.ordered {
		list.Start = ast.StartAt(m.start)
	}
	first := m
	j := i
	for {
		item, next := p.listItem(ls, j, m, depth, inQuote)
		list.Children = append(list.Children, item)
		list.Spread = list.Spread || item.Spread
		j = next
		k := next
		for k < len(ls) && ls[k].Blank {
			k++
		}
		if k == len(ls) || isThematicBreak(ls[k].Rest()) {
			break
		}
		m2, ok := parseListMarker(ls[k])
		if !ok || !sameFamily(first, m2) {
			break
		}
		if k > next {
			list.Spread = true
		}
		j, m = k, m2
	}
	return list, j, onlyBlanksFrom(ls, j)
}

// listItem collects the lines of a list item starting at line i and parses
// them. It returns the item and the index of the line after it, excluding
// trailing blank lines.
func (p *parser) listItem(ls []lines.Line, i int, m listMarker, depth int, inQuote bool) (*ast.ListItem, int) {
	item := &ast.ListItem{Marker: m.text, Checked: m.checked}
	content := []lines.Line{m.content}
	var st lazyState
	st.update(m.content, inQuote)
	j := i + 1
	for ; j < len(ls); j++ {
		l := ls[j]
		if l.Blank {
			if m.empty && j == i+1 {
				break // an item can begin with at most one blank line
			}
			content = append(content, l.Strip(m.width))
			st.update(l, inQuote)
			continue
		}
		if l.Indent >= m.width {
			l = l.Strip(m.width)
			st.update(l, inQuote)
			content = append(content, l)
			continue
		}
		if ls[j-1].Blank || !st.para || endsLazy(l) {
			break
		}
		content = append(content, l.StripAll()) // lazy continuation line
	}
	end := j
	for end > i+1 && ls[end-1].Blank {
		end--
	}
	content = content[:end-i]
	children, spans := p.blocks(content, depth+1, inQuote)
	item.Children = children
	for k := 1; k < len(spans); k++ {
		if spans[k].Start > spans[k-1].End {
			item.Spread = true
		}
	}
	if p.cfg.Positions {
		item.Pos = position(ls, i, end)
	}
	return item, end
}

// --- Lazy continuation -----------------------------------------------------

// lazyState follows the lines of a container to tell whether its innermost
// open block is a paragraph, which lazy continuation lines may extend.
type lazyState struct {
	fence    byte // set while inside fenced code
	fenceLen int
	html     int // type of an open HTML block
	para     bool
}

func (st *lazyState) update(l lines.Line, inQuote bool) {
	rest := l.Rest()
	if st.fence != 0 {
		if l.Indent < 4 && isFenceClose(rest, st.fence, st.fenceLen) {
			st.fence = 0
		}
		return
	}
	if st.html != 0 {
		if (st.html <= 5 && htmlBlockEnds(st.html, l.Text)) || (st.html > 5 && l.Blank) {
			st.html = 0
		}
		return
	}
	switch {
	case l.Blank:
		st.para = false
	case l.Indent >= 4:
		st.para = st.para || inQuote
	case isFenceOpen(rest):
		st.fence, st.fenceLen, _, _ = parseFence(rest)
		st.para = false
	case htmlBlockStart(rest) > 0 || (!st.para && htmlStart(rest) > 0):
		st.html = htmlStart(rest)
		if st.html <= 5 && htmlBlockEnds(st.html, l.Text) {
			st.html = 0
		}
		st.para = false
	case isThematicBreak(rest) || isATXHeading(rest):
		st.para = false
	case st.para && setextLevel(rest) > 0:
		st.para = false
	case rest[0] == '>':
		st.para = strings.TrimLeft(rest, "> \t") != ""
	default:
		if m, ok := parseListMarker(l); ok {
			st.para = !m.empty
		} else {
			st.para = true
		}
	}
}
