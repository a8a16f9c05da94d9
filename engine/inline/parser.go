package inline

import (
	"strings"
	"unicode/utf8"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/mdtree/engine/ast"
)

// DefaultMaxDepth is the default limit for nested open brackets.
const DefaultMaxDepth = 100

// item is a node in the doubly linked list of inline nodes under construction.
type item struct {
	node       ast.Inline
	prev, next *item
}

// delim is an entry of the delimiter stack, referring to the text item which
// holds the delimiter run.
type delim struct {
	it                *item
	char              byte
	count, orig       int
	canOpen, canClose bool
	prev, next        *delim
}

// bracket is an entry of the bracket stack.
type bracket struct {
	it        *item
	image     bool
	active    bool
	bottom    *delim // top of the delimiter stack when the bracket was opened
	textStart int    // position after the opening bracket
}

type parser struct {
	src        string
	pos        int
	refs       ast.References
	maxDepth   int
	head, tail *item
	dtail      *delim
	brackets   *arraystack.Stack
	buf        strings.Builder
}

// Parse parses inline content. Link references are resolved against refs,
// which may be nil.
func Parse(text string, refs ast.References) []ast.Inline {
	return ParseWithDepth(text, refs, DefaultMaxDepth)
}

// ParseWithDepth parses inline content, allowing at most maxDepth open
// brackets at a time. Further brackets are taken literally.
func ParseWithDepth(text string, refs ast.References, maxDepth int) []ast.Inline {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	p := &parser{
		src:      text,
		refs:     refs,
		maxDepth: maxDepth,
		brackets: arraystack.New(),
	}
	p.run()
	p.flush()
	p.processEmphasis(nil)
	return mergeText(p.collect(p.head, nil))
}

func (p *parser) run() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '\\':
			p.backslash()
		case '`':
			p.codeSpan()
		case '<':
			if !p.autolink() && !p.rawHTML() {
				p.literal(1)
			}
		case '&':
			p.entity()
		case '*', '_':
			p.delimiterRun(c)
		case '[':
			p.openBracket(false)
		case '!':
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '[' {
				p.openBracket(true)
			} else {
				p.literal(1)
			}
		case ']':
			p.closeBracket()
		case '\n':
			p.lineBreak()
		default:
			p.literal(1)
		}
	}
}

// --- Node list -------------------------------------------------------------

func (p *parser) literal(n int) {
	p.buf.WriteString(p.src[p.pos : p.pos+n])
	p.pos += n
}

func (p *parser) flush() {
	if p.buf.Len() > 0 {
		p.append(&ast.Text{Value: p.buf.String()})
		p.buf.Reset()
	}
}

func (p *parser) append(n ast.Inline) *item {
	it := &item{node: n, prev: p.tail}
	if p.tail == nil {
		p.head = it
	} else {
		p.tail.next = it
	}
	p.tail = it
	return it
}

func (p *parser) remove(it *item) {
	if it.prev == nil {
		p.head = it.next
	} else {
		it.prev.next = it.next
	}
	if it.next == nil {
		p.tail = it.prev
	} else {
		it.next.prev = it.prev
	}
}

// collect returns the nodes from item first up to, but not including, item end.
func (p *parser) collect(first, end *item) []ast.Inline {
	var nodes []ast.Inline
	for it := first; it != nil && it != end; it = it.next {
		nodes = append(nodes, it.node)
	}
	return nodes
}

// --- Simple constructs -----------------------------------------------------

func (p *parser) backslash() {
	if p.pos+1 < len(p.src) {
		c := p.src[p.pos+1]
		if c == '\n' {
			p.flush()
			p.append(&ast.HardBreak{})
			p.pos += 2
			p.skipLeadingSpace()
			return
		}
		if isASCIIPunct(c) {
			p.buf.WriteByte(c)
			p.pos += 2
			return
		}
	}
	p.literal(1)
}

func (p *parser) lineBreak() {
	s := p.buf.String()
	trimmed := strings.TrimRight(s, " ")
	hard := len(s)-len(trimmed) >= 2
	p.buf.Reset()
	p.buf.WriteString(trimmed)
	p.flush()
	if hard {
		p.append(&ast.HardBreak{})
	} else {
		p.append(&ast.SoftBreak{})
	}
	p.pos++
	p.skipLeadingSpace()
}

func (p *parser) skipLeadingSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) codeSpan() {
	n := runLength(p.src, p.pos, '`')
	start := p.pos + n
	for j := start; j < len(p.src); {
		k := strings.IndexByte(p.src[j:], '`')
		if k < 0 {
			break
		}
		j += k
		m := runLength(p.src, j, '`')
		if m == n {
			content := strings.ReplaceAll(p.src[start:j], "\n", " ")
			if len(content) >= 2 && content[0] == ' ' && content[len(content)-1] == ' ' &&
				strings.Trim(content, " ") != "" {
				content = content[1 : len(content)-1]
			}
			p.flush()
			p.append(&ast.CodeSpan{Value: content})
			p.pos = j + n
			return
		}
		j += m
	}
	p.literal(n)
}

func runLength(s string, i int, c byte) int {
	j := i
	for j < len(s) && s[j] == c {
		j++
	}
	return j - i
}

func (p *parser) autolink() bool {
	rest := p.src[p.pos:]
	if m := uriRe.FindStringSubmatch(rest); m != nil {
		p.flush()
		p.append(&ast.Link{URL: m[1], Children: []ast.Inline{&ast.Text{Value: m[1]}}})
		p.pos += len(m[0])
		return true
	}
	if m := emailRe.FindStringSubmatch(rest); m != nil {
		p.flush()
		p.append(&ast.Link{URL: "mailto:" + m[1], Children: []ast.Inline{&ast.Text{Value: m[1]}}})
		p.pos += len(m[0])
		return true
	}
	return false
}

func (p *parser) rawHTML() bool {
	m := htmlRe.FindString(p.src[p.pos:])
	if m == "" {
		return false
	}
	p.flush()
	p.append(&ast.HTMLInline{Value: m})
	p.pos += len(m)
	return true
}

func (p *parser) entity() {
	if u, n := decodeEntity(p.src[p.pos:]); n > 0 {
		p.buf.WriteString(u)
		p.pos += n
		return
	}
	p.literal(1)
}

// --- Emphasis --------------------------------------------------------------

func (p *parser) delimiterRun(c byte) {
	n := runLength(p.src, p.pos, c)
	before, after := '\n', '\n'
	if p.pos > 0 {
		before, _ = utf8.DecodeLastRuneInString(p.src[:p.pos])
	}
	if p.pos+n < len(p.src) {
		after, _ = utf8.DecodeRuneInString(p.src[p.pos+n:])
	}
	left := !isSpaceRune(after) && (!isPunctRune(after) || isSpaceRune(before) || isPunctRune(before))
	right := !isSpaceRune(before) && (!isPunctRune(before) || isSpaceRune(after) || isPunctRune(after))
	d := &delim{char: c, count: n, orig: n}
	if c == '*' {
		d.canOpen, d.canClose = left, right
	} else {
		d.canOpen = left && (!right || isPunctRune(before))
		d.canClose = right && (!left || isPunctRune(after))
	}
	p.flush()
	d.it = p.append(&ast.Text{Value: p.src[p.pos : p.pos+n]})
	d.prev = p.dtail
	if p.dtail != nil {
		p.dtail.next = d
	}
	p.dtail = d
	p.pos += n
}

func (p *parser) removeDelim(d *delim) {
	if d.prev != nil {
		d.prev.next = d.next
	}
	if d.next != nil {
		d.next.prev = d.prev
	} else {
		p.dtail = d.prev
	}
}

type openersKey struct {
	char    byte
	canOpen bool
	mod     int
}

// processEmphasis resolves all delimiters above stackBottom into emphasis
// nodes and clears them from the delimiter stack.
func (p *parser) processEmphasis(stackBottom *delim) {
	openersBottom := make(map[openersKey]*delim)
	var closer *delim
	if stackBottom != nil {
		closer = stackBottom.next
	} else if closer = p.dtail; closer != nil {
		for closer.prev != nil {
			closer = closer.prev
		}
	}
	for closer != nil {
		if !closer.canClose {
			closer = closer.next
			continue
		}
		key := openersKey{closer.char, closer.canOpen, closer.orig % 3}
		bottom, ok := openersBottom[key]
		if !ok {
			bottom = stackBottom
		}
		opener := closer.prev
		for ; opener != nil && opener != bottom && opener != stackBottom; opener = opener.prev {
			if opener.char != closer.char || !opener.canOpen {
				continue
			}
			oddMatch := (opener.canClose || closer.canOpen) &&
				(opener.orig+closer.orig)%3 == 0 &&
				!(opener.orig%3 == 0 && closer.orig%3 == 0)
			if !oddMatch {
				break
			}
		}
		if opener == nil || opener == bottom || opener == stackBottom {
			openersBottom[key] = closer.prev
			next := closer.next
			if !closer.canOpen {
				p.removeDelim(closer)
			}
			closer = next
			continue
		}
		use := 1
		if opener.count >= 2 && closer.count >= 2 {
			use = 2
		}
		opener.count -= use
		closer.count -= use
		opener.it.node.(*ast.Text).Value = strings.Repeat(string(opener.char), opener.count)
		closer.it.node.(*ast.Text).Value = strings.Repeat(string(closer.char), closer.count)
		//
		children := p.collect(opener.it.next, closer.it)
		var emph ast.Inline
		if use == 2 {
			emph = &ast.Strong{Marker: strings.Repeat(string(opener.char), 2), Children: children}
		} else {
			emph = &ast.Emphasis{Marker: string(opener.char), Children: children}
		}
		it := &item{node: emph, prev: opener.it, next: closer.it}
		opener.it.next = it
		closer.it.prev = it
		opener.next = closer
		closer.prev = opener
		if opener.count == 0 {
			p.remove(opener.it)
			p.removeDelim(opener)
		}
		if closer.count == 0 {
			next := closer.next
			p.remove(closer.it)
			p.removeDelim(closer)
			closer = next
		}
	}
	// clear the delimiter stack above stackBottom
	if stackBottom == nil {
		p.dtail = nil
	} else {
		stackBottom.next = nil
		p.dtail = stackBottom
	}
}

// --- Links -----------------------------------------------------------------

func (p *parser) openBracket(image bool) {
	n := 1
	if image {
		n = 2
	}
	if p.brackets.Size() >= p.maxDepth {
		tracer().Debugf("bracket depth limit %d reached at %d", p.maxDepth, p.pos)
		p.literal(n)
		return
	}
	p.flush()
	it := p.append(&ast.Text{Value: p.src[p.pos : p.pos+n]})
	p.pos += n
	p.brackets.Push(&bracket{
		it:        it,
		image:     image,
		active:    true,
		bottom:    p.dtail,
		textStart: p.pos,
	})
}

func (p *parser) closeBracket() {
	top, ok := p.brackets.Peek()
	if !ok {
		p.literal(1)
		return
	}
	opener := top.(*bracket)
	if !opener.active {
		p.brackets.Pop()
		p.literal(1)
		return
	}
	ref, end, found := p.linkTarget(opener)
	if !found {
		p.brackets.Pop()
		p.literal(1)
		return
	}
	p.flush()
	p.processEmphasis(opener.bottom)
	children := mergeText(p.collect(opener.it.next, nil))
	var link ast.Inline
	if opener.image {
		link = &ast.Image{URL: ref.URL, Title: ref.Title, Alt: ast.PlainText(children)}
	} else {
		link = &ast.Link{URL: ref.URL, Title: ref.Title, Children: children}
	}
	// replace the opening bracket and everything after it by the link
	p.tail = opener.it.prev
	if p.tail == nil {
		p.head = nil
	} else {
		p.tail.next = nil
	}
	p.append(link)
	p.pos = end
	p.brackets.Pop()
	if !opener.image {
		it := p.brackets.Iterator()
		for it.Next() {
			if b := it.Value().(*bracket); !b.image {
				b.active = false
			}
		}
	}
}

// linkTarget checks what follows the closing bracket at p.pos: an inline
// destination, a full or collapsed reference, or nothing (shortcut reference).
func (p *parser) linkTarget(opener *bracket) (ast.Reference, int, bool) {
	text := p.src[opener.textStart:p.pos]
	after := p.pos + 1
	if ref, end, ok := p.inlineLink(after); ok {
		return ref, end, true
	}
	label := text
	end := after
	if l, e, ok := ParseLinkLabel(p.src, after); ok {
		end = e
		if l != "" {
			label = l
		}
	}
	if !validLabel(label) {
		return ast.Reference{}, 0, false
	}
	ref, found := p.refs.Lookup(label)
	return ref, end, found
}

func (p *parser) inlineLink(i int) (ast.Reference, int, bool) {
	if i >= len(p.src) || p.src[i] != '(' {
		return ast.Reference{}, 0, false
	}
	var ref ast.Reference
	j, _ := skipSpace(p.src, i+1)
	if j < len(p.src) && p.src[j] == ')' {
		return ref, j + 1, true
	}
	dest, k, ok := ParseLinkDestination(p.src, j)
	if !ok {
		return ref, 0, false
	}
	ref.URL = dest
	j, _ = skipSpace(p.src, k)
	if j > k {
		if title, e, ok := ParseLinkTitle(p.src, j); ok {
			ref.Title = title
			j, _ = skipSpace(p.src, e)
		}
	}
	if j >= len(p.src) || p.src[j] != ')' {
		return ast.Reference{}, 0, false
	}
	return ref, j + 1, true
}

// --- Cleanup ---------------------------------------------------------------

// mergeText joins adjacent text nodes and drops empty ones, also within
// container inlines.
func mergeText(nodes []ast.Inline) []ast.Inline {
	out := nodes[:0:0]
	for _, n := range nodes {
		switch x := n.(type) {
		case *ast.Text:
			if x.Value == "" {
				continue
			}
			if len(out) > 0 {
				if prev, ok := out[len(out)-1].(*ast.Text); ok {
					out[len(out)-1] = &ast.Text{Value: prev.Value + x.Value}
					continue
				}
			}
		case *ast.Emphasis:
			x.Children = mergeText(x.Children)
		case *ast.Strong:
			x.Children = mergeText(x.Children)
		case *ast.Link:
			x.Children = mergeText(x.Children)
		}
		out = append(out, n)
	}
	return out
}
