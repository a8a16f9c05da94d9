package mdgen

import (
	"regexp"
	"strings"

	"github.com/npillmayer/mdtree/core"
	"github.com/npillmayer/mdtree/core/parameters"
	"github.com/npillmayer/mdtree/engine/ast"
)

var (
	entityLike   = regexp.MustCompile(`^&(?:#[xX]?[0-9a-fA-F]+|[A-Za-z][A-Za-z0-9]*);`)
	autolinkLike = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9.+-]{1,31}:[^\x00-\x20<>]*$`)
	emailLike    = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9-]+(?:\\.[a-zA-Z0-9-]+)*$")
)

// inlineWriter renders inline nodes. It tracks whether output is at the start
// of a line, where some characters need escaping to not start a block.
type inlineWriter struct {
	b         strings.Builder
	regs      *parameters.StyleRegisters
	lineStart bool
}

// renderInlines renders inline content to text. Lines are separated by "\n".
func renderInlines(nodes []ast.Inline, regs *parameters.StyleRegisters) (string, error) {
	w := &inlineWriter{regs: regs, lineStart: true}
	if err := w.inlines(nodes, 0, true); err != nil {
		return "", err
	}
	return w.b.String(), nil
}

// inlines renders a sequence of nodes. last tells whether the sequence ends
// a line of output.
func (w *inlineWriter) inlines(nodes []ast.Inline, flip byte, last bool) error {
	for i, n := range nodes {
		if t, ok := n.(*ast.Text); ok {
			lineEnd := last && i == len(nodes)-1
			if i+1 < len(nodes) {
				_, lineEnd = nodes[i+1].(*ast.SoftBreak)
			}
			w.text(t.Value, lineEnd)
			continue
		}
		if err := w.inline(n, flip); err != nil {
			return err
		}
	}
	return nil
}

// inline renders a single node. flip is a delimiter character which the node
// must not use if it is emphasis.
func (w *inlineWriter) inline(n ast.Inline, flip byte) error {
	switch x := n.(type) {
	case *ast.Text:
		w.text(x.Value, false)
	case *ast.CodeSpan:
		w.write(codeSpan(x.Value))
	case *ast.SoftBreak:
		w.b.WriteByte('\n')
		w.lineStart = true
	case *ast.HardBreak:
		w.b.WriteString("\\\n")
		w.lineStart = true
	case *ast.HTMLInline:
		w.write(x.Value)
	case *ast.Emphasis:
		marker := emphasisMarker(x.Marker, w.regs.S(parameters.P_EMPHASIS), flip)
		return w.delimited(marker, x.Children)
	case *ast.Strong:
		marker := emphasisMarker(x.Marker, w.regs.S(parameters.P_STRONG), flip)
		return w.delimited(marker, x.Children)
	case *ast.Link:
		if dest, ok := autolink(x); ok {
			w.write("<" + dest + ">")
			return nil
		}
		w.write("[")
		if err := w.inlines(x.Children, 0, false); err != nil {
			return err
		}
		w.write("](" + destination(x.URL, false) + title(x.Title) + ")")
	case *ast.Image:
		w.write("![")
		w.text(x.Alt, false)
		w.write("](" + destination(x.URL, false) + title(x.Title) + ")")
	case nil:
		return core.Error(core.EINVALID, "nil inline node")
	default:
		return core.Error(core.EINVALID, "unexpected inline node of type %T", n)
	}
	return nil
}

func (w *inlineWriter) write(s string) {
	if s == "" {
		return
	}
	w.b.WriteString(s)
	w.lineStart = strings.HasSuffix(s, "\n")
}

// delimited writes emphasis or strong emphasis. A sole emphasis child using
// the same delimiter character would merge with the outer delimiters, so it is
// told to switch characters.
func (w *inlineWriter) delimited(marker string, children []ast.Inline) error {
	w.write(marker)
	var flip byte
	if len(children) == 1 {
		if _, ok := children[0].(*ast.Emphasis); ok {
			flip = marker[0]
		}
	}
	if err := w.inlines(children, flip, false); err != nil {
		return err
	}
	w.write(marker)
	return nil
}

func emphasisMarker(marker, dflt string, flip byte) string {
	if marker == "" {
		marker = dflt
	}
	if marker[0] == flip {
		alt := "_"
		if flip == '_' {
			alt = "*"
		}
		marker = strings.Repeat(alt, len(marker))
	}
	return marker
}

// text writes literal text, escaping characters which could be taken as
// markup. Blanks at either end of a line are written as character references,
// as parsing strips them. lineEnd tells whether s ends a line.
func (w *inlineWriter) text(s string, lineEnd bool) {
	if s == "" {
		return
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\n' {
			b.WriteByte(c)
			w.lineStart = true
			continue
		}
		if c == ' ' || c == '\t' {
			if w.lineStart || (i+1 == len(s) && lineEnd) || (i+1 < len(s) && s[i+1] == '\n') {
				w.lineStart = false
				b.WriteString(blankRef(c))
				continue
			}
		}
		if w.lineStart {
			w.lineStart = false
			if n := orderedPrefix(s[i:]); n > 0 {
				b.WriteString(s[i : i+n])
				b.WriteByte('\\')
				b.WriteByte(s[i+n])
				i += n
				continue
			}
			if strings.IndexByte("#>+-=~", c) >= 0 {
				b.WriteByte('\\')
				b.WriteByte(c)
				continue
			}
		}
		switch c {
		case '\\', '*', '_', '`', '[', ']', '<', '|':
			b.WriteByte('\\')
		case '&':
			if entityLike.MatchString(s[i:]) {
				b.WriteByte('\\')
			}
		case '!':
			if i == len(s)-1 { // may precede a link
				b.WriteByte('\\')
			}
		}
		b.WriteByte(c)
	}
	w.b.WriteString(b.String())
}

func blankRef(c byte) string {
	if c == '\t' {
		return "&#9;"
	}
	return "&#32;"
}

// orderedPrefix returns the length of a leading number which would be taken
// as an ordered list marker, or 0.
func orderedPrefix(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n == 0 || n > 9 || n >= len(s) || (s[n] != '.' && s[n] != ')') {
		return 0
	}
	return n
}

// codeSpan wraps a value in a run of backticks longer than every backtick run
// inside it.
func codeSpan(value string) string {
	longest, run := 0, 0
	for i := 0; i < len(value); i++ {
		if value[i] == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", longest+1)
	padded := longest > 0 || strings.HasPrefix(value, "`") || strings.HasSuffix(value, "`") ||
		(strings.HasPrefix(value, " ") && strings.HasSuffix(value, " ") && strings.Trim(value, " ") != "")
	if padded {
		return fence + " " + value + " " + fence
	}
	return fence + value + fence
}

// autolink checks if a link may be written as an autolink.
func autolink(l *ast.Link) (string, bool) {
	if l.Title != "" || len(l.Children) != 1 {
		return "", false
	}
	t, ok := l.Children[0].(*ast.Text)
	if !ok {
		return "", false
	}
	if t.Value == l.URL && autolinkLike.MatchString(l.URL) {
		return l.URL, true
	}
	if "mailto:"+t.Value == l.URL && emailLike.MatchString(t.Value) {
		return t.Value, true
	}
	return "", false
}

// destination formats a link destination. Destinations containing spaces or
// unbalanced parentheses use the pointy bracket form.
func destination(url string, definition bool) string {
	if url == "" {
		if definition {
			return "<>"
		}
		return ""
	}
	pointy := strings.HasPrefix(url, "<") || strings.ContainsAny(url, " \t\n")
	depth := 0
	for i := 0; i < len(url) && !pointy; i++ {
		switch c := url[i]; {
		case c == '(':
			depth++
		case c == ')':
			depth--
			pointy = depth < 0
		case c < ' ' || c == 0x7f:
			pointy = true
		}
	}
	pointy = pointy || depth != 0
	var b strings.Builder
	if pointy {
		b.WriteByte('<')
	}
	for i := 0; i < len(url); i++ {
		c := url[i]
		switch {
		case c == '\\' || (pointy && (c == '<' || c == '>')):
			b.WriteByte('\\')
		case c == '&' && entityLike.MatchString(url[i:]):
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	if pointy {
		b.WriteByte('>')
	}
	return b.String()
}

// title formats a link title, including a leading space.
func title(t string) string {
	if t == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(` "`)
	for i := 0; i < len(t); i++ {
		c := t[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
		case c == '&' && entityLike.MatchString(t[i:]):
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}
