package html

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/npillmayer/mdtree/engine/ast"
	xhtml "golang.org/x/net/html"
)

// Options control rendering.
type Options struct {
	Sanitize           bool                // escape raw HTML, neutralize scripting URLs
	ExternalLinkTarget string              // target attribute for absolute links, e.g. "_blank"
	URLTransform       func(string) string // applied to link and image URLs
	ClassPrefix        string              // prefix of code language classes, default "language-"
	HeadingIDs         bool                // add id attributes to headings
}

type renderer struct {
	b    bytes.Buffer
	opts Options
	ids  map[string]int // heading ids issued so far
}

// Render creates HTML for a document.
func Render(doc *ast.Document, opts Options) string {
	if doc == nil {
		return ""
	}
	return RenderBlocks(doc.Children, opts)
}

// RenderBlocks creates HTML for a sequence of blocks.
func RenderBlocks(blocks []ast.Block, opts Options) string {
	if opts.ClassPrefix == "" {
		opts.ClassPrefix = "language-"
	}
	r := &renderer{opts: opts, ids: map[string]int{}}
	for _, b := range blocks {
		r.block(b, false)
	}
	tracer().Debugf("rendered %d blocks into %d bytes of HTML", len(blocks), r.b.Len())
	return r.b.String()
}

// cr starts a new line unless output is at the start of a line.
func (r *renderer) cr() {
	if n := r.b.Len(); n > 0 && r.b.Bytes()[n-1] != '\n' {
		r.b.WriteByte('\n')
	}
}

// tag writes a start tag with attributes given as name/value pairs.
func (r *renderer) tag(name string, attrs ...string) {
	r.attrs(name, attrs)
	r.b.WriteByte('>')
}

// void writes a tag without content, like <img />.
func (r *renderer) void(name string, attrs ...string) {
	r.attrs(name, attrs)
	r.b.WriteString(" />")
}

func (r *renderer) attrs(name string, attrs []string) {
	r.b.WriteByte('<')
	r.b.WriteString(name)
	for i := 0; i+1 < len(attrs); i += 2 {
		r.b.WriteByte(' ')
		r.b.WriteString(attrs[i])
		r.b.WriteString(`="`)
		r.b.WriteString(xhtml.EscapeString(attrs[i+1]))
		r.b.WriteByte('"')
	}
}

func (r *renderer) block(b ast.Block, tight bool) {
	switch n := b.(type) {
	case *ast.Paragraph:
		if tight {
			r.inlines(n.Children)
			return
		}
		r.cr()
		r.b.WriteString("<p>")
		r.inlines(n.Children)
		r.b.WriteString("</p>\n")
	case *ast.Heading:
		r.cr()
		h := "h" + strconv.Itoa(n.Level)
		if r.opts.HeadingIDs {
			r.tag(h, "id", r.headingID(n))
		} else {
			r.tag(h)
		}
		r.inlines(n.Children)
		r.b.WriteString("</" + h + ">\n")
	case *ast.ThematicBreak:
		r.cr()
		r.b.WriteString("<hr />\n")
	case *ast.CodeBlock:
		r.cr()
		r.b.WriteString("<pre>")
		if n.Lang != "" {
			r.tag("code", "class", r.opts.ClassPrefix+n.Lang)
		} else {
			r.b.WriteString("<code>")
		}
		r.b.WriteString(xhtml.EscapeString(n.Value))
		if n.Value != "" {
			r.b.WriteByte('\n')
		}
		r.b.WriteString("</code></pre>\n")
	case *ast.HTMLBlock:
		r.cr()
		if r.opts.Sanitize {
			r.b.WriteString("<p>" + xhtml.EscapeString(n.Value) + "</p>\n")
			return
		}
		r.b.WriteString(n.Value)
		r.b.WriteByte('\n')
	case *ast.Blockquote:
		r.cr()
		r.b.WriteString("<blockquote>\n")
		for _, c := range n.Children {
			r.block(c, false)
		}
		r.cr()
		r.b.WriteString("</blockquote>\n")
	case *ast.List:
		r.list(n)
	case *ast.Table:
		r.table(n)
	case *ast.LinkReferenceDefinition:
		// definitions produce no output
	default:
		tracer().Errorf("cannot render block of type %T", b)
	}
}

func (r *renderer) list(l *ast.List) {
	r.cr()
	name := "ul"
	if l.Ordered {
		name = "ol"
		if l.FirstNumber() != 1 {
			r.tag(name, "start", strconv.Itoa(l.FirstNumber()))
		} else {
			r.tag(name)
		}
	} else {
		r.tag(name)
	}
	r.b.WriteByte('\n')
	tight := !l.Spread
	for _, item := range l.Children {
		r.b.WriteString("<li>")
		if item.Checked != nil {
			if *item.Checked {
				r.b.WriteString(`<input type="checkbox" checked="" disabled="" /> `)
			} else {
				r.b.WriteString(`<input type="checkbox" disabled="" /> `)
			}
		}
		lastTight := false
		for _, c := range item.Children {
			_, isPara := c.(*ast.Paragraph)
			r.block(c, tight)
			lastTight = tight && isPara
		}
		if len(item.Children) > 0 && !lastTight {
			r.cr()
		}
		r.b.WriteString("</li>\n")
	}
	r.b.WriteString("</" + name + ">\n")
}

var alignNames = map[ast.Alignment]string{
	ast.AlignLeft:   "left",
	ast.AlignCenter: "center",
	ast.AlignRight:  "right",
}

func (r *renderer) table(t *ast.Table) {
	r.cr()
	r.b.WriteString("<table>\n")
	inBody := false
	for i, row := range t.Children {
		if i == 0 && row.IsHeader {
			r.b.WriteString("<thead>\n")
		} else if !inBody {
			if i > 0 {
				r.b.WriteString("</thead>\n")
			}
			r.b.WriteString("<tbody>\n")
			inBody = true
		}
		r.b.WriteString("<tr>\n")
		for j, cell := range row.Children {
			name := "td"
			if row.IsHeader {
				name = "th"
			}
			align := cell.Align
			if align == ast.AlignNone && j < len(t.Align) {
				align = t.Align[j]
			}
			if a, ok := alignNames[align]; ok {
				r.tag(name, "align", a)
			} else {
				r.tag(name)
			}
			r.inlines(cell.Children)
			r.b.WriteString("</" + name + ">\n")
		}
		r.b.WriteString("</tr>\n")
	}
	if inBody {
		r.b.WriteString("</tbody>\n")
	} else if len(t.Children) > 0 {
		r.b.WriteString("</thead>\n")
	}
	r.b.WriteString("</table>\n")
}

// --- Inlines ---------------------------------------------------------------

func (r *renderer) inlines(inl []ast.Inline) {
	for _, n := range inl {
		r.inline(n)
	}
}

func (r *renderer) inline(n ast.Inline) {
	switch x := n.(type) {
	case *ast.Text:
		r.b.WriteString(xhtml.EscapeString(x.Value))
	case *ast.CodeSpan:
		r.b.WriteString("<code>" + xhtml.EscapeString(x.Value) + "</code>")
	case *ast.HardBreak:
		r.b.WriteString("<br />\n")
	case *ast.SoftBreak:
		r.b.WriteByte('\n')
	case *ast.HTMLInline:
		if r.opts.Sanitize {
			r.b.WriteString(xhtml.EscapeString(x.Value))
		} else {
			r.b.WriteString(x.Value)
		}
	case *ast.Emphasis:
		r.b.WriteString("<em>")
		r.inlines(x.Children)
		r.b.WriteString("</em>")
	case *ast.Strong:
		r.b.WriteString("<strong>")
		r.inlines(x.Children)
		r.b.WriteString("</strong>")
	case *ast.Link:
		url := r.url(x.URL)
		attrs := []string{"href", url}
		if x.Title != "" {
			attrs = append(attrs, "title", x.Title)
		}
		if r.opts.ExternalLinkTarget != "" && isExternal(url) {
			attrs = append(attrs, "target", r.opts.ExternalLinkTarget, "rel", "noopener noreferrer")
		}
		r.tag("a", attrs...)
		r.inlines(x.Children)
		r.b.WriteString("</a>")
	case *ast.Image:
		attrs := []string{"src", r.url(x.URL), "alt", x.Alt}
		if x.Title != "" {
			attrs = append(attrs, "title", x.Title)
		}
		r.void("img", attrs...)
	default:
		tracer().Errorf("cannot render inline of type %T", n)
	}
}

// url applies the URL transformation, neutralizes unsafe schemes if
// sanitizing and percent-encodes characters not allowed in URLs.
func (r *renderer) url(u string) string {
	if r.opts.URLTransform != nil {
		u = r.opts.URLTransform(u)
	}
	if r.opts.Sanitize && !isSafeURL(u) {
		tracer().Infof("neutralized URL %q", u)
		return "#"
	}
	return encodeURL(u)
}

var unsafeSchemes = []string{"javascript:", "vbscript:", "data:", "file:"}

func isSafeURL(u string) bool {
	u = strings.ToLower(strings.TrimSpace(u))
	for _, s := range unsafeSchemes {
		if strings.HasPrefix(u, s) {
			return s == "data:" && isImageData(u)
		}
	}
	return true
}

func isImageData(u string) bool {
	for _, t := range []string{"data:image/png", "data:image/gif", "data:image/jpeg", "data:image/webp"} {
		if strings.HasPrefix(u, t) {
			return true
		}
	}
	return false
}

func isExternal(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") ||
		strings.HasPrefix(u, "//")
}

const hexDigits = "0123456789ABCDEF"

// encodeURL percent-encodes bytes outside the set of characters allowed in
// URLs. Existing percent-escapes are kept.
func encodeURL(u string) string {
	var b strings.Builder
	for i := 0; i < len(u); i++ {
		c := u[i]
		switch {
		case c == '%' && i+2 < len(u) && isHex(u[i+1]) && isHex(u[i+2]):
			b.WriteByte(c)
		case c < 0x80 && c > ' ' && strings.IndexByte(`"<>\^`+"`{|}", c) < 0 && c != 0x7f && c != '%':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&15])
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
