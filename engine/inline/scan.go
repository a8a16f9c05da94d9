package inline

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// MaxLabelLength is the maximum length of a link label in bytes.
const MaxLabelLength = 999

var (
	entityRe = regexp.MustCompile(`^&(?:#[xX][0-9a-fA-F]{1,6}|#[0-9]{1,7}|[A-Za-z][A-Za-z0-9]{1,31});`)
	uriRe    = regexp.MustCompile(`^<([A-Za-z][A-Za-z0-9.+-]{1,31}:[^\x00-\x20<>]*)>`)
	emailRe  = regexp.MustCompile("^<([a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?" +
		`(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*)>`)
	htmlRe = regexp.MustCompile(`^(?:` + openTag + `|` + closeTag + `|` + htmlComment + `|` +
		processing + `|` + declaration + `|` + cdata + `)`)
)

const (
	tagName     = `[A-Za-z][A-Za-z0-9-]*`
	attrName    = `[A-Za-z_:][A-Za-z0-9_.:-]*`
	attrValue   = "(?:[^\"'=<>`\\x00-\\x20]+|'[^']*'|\"[^\"]*\")"
	attribute   = `(?:\s+` + attrName + `(?:\s*=\s*` + attrValue + `)?)`
	openTag     = `<` + tagName + attribute + `*\s*/?>`
	closeTag    = `</` + tagName + `\s*>`
	htmlComment = `<!-->|<!--->|<!--(?s:.*?)-->`
	processing  = `<\?(?s:.*?)\?>`
	declaration = `<![A-Za-z][^>]*>`
	cdata       = `<!\[CDATA\[(?s:.*?)\]\]>`
)

// OpenTagRe matches a complete HTML open tag, CloseTagRe a complete closing tag.
// Both are used for HTML block detection as well.
var (
	OpenTagRe  = regexp.MustCompile(`^` + openTag)
	CloseTagRe = regexp.MustCompile(`^` + closeTag)
)

func isASCIIPunct(c byte) bool {
	return c >= '!' && c <= '/' || c >= ':' && c <= '@' || c >= '[' && c <= '`' || c >= '{' && c <= '~'
}

func isSpaceRune(r rune) bool {
	return unicode.IsSpace(r)
}

func isPunctRune(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// Unescape resolves backslash escapes and entity references in s, as needed
// for link destinations, titles and info strings.
func Unescape(s string) string {
	if strings.IndexAny(s, `\&`) < 0 {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		if c == '\\' && i+1 < len(s) && isASCIIPunct(s[i+1]) {
			b.WriteByte(s[i+1])
			i += 2
			continue
		}
		if c == '&' {
			if u, n := decodeEntity(s[i:]); n > 0 {
				b.WriteString(u)
				i += n
				continue
			}
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// decodeEntity decodes an entity or numeric character reference at the start
// of s. It returns the decoded text and the length of the reference, or 0 if s
// does not start with a known reference.
func decodeEntity(s string) (string, int) {
	m := entityRe.FindString(s)
	if m == "" {
		return "", 0
	}
	u := html.UnescapeString(m)
	if u == m || (u != ";" && strings.HasSuffix(u, ";")) {
		return "", 0 // unknown, or a prefix-only match like "&notit;"
	}
	return u, len(m)
}

// skipSpace skips spaces and tabs and at most one line ending.
func skipSpace(s string, i int) (int, bool) {
	newline := false
	for i < len(s) {
		switch s[i] {
		case ' ', '\t':
			i++
			continue
		case '\n':
			if newline {
				return i, true
			}
			newline = true
			i++
			continue
		}
		break
	}
	return i, newline
}

// ParseLinkDestination parses a link destination starting at s[i]. It returns
// the unescaped destination and the index after it.
func ParseLinkDestination(s string, i int) (string, int, bool) {
	if i >= len(s) {
		return "", i, false
	}
	if s[i] == '<' {
		for j := i + 1; j < len(s); j++ {
			switch s[j] {
			case '\\':
				if j+1 < len(s) && isASCIIPunct(s[j+1]) {
					j++
				}
			case '\n', '<':
				return "", i, false
			case '>':
				return Unescape(s[i+1 : j]), j + 1, true
			}
		}
		return "", i, false
	}
	depth := 0
	j := i
loop:
	for ; j < len(s); j++ {
		c := s[j]
		switch {
		case c == '\\' && j+1 < len(s) && isASCIIPunct(s[j+1]):
			j++
		case c == '(':
			depth++
			if depth > 32 {
				return "", i, false
			}
		case c == ')':
			if depth == 0 {
				break loop
			}
			depth--
		case c <= ' ' || c == 0x7f:
			break loop
		}
	}
	if depth != 0 || j == i {
		return "", i, false
	}
	return Unescape(s[i:j]), j, true
}

// ParseLinkTitle parses a link title in one of the forms "…", '…' or (…)
// starting at s[i]. It returns the unescaped title and the index after it.
func ParseLinkTitle(s string, i int) (string, int, bool) {
	if i >= len(s) {
		return "", i, false
	}
	closer := s[i]
	switch closer {
	case '"', '\'':
	case '(':
		closer = ')'
	default:
		return "", i, false
	}
	for j := i + 1; j < len(s); j++ {
		c := s[j]
		switch {
		case c == '\\' && j+1 < len(s) && isASCIIPunct(s[j+1]):
			j++
		case c == closer:
			return Unescape(s[i+1 : j]), j + 1, true
		case c == '(' && closer == ')':
			return "", i, false
		case c == '\n' && j+1 < len(s) && isBlankStart(s[j+1:]):
			return "", i, false
		}
	}
	return "", i, false
}

func isBlankStart(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t':
			continue
		case '\n':
			return true
		}
		return false
	}
	return true
}

// ParseLinkLabel parses a link label "[…]" starting at s[i]. It returns the raw
// label text (between the brackets) and the index after the closing bracket.
// An empty label is returned for "[]".
func ParseLinkLabel(s string, i int) (string, int, bool) {
	if i >= len(s) || s[i] != '[' {
		return "", i, false
	}
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			if j+1 < len(s) && isASCIIPunct(s[j+1]) {
				j++
			}
		case '[':
			return "", i, false
		case ']':
			if j-i-1 > MaxLabelLength {
				return "", i, false
			}
			return s[i+1 : j], j + 1, true
		}
	}
	return "", i, false
}

// validLabel checks text of a bracket pair for usability as a reference label.
func validLabel(label string) bool {
	if len(label) > MaxLabelLength || strings.TrimSpace(label) == "" {
		return false
	}
	for j := 0; j < len(label); j++ {
		switch label[j] {
		case '\\':
			j++
		case '[', ']':
			return false
		}
	}
	return true
}
