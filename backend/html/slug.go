package html

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/npillmayer/mdtree/engine/ast"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug creates an identifier from heading text: diacritics are removed by
// NFKD decomposition, letters are lower-cased, runs of other characters become
// single hyphens.
func Slug(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	var b strings.Builder
	hyphen := false
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(unicode.ToLower(r))
		case r == '_':
			b.WriteRune(r)
		default:
			hyphen = true
		}
	}
	if b.Len() == 0 {
		return "section"
	}
	return b.String()
}

// headingID returns the slug of a heading, made unique by a numeric suffix.
func (r *renderer) headingID(h *ast.Heading) string {
	id := Slug(ast.PlainText(h.Children))
	n := r.ids[id]
	r.ids[id] = n + 1
	if n > 0 {
		id += "-" + strconv.Itoa(n)
	}
	return id
}
