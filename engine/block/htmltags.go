package block

import (
	"strings"

	"github.com/derekparker/trie"
)

// HTML block start conditions which depend on a tag name are looked up in a
// prefix tree. Type 1 tags are raw-text elements, type 6 tags are block-level
// elements.
var htmlTags = func() *trie.Trie {
	t := trie.New()
	for _, tag := range []string{"pre", "script", "style", "textarea"} {
		t.Add(tag, 1)
	}
	for _, tag := range strings.Fields(`address article aside base basefont blockquote body
		caption center col colgroup dd details dialog dir div dl dt fieldset figcaption
		figure footer form frame frameset h1 h2 h3 h4 h5 h6 head header hr html iframe
		legend li link main menu menuitem nav noframes ol optgroup option p param search
		section summary table tbody td tfoot th thead title tr track ul`) {
		t.Add(tag, 6)
	}
	return t
}()

// htmlTagType returns 1 or 6 for tag names of HTML block types 1 and 6, and 0
// for all other names.
func htmlTagType(name string) int {
	if name == "" {
		return 0
	}
	node, ok := htmlTags.Find(strings.ToLower(name))
	if !ok {
		return 0
	}
	return node.Meta().(int)
}

// HTMLBlockType tells which type of HTML block a line starting with an
// element named tag would open when written on a line of its own: 1 for raw
// text elements, 6 for block-level elements and 7 for all others.
func HTMLBlockType(tag string) int {
	if t := htmlTagType(tag); t > 0 {
		return t
	}
	return 7
}

// type 1 end conditions
var rawEndTags = []string{"</pre>", "</script>", "</style>", "</textarea>"}

// htmlBlockStart checks rest, a line without indentation, for the start of an
// HTML block and returns its type, or 0.
func htmlBlockStart(rest string) int {
	if len(rest) < 2 || rest[0] != '<' {
		return 0
	}
	switch {
	case strings.HasPrefix(rest, "<!--"):
		return 2
	case strings.HasPrefix(rest, "<?"):
		return 3
	case strings.HasPrefix(rest, "<![CDATA["):
		return 5
	case rest[1] == '!' && len(rest) > 2 && isASCIILetter(rest[2]):
		return 4
	}
	closing := rest[1] == '/'
	i := 1
	if closing {
		i = 2
	}
	j := i
	for j < len(rest) && (isASCIILetter(rest[j]) || rest[j] >= '0' && rest[j] <= '9' || rest[j] == '-') {
		j++
	}
	name := rest[i:j]
	var next byte = ' '
	if j < len(rest) {
		next = rest[j]
	}
	switch typ := htmlTagType(name); typ {
	case 1:
		if !closing && (next == ' ' || next == '\t' || next == '>') {
			return 1
		}
	case 6:
		if next == ' ' || next == '\t' || next == '>' || strings.HasPrefix(rest[j:], "/>") {
			return 6
		}
	}
	return 0
}

func isASCIILetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// htmlBlockEnds checks if a line satisfies the end condition of HTML block
// types 1 to 5.
func htmlBlockEnds(typ int, text string) bool {
	switch typ {
	case 1:
		lower := strings.ToLower(text)
		for _, tag := range rawEndTags {
			if strings.Contains(lower, tag) {
				return true
			}
		}
	case 2:
		return strings.Contains(text, "-->")
	case 3:
		return strings.Contains(text, "?>")
	case 4:
		return strings.Contains(text, ">")
	case 5:
		return strings.Contains(text, "]]>")
	}
	return false
}
