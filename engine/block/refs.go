package block

import (
	"github.com/npillmayer/mdtree/engine/ast"
	"github.com/npillmayer/mdtree/engine/lines"
)

// Prescan collects link reference definitions from lines before block parsing
// starts, so that references may be used before they are defined. Definitions
// are recognized at the start of paragraphs, on top level and within block
// quotes. Fenced code and HTML blocks are skipped. The first definition of a
// label wins. Prescan returns the number of definitions added to refs.
func Prescan(ls []lines.Line, refs ast.References) int {
	stripped := make([]lines.Line, len(ls))
	for i, l := range ls {
		for isQuoteLine(l) {
			l = quoteContent(l)
		}
		stripped[i] = l
	}
	var st lazyState
	count := 0
	for i := 0; i < len(stripped); {
		l := stripped[i]
		if st.fence == 0 && st.html == 0 && !st.para && l.Indent < 4 && !l.Blank && l.Rest()[0] == '[' {
			if def, next, _, ok := parseLinkRefDef(stripped, i); ok {
				if refs.Define(def.Label, ast.Reference{URL: def.URL, Title: def.Title}) {
					count++
				}
				i = next
				continue
			}
		}
		st.update(l, false)
		i++
	}
	tracer().Debugf("prescan found %d link reference definitions", count)
	return count
}

// FenceOpen checks if a line opens a fenced code block. It returns the fence
// character and length.
func FenceOpen(l lines.Line) (byte, int, bool) {
	if l.Indent >= 4 {
		return 0, 0, false
	}
	c, n, _, ok := parseFence(l.Rest())
	return c, n, ok
}

// FenceClose checks if a line closes a fenced code block opened with fence
// character c and length n.
func FenceClose(l lines.Line, c byte, n int) bool {
	return l.Indent < 4 && isFenceClose(l.Rest(), c, n)
}
