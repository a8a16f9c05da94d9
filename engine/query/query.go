package query

import (
	"strings"
	"unicode"

	"github.com/npillmayer/mdtree/engine/ast"
	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax29"
)

// Heading is an entry of a document outline.
type Heading struct {
	Level int
	Text  string
	Pos   *ast.Position
}

// Headings returns the outline of a document.
func Headings(doc *ast.Document) []Heading {
	var hs []Heading
	collect(doc, func(h *ast.Heading) {
		hs = append(hs, Heading{Level: h.Level, Text: ast.PlainText(h.Children), Pos: h.Pos})
	})
	return hs
}

// Links returns all links of a document in document order.
func Links(doc *ast.Document) []*ast.Link {
	var links []*ast.Link
	collect(doc, func(l *ast.Link) { links = append(links, l) })
	return links
}

// Images returns all images of a document in document order.
func Images(doc *ast.Document) []*ast.Image {
	var images []*ast.Image
	collect(doc, func(i *ast.Image) { images = append(images, i) })
	return images
}

// CodeBlocks returns all code blocks of a document in document order.
func CodeBlocks(doc *ast.Document) []*ast.CodeBlock {
	var code []*ast.CodeBlock
	collect(doc, func(c *ast.CodeBlock) { code = append(code, c) })
	return code
}

// collect calls f for every node of type T.
func collect[T ast.Node](doc *ast.Document, f func(T)) {
	if doc == nil {
		return
	}
	ast.Walk(doc, func(n ast.Node, entering bool) ast.WalkStatus {
		if x, ok := n.(T); ok && entering {
			f(x)
		}
		return ast.WalkContinue
	})
}

// PlainText returns the text of a document without markup. Blocks are
// separated by blank lines, table cells by tabs. Raw HTML is dropped.
func PlainText(doc *ast.Document) string {
	if doc == nil {
		return ""
	}
	var parts []string
	var add func(blocks []ast.Block)
	add = func(blocks []ast.Block) {
		for _, b := range blocks {
			switch x := b.(type) {
			case *ast.Heading:
				parts = append(parts, ast.PlainText(x.Children))
			case *ast.Paragraph:
				parts = append(parts, ast.PlainText(x.Children))
			case *ast.CodeBlock:
				parts = append(parts, x.Value)
			case *ast.Blockquote:
				add(x.Children)
			case *ast.List:
				for _, item := range x.Children {
					add(item.Children)
				}
			case *ast.Table:
				var rows []string
				for _, row := range x.Children {
					cells := make([]string, len(row.Children))
					for i, cell := range row.Children {
						cells[i] = ast.PlainText(cell.Children)
					}
					rows = append(rows, strings.Join(cells, "\t"))
				}
				parts = append(parts, strings.Join(rows, "\n"))
			}
		}
	}
	add(doc.Children)
	return strings.Join(parts, "\n\n")
}

// WordCount counts the words of a document, excluding code blocks and raw
// HTML. A word is a UAX#29 word segment containing a letter or a digit.
func WordCount(doc *ast.Document) int {
	if doc == nil {
		return 0
	}
	words := segment.NewSegmenter(uax29.NewWordBreaker(1))
	words.BreakOnZero(true, false)
	count := 0
	var text strings.Builder
	collect(doc, func(n ast.Node) {
		switch x := n.(type) {
		case *ast.Text:
			text.WriteString(x.Value)
		case *ast.CodeSpan:
			text.WriteString(x.Value)
		case *ast.Image:
			text.WriteString(x.Alt)
		case *ast.SoftBreak, *ast.HardBreak:
			text.WriteByte(' ')
		case *ast.Paragraph, *ast.Heading, *ast.TableCell:
			count += countWords(words, text.String())
			text.Reset()
		}
	})
	count += countWords(words, text.String())
	tracer().Debugf("document has %d words", count)
	return count
}

func countWords(words *segment.Segmenter, text string) int {
	if text == "" {
		return 0
	}
	n := 0
	words.Init(strings.NewReader(text))
	for words.Next() {
		if strings.IndexFunc(words.Text(), isWordRune) >= 0 {
			n++
		}
	}
	return n
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
