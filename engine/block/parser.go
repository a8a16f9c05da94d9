package block

import (
	"github.com/npillmayer/mdtree/engine/ast"
	"github.com/npillmayer/mdtree/engine/inline"
	"github.com/npillmayer/mdtree/engine/lines"
)

// DefaultMaxNesting is the default limit for nested containers.
const DefaultMaxNesting = 100

// Config controls block parsing.
type Config struct {
	Positions  bool // attach source positions to block nodes
	MaxNesting int  // maximum container depth, defaults to DefaultMaxNesting
}

// Span tells which lines a top-level block has been parsed from. End is
// exclusive and excludes trailing blank lines. Open is set if the block ends
// the input and further lines could still become part of it.
type Span struct {
	Start, End int
	Open       bool
}

type parser struct {
	refs ast.References
	cfg  Config
}

// Parse parses lines into blocks. Inline content is resolved against refs,
// which should have been populated by Prescan. Definitions found while parsing
// are added to refs as well.
func Parse(ls []lines.Line, refs ast.References, cfg Config) []ast.Block {
	blocks, _ := ParseSpans(ls, refs, cfg)
	return blocks
}

// ParseSpans is like Parse, but reports the line span of every top-level block.
func ParseSpans(ls []lines.Line, refs ast.References, cfg Config) ([]ast.Block, []Span) {
	if cfg.MaxNesting <= 0 {
		cfg.MaxNesting = DefaultMaxNesting
	}
	if refs == nil {
		refs = ast.References{}
	}
	p := &parser{refs: refs, cfg: cfg}
	blocks, spans := p.blocks(ls, 0, false)
	tracer().Debugf("parsed %d lines into %d blocks", len(ls), len(blocks))
	return blocks, spans
}

// blocks is the dispatcher. It is called recursively for the content of
// containers.
func (p *parser) blocks(ls []lines.Line, depth int, inQuote bool) ([]ast.Block, []Span) {
	if depth > p.cfg.MaxNesting {
		tracer().Infof("maximum nesting depth %d exceeded, dropping content", p.cfg.MaxNesting)
		return nil, nil
	}
	var blocks []ast.Block
	var spans []Span
	for i := 0; i < len(ls); {
		l := ls[i]
		if l.Blank {
			i++
			continue
		}
		var b ast.Block
		next, open := i+1, false
		rest := l.Rest()
		switch {
		case l.Indent < 4 && isThematicBreak(rest):
			b = &ast.ThematicBreak{Marker: rest[:1]}
		case l.Indent < 4 && isATXHeading(rest):
			b = p.atxHeading(rest)
		case l.Indent < 4 && isFenceOpen(rest):
			b, next, open = p.fencedCode(ls, i)
		case l.Indent < 4 && htmlStart(rest) > 0:
			b, next, open = p.htmlBlock(ls, i, htmlStart(rest))
		case l.Indent < 4 && rest[0] == '>':
			b, next, open = p.blockquote(ls, i, depth)
		case l.Indent < 4 && isListMarker(l):
			b, next, open = p.list(ls, i, depth, inQuote)
		case l.Indent >= 4 && !inQuote:
			b, next, open = p.indentedCode(ls, i)
		case l.Indent < 4 && i+1 < len(ls) && isTableStart(l, ls[i+1]):
			b, next, open = p.table(ls, i)
		default:
			if def, n, o, ok := parseLinkRefDef(ls, i); ok {
				p.refs.Define(def.Label, ast.Reference{URL: def.URL, Title: def.Title})
				b, next, open = def, n, o
			} else {
				b, next, open = p.paragraph(ls, i, inQuote)
			}
		}
		if p.cfg.Positions {
			setPosition(b, ls, i, next)
		}
		blocks = append(blocks, b)
		spans = append(spans, Span{Start: i, End: next, Open: open})
		i = next
	}
	return blocks, spans
}

// onlyBlanksFrom is true if there are no non-blank lines from index i on.
func onlyBlanksFrom(ls []lines.Line, i int) bool {
	for ; i < len(ls); i++ {
		if !ls[i].Blank {
			return false
		}
	}
	return true
}

func (p *parser) inlines(text string) []ast.Inline {
	return inline.ParseWithDepth(text, p.refs, p.cfg.MaxNesting)
}

// position computes the source position of lines ls[start:end].
func position(ls []lines.Line, start, end int) *ast.Position {
	if start >= len(ls) || end <= start {
		return nil
	}
	first, last := ls[start], ls[end-1]
	lead := len(first.Text) - len(first.Rest())
	return &ast.Position{
		StartLine:   first.Number,
		StartColumn: first.Column + first.Indent + 1,
		StartOffset: first.Offset + lead,
		EndLine:     last.Number,
		EndColumn:   last.EndColumn(),
		EndOffset:   last.Offset + len(last.Text),
	}
}

func setPosition(b ast.Block, ls []lines.Line, start, end int) {
	pos := position(ls, start, end)
	switch x := b.(type) {
	case *ast.ThematicBreak:
		x.Pos = pos
	case *ast.Heading:
		x.Pos = pos
	case *ast.CodeBlock:
		x.Pos = pos
	case *ast.HTMLBlock:
		x.Pos = pos
	case *ast.Paragraph:
		x.Pos = pos
	case *ast.LinkReferenceDefinition:
		x.Pos = pos
	case *ast.Blockquote:
		x.Pos = pos
	case *ast.List:
		x.Pos = pos
	case *ast.Table:
		x.Pos = pos
	}
}
