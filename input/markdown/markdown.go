package markdown

import (
	"fmt"

	"github.com/npillmayer/mdtree/backend/mdgen"
	"github.com/npillmayer/mdtree/core"
	"github.com/npillmayer/mdtree/core/parameters"
	"github.com/npillmayer/mdtree/engine/ast"
	"github.com/npillmayer/mdtree/engine/block"
	"github.com/npillmayer/mdtree/engine/lines"
	"github.com/npillmayer/schuko"
)

// Option configures parsing or generation.
type Option func(*settings) error

type settings struct {
	positions  bool
	maxNesting int
	regs       *parameters.StyleRegisters
}

// WithPositions attaches source positions to block nodes.
func WithPositions() Option {
	return func(s *settings) error {
		s.positions = true
		return nil
	}
}

// WithMaxNesting sets the maximum depth of nested containers and of nested
// brackets within inline content.
func WithMaxNesting(depth int) Option {
	return func(s *settings) error {
		if depth < 1 {
			return core.Error(core.EINVALID, "maximum nesting must be positive, is %d", depth)
		}
		s.maxNesting = depth
		return nil
	}
}

// WithStyle sets the style registers used for generating Markdown.
func WithStyle(regs *parameters.StyleRegisters) Option {
	return func(s *settings) error {
		if regs == nil {
			return core.Error(core.EINVALID, "style registers must not be nil")
		}
		s.regs = regs
		return nil
	}
}

// WithConfig reads settings from a configuration: "markdown.positions",
// "markdown.max-nesting" and all style registers (see parameters.FromConfig).
func WithConfig(conf schuko.Configuration) Option {
	return func(s *settings) error {
		if conf == nil {
			return nil
		}
		if conf.IsSet("markdown.positions") {
			s.positions = conf.GetBool("markdown.positions")
		}
		if conf.IsSet("markdown.max-nesting") {
			if err := WithMaxNesting(conf.GetInt("markdown.max-nesting"))(s); err != nil {
				return err
			}
		}
		regs, err := parameters.FromConfig(conf)
		if err != nil {
			return err
		}
		s.regs = regs
		return nil
	}
}

func apply(opts []Option) (*settings, error) {
	s := &settings{maxNesting: block.DefaultMaxNesting}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			tracer().Errorf("invalid option: %v", err)
			return nil, err
		}
	}
	return s, nil
}

// Parse parses Markdown input into a document. Parsing itself never fails;
// errors are returned for invalid options and for input which cannot be
// decoded.
func Parse(src []byte, opts ...Option) (*ast.Document, error) {
	s, err := apply(opts)
	if err != nil {
		return nil, err
	}
	text, err := lines.Decode(src)
	if err != nil {
		return nil, err
	}
	return parse(text, s), nil
}

// ParseString parses Markdown text into a document.
func ParseString(text string, opts ...Option) (*ast.Document, error) {
	return Parse([]byte(text), opts...)
}

// MustParse is like Parse, but panics if an error occurs.
func MustParse(src []byte, opts ...Option) *ast.Document {
	doc, err := Parse(src, opts...)
	if err != nil {
		panic(fmt.Sprintf("markdown: %v", err))
	}
	return doc
}

func parse(text string, s *settings) *ast.Document {
	ending := lines.DetectEnding(text)
	text = lines.Normalize(text)
	ls := lines.Split(text, 1, 0)
	refs := ast.References{}
	n := block.Prescan(ls, refs)
	cfg := block.Config{Positions: s.positions, MaxNesting: s.maxNesting}
	doc := &ast.Document{
		Children:   block.Parse(ls, refs, cfg),
		References: refs,
		LineEnding: ending,
	}
	if s.positions && len(ls) > 0 {
		last := ls[len(ls)-1]
		doc.Pos = &ast.Position{
			StartLine: 1, StartColumn: 1,
			EndLine: last.Number, EndColumn: last.EndColumn(), EndOffset: len(text),
		}
	}
	tracer().Infof("parsed %d lines into %d blocks, %d references", len(ls), len(doc.Children), n)
	return doc
}

// Generate creates Markdown text for a document. Unless style registers are
// given, the document's line ending is used.
func Generate(doc *ast.Document, opts ...Option) (string, error) {
	s, err := apply(opts)
	if err != nil {
		return "", err
	}
	regs := s.regs
	if regs == nil {
		regs = parameters.NewStyleRegisters()
		if doc != nil && doc.LineEnding == lines.CRLF {
			if err := regs.Set(parameters.P_LINEENDING, lines.CRLF); err != nil {
				return "", err
			}
		}
	}
	return mdgen.Generate(doc, regs)
}
