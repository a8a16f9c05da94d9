package mdgen

import (
	"testing"

	"github.com/npillmayer/mdtree/core"
	"github.com/npillmayer/mdtree/core/parameters"
	"github.com/npillmayer/mdtree/engine/ast"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func para(inl ...ast.Inline) *ast.Paragraph { return &ast.Paragraph{Children: inl} }
func text(s string) *ast.Text             { return &ast.Text{Value: s} }

func gen(t *testing.T, regs *parameters.StyleRegisters, blocks ...ast.Block) string {
	t.Helper()
	out, err := GenerateBlocks(blocks, regs)
	require.NoError(t, err)
	return out
}

func TestCodeSpans(t *testing.T) {
	assert.Equal(t, "`foo`", codeSpan("foo"))
	assert.Equal(t, "`` a`b ``", codeSpan("a`b"))
	assert.Equal(t, "``` a``b ```", codeSpan("a``b"))
	assert.Equal(t, "`` `x ``", codeSpan("`x"))
	assert.Equal(t, "`  `", codeSpan("  "))
	assert.Equal(t, "`  a  `", codeSpan(" a "))
}

func TestEdgeBlanks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.gen")
	defer teardown()
	//
	assert.Equal(t, "&#32;lead\n", gen(t, nil, para(text(" lead"))))
	assert.Equal(t, "tail&#32;\n", gen(t, nil, para(text("tail "))))
	assert.Equal(t, "a &#32;\n", gen(t, nil, para(text("a  "))))
	assert.Equal(t, "&#9;tab\n", gen(t, nil, para(text("\ttab"))))
	assert.Equal(t, "x&#32;\n&#32;y\n", gen(t, nil, para(text("x "), &ast.SoftBreak{}, text(" y"))))
	assert.Equal(t, "a *b*\n", gen(t, nil, para(text("a "), &ast.Emphasis{Children: []ast.Inline{text("b")}})))
	h := &ast.Heading{Level: 1, Children: []ast.Inline{text(" h ")}}
	assert.Equal(t, "# &#32;h&#32;\n", gen(t, nil, h))
}

func TestHeadings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.gen")
	defer teardown()
	//
	h := &ast.Heading{Level: 2, Children: []ast.Inline{text("Title")}}
	assert.Equal(t, "## Title\n", gen(t, nil, h))
	regs := parameters.NewStyleRegisters()
	require.NoError(t, regs.Set(parameters.P_SETEXT, true))
	assert.Equal(t, "Title\n-----\n", gen(t, regs, h))
	//
	h.Style = ast.HeadingATX
	assert.Equal(t, "## Title\n", gen(t, regs, h), "node style wins over registers")
	//
	_, err := GenerateBlocks([]ast.Block{&ast.Heading{Level: 7}}, nil)
	assert.Equal(t, core.EINVALID, core.Code(err))
}

func TestEscaping(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.gen")
	defer teardown()
	//
	assert.Equal(t, "1\\. not a list \\* star\n", gen(t, nil, para(text("1. not a list * star"))))
	assert.Equal(t, "\\# no heading \\[x\\] a\\_b\n", gen(t, nil, para(text("# no heading [x] a_b"))))
	assert.Equal(t, "a\n\\- b\n", gen(t, nil, para(text("a"), &ast.SoftBreak{}, text("- b"))))
	assert.Equal(t, "\\&amp; & b\n", gen(t, nil, para(text("&amp; & b"))))
}

func TestInlines(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.gen")
	defer teardown()
	//
	p := para(
		&ast.Emphasis{Children: []ast.Inline{text("em")}}, text(" "),
		&ast.Strong{Marker: "__", Children: []ast.Inline{text("strong")}}, text(" "),
		&ast.Link{URL: "/u v", Title: `say "hi"`, Children: []ast.Inline{text("link")}}, text(" "),
		&ast.Link{URL: "https://x.org", Children: []ast.Inline{text("https://x.org")}}, text(" "),
		&ast.Image{URL: "/i.png", Alt: "pic"}, &ast.HardBreak{}, text("end"),
	)
	assert.Equal(t, "*em* __strong__ [link](</u v> \"say \\\"hi\\\"\") <https://x.org> ![pic](/i.png)\\\nend\n",
		gen(t, nil, p))
	//
	nested := para(&ast.Emphasis{Marker: "*", Children: []ast.Inline{
		&ast.Emphasis{Marker: "*", Children: []ast.Inline{text("x")}}}})
	assert.Equal(t, "*_x_*\n", gen(t, nil, nested), "nested emphasis must not become strong")
}

func TestCodeBlocks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.gen")
	defer teardown()
	//
	code := &ast.CodeBlock{Style: ast.CodeFenced, Lang: "md", Value: "```\ninner\n```"}
	assert.Equal(t, "````md\n```\ninner\n```\n````\n", gen(t, nil, code))
	//
	indented := &ast.CodeBlock{Style: ast.CodeIndented, Value: "a\n\nb"}
	assert.Equal(t, "    a\n\n    b\n", gen(t, nil, indented))
	quote := &ast.Blockquote{Children: []ast.Block{indented}}
	assert.Equal(t, "> ```\n> a\n>\n> b\n> ```\n", gen(t, nil, quote), "no indented code in quotes")
	//
	regs := parameters.NewStyleRegisters()
	require.NoError(t, regs.Set(parameters.P_FENCECHAR, "~"))
	assert.Equal(t, "~~~\nx\n~~~\n", gen(t, regs, &ast.CodeBlock{Value: "x"}))
}

func TestContainers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.gen")
	defer teardown()
	//
	quote := &ast.Blockquote{Children: []ast.Block{para(text("a")), para(text("b"))}}
	assert.Equal(t, "> a\n>\n> b\n", gen(t, nil, quote))
	//
	list := &ast.List{Ordered: true, Start: ast.StartAt(9), Spread: true, Children: []*ast.ListItem{
		{Spread: true, Children: []ast.Block{para(text("a")), para(text("b"))}},
		{Children: []ast.Block{para(text("c"))}},
	}}
	assert.Equal(t, "9. a\n\n   b\n\n10. c\n", gen(t, nil, list))
	ordered := &ast.List{Ordered: true, Children: []*ast.ListItem{{Children: []ast.Block{para(text("o"))}}}}
	assert.Equal(t, "1. o\n", gen(t, nil, ordered), "missing start number means 1")
	ordered.Start = ast.StartAt(0)
	assert.Equal(t, "0. o\n", gen(t, nil, ordered))
	//
	checked := true
	tight := func() *ast.List {
		return &ast.List{Children: []*ast.ListItem{
			{Checked: &checked, Children: []ast.Block{para(text("done"))}},
		}}
	}
	assert.Equal(t, "- [x] done\n\n* [x] done\n", gen(t, nil, tight(), tight()),
		"adjacent lists alternate their bullets")
	//
	item := &ast.List{Marker: "*", Children: []*ast.ListItem{
		{Children: []ast.Block{&ast.ThematicBreak{Marker: "*"}}},
	}}
	assert.Equal(t, "* ___\n", gen(t, nil, item), "rule must not use the bullet character")
}

func TestTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.gen")
	defer teardown()
	//
	cell := func(s string) *ast.TableCell { return &ast.TableCell{Children: []ast.Inline{text(s)}} }
	table := &ast.Table{
		Align: []ast.Alignment{ast.AlignLeft, ast.AlignNone, ast.AlignRight},
		Children: []*ast.TableRow{
			{IsHeader: true, Children: []*ast.TableCell{cell("A"), cell("B"), cell("C")}},
			{Children: []*ast.TableCell{cell("1"), cell("a|b")}},
		},
	}
	assert.Equal(t, "| A   | B    |   C |\n| :-- | ---- | --: |\n| 1   | a\\|b |     |\n", gen(t, nil, table))
	//
	assert.Equal(t, 4, cellWidth("日本"))
	assert.Equal(t, "日本 ", pad("日本", 5, false, false))
}

func TestLineEnding(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.gen")
	defer teardown()
	//
	regs := parameters.NewStyleRegisters()
	require.NoError(t, regs.Set(parameters.P_LINEENDING, "\r\n"))
	out := gen(t, regs, para(text("a"), &ast.SoftBreak{}, text("b")), &ast.ThematicBreak{})
	assert.Equal(t, "a\r\nb\r\n\r\n***\r\n", out)
	//
	empty, err := Generate(&ast.Document{}, nil)
	assert.NoError(t, err)
	assert.Equal(t, "", empty)
	_, err = Generate(nil, nil)
	assert.Error(t, err)
}
