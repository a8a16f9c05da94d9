package inline

import (
	"strings"
	"testing"

	"github.com/npillmayer/mdtree/engine/ast"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) *ast.Text { return &ast.Text{Value: s} }

func TestEmphasisOracle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.inline")
	defer teardown()
	//
	nodes := Parse("**_bold and italic_**", nil)
	require.Len(t, nodes, 1)
	strong, ok := nodes[0].(*ast.Strong)
	require.True(t, ok, "expected Strong, got %T", nodes[0])
	assert.Equal(t, "**", strong.Marker)
	require.Len(t, strong.Children, 1)
	emph, ok := strong.Children[0].(*ast.Emphasis)
	require.True(t, ok, "expected Emphasis, got %T", strong.Children[0])
	assert.Equal(t, "_", emph.Marker)
	assert.Equal(t, []ast.Inline{text("bold and italic")}, emph.Children)
}

func TestEmphasis(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.inline")
	defer teardown()
	//
	for i, tc := range []struct {
		input  string
		expect []ast.Inline
	}{
		{"*foo bar*", []ast.Inline{&ast.Emphasis{Marker: "*", Children: []ast.Inline{text("foo bar")}}}},
		{"a * foo bar*", []ast.Inline{text("a * foo bar*")}},
		{"foo_bar_", []ast.Inline{text("foo_bar_")}},
		{"foo*bar*", []ast.Inline{text("foo"), &ast.Emphasis{Marker: "*", Children: []ast.Inline{text("bar")}}}},
		{"__foo__", []ast.Inline{&ast.Strong{Marker: "__", Children: []ast.Inline{text("foo")}}}},
		{"***strong emph***", []ast.Inline{&ast.Emphasis{Marker: "*", Children: []ast.Inline{
			&ast.Strong{Marker: "**", Children: []ast.Inline{text("strong emph")}}}}}},
		{"*foo**bar**baz*", []ast.Inline{&ast.Emphasis{Marker: "*", Children: []ast.Inline{
			text("foo"), &ast.Strong{Marker: "**", Children: []ast.Inline{text("bar")}}, text("baz")}}}},
		{"*foo**bar*", []ast.Inline{&ast.Emphasis{Marker: "*", Children: []ast.Inline{text("foo**bar")}}}},
		{"**foo*", []ast.Inline{text("*"), &ast.Emphasis{Marker: "*", Children: []ast.Inline{text("foo")}}}},
		{`\*not emphasized*`, []ast.Inline{text("*not emphasized*")}},
	} {
		assert.Equal(t, tc.expect, Parse(tc.input, nil), "test case #%d: %q", i, tc.input)
	}
}

func TestCodeSpans(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.inline")
	defer teardown()
	//
	assert.Equal(t, []ast.Inline{&ast.CodeSpan{Value: "foo"}}, Parse("`foo`", nil))
	assert.Equal(t, []ast.Inline{&ast.CodeSpan{Value: "foo ` bar"}}, Parse("`` foo ` bar ``", nil))
	assert.Equal(t, []ast.Inline{&ast.CodeSpan{Value: "  "}}, Parse("`  `", nil))
	assert.Equal(t, []ast.Inline{&ast.CodeSpan{Value: "foo bar baz"}}, Parse("`foo\nbar baz`", nil))
	assert.Equal(t, []ast.Inline{text("```foo``")}, Parse("```foo``", nil))
	assert.Equal(t, []ast.Inline{text("*"), &ast.CodeSpan{Value: "*"}}, Parse("*`*`", nil))
}

func TestEscapesAndEntities(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.inline")
	defer teardown()
	//
	assert.Equal(t, []ast.Inline{text(`*[\a`)}, Parse(`\*\[\a`, nil))
	assert.Equal(t, []ast.Inline{text("© & ሴ �")}, Parse("&copy; &amp; &#x1234; &#0;", nil))
	assert.Equal(t, []ast.Inline{text("&nosuchentity;")}, Parse("&nosuchentity;", nil))
	assert.Equal(t, []ast.Inline{text("*")}, Parse("&#42;", nil), "entities never form delimiters")
}

func TestBreaks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.inline")
	defer teardown()
	//
	assert.Equal(t, []ast.Inline{text("foo"), &ast.SoftBreak{}, text("bar")}, Parse("foo \n  bar", nil))
	assert.Equal(t, []ast.Inline{text("foo"), &ast.HardBreak{}, text("bar")}, Parse("foo  \nbar", nil))
	assert.Equal(t, []ast.Inline{text("foo"), &ast.HardBreak{}, text("bar")}, Parse("foo\\\nbar", nil))
	assert.Equal(t, []ast.Inline{text(`foo\`)}, Parse(`foo\`, nil))
}

func TestAutolinksAndHTML(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.inline")
	defer teardown()
	//
	assert.Equal(t, []ast.Inline{&ast.Link{URL: "https://example.com/a?b",
		Children: []ast.Inline{text("https://example.com/a?b")}}}, Parse("<https://example.com/a?b>", nil))
	assert.Equal(t, []ast.Inline{&ast.Link{URL: "mailto:foo@bar.example",
		Children: []ast.Inline{text("foo@bar.example")}}}, Parse("<foo@bar.example>", nil))
	assert.Equal(t, []ast.Inline{text("a "), &ast.HTMLInline{Value: `<span class="x">`}, text("b"),
		&ast.HTMLInline{Value: "</span>"}}, Parse(`a <span class="x">b</span>`, nil))
	assert.Equal(t, []ast.Inline{&ast.HTMLInline{Value: "<!-- c\nd -->"}}, Parse("<!-- c\nd -->", nil))
	assert.Equal(t, []ast.Inline{text("a < b")}, Parse("a < b", nil))
}

func TestInlineLinks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.inline")
	defer teardown()
	//
	assert.Equal(t, []ast.Inline{&ast.Link{URL: "/uri", Title: "title", Children: []ast.Inline{text("link")}}},
		Parse(`[link](/uri "title")`, nil))
	assert.Equal(t, []ast.Inline{&ast.Link{URL: "my uri", Children: []ast.Inline{text("a")}}},
		Parse(`[a](<my uri>)`, nil))
	assert.Equal(t, []ast.Inline{&ast.Link{URL: "foo(and(bar))", Children: []ast.Inline{text("a")}}},
		Parse(`[a](foo(and(bar)))`, nil))
	assert.Equal(t, []ast.Inline{&ast.Link{Children: []ast.Inline{text("empty")}}}, Parse(`[empty]()`, nil))
	assert.Equal(t, []ast.Inline{&ast.Image{URL: "/img.png", Alt: "foo bar", Title: "t"}},
		Parse(`![foo *bar*](/img.png 't')`, nil))
	assert.Equal(t, []ast.Inline{text("[link](/uri title)")}, Parse(`[link](/uri title)`, nil))
	assert.Equal(t, []ast.Inline{text("[a]")}, Parse(`[a]`, nil))
}

func TestNoLinksInLinks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.inline")
	defer teardown()
	//
	nodes := Parse("[foo [bar](/u)](/v)", nil)
	require.Len(t, nodes, 3)
	assert.Equal(t, text("[foo "), nodes[0])
	assert.Equal(t, &ast.Link{URL: "/u", Children: []ast.Inline{text("bar")}}, nodes[1])
	assert.Equal(t, text("](/v)"), nodes[2])
	//
	nodes = Parse("*[a*](/u)", nil)
	assert.Equal(t, []ast.Inline{text("*"), &ast.Link{URL: "/u", Children: []ast.Inline{text("a*")}}}, nodes,
		"emphasis must not cross link boundaries")
}

func TestReferenceLinks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.inline")
	defer teardown()
	//
	refs := ast.References{}
	refs.Define("Foo Bar", ast.Reference{URL: "/url", Title: "T"})
	link := func(s string) *ast.Link {
		return &ast.Link{URL: "/url", Title: "T", Children: []ast.Inline{text(s)}}
	}
	assert.Equal(t, []ast.Inline{link("x")}, Parse("[x][foo bar]", refs))
	assert.Equal(t, []ast.Inline{link("foo  BAR")}, Parse("[foo  BAR][]", refs))
	assert.Equal(t, []ast.Inline{link("Foo Bar"), text(".")}, Parse("[Foo Bar].", refs))
	assert.Equal(t, []ast.Inline{text("[x][nope]")}, Parse("[x][nope]", refs))
	assert.Equal(t, []ast.Inline{&ast.Image{URL: "/url", Title: "T", Alt: "foo bar"}}, Parse("![foo bar]", refs))
}

func TestBracketDepthLimit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.inline")
	defer teardown()
	//
	input := strings.Repeat("[", 50000) + "x" + strings.Repeat("]", 50000)
	nodes := ParseWithDepth(input, nil, 10)
	require.Len(t, nodes, 1)
	assert.Equal(t, input, nodes[0].(*ast.Text).Value)
	//
	deep := strings.Repeat("*a ", 20000) + strings.Repeat(" b*", 20000)
	assert.NotPanics(t, func() { Parse(deep, nil) })
}

func TestLinkHelpers(t *testing.T) {
	dest, end, ok := ParseLinkDestination(`/a\)b) x`, 0)
	assert.True(t, ok)
	assert.Equal(t, "/a)b", dest)
	assert.Equal(t, 5, end)
	title, _, ok := ParseLinkTitle(`"a \"q\" &amp; b"`, 0)
	assert.True(t, ok)
	assert.Equal(t, `a "q" & b`, title)
	label, end, ok := ParseLinkLabel("[a\\]b] rest", 0)
	assert.True(t, ok)
	assert.Equal(t, `a\]b`, label)
	assert.Equal(t, 6, end)
	_, _, ok = ParseLinkLabel("[a[b]", 0)
	assert.False(t, ok)
}
