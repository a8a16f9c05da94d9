package query

import (
	"testing"

	"github.com/antchfx/xpath"
	"github.com/npillmayer/mdtree/core"
	"github.com/npillmayer/mdtree/engine/ast"
	"github.com/npillmayer/mdtree/input/markdown"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "# Intro\n" +
	"\n" +
	"Hello, *world*! See [docs](/docs \"Docs\") and ![logo](logo.png).\n" +
	"\n" +
	"## Usage\n" +
	"\n" +
	"- [x] install\n" +
	"- [ ] run `tool`\n" +
	"\n" +
	"```go\n" +
	"fmt.Println(\"hi\")\n" +
	"```\n" +
	"\n" +
	"| Name | Count |\n" +
	"|:-----|------:|\n" +
	"| a    | 1     |\n"

func sampleDoc(t *testing.T) *ast.Document {
	t.Helper()
	doc, err := markdown.Parse([]byte(sample), markdown.WithPositions())
	require.NoError(t, err)
	return doc
}

func TestHelpers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.query")
	defer teardown()
	//
	doc := sampleDoc(t)
	hs := Headings(doc)
	require.Len(t, hs, 2)
	assert.Equal(t, 1, hs[0].Level)
	assert.Equal(t, "Intro", hs[0].Text)
	assert.Equal(t, 2, hs[1].Level)
	assert.Equal(t, "Usage", hs[1].Text)
	require.NotNil(t, hs[1].Pos)
	assert.Equal(t, 5, hs[1].Pos.StartLine)
	//
	links := Links(doc)
	require.Len(t, links, 1)
	assert.Equal(t, "/docs", links[0].URL)
	assert.Equal(t, "Docs", links[0].Title)
	images := Images(doc)
	require.Len(t, images, 1)
	assert.Equal(t, "logo", images[0].Alt)
	code := CodeBlocks(doc)
	require.Len(t, code, 1)
	assert.Equal(t, "go", code[0].Lang)
	assert.Equal(t, "fmt.Println(\"hi\")", code[0].Value)
	//
	assert.Nil(t, Headings(nil))
	assert.Equal(t, 0, WordCount(nil))
	assert.Equal(t, "", PlainText(nil))
}

func TestPlainText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.query")
	defer teardown()
	//
	assert.Equal(t, "Intro\n\n"+
		"Hello, world! See docs and logo.\n\n"+
		"Usage\n\n"+
		"install\n\n"+
		"run tool\n\n"+
		"fmt.Println(\"hi\")\n\n"+
		"Name\tCount\na\t1", PlainText(sampleDoc(t)))
}

func TestWordCount(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.query")
	defer teardown()
	//
	doc := markdown.MustParse([]byte("Hello, world! It's 2021."))
	assert.Equal(t, 4, WordCount(doc))
	doc = markdown.MustParse([]byte("one\n\ntwo *three*\n\n    not counted\n"))
	assert.Equal(t, 3, WordCount(doc))
	assert.Equal(t, 15, WordCount(sampleDoc(t)))
}

func TestNavigator(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.query")
	defer teardown()
	//
	nav := NewNavigator(sampleDoc(t))
	assert.Equal(t, xpath.RootNode, nav.NodeType())
	require.True(t, nav.MoveToChild())
	assert.Equal(t, xpath.ElementNode, nav.NodeType())
	assert.Equal(t, "heading", nav.LocalName())
	assert.Equal(t, "Intro", nav.Value())
	require.True(t, nav.MoveToNextAttribute())
	assert.Equal(t, xpath.AttributeNode, nav.NodeType())
	assert.Equal(t, "level", nav.LocalName())
	assert.Equal(t, "1", nav.Value())
	require.True(t, nav.MoveToNextAttribute())
	assert.Equal(t, "style", nav.LocalName())
	assert.Equal(t, "atx", nav.Value())
	assert.False(t, nav.MoveToNextAttribute())
	assert.False(t, nav.MoveToChild())
	require.True(t, nav.MoveToParent())
	assert.Equal(t, "heading", nav.LocalName())
	assert.False(t, nav.MoveToFirst())
	assert.False(t, nav.MoveToPrevious())
	//
	saved := nav.Copy()
	require.True(t, nav.MoveToNext())
	assert.Equal(t, "paragraph", nav.LocalName())
	require.True(t, nav.MoveToChild())
	assert.Equal(t, xpath.TextNode, nav.NodeType())
	assert.Equal(t, "Hello, ", nav.Value())
	require.True(t, nav.MoveToNext())
	assert.Equal(t, "emphasis", nav.LocalName())
	assert.Equal(t, "world", nav.Value())
	require.True(t, nav.MoveToFirst())
	assert.Equal(t, "Hello, ", nav.Value())
	//
	assert.Equal(t, "heading", saved.LocalName(), "copies are independent")
	require.True(t, nav.MoveTo(saved))
	assert.Equal(t, "heading", nav.LocalName())
	nav.MoveToRoot()
	assert.Equal(t, xpath.RootNode, nav.NodeType())
	assert.False(t, nav.MoveToParent())
	assert.False(t, nav.MoveTo(NewNavigator(&ast.Document{})))
}

func TestSelect(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.query")
	defer teardown()
	//
	doc := sampleDoc(t)
	nodes, err := Select(doc, "//heading")
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
	nodes, err = Select(doc, "//heading[@level='2']")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Usage", ast.PlainText(nodes[0].(*ast.Heading).Children))
	nodes, err = Select(doc, "/paragraph")
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
	nodes, err = Select(doc, "//link/@url")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.IsType(t, &ast.Link{}, nodes[0])
	//
	values, err := SelectValues(doc, "//link/@url")
	require.NoError(t, err)
	assert.Equal(t, []string{"/docs"}, values)
	values, err = SelectValues(doc, "//listItem[@checked='true']")
	require.NoError(t, err)
	assert.Equal(t, []string{"install"}, values)
	values, err = SelectValues(doc, "//codeBlock/@lang")
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, values)
	values, err = SelectValues(doc, "//tableCell[@align='right']")
	require.NoError(t, err)
	assert.Equal(t, []string{"Count", "1"}, values)
}

func TestEvaluate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.query")
	defer teardown()
	//
	doc := sampleDoc(t)
	v, err := Evaluate(doc, "count(//tableCell)")
	require.NoError(t, err)
	assert.Equal(t, float64(4), v)
	v, err = Evaluate(doc, "string(//heading[1])")
	require.NoError(t, err)
	assert.Equal(t, "Intro", v)
	v, err = Evaluate(doc, "//tableRow[@header='true']/tableCell")
	require.NoError(t, err)
	require.IsType(t, []ast.Node{}, v)
	assert.Len(t, v.([]ast.Node), 2)
	//
	_, err = Evaluate(doc, "//[")
	assert.Equal(t, core.EINVALID, core.Code(err))
	_, err = Select((*ast.Document)(nil), "//heading")
	assert.Equal(t, core.EINVALID, core.Code(err))
}
