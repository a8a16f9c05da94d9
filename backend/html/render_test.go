package html

import (
	"strings"
	"testing"

	"github.com/npillmayer/mdtree/input/markdown"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func render(input string, opts Options) string {
	return Render(markdown.MustParse([]byte(input)), opts)
}

func TestBlocks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.html")
	defer teardown()
	//
	for _, c := range []struct{ in, out string }{
		{"# Hello *World*\n\nPara & <b>x</b>", "<h1>Hello <em>World</em></h1>\n<p>Para &amp; <b>x</b></p>\n"},
		{"a\\\nb", "<p>a<br />\nb</p>\n"},
		{"> q", "<blockquote>\n<p>q</p>\n</blockquote>\n"},
		{"***", "<hr />\n"},
		{"```go\nx < y\n```", "<pre><code class=\"language-go\">x &lt; y\n</code></pre>\n"},
		{"<div>\nx\n</div>", "<div>\nx\n</div>\n"},
		{"[r]: /u\n\n`a<b`", "<p><code>a&lt;b</code></p>\n"},
	} {
		assert.Equal(t, c.out, render(c.in, Options{}), "input %q", c.in)
	}
	assert.Equal(t, "<pre><code class=\"lang-go\">x\n</code></pre>\n",
		render("```go\nx\n```", Options{ClassPrefix: "lang-"}))
	assert.Equal(t, "", Render(nil, Options{}))
}

func TestLists(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.html")
	defer teardown()
	//
	assert.Equal(t, "<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n", render("- a\n- b", Options{}))
	assert.Equal(t, "<ul>\n<li>\n<p>a</p>\n</li>\n<li>\n<p>b</p>\n</li>\n</ul>\n", render("- a\n\n- b", Options{}))
	assert.Equal(t, "<ol start=\"3\">\n<li>x</li>\n</ol>\n", render("3. x", Options{}))
	assert.Equal(t, "<ul>\n<li>a\n<ul>\n<li>b</li>\n</ul>\n</li>\n</ul>\n", render("- a\n  - b", Options{}))
	assert.Equal(t, "<ul>\n"+
		"<li><input type=\"checkbox\" checked=\"\" disabled=\"\" /> done</li>\n"+
		"<li><input type=\"checkbox\" disabled=\"\" /> todo</li>\n"+
		"</ul>\n", render("- [x] done\n- [ ] todo", Options{}))
}

func TestTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.html")
	defer teardown()
	//
	out := render("| a | b |\n|:--|--:|\n| 1 | 2 |", Options{})
	assert.Equal(t, "<table>\n<thead>\n<tr>\n<th align=\"left\">a</th>\n<th align=\"right\">b</th>\n</tr>\n</thead>\n"+
		"<tbody>\n<tr>\n<td align=\"left\">1</td>\n<td align=\"right\">2</td>\n</tr>\n</tbody>\n</table>\n", out)
}

func TestLinks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.html")
	defer teardown()
	//
	input := "[x](https://e.org \"T\") [y](/rel) ![i](<a b.png>)"
	assert.Equal(t, "<p><a href=\"https://e.org\" title=\"T\" target=\"_blank\" rel=\"noopener noreferrer\">x</a> "+
		"<a href=\"/rel\">y</a> <img src=\"a%20b.png\" alt=\"i\" /></p>\n",
		render(input, Options{ExternalLinkTarget: "_blank"}))
	//
	prefix := func(u string) string {
		if strings.HasPrefix(u, "/") {
			return "/base" + u
		}
		return u
	}
	assert.Equal(t, "<p><a href=\"/base/rel\">y</a></p>\n", render("[y](/rel)", Options{URLTransform: prefix}))
}

func TestSanitize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.html")
	defer teardown()
	//
	opts := Options{Sanitize: true}
	assert.Equal(t, "<p><a href=\"#\">x</a></p>\n", render("[x](javascript:alert(1))", opts))
	assert.Equal(t, "<p>Para &amp; &lt;b&gt;x&lt;/b&gt;</p>\n", render("Para & <b>x</b>", opts))
	assert.Equal(t, "<p>&lt;div&gt;\nx\n&lt;/div&gt;</p>\n", render("<div>\nx\n</div>", opts))
	assert.True(t, isSafeURL("data:image/png;base64,AAAA"))
	assert.False(t, isSafeURL(" VBScript:x"))
}

func TestHeadingIDs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.html")
	defer teardown()
	//
	out := render("# Café Olé!\n\n## Café Olé", Options{HeadingIDs: true})
	assert.Equal(t, "<h1 id=\"cafe-ole\">Café Olé!</h1>\n<h2 id=\"cafe-ole-1\">Café Olé</h2>\n", out)
	assert.Equal(t, "section", Slug("!!!"))
	assert.Equal(t, "a_b-c", Slug("  A_b  c "))
}
