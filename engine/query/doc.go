/*
Package query extracts information from document trees.

Helpers collect headings, links, images and code blocks, or count words.
Words are determined by Unicode word segmentation (UAX#29).

Select evaluates XPath expressions over a tree. Element names are the node
kinds of package ast ("paragraph", "heading", "link", …), text nodes are
matched by text(), and attributes are node fields:

	nodes, err := query.Select(doc, "//heading[@level='2']")
	urls, err := query.SelectValues(doc, "//link/@url")

Attributes per node kind:

	thematicBreak            marker
	heading                  level, style
	codeBlock                style, fence, lang, meta
	htmlBlock                type
	list                     ordered, start, spread, marker
	listItem                 marker, spread, checked
	linkReferenceDefinition  label, url, title
	table                    align
	tableRow                 header
	tableCell                align, header
	emphasis, strong         marker
	link                     url, title
	image                    url, alt, title

Empty attributes are omitted.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package query

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mdtree.query'.
func tracer() tracing.Trace {
	return tracing.Select("mdtree.query")
}
