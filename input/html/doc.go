/*
Package html converts HTML documents into Markdown document trees.

FromHTML maps HTML elements onto the node types of package engine/ast, so that
a tree created from HTML may be generated as Markdown like any parsed tree:

	doc, err := html.FromHTML(r, html.Options{Ignore: "nav, .ads"})
	md, err := markdown.Generate(doc)

Elements matching the Ignore selector are removed before conversion. Elements
with no Markdown counterpart, like <figure> or <details>, are kept as raw HTML
blocks. Containers without a counterpart (<div>, <section>, …) are
transparent, as are unknown inline elements.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package html

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mdtree.ingest'.
func tracer() tracing.Trace {
	return tracing.Select("mdtree.ingest")
}
